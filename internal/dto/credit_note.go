package dto

import (
	"time"

	"github.com/finledger/fin_ledger_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreditNoteLineRequest is one net line of a credit note.
type CreditNoteLineRequest struct {
	AccountID   string          `json:"accountID" binding:"required"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount" binding:"required,dgt0"`
}

// CreateCreditNoteRequest defines the data needed to draft a credit note
// against a posted customer invoice.
type CreateCreditNoteRequest struct {
	CustomerID  string                  `json:"customerID" binding:"required"`
	InvoiceID   string                  `json:"invoiceID" binding:"required"`
	CreditDate  time.Time               `json:"creditDate" binding:"required"`
	TotalAmount decimal.Decimal         `json:"totalAmount" binding:"required,dgt0"`
	Lines       []CreditNoteLineRequest `json:"lines" binding:"required,min=1,dive"`
	TaxLines    []TaxLineRequest        `json:"taxLines" binding:"dive"`
}

// VoidRequest carries the mandatory reason for voiding a posted document.
type VoidRequest struct {
	Reason string `json:"reason" binding:"required,min=10"`
}

// CreditNoteResponse defines the data returned for a credit note.
type CreditNoteResponse struct {
	CreditNoteID      string                   `json:"creditNoteID"`
	CustomerID        string                   `json:"customerID"`
	InvoiceID         string                   `json:"invoiceID"`
	CreditDate        time.Time                `json:"creditDate"`
	Status            domain.DocumentStatus    `json:"status"`
	TotalAmount       decimal.Decimal          `json:"totalAmount"`
	PostedJournalID   *string                  `json:"postedJournalID,omitempty"`
	ReversalJournalID *string                  `json:"reversalJournalID,omitempty"`
	VoidReason        *string                  `json:"voidReason,omitempty"`
	Lines             []CreditNoteLineResponse `json:"lines,omitempty"`
	CreatedAt         time.Time                `json:"createdAt"`
	CreatedBy         string                   `json:"createdBy"`
}

// CreditNoteLineResponse defines the data returned for a credit note line.
type CreditNoteLineResponse struct {
	LineID      string          `json:"lineID"`
	AccountID   string          `json:"accountID"`
	Description string          `json:"description,omitempty"`
	Amount      decimal.Decimal `json:"amount"`
}

// ToCreditNoteResponse converts a domain.CustomerCreditNote.
func ToCreditNoteResponse(cn *domain.CustomerCreditNote) CreditNoteResponse {
	resp := CreditNoteResponse{
		CreditNoteID:      cn.CreditNoteID,
		CustomerID:        cn.CustomerID,
		InvoiceID:         cn.InvoiceID,
		CreditDate:        cn.CreditDate,
		Status:            cn.Status,
		TotalAmount:       cn.TotalAmount,
		PostedJournalID:   cn.PostedJournalID,
		ReversalJournalID: cn.ReversalJournalID,
		VoidReason:        cn.VoidReason,
		CreatedAt:         cn.CreatedAt,
		CreatedBy:         cn.CreatedBy,
	}
	if len(cn.Lines) > 0 {
		resp.Lines = make([]CreditNoteLineResponse, len(cn.Lines))
		for i, l := range cn.Lines {
			resp.Lines[i] = CreditNoteLineResponse{
				LineID:      l.LineID,
				AccountID:   l.AccountID,
				Description: l.Description,
				Amount:      l.Amount,
			}
		}
	}
	return resp
}
