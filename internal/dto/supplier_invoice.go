package dto

import (
	"time"

	"github.com/finledger/fin_ledger_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// SupplierInvoiceLineRequest is one net item line of a supplier invoice.
type SupplierInvoiceLineRequest struct {
	AccountID   string          `json:"accountID" binding:"required"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount" binding:"required,dgt0"`
}

// CreateSupplierInvoiceRequest defines the data needed to draft an AP invoice.
// TotalAmount is the gross total the lines plus tax lines must reconcile to
// before the invoice can leave DRAFT.
type CreateSupplierInvoiceRequest struct {
	SupplierID    string                       `json:"supplierID" binding:"required"`
	InvoiceNumber string                       `json:"invoiceNumber" binding:"required"`
	InvoiceDate   time.Time                    `json:"invoiceDate" binding:"required"`
	TotalAmount   decimal.Decimal              `json:"totalAmount" binding:"required,dgt0"`
	Lines         []SupplierInvoiceLineRequest `json:"lines" binding:"required,min=1,dive"`
	TaxLines      []TaxLineRequest             `json:"taxLines" binding:"dive"`
}

// SupplierInvoiceResponse defines the data returned for a supplier invoice.
type SupplierInvoiceResponse struct {
	InvoiceID       string                        `json:"invoiceID"`
	SupplierID      string                        `json:"supplierID"`
	InvoiceNumber   string                        `json:"invoiceNumber"`
	InvoiceDate     time.Time                     `json:"invoiceDate"`
	Status          domain.DocumentStatus         `json:"status"`
	TotalAmount     decimal.Decimal               `json:"totalAmount"`
	PostedJournalID *string                       `json:"postedJournalID,omitempty"`
	Lines           []SupplierInvoiceLineResponse `json:"lines,omitempty"`
	CreatedAt       time.Time                     `json:"createdAt"`
	CreatedBy       string                        `json:"createdBy"`
}

// SupplierInvoiceLineResponse defines the data returned for an invoice line.
type SupplierInvoiceLineResponse struct {
	LineID      string          `json:"lineID"`
	AccountID   string          `json:"accountID"`
	Description string          `json:"description,omitempty"`
	Amount      decimal.Decimal `json:"amount"`
}

// ToSupplierInvoiceResponse converts a domain.SupplierInvoice.
func ToSupplierInvoiceResponse(inv *domain.SupplierInvoice) SupplierInvoiceResponse {
	resp := SupplierInvoiceResponse{
		InvoiceID:       inv.InvoiceID,
		SupplierID:      inv.SupplierID,
		InvoiceNumber:   inv.InvoiceNumber,
		InvoiceDate:     inv.InvoiceDate,
		Status:          inv.Status,
		TotalAmount:     inv.TotalAmount,
		PostedJournalID: inv.PostedJournalID,
		CreatedAt:       inv.CreatedAt,
		CreatedBy:       inv.CreatedBy,
	}
	if len(inv.Lines) > 0 {
		resp.Lines = make([]SupplierInvoiceLineResponse, len(inv.Lines))
		for i, l := range inv.Lines {
			resp.Lines[i] = SupplierInvoiceLineResponse{
				LineID:      l.LineID,
				AccountID:   l.AccountID,
				Description: l.Description,
				Amount:      l.Amount,
			}
		}
	}
	return resp
}
