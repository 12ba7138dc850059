package dto

import (
	"time"

	"github.com/finledger/fin_ledger_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateRefundRequest defines the data needed to draft a customer refund.
type CreateRefundRequest struct {
	CustomerID   string          `json:"customerID" binding:"required"`
	RefundDate   time.Time       `json:"refundDate" binding:"required"`
	TotalAmount  decimal.Decimal `json:"totalAmount" binding:"required,dgt0"`
	CreditNoteID *string         `json:"creditNoteID"`
}

// RefundResponse defines the data returned for a customer refund.
type RefundResponse struct {
	RefundID          string                `json:"refundID"`
	CustomerID        string                `json:"customerID"`
	RefundDate        time.Time             `json:"refundDate"`
	CreditNoteID      *string               `json:"creditNoteID,omitempty"`
	Status            domain.DocumentStatus `json:"status"`
	TotalAmount       decimal.Decimal       `json:"totalAmount"`
	PostedJournalID   *string               `json:"postedJournalID,omitempty"`
	ReversalJournalID *string               `json:"reversalJournalID,omitempty"`
	VoidReason        *string               `json:"voidReason,omitempty"`
	CreatedAt         time.Time             `json:"createdAt"`
	CreatedBy         string                `json:"createdBy"`
}

// ToRefundResponse converts a domain.CustomerRefund.
func ToRefundResponse(r *domain.CustomerRefund) RefundResponse {
	return RefundResponse{
		RefundID:          r.RefundID,
		CustomerID:        r.CustomerID,
		RefundDate:        r.RefundDate,
		CreditNoteID:      r.CreditNoteID,
		Status:            r.Status,
		TotalAmount:       r.TotalAmount,
		PostedJournalID:   r.PostedJournalID,
		ReversalJournalID: r.ReversalJournalID,
		VoidReason:        r.VoidReason,
		CreatedAt:         r.CreatedAt,
		CreatedBy:         r.CreatedBy,
	}
}
