package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CustomerRefund pays money back to a customer, typically settling a posted
// credit note. On post it debits the AR control (restoring the receivable the
// credit note extinguished) and credits the bank clearing control.
type CustomerRefund struct {
	RefundID   string    `json:"refundID"`
	TenantID   string    `json:"tenantID"`
	CustomerID string    `json:"customerID"`
	RefundDate time.Time `json:"refundDate"`
	// Optional link to the credit note being settled.
	CreditNoteID    *string         `json:"creditNoteID,omitempty"`
	Status          DocumentStatus  `json:"status"`
	TotalAmount     decimal.Decimal `json:"totalAmount"`
	PostedJournalID *string         `json:"postedJournalID,omitempty"`
	// Journal that voided this refund, when voided.
	ReversalJournalID *string `json:"reversalJournalID,omitempty"`
	DocumentStamps
	AuditFields
}
