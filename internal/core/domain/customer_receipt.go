package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CustomerReceipt records money received from a customer, allocated across one
// or more customer invoices. On post it debits the bank clearing control and
// credits the AR control for the total. Receipts carry no tax lines.
type CustomerReceipt struct {
	ReceiptID       string          `json:"receiptID"`
	TenantID        string          `json:"tenantID"`
	CustomerID      string          `json:"customerID"`
	ReceiptDate     time.Time       `json:"receiptDate"`
	Status          DocumentStatus  `json:"status"`
	TotalAmount     decimal.Decimal `json:"totalAmount"`
	PostedJournalID *string         `json:"postedJournalID,omitempty"`
	DocumentStamps
	AuditFields
	Allocations []ReceiptAllocation `json:"allocations,omitempty"`
}

// ReceiptAllocation assigns part of a receipt to a customer invoice.
type ReceiptAllocation struct {
	AllocationID string          `json:"allocationID"`
	ReceiptID    string          `json:"receiptID"`
	InvoiceID    string          `json:"invoiceID"`
	Amount       decimal.Decimal `json:"amount"`
}

// AllocatedAmount sums the receipt's allocations.
func (r CustomerReceipt) AllocatedAmount() decimal.Decimal {
	sum := decimal.Zero
	for _, a := range r.Allocations {
		sum = sum.Add(a.Amount)
	}
	return sum
}
