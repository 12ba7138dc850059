package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CustomerInvoice is an AR invoice. Receipts allocate against it and credit
// notes reference it; its outstanding balance caps what a credit note may
// carry. Its own entry lifecycle mirrors the supplier invoice.
type CustomerInvoice struct {
	InvoiceID       string          `json:"invoiceID"`
	TenantID        string          `json:"tenantID"`
	CustomerID      string          `json:"customerID"`
	InvoiceNumber   string          `json:"invoiceNumber"`
	InvoiceDate     time.Time       `json:"invoiceDate"`
	Status          DocumentStatus  `json:"status"`
	TotalAmount     decimal.Decimal `json:"totalAmount"`
	PostedJournalID *string         `json:"postedJournalID,omitempty"`
	DocumentStamps
	AuditFields
}

// OutstandingBalance is what remains collectable on a customer invoice:
// invoice total minus posted receipt allocations minus posted credit notes.
type OutstandingBalance struct {
	InvoiceID        string          `json:"invoiceID"`
	InvoiceTotal     decimal.Decimal `json:"invoiceTotal"`
	ReceiptsAmount   decimal.Decimal `json:"receiptsAmount"`
	CreditNoteAmount decimal.Decimal `json:"creditNoteAmount"`
}

// Outstanding returns the remaining collectable amount.
func (b OutstandingBalance) Outstanding() decimal.Decimal {
	return b.InvoiceTotal.Sub(b.ReceiptsAmount).Sub(b.CreditNoteAmount)
}
