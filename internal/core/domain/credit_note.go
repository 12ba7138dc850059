package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CustomerCreditNote reduces what a customer owes against a specific posted
// invoice. Its item lines debit the original income accounts, its OUTPUT tax
// lines debit the VAT control, and the balancing credit goes to AR control.
// Approval verifies the total does not exceed the invoice's outstanding balance.
type CustomerCreditNote struct {
	CreditNoteID    string          `json:"creditNoteID"`
	TenantID        string          `json:"tenantID"`
	CustomerID      string          `json:"customerID"`
	InvoiceID       string          `json:"invoiceID"` // referenced customer invoice
	CreditDate      time.Time       `json:"creditDate"`
	Status          DocumentStatus  `json:"status"`
	TotalAmount     decimal.Decimal `json:"totalAmount"` // gross: net + tax
	PostedJournalID *string         `json:"postedJournalID,omitempty"`
	// Journal that voided this credit note, when voided.
	ReversalJournalID *string `json:"reversalJournalID,omitempty"`
	DocumentStamps
	AuditFields
	Lines []CreditNoteLine `json:"lines,omitempty"`
}

// CreditNoteLine is one net line against an income account being reduced.
type CreditNoteLine struct {
	LineID       string          `json:"lineID"`
	CreditNoteID string          `json:"creditNoteID"`
	AccountID    string          `json:"accountID"`
	Description  string          `json:"description"`
	Amount       decimal.Decimal `json:"amount"`
}

// NetAmount sums the item lines (the taxable basis of the credit note).
func (cn CustomerCreditNote) NetAmount() decimal.Decimal {
	net := decimal.Zero
	for _, l := range cn.Lines {
		net = net.Add(l.Amount)
	}
	return net
}
