package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// SupplierInvoice is an AP subledger document. Its item lines carry the net
// amounts against expense/asset accounts; tax lines carry INPUT tax; the
// balancing entry on post goes to the AP control account for the gross total.
type SupplierInvoice struct {
	InvoiceID       string          `json:"invoiceID"`
	TenantID        string          `json:"tenantID"`
	SupplierID      string          `json:"supplierID"`
	InvoiceNumber   string          `json:"invoiceNumber"`
	InvoiceDate     time.Time       `json:"invoiceDate"`
	Status          DocumentStatus  `json:"status"`
	TotalAmount     decimal.Decimal `json:"totalAmount"` // gross: net + tax
	PostedJournalID *string         `json:"postedJournalID,omitempty"`
	DocumentStamps
	AuditFields
	Lines []SupplierInvoiceLine `json:"lines,omitempty"`
}

// SupplierInvoiceLine is one net item line against an expense or asset account.
type SupplierInvoiceLine struct {
	LineID      string          `json:"lineID"`
	InvoiceID   string          `json:"invoiceID"`
	AccountID   string          `json:"accountID"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
}

// NetAmount sums the item lines (the taxable basis of the document).
func (inv SupplierInvoice) NetAmount() decimal.Decimal {
	net := decimal.Zero
	for _, l := range inv.Lines {
		net = net.Add(l.Amount)
	}
	return net
}
