package repositories

import (
	"context"

	"github.com/finledger/fin_ledger_app/internal/core/domain"
)

// SupplierInvoiceRepositoryFacade defines persistence operations for supplier
// invoices, their item lines and their tax lines.
type SupplierInvoiceRepositoryFacade interface {
	// SaveInvoice inserts a draft invoice with its item lines and tax lines.
	SaveInvoice(ctx context.Context, invoice domain.SupplierInvoice, taxLines []domain.TaxLine) error
	// FindInvoiceByID returns the invoice with item lines loaded.
	FindInvoiceByID(ctx context.Context, tenantID, invoiceID string) (*domain.SupplierInvoice, error)
	// UpdateInvoiceStatus persists the invoice's status and lifecycle stamps,
	// guarded on the expected current status. Returns ErrConflict when the
	// stored status differs (lost race or repeated transition).
	UpdateInvoiceStatus(ctx context.Context, invoice domain.SupplierInvoice, expected domain.DocumentStatus) error
	// MarkInvoicePosted atomically inserts the posted journal with its lines
	// and moves the invoice APPROVED -> POSTED with the journal back-link.
	// The whole operation is one database transaction.
	MarkInvoicePosted(ctx context.Context, invoice domain.SupplierInvoice, journal domain.JournalEntry, lines []domain.JournalLine) error
}
