package repositories

import (
	"context"

	"github.com/finledger/fin_ledger_app/internal/core/domain"
)

// CustomerInvoiceRepositoryFacade defines read operations on AR invoices
// needed by receipts and credit notes.
type CustomerInvoiceRepositoryFacade interface {
	FindInvoiceByID(ctx context.Context, tenantID, invoiceID string) (*domain.CustomerInvoice, error)
	// GetOutstandingBalance computes invoiceTotal minus posted receipt
	// allocations minus posted credit notes for the invoice.
	GetOutstandingBalance(ctx context.Context, tenantID, invoiceID string) (*domain.OutstandingBalance, error)
}
