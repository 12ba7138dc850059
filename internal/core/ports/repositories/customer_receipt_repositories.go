package repositories

import (
	"context"

	"github.com/finledger/fin_ledger_app/internal/core/domain"
)

// CustomerReceiptRepositoryFacade defines persistence operations for customer
// receipts and their invoice allocations.
type CustomerReceiptRepositoryFacade interface {
	SaveReceipt(ctx context.Context, receipt domain.CustomerReceipt) error
	FindReceiptByID(ctx context.Context, tenantID, receiptID string) (*domain.CustomerReceipt, error)
	UpdateReceiptStatus(ctx context.Context, receipt domain.CustomerReceipt, expected domain.DocumentStatus) error
	// MarkReceiptPosted atomically inserts the posted journal and moves the
	// receipt APPROVED -> POSTED with the journal back-link.
	MarkReceiptPosted(ctx context.Context, receipt domain.CustomerReceipt, journal domain.JournalEntry, lines []domain.JournalLine) error
}
