package repositories

import (
	"context"

	"github.com/finledger/fin_ledger_app/internal/core/domain"
)

// CreditNoteRepositoryFacade defines persistence operations for customer
// credit notes, their item lines and their tax lines.
type CreditNoteRepositoryFacade interface {
	SaveCreditNote(ctx context.Context, note domain.CustomerCreditNote, taxLines []domain.TaxLine) error
	FindCreditNoteByID(ctx context.Context, tenantID, creditNoteID string) (*domain.CustomerCreditNote, error)
	UpdateCreditNoteStatus(ctx context.Context, note domain.CustomerCreditNote, expected domain.DocumentStatus) error
	// MarkCreditNotePosted atomically inserts the posted journal and moves the
	// credit note APPROVED -> POSTED with the journal back-link.
	MarkCreditNotePosted(ctx context.Context, note domain.CustomerCreditNote, journal domain.JournalEntry, lines []domain.JournalLine) error
	// MarkCreditNoteVoided atomically inserts the reversal journal and moves
	// the credit note POSTED -> VOID with actor, timestamp and reason.
	MarkCreditNoteVoided(ctx context.Context, note domain.CustomerCreditNote, reversal domain.JournalEntry, lines []domain.JournalLine) error
}
