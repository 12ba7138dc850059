package repositories

import (
	"context"
	"time"

	"github.com/finledger/fin_ledger_app/internal/core/domain"
	"github.com/jackc/pgx/v5"
)

// JournalRepositoryFacade defines persistence operations for journal entries
// and their lines. Saving a journal saves its lines atomically.
type JournalRepositoryFacade interface {
	// SaveJournal inserts a journal and its lines in one transaction.
	SaveJournal(ctx context.Context, journal domain.JournalEntry, lines []domain.JournalLine) error
	// InsertJournalInTx inserts a journal and its lines inside a caller-owned
	// transaction; document repositories use it so the journal insert and the
	// document status update commit or roll back together.
	InsertJournalInTx(ctx context.Context, tx pgx.Tx, journal domain.JournalEntry, lines []domain.JournalLine) error
	FindJournalByID(ctx context.Context, tenantID, journalID string) (*domain.JournalEntry, error)
	// FindJournalByReference looks up a journal by its source reference.
	// Returns ErrNotFound when no journal carries the reference.
	FindJournalByReference(ctx context.Context, tenantID, reference string) (*domain.JournalEntry, error)
	FindLinesByJournalID(ctx context.Context, journalID string) ([]domain.JournalLine, error)
	// MarkJournalPosted stamps postedBy/postedAt and flips the status to
	// POSTED, guarded on the current status. Returns ErrConflict when the
	// journal is not in a postable state.
	MarkJournalPosted(ctx context.Context, tenantID, journalID, postedBy string, postedAt time.Time) error
	ListJournals(ctx context.Context, tenantID string, limit int, offset int) ([]domain.JournalEntry, error)
}
