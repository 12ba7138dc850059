package services

import (
	"context"
	"time"

	"github.com/finledger/fin_ledger_app/internal/core/domain"
	"github.com/finledger/fin_ledger_app/internal/dto"
)

// SourceJournalSpec describes the journal a subledger document wants posted.
// The engine validates it (accounts, balance, minimum lines) and returns a
// ready-to-persist POSTED journal.
type SourceJournalSpec struct {
	SourceType        domain.SourceType
	SourceID          string
	JournalDate       time.Time
	Description       string
	JournalType       domain.JournalType
	OriginalJournalID *string
	Lines             []domain.JournalLine
}

// PostingEngineSvc is the narrow engine surface the subledger state machines
// consume. Every monetary event reaches the ledger through it.
type PostingEngineSvc interface {
	// FindPostedJournalForSource implements idempotency by source: it returns
	// the existing POSTED journal for (sourceType, sourceID), nil when none
	// exists, or ErrConflict when a journal exists but is not POSTED (a prior
	// partial failure needing manual intervention).
	FindPostedJournalForSource(ctx context.Context, tenantID string, sourceType domain.SourceType, sourceID string) (*domain.JournalEntry, error)
	// PrepareSourceJournal validates the spec and returns a POSTED-status
	// journal plus its lines, ready for the document repository to persist in
	// the same transaction as the document status change.
	PrepareSourceJournal(ctx context.Context, caller domain.Caller, spec SourceJournalSpec) (*domain.JournalEntry, []domain.JournalLine, error)
	// BuildReversalJournal builds the exact debit/credit mirror of a posted
	// journal as a new REVERSING journal dated on the given date.
	BuildReversalJournal(ctx context.Context, caller domain.Caller, original domain.JournalEntry, journalDate time.Time, description string) (*domain.JournalEntry, []domain.JournalLine, error)
}

// JournalSvcFacade is the full journal service surface, including the manual
// journal operations exposed over HTTP.
type JournalSvcFacade interface {
	PostingEngineSvc
	CreateJournal(ctx context.Context, caller domain.Caller, req dto.CreateJournalRequest) (*domain.JournalEntry, error)
	PostJournal(ctx context.Context, caller domain.Caller, journalID string) (*domain.JournalEntry, error)
	GetJournalByID(ctx context.Context, caller domain.Caller, journalID string) (*domain.JournalEntry, error)
	ListJournals(ctx context.Context, caller domain.Caller, limit, offset int) ([]domain.JournalEntry, error)
}
