package repositories

import (
	"context"

	"github.com/finledger/fin_ledger_app/internal/core/domain"
)

// BankMatchRepositoryFacade defines persistence operations for bank
// reconciliation matches.
type BankMatchRepositoryFacade interface {
	SaveMatch(ctx context.Context, match domain.BankMatch) error
	FindMatchByID(ctx context.Context, tenantID, matchID string) (*domain.BankMatch, error)
	UpdateMatchStatus(ctx context.Context, match domain.BankMatch, expected domain.DocumentStatus) error
	MarkMatchPosted(ctx context.Context, match domain.BankMatch, journal domain.JournalEntry, lines []domain.JournalLine) error
}
