package repositories

import (
	"context"

	"github.com/finledger/fin_ledger_app/internal/core/domain"
)

// AccountRepositoryFacade defines persistence operations for GL accounts.
// All lookups are tenant-scoped; an account outside the tenant is ErrNotFound.
type AccountRepositoryFacade interface {
	SaveAccount(ctx context.Context, account domain.Account) error
	FindAccountByID(ctx context.Context, tenantID, accountID string) (*domain.Account, error)
	// FindAccountsByIDs returns the accounts found keyed by id; callers decide
	// whether a missing id is an error.
	FindAccountsByIDs(ctx context.Context, tenantID string, accountIDs []string) (map[string]domain.Account, error)
	ListAccounts(ctx context.Context, tenantID string) ([]domain.Account, error)
}
