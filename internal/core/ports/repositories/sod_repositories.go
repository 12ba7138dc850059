package repositories

import (
	"context"

	"github.com/finledger/fin_ledger_app/internal/core/domain"
)

// SoDRepositoryFacade defines persistence operations for segregation-of-duties
// rules and the append-only violation log.
type SoDRepositoryFacade interface {
	SaveRule(ctx context.Context, rule domain.SoDRule) error
	// FindRulesForPermissions returns the tenant's rules that mention any of
	// the given permissions on either side of the pair.
	FindRulesForPermissions(ctx context.Context, tenantID string, permissions []string) ([]domain.SoDRule, error)
	SaveViolation(ctx context.Context, violation domain.SoDViolation) error
}
