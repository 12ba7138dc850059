package repositories

import (
	"context"

	"github.com/finledger/fin_ledger_app/internal/core/domain"
)

// BudgetRepositoryFacade defines read operations for budgets and the posted
// actuals the variance engine compares them against.
type BudgetRepositoryFacade interface {
	SaveBudget(ctx context.Context, budget domain.Budget, revision domain.BudgetRevision, lines []domain.BudgetLine) error
	// FindActiveBudget returns the single ACTIVE budget for the fiscal year.
	FindActiveBudget(ctx context.Context, tenantID string, fiscalYear int) (*domain.Budget, error)
	// FindLatestRevision returns the highest-numbered revision of a budget.
	FindLatestRevision(ctx context.Context, budgetID string) (*domain.BudgetRevision, error)
	// FindBudgetLines returns the revision's lines restricted to the given periods.
	FindBudgetLines(ctx context.Context, revisionID string, periodIDs []string) ([]domain.BudgetLine, error)
	// GetActuals sums posted journal-line debit/credit grouped by
	// (account, period) for the given periods.
	GetActuals(ctx context.Context, tenantID string, periodIDs []string) ([]domain.ActualAmount, error)
}
