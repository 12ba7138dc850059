package repositories

import (
	"context"
	"time"

	"github.com/finledger/fin_ledger_app/internal/core/domain"
)

// PeriodRepositoryFacade defines persistence operations for accounting periods.
type PeriodRepositoryFacade interface {
	SavePeriod(ctx context.Context, period domain.AccountingPeriod) error
	// FindPeriodForDate resolves the period whose range covers the date.
	// Returns ErrNotFound when no period is configured for the date.
	FindPeriodForDate(ctx context.Context, tenantID string, date time.Time) (*domain.AccountingPeriod, error)
	// FindOpeningBalancesPeriod returns the tenant's reserved cutover period,
	// or ErrNotFound when none is configured.
	FindOpeningBalancesPeriod(ctx context.Context, tenantID string) (*domain.AccountingPeriod, error)
	// ListPeriodsOverlappingRange returns periods overlapping [from, to],
	// ordered by start date.
	ListPeriodsOverlappingRange(ctx context.Context, tenantID string, from, to time.Time) ([]domain.AccountingPeriod, error)
	UpdatePeriodStatus(ctx context.Context, tenantID, periodID string, status domain.PeriodStatus, updatedBy string, updatedAt time.Time) error
}
