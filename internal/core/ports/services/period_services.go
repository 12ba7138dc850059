package services

import (
	"context"
	"time"

	"github.com/finledger/fin_ledger_app/internal/core/domain"
)

// PeriodGuardSvcFacade resolves accounting periods and asserts postability.
type PeriodGuardSvcFacade interface {
	// ResolvePeriod finds the period covering the date, or ErrNotFound.
	ResolvePeriod(ctx context.Context, tenantID string, date time.Time) (*domain.AccountingPeriod, error)
	// AssertPostable resolves the period for the date and fails with
	// ErrPolicyBlocked (or ErrNotFound for a missing period) unless it accepts
	// operational postings. Every failure is audit-logged with its specific
	// reason before returning, tagged with the given action.
	AssertPostable(ctx context.Context, tenantID string, date time.Time, action domain.PeriodAction, actorUserID, entityType, entityID string) (*domain.AccountingPeriod, error)
}
