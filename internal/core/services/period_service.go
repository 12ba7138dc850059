package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/finledger/fin_ledger_app/internal/apperrors"
	"github.com/finledger/fin_ledger_app/internal/core/domain"
	portsrepo "github.com/finledger/fin_ledger_app/internal/core/ports/repositories"
	portssvc "github.com/finledger/fin_ledger_app/internal/core/ports/services"
)

var (
	// ErrNoPeriodConfigured means no accounting period covers the date.
	ErrNoPeriodConfigured = fmt.Errorf("%w: no accounting period configured for date", apperrors.ErrNotFound)
	// ErrPeriodNotOpen means the resolved period does not have status OPEN.
	ErrPeriodNotOpen = fmt.Errorf("%w: accounting period is not open", apperrors.ErrPolicyBlocked)
	// ErrOpeningBalancesBlocked means the date resolves to the reserved
	// Opening Balances period, which never accepts operational documents.
	ErrOpeningBalancesBlocked = fmt.Errorf("%w: operational documents cannot post into the Opening Balances period", apperrors.ErrPolicyBlocked)
	// ErrCutoverLocked means the date falls before the cutover date set by a
	// closed Opening Balances period.
	ErrCutoverLocked = fmt.Errorf("%w: date is before the opening-balances cutover", apperrors.ErrPolicyBlocked)
)

// periodService resolves accounting periods and asserts postability. Every
// rejection is audit-logged with its specific reason before the caller sees
// the error, producing a complete trail of why any document did not post.
type periodService struct {
	BaseService
	periodRepo portsrepo.PeriodRepositoryFacade
	auditSvc   portssvc.AuditSvcFacade
}

// NewPeriodService creates a new accounting period guard.
func NewPeriodService(periodRepo portsrepo.PeriodRepositoryFacade, auditSvc portssvc.AuditSvcFacade) portssvc.PeriodGuardSvcFacade {
	return &periodService{periodRepo: periodRepo, auditSvc: auditSvc}
}

var _ portssvc.PeriodGuardSvcFacade = (*periodService)(nil)

// ResolvePeriod finds the period covering the date for the tenant.
func (s *periodService) ResolvePeriod(ctx context.Context, tenantID string, date time.Time) (*domain.AccountingPeriod, error) {
	period, err := s.periodRepo.FindPeriodForDate(ctx, tenantID, date)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, ErrNoPeriodConfigured
		}
		return nil, fmt.Errorf("failed to resolve accounting period: %w", err)
	}
	return period, nil
}

// AssertPostable resolves the period for the date and verifies it accepts
// operational postings under the given action tag.
func (s *periodService) AssertPostable(ctx context.Context, tenantID string, date time.Time, action domain.PeriodAction, actorUserID, entityType, entityID string) (*domain.AccountingPeriod, error) {
	period, err := s.ResolvePeriod(ctx, tenantID, date)
	if err != nil {
		if errors.Is(err, ErrNoPeriodConfigured) {
			s.auditBlocked(ctx, tenantID, action, actorUserID, entityType, entityID,
				fmt.Sprintf("no accounting period configured for %s", date.Format("2006-01-02")))
		}
		return nil, err
	}

	if !period.IsPostable() {
		s.auditBlocked(ctx, tenantID, action, actorUserID, entityType, entityID,
			fmt.Sprintf("period %q has status %s", period.Name, period.Status))
		return nil, fmt.Errorf("%w: period %s has status %s", ErrPeriodNotOpen, period.Name, period.Status)
	}

	if period.IsOpeningBalances() {
		s.auditBlocked(ctx, tenantID, action, actorUserID, entityType, entityID,
			fmt.Sprintf("period %q is the reserved Opening Balances period", period.Name))
		return nil, fmt.Errorf("%w (period %s)", ErrOpeningBalancesBlocked, period.Name)
	}

	// Cutover: once a later Opening Balances period is CLOSED, nothing
	// operational may post before its start date.
	ob, err := s.periodRepo.FindOpeningBalancesPeriod(ctx, tenantID)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up opening balances period: %w", err)
	}
	if ob != nil && ob.Status == domain.PeriodClosed && date.Before(ob.StartDate) {
		s.auditBlocked(ctx, tenantID, action, actorUserID, entityType, entityID,
			fmt.Sprintf("date %s is before cutover %s set by closed period %q",
				date.Format("2006-01-02"), ob.StartDate.Format("2006-01-02"), ob.Name))
		return nil, fmt.Errorf("%w: cutover is %s", ErrCutoverLocked, ob.StartDate.Format("2006-01-02"))
	}

	s.LogDebug(ctx, "Period postable",
		slog.String("tenant_id", tenantID),
		slog.String("period", period.Name),
		slog.String("action", string(action)))
	return period, nil
}

func (s *periodService) auditBlocked(ctx context.Context, tenantID string, action domain.PeriodAction, actorUserID, entityType, entityID, reason string) {
	s.auditSvc.Record(ctx, domain.AuditEvent{
		TenantID:    tenantID,
		EventType:   "PERIOD_GUARD",
		EntityType:  entityType,
		EntityID:    entityID,
		Action:      string(action),
		Outcome:     domain.AuditBlocked,
		Reason:      reason,
		ActorUserID: actorUserID,
	})
}
