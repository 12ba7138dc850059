package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/finledger/fin_ledger_app/internal/apperrors"
	"github.com/finledger/fin_ledger_app/internal/core/domain"
	portsrepo "github.com/finledger/fin_ledger_app/internal/core/ports/repositories"
	portssvc "github.com/finledger/fin_ledger_app/internal/core/ports/services"
	"github.com/google/uuid"
)

// SoDViolationError reports a segregation-of-duties conflict: the caller tried
// to exercise Attempted while holding Conflicting.
type SoDViolationError struct {
	Attempted   string
	Conflicting string
}

func (e *SoDViolationError) Error() string {
	return fmt.Sprintf("segregation of duties violation: %s conflicts with held permission %s", e.Attempted, e.Conflicting)
}

func (e *SoDViolationError) Unwrap() error {
	return apperrors.ErrPolicyBlocked
}

// sodService evaluates tenant-scoped forbidden permission pairs. Rules are
// evaluated per tenant only; a user's permissions in another tenant are never
// consulted.
type sodService struct {
	BaseService
	sodRepo  portsrepo.SoDRepositoryFacade
	auditSvc portssvc.AuditSvcFacade
}

// NewSoDService creates a new segregation-of-duties guard.
func NewSoDService(sodRepo portsrepo.SoDRepositoryFacade, auditSvc portssvc.AuditSvcFacade) portssvc.SoDGuardSvcFacade {
	return &sodService{sodRepo: sodRepo, auditSvc: auditSvc}
}

var _ portssvc.SoDGuardSvcFacade = (*sodService)(nil)

func (s *sodService) CheckAndEnforce(ctx context.Context, tenantID, userID, action string, required, granted []string) error {
	if len(required) == 0 {
		return nil
	}

	rules, err := s.sodRepo.FindRulesForPermissions(ctx, tenantID, required)
	if err != nil {
		return fmt.Errorf("failed to fetch SoD rules: %w", err)
	}
	if len(rules) == 0 {
		return nil
	}

	heldSet := make(map[string]struct{}, len(granted))
	for _, p := range granted {
		heldSet[p] = struct{}{}
	}

	for _, attempted := range required {
		for _, rule := range rules {
			for held := range heldSet {
				// Exercising a permission never conflicts with itself.
				if held == attempted {
					continue
				}
				if !rule.Conflicts(attempted, held) {
					continue
				}
				violation := domain.SoDViolation{
					ViolationID:           uuid.NewString(),
					TenantID:              tenantID,
					UserID:                userID,
					AttemptedPermission:   attempted,
					ConflictingPermission: held,
					RuleID:                rule.RuleID,
					Action:                action,
					OccurredAt:            time.Now().UTC(),
				}
				if saveErr := s.sodRepo.SaveViolation(ctx, violation); saveErr != nil {
					// The violation log is append-only evidence; losing a row
					// must not let the action through, so keep rejecting.
					s.LogError(ctx, saveErr, "Failed to persist SoD violation",
						slog.String("tenant_id", tenantID),
						slog.String("user_id", userID))
				}
				s.auditSvc.Record(ctx, domain.AuditEvent{
					TenantID:    tenantID,
					EventType:   "SOD_GUARD",
					EntityType:  "permission",
					EntityID:    attempted,
					Action:      action,
					Outcome:     domain.AuditBlocked,
					Reason:      fmt.Sprintf("rule %s forbids %s with held %s", rule.RuleID, attempted, held),
					ActorUserID: userID,
				})
				s.LogWarn(ctx, "SoD conflict blocked",
					slog.String("tenant_id", tenantID),
					slog.String("user_id", userID),
					slog.String("attempted", attempted),
					slog.String("conflicting", held))
				return &SoDViolationError{Attempted: attempted, Conflicting: held}
			}
		}
	}
	return nil
}
