package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/finledger/fin_ledger_app/internal/core/domain"
	portsrepo "github.com/finledger/fin_ledger_app/internal/core/ports/repositories"
	portssvc "github.com/finledger/fin_ledger_app/internal/core/ports/services"
	"github.com/google/uuid"
)

// auditService writes the append-only audit trail. Writes are best-effort:
// a failed insert is logged and swallowed so it can never block the primary
// transaction.
type auditService struct {
	BaseService
	auditRepo portsrepo.AuditRepositoryFacade
}

// NewAuditService creates a new audit service.
func NewAuditService(auditRepo portsrepo.AuditRepositoryFacade) portssvc.AuditSvcFacade {
	return &auditService{auditRepo: auditRepo}
}

var _ portssvc.AuditSvcFacade = (*auditService)(nil)

func (s *auditService) Record(ctx context.Context, event domain.AuditEvent) {
	if event.EventID == "" {
		event.EventID = uuid.NewString()
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}
	if err := s.auditRepo.SaveAuditEvent(ctx, event); err != nil {
		s.LogError(ctx, err, "Failed to write audit event",
			slog.String("tenant_id", event.TenantID),
			slog.String("event_type", event.EventType),
			slog.String("entity_id", event.EntityID),
			slog.String("reason", event.Reason))
	}
}
