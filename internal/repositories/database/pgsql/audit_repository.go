package pgsql

import (
	"context"
	"fmt"

	"github.com/finledger/fin_ledger_app/internal/core/domain"
	portsrepo "github.com/finledger/fin_ledger_app/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxAuditRepository struct {
	BaseRepository
}

// newPgxAuditRepository creates a new repository for the append-only audit
// trail.
func newPgxAuditRepository(pool *pgxpool.Pool) portsrepo.AuditRepositoryFacade {
	return &PgxAuditRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.AuditRepositoryFacade = (*PgxAuditRepository)(nil)

func (r *PgxAuditRepository) SaveAuditEvent(ctx context.Context, event domain.AuditEvent) error {
	query := `
		INSERT INTO audit_events (event_id, tenant_id, event_type, entity_type, entity_id, action, outcome, reason, actor_user_id, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
	`
	_, err := r.Pool.Exec(ctx, query,
		event.EventID, event.TenantID, event.EventType, event.EntityType, event.EntityID,
		event.Action, event.Outcome, event.Reason, event.ActorUserID, event.OccurredAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert audit event %s: %w", event.EventID, err)
	}
	return nil
}
