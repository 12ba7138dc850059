package repositories

import (
	"context"

	"github.com/finledger/fin_ledger_app/internal/core/domain"
)

// AuditRepositoryFacade is the append-only audit sink.
type AuditRepositoryFacade interface {
	SaveAuditEvent(ctx context.Context, event domain.AuditEvent) error
}
