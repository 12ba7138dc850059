package services

import (
	"context"

	"github.com/finledger/fin_ledger_app/internal/core/domain"
)

// AuditSvcFacade is the append-only audit sink. Record is best-effort: a
// failed write is logged and swallowed, never blocking the primary operation.
type AuditSvcFacade interface {
	Record(ctx context.Context, event domain.AuditEvent)
}
