package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/finledger/fin_ledger_app/internal/apperrors"
	"github.com/finledger/fin_ledger_app/internal/core/domain"
	portsrepo "github.com/finledger/fin_ledger_app/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxTenantConfigRepository struct {
	BaseRepository
}

// newPgxTenantConfigRepository creates a new repository for per-tenant
// control-account configuration.
func newPgxTenantConfigRepository(pool *pgxpool.Pool) portsrepo.TenantConfigRepositoryFacade {
	return &PgxTenantConfigRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.TenantConfigRepositoryFacade = (*PgxTenantConfigRepository)(nil)

func (r *PgxTenantConfigRepository) SaveTenantConfig(ctx context.Context, config domain.TenantConfig) error {
	query := `
		INSERT INTO tenant_configs (tenant_id, ar_control_account_id, ap_control_account_id, bank_clearing_account_id, cash_clearing_account_id, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (tenant_id) DO UPDATE SET
			ar_control_account_id = EXCLUDED.ar_control_account_id,
			ap_control_account_id = EXCLUDED.ap_control_account_id,
			bank_clearing_account_id = EXCLUDED.bank_clearing_account_id,
			cash_clearing_account_id = EXCLUDED.cash_clearing_account_id,
			last_updated_at = EXCLUDED.last_updated_at,
			last_updated_by = EXCLUDED.last_updated_by;
	`
	_, err := r.Pool.Exec(ctx, query,
		config.TenantID, config.ARControlAccountID, config.APControlAccountID,
		config.BankClearingAccountID, config.CashClearingAccountID,
		config.CreatedAt, config.CreatedBy, config.LastUpdatedAt, config.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert tenant config for %s: %w", config.TenantID, err)
	}
	return nil
}

func (r *PgxTenantConfigRepository) FindTenantConfig(ctx context.Context, tenantID string) (*domain.TenantConfig, error) {
	query := `
		SELECT tenant_id, ar_control_account_id, ap_control_account_id, bank_clearing_account_id, cash_clearing_account_id, created_at, created_by, last_updated_at, last_updated_by
		FROM tenant_configs WHERE tenant_id = $1;
	`
	var c domain.TenantConfig
	err := r.Pool.QueryRow(ctx, query, tenantID).Scan(
		&c.TenantID, &c.ARControlAccountID, &c.APControlAccountID,
		&c.BankClearingAccountID, &c.CashClearingAccountID,
		&c.CreatedAt, &c.CreatedBy, &c.LastUpdatedAt, &c.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("tenant config for %s: %w", tenantID, apperrors.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find tenant config for %s: %w", tenantID, err)
	}
	return &c, nil
}
