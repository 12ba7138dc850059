package repositories

import (
	"context"

	"github.com/finledger/fin_ledger_app/internal/core/domain"
)

// TenantConfigRepositoryFacade resolves the per-tenant control-account mapping.
type TenantConfigRepositoryFacade interface {
	SaveTenantConfig(ctx context.Context, config domain.TenantConfig) error
	FindTenantConfig(ctx context.Context, tenantID string) (*domain.TenantConfig, error)
}
