package repositories

import (
	"context"

	"github.com/finledger/fin_ledger_app/internal/core/domain"
)

// TaxRepositoryFacade defines persistence operations for tax rates and the
// tax lines attached to subledger documents.
type TaxRepositoryFacade interface {
	SaveTaxRate(ctx context.Context, rate domain.TaxRate) error
	// FindTaxRatesByIDs returns the rates found keyed by id.
	FindTaxRatesByIDs(ctx context.Context, tenantID string, rateIDs []string) (map[string]domain.TaxRate, error)
	// FindTaxLinesForSource returns the persisted tax lines of a document.
	// Post-time validation runs against these, not the original request.
	FindTaxLinesForSource(ctx context.Context, tenantID string, sourceType domain.SourceType, sourceID string) ([]domain.TaxLine, error)
}
