package services

import (
	"context"

	"github.com/finledger/fin_ledger_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// TaxValidatorSvcFacade validates a document's tax lines against its net
// amount and the expected rate direction.
type TaxValidatorSvcFacade interface {
	// ValidateTaxLines checks that every referenced rate exists, is active and
	// matches expectedRateType; that taxable amounts sum to netAmount; and
	// that each line's tax equals taxable x rate, all at 2 decimals. An empty
	// line list is a valid untaxed document with zero total tax.
	ValidateTaxLines(ctx context.Context, tenantID string, sourceType domain.SourceType, expectedRateType domain.TaxRateType, netAmount decimal.Decimal, lines []domain.TaxLine) (*domain.TaxSummary, error)
}
