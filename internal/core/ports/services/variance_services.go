package services

import (
	"context"

	"github.com/finledger/fin_ledger_app/internal/core/domain"
	"github.com/finledger/fin_ledger_app/internal/dto"
)

// VarianceSvcFacade is the read-side budget-vs-actual engine.
type VarianceSvcFacade interface {
	// BudgetVariance compares the ACTIVE budget's latest revision against
	// posted actuals for the requested date range. The range must be covered
	// by contiguous periods; any gap fails fast rather than under-reporting.
	BudgetVariance(ctx context.Context, caller domain.Caller, req dto.BudgetVarianceRequest) ([]domain.VarianceRow, error)
}
