package dto

import (
	"time"

	"github.com/finledger/fin_ledger_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// BudgetVarianceRequest defines the date range and fiscal year to report on.
type BudgetVarianceRequest struct {
	FiscalYear int       `json:"fiscalYear" binding:"required"`
	FromDate   time.Time `json:"fromDate" binding:"required"`
	ToDate     time.Time `json:"toDate" binding:"required"`
}

// VarianceRowResponse is one row of the budget-vs-actual report.
type VarianceRowResponse struct {
	AccountID   string                `json:"accountID"`
	PeriodID    string                `json:"periodID"`
	Budget      decimal.Decimal       `json:"budget"`
	Actual      decimal.Decimal       `json:"actual"`
	Variance    decimal.Decimal       `json:"variance"`
	VariancePct *decimal.Decimal      `json:"variancePct,omitempty"`
	Status      domain.VarianceStatus `json:"status"`
}

// ToVarianceRowResponses converts domain variance rows.
func ToVarianceRowResponses(rows []domain.VarianceRow) []VarianceRowResponse {
	responses := make([]VarianceRowResponse, len(rows))
	for i, r := range rows {
		responses[i] = VarianceRowResponse{
			AccountID:   r.AccountID,
			PeriodID:    r.PeriodID,
			Budget:      r.Budget,
			Actual:      r.Actual,
			Variance:    r.Variance,
			VariancePct: r.VariancePct,
			Status:      r.Status,
		}
	}
	return responses
}
