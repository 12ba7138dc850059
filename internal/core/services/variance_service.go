package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/finledger/fin_ledger_app/internal/apperrors"
	"github.com/finledger/fin_ledger_app/internal/core/domain"
	portsrepo "github.com/finledger/fin_ledger_app/internal/core/ports/repositories"
	portssvc "github.com/finledger/fin_ledger_app/internal/core/ports/services"
	"github.com/finledger/fin_ledger_app/internal/dto"
	"github.com/finledger/fin_ledger_app/internal/utils/money"
	"github.com/shopspring/decimal"
)

var (
	// ErrInvalidDateRange indicates a variance request whose from date is
	// after its to date.
	ErrInvalidDateRange = fmt.Errorf("%w: from date must not be after to date", apperrors.ErrValidation)
	// ErrPeriodGapInRange indicates a requested range not fully covered by
	// contiguous periods.
	ErrPeriodGapInRange = fmt.Errorf("%w: requested range is not covered by contiguous periods", apperrors.ErrValidation)
	// ErrNoActiveBudget indicates no ACTIVE budget exists for the fiscal year.
	ErrNoActiveBudget = fmt.Errorf("%w: no active budget for fiscal year", apperrors.ErrNotFound)
)

var (
	varianceWarnFloor = decimal.NewFromInt(90)  // pct above this is WARN
	varianceOverFloor = decimal.NewFromInt(100) // pct above this is OVER
	hundred           = decimal.NewFromInt(100)
)

// varianceService is the read-side budget-vs-actual engine.
type varianceService struct {
	BaseService
	budgetRepo portsrepo.BudgetRepositoryFacade
	periodRepo portsrepo.PeriodRepositoryFacade
}

// NewVarianceService creates the budget variance service.
func NewVarianceService(budgetRepo portsrepo.BudgetRepositoryFacade, periodRepo portsrepo.PeriodRepositoryFacade) portssvc.VarianceSvcFacade {
	return &varianceService{budgetRepo: budgetRepo, periodRepo: periodRepo}
}

var _ portssvc.VarianceSvcFacade = (*varianceService)(nil)

func (s *varianceService) BudgetVariance(ctx context.Context, caller domain.Caller, req dto.BudgetVarianceRequest) ([]domain.VarianceRow, error) {
	if err := s.RequirePermission(ctx, caller, domain.PermBudgetRead); err != nil {
		return nil, err
	}
	if req.FromDate.After(req.ToDate) {
		return nil, ErrInvalidDateRange
	}

	periods, err := s.periodRepo.ListPeriodsOverlappingRange(ctx, caller.TenantID, req.FromDate, req.ToDate)
	if err != nil {
		return nil, fmt.Errorf("failed to list periods: %w", err)
	}
	if err := assertContiguousCoverage(periods, req.FromDate, req.ToDate); err != nil {
		return nil, err
	}
	periodIDs := make([]string, len(periods))
	for i, p := range periods {
		periodIDs[i] = p.PeriodID
	}

	budget, err := s.budgetRepo.FindActiveBudget(ctx, caller.TenantID, req.FiscalYear)
	if err != nil {
		return nil, fmt.Errorf("fiscal year %d: %w", req.FiscalYear, ErrNoActiveBudget)
	}
	revision, err := s.budgetRepo.FindLatestRevision(ctx, budget.BudgetID)
	if err != nil {
		return nil, fmt.Errorf("failed to find latest revision of budget %s: %w", budget.BudgetID, err)
	}
	budgetLines, err := s.budgetRepo.FindBudgetLines(ctx, revision.RevisionID, periodIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load budget lines: %w", err)
	}
	actuals, err := s.budgetRepo.GetActuals(ctx, caller.TenantID, periodIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load actuals: %w", err)
	}

	type cell struct{ accountID, periodID string }
	budgetByCell := make(map[cell]decimal.Decimal, len(budgetLines))
	for _, bl := range budgetLines {
		key := cell{bl.AccountID, bl.PeriodID}
		budgetByCell[key] = budgetByCell[key].Add(bl.Amount)
	}
	actualByCell := make(map[cell]decimal.Decimal, len(actuals))
	for _, a := range actuals {
		key := cell{a.AccountID, a.PeriodID}
		actualByCell[key] = actualByCell[key].Add(signedActual(a))
	}

	cells := make([]cell, 0, len(budgetByCell)+len(actualByCell))
	seen := make(map[cell]struct{}, len(budgetByCell)+len(actualByCell))
	for key := range budgetByCell {
		seen[key] = struct{}{}
		cells = append(cells, key)
	}
	for key := range actualByCell {
		if _, ok := seen[key]; !ok {
			cells = append(cells, key)
		}
	}
	sort.Slice(cells, func(i, j int) bool {
		if cells[i].periodID != cells[j].periodID {
			return cells[i].periodID < cells[j].periodID
		}
		return cells[i].accountID < cells[j].accountID
	})

	rows := make([]domain.VarianceRow, 0, len(cells))
	for _, key := range cells {
		budgetAmount := money.Round2(budgetByCell[key])
		actualAmount := money.Round2(actualByCell[key])
		row := domain.VarianceRow{
			AccountID: key.accountID,
			PeriodID:  key.periodID,
			Budget:    budgetAmount,
			Actual:    actualAmount,
			Variance:  actualAmount.Sub(budgetAmount),
		}
		row.VariancePct, row.Status = classifyVariance(budgetAmount, actualAmount)
		rows = append(rows, row)
	}
	return rows, nil
}

// signedActual converts raw debit/credit totals into the reporting sign for
// the account type: income accounts report credit minus debit, everything
// else debit minus credit.
func signedActual(a domain.ActualAmount) decimal.Decimal {
	if a.AccountType == domain.Income {
		return a.Credit.Sub(a.Debit)
	}
	return a.Debit.Sub(a.Credit)
}

// classifyVariance applies the OK/WARN/OVER thresholds to the actual-to-budget
// usage ratio and reports the percentage as variance/budget. A zero budget
// yields no percentage: zero actual is OK, any other actual is OVER.
func classifyVariance(budget, actual decimal.Decimal) (*decimal.Decimal, domain.VarianceStatus) {
	if budget.IsZero() {
		if actual.IsZero() {
			return nil, domain.VarianceOK
		}
		return nil, domain.VarianceOver
	}
	usage := money.Round2(actual.Div(budget).Mul(hundred))
	pct := money.Round2(actual.Sub(budget).Div(budget).Mul(hundred))
	switch {
	case usage.GreaterThan(varianceOverFloor):
		return &pct, domain.VarianceOver
	case usage.GreaterThan(varianceWarnFloor):
		return &pct, domain.VarianceWarn
	default:
		return &pct, domain.VarianceOK
	}
}

// assertContiguousCoverage checks the ordered periods fully cover [from, to]
// with no gap between consecutive periods.
func assertContiguousCoverage(periods []domain.AccountingPeriod, from, to time.Time) error {
	if len(periods) == 0 {
		return fmt.Errorf("no periods between %s and %s: %w",
			from.Format("2006-01-02"), to.Format("2006-01-02"), ErrPeriodGapInRange)
	}
	if periods[0].StartDate.After(from) || periods[len(periods)-1].EndDate.Before(to) {
		return fmt.Errorf("periods do not span %s to %s: %w",
			from.Format("2006-01-02"), to.Format("2006-01-02"), ErrPeriodGapInRange)
	}
	for i := 1; i < len(periods); i++ {
		expectedStart := periods[i-1].EndDate.AddDate(0, 0, 1)
		if !periods[i].StartDate.Equal(expectedStart) {
			return fmt.Errorf("gap after period %s: %w", periods[i-1].Name, ErrPeriodGapInRange)
		}
	}
	return nil
}
