package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/finledger/fin_ledger_app/internal/apperrors"
	"github.com/finledger/fin_ledger_app/internal/core/domain"
	portsrepo "github.com/finledger/fin_ledger_app/internal/core/ports/repositories"
	portssvc "github.com/finledger/fin_ledger_app/internal/core/ports/services"
	"github.com/finledger/fin_ledger_app/internal/utils/money"
	"github.com/shopspring/decimal"
)

var (
	// ErrInvalidTaxRate means a referenced rate is missing, inactive, or has
	// the wrong direction for the document (INPUT for AP, OUTPUT for AR).
	ErrInvalidTaxRate = fmt.Errorf("%w: invalid tax rate", apperrors.ErrValidation)
	// ErrTaxableAmountMismatch means the taxable amounts do not sum to the
	// document's net amount.
	ErrTaxableAmountMismatch = fmt.Errorf("%w: taxable amounts do not equal net amount", apperrors.ErrValidation)
	// ErrTaxAmountMismatch means a line's tax amount is not taxable x rate.
	ErrTaxAmountMismatch = fmt.Errorf("%w: tax amount does not match taxable amount times rate", apperrors.ErrValidation)
)

// taxService validates a document's tax lines. The same validation runs at
// submit time on the request and again at post time on the persisted lines,
// guarding against data drift between the two.
type taxService struct {
	BaseService
	taxRepo portsrepo.TaxRepositoryFacade
}

// NewTaxService creates a new tax integrity validator.
func NewTaxService(taxRepo portsrepo.TaxRepositoryFacade) portssvc.TaxValidatorSvcFacade {
	return &taxService{taxRepo: taxRepo}
}

var _ portssvc.TaxValidatorSvcFacade = (*taxService)(nil)

func (s *taxService) ValidateTaxLines(ctx context.Context, tenantID string, sourceType domain.SourceType, expectedRateType domain.TaxRateType, netAmount decimal.Decimal, lines []domain.TaxLine) (*domain.TaxSummary, error) {
	// An untaxed document is valid and carries zero tax.
	if len(lines) == 0 {
		return &domain.TaxSummary{TotalTax: decimal.Zero}, nil
	}

	rateIDs := make([]string, 0, len(lines))
	for _, l := range lines {
		rateIDs = append(rateIDs, l.TaxRateID)
	}
	rates, err := s.taxRepo.FindTaxRatesByIDs(ctx, tenantID, uniqueStrings(rateIDs))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch tax rates: %w", err)
	}

	// Rule (a): every referenced rate exists, is active, and points the right way.
	for _, line := range lines {
		rate, found := rates[line.TaxRateID]
		if !found {
			return nil, fmt.Errorf("%w: rate %s not found", ErrInvalidTaxRate, line.TaxRateID)
		}
		if !rate.IsActive {
			return nil, fmt.Errorf("%w: rate %s is inactive", ErrInvalidTaxRate, line.TaxRateID)
		}
		if rate.RateType != expectedRateType {
			return nil, fmt.Errorf("%w: rate %s is %s, expected %s for %s",
				ErrInvalidTaxRate, line.TaxRateID, rate.RateType, expectedRateType, sourceType)
		}
	}

	// Rule (b): taxable amounts sum to the document's net amount.
	taxableSum := decimal.Zero
	for _, line := range lines {
		taxableSum = taxableSum.Add(line.TaxableAmount)
	}
	if !money.EqualRounded(taxableSum, netAmount) {
		return nil, fmt.Errorf("%w: taxable sum %s vs net %s",
			ErrTaxableAmountMismatch, money.Round2(taxableSum).String(), money.Round2(netAmount).String())
	}

	// Rule (c): each line's tax equals taxable x rate at 2 decimals.
	totalTax := decimal.Zero
	byControlAccount := make(map[string]decimal.Decimal)
	for _, line := range lines {
		rate := rates[line.TaxRateID]
		expectedTax := money.Round2(line.TaxableAmount.Mul(rate.Rate).Div(decimal.NewFromInt(100)))
		if !expectedTax.Equal(money.Round2(line.TaxAmount)) {
			return nil, fmt.Errorf("%w: rate %s taxable %s expects tax %s, got %s",
				ErrTaxAmountMismatch, line.TaxRateID, line.TaxableAmount.String(), expectedTax.String(), line.TaxAmount.String())
		}
		totalTax = totalTax.Add(money.Round2(line.TaxAmount))
		byControlAccount[rate.GLAccountID] = byControlAccount[rate.GLAccountID].Add(money.Round2(line.TaxAmount))
	}

	// Deterministic ordering so journals built from the summary are stable.
	accountIDs := make([]string, 0, len(byControlAccount))
	for id := range byControlAccount {
		accountIDs = append(accountIDs, id)
	}
	sort.Strings(accountIDs)

	summary := &domain.TaxSummary{TotalTax: money.Round2(totalTax)}
	for _, id := range accountIDs {
		summary.ControlTotals = append(summary.ControlTotals, domain.TaxControlTotal{
			GLAccountID: id,
			TaxAmount:   byControlAccount[id],
		})
	}

	s.LogDebug(ctx, "Tax lines validated",
		slog.String("tenant_id", tenantID),
		slog.String("source_type", string(sourceType)),
		slog.Int("line_count", len(lines)),
		slog.String("total_tax", summary.TotalTax.String()))
	return summary, nil
}

// uniqueStrings returns a slice containing only the unique strings from the input.
func uniqueStrings(input []string) []string {
	seen := make(map[string]struct{}, len(input))
	result := make([]string, 0, len(input))
	for _, str := range input {
		if _, ok := seen[str]; !ok {
			seen[str] = struct{}{}
			result = append(result, str)
		}
	}
	return result
}
