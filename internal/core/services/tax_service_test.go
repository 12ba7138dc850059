package services_test

import (
	"context"
	"testing"

	"github.com/finledger/fin_ledger_app/internal/apperrors"
	"github.com/finledger/fin_ledger_app/internal/core/domain"
	portssvc "github.com/finledger/fin_ledger_app/internal/core/ports/services"
	"github.com/finledger/fin_ledger_app/internal/core/services"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type TaxServiceTestSuite struct {
	suite.Suite
	mockTaxRepo *MockTaxRepository
	service     portssvc.TaxValidatorSvcFacade

	tenantID string
	rate15   domain.TaxRate
}

func (s *TaxServiceTestSuite) SetupTest() {
	s.mockTaxRepo = new(MockTaxRepository)
	s.service = services.NewTaxService(s.mockTaxRepo)
	s.tenantID = uuid.NewString()
	s.rate15 = domain.TaxRate{
		TaxRateID:   uuid.NewString(),
		TenantID:    s.tenantID,
		Name:        "VAT 15%",
		Rate:        decimal.NewFromInt(15),
		RateType:    domain.TaxInput,
		GLAccountID: uuid.NewString(),
		IsActive:    true,
	}
}

func (s *TaxServiceTestSuite) line(rateID string, taxable, tax string) domain.TaxLine {
	return domain.TaxLine{
		TaxLineID:     uuid.NewString(),
		TenantID:      s.tenantID,
		SourceType:    domain.SourceSupplierInvoice,
		SourceID:      uuid.NewString(),
		TaxRateID:     rateID,
		TaxableAmount: decimal.RequireFromString(taxable),
		TaxAmount:     decimal.RequireFromString(tax),
	}
}

func (s *TaxServiceTestSuite) TestValidateTaxLines_EmptyIsUntaxed() {
	ctx := context.Background()

	summary, err := s.service.ValidateTaxLines(ctx, s.tenantID, domain.SourceSupplierInvoice,
		domain.TaxInput, decimal.NewFromInt(1000), nil)

	s.Require().NoError(err)
	s.True(summary.TotalTax.IsZero())
	s.Empty(summary.ControlTotals)
	s.mockTaxRepo.AssertNotCalled(s.T(), "FindTaxRatesByIDs", mock.Anything, mock.Anything, mock.Anything)
}

func (s *TaxServiceTestSuite) TestValidateTaxLines_Success() {
	ctx := context.Background()
	lines := []domain.TaxLine{s.line(s.rate15.TaxRateID, "1000.00", "150.00")}
	rates := map[string]domain.TaxRate{s.rate15.TaxRateID: s.rate15}

	s.mockTaxRepo.On("FindTaxRatesByIDs", ctx, s.tenantID, []string{s.rate15.TaxRateID}).Return(rates, nil).Once()

	summary, err := s.service.ValidateTaxLines(ctx, s.tenantID, domain.SourceSupplierInvoice,
		domain.TaxInput, decimal.RequireFromString("1000.00"), lines)

	s.Require().NoError(err)
	s.True(summary.TotalTax.Equal(decimal.RequireFromString("150.00")))
	s.Require().Len(summary.ControlTotals, 1)
	s.Equal(s.rate15.GLAccountID, summary.ControlTotals[0].GLAccountID)
	s.True(summary.ControlTotals[0].TaxAmount.Equal(decimal.RequireFromString("150.00")))
	s.mockTaxRepo.AssertExpectations(s.T())
}

func (s *TaxServiceTestSuite) TestValidateTaxLines_UnknownRate() {
	ctx := context.Background()
	missingID := uuid.NewString()
	lines := []domain.TaxLine{s.line(missingID, "100.00", "15.00")}

	s.mockTaxRepo.On("FindTaxRatesByIDs", ctx, s.tenantID, []string{missingID}).
		Return(map[string]domain.TaxRate{}, nil).Once()

	_, err := s.service.ValidateTaxLines(ctx, s.tenantID, domain.SourceSupplierInvoice,
		domain.TaxInput, decimal.RequireFromString("100.00"), lines)

	s.Require().Error(err)
	s.ErrorIs(err, services.ErrInvalidTaxRate)
	s.ErrorIs(err, apperrors.ErrValidation)
}

func (s *TaxServiceTestSuite) TestValidateTaxLines_InactiveRate() {
	ctx := context.Background()
	inactive := s.rate15
	inactive.IsActive = false
	lines := []domain.TaxLine{s.line(inactive.TaxRateID, "100.00", "15.00")}

	s.mockTaxRepo.On("FindTaxRatesByIDs", ctx, s.tenantID, mock.Anything).
		Return(map[string]domain.TaxRate{inactive.TaxRateID: inactive}, nil).Once()

	_, err := s.service.ValidateTaxLines(ctx, s.tenantID, domain.SourceSupplierInvoice,
		domain.TaxInput, decimal.RequireFromString("100.00"), lines)

	s.Require().Error(err)
	s.ErrorIs(err, services.ErrInvalidTaxRate)
}

func (s *TaxServiceTestSuite) TestValidateTaxLines_WrongDirection() {
	ctx := context.Background()
	output := s.rate15
	output.RateType = domain.TaxOutput
	lines := []domain.TaxLine{s.line(output.TaxRateID, "100.00", "15.00")}

	s.mockTaxRepo.On("FindTaxRatesByIDs", ctx, s.tenantID, mock.Anything).
		Return(map[string]domain.TaxRate{output.TaxRateID: output}, nil).Once()

	// An AP document must reference INPUT rates only.
	_, err := s.service.ValidateTaxLines(ctx, s.tenantID, domain.SourceSupplierInvoice,
		domain.TaxInput, decimal.RequireFromString("100.00"), lines)

	s.Require().Error(err)
	s.ErrorIs(err, services.ErrInvalidTaxRate)
}

func (s *TaxServiceTestSuite) TestValidateTaxLines_TaxableSumMismatch() {
	ctx := context.Background()
	lines := []domain.TaxLine{s.line(s.rate15.TaxRateID, "900.00", "135.00")}

	s.mockTaxRepo.On("FindTaxRatesByIDs", ctx, s.tenantID, mock.Anything).
		Return(map[string]domain.TaxRate{s.rate15.TaxRateID: s.rate15}, nil).Once()

	_, err := s.service.ValidateTaxLines(ctx, s.tenantID, domain.SourceSupplierInvoice,
		domain.TaxInput, decimal.RequireFromString("1000.00"), lines)

	s.Require().Error(err)
	s.ErrorIs(err, services.ErrTaxableAmountMismatch)
}

func (s *TaxServiceTestSuite) TestValidateTaxLines_TaxAmountMismatch() {
	ctx := context.Background()
	lines := []domain.TaxLine{s.line(s.rate15.TaxRateID, "1000.00", "140.00")}

	s.mockTaxRepo.On("FindTaxRatesByIDs", ctx, s.tenantID, mock.Anything).
		Return(map[string]domain.TaxRate{s.rate15.TaxRateID: s.rate15}, nil).Once()

	_, err := s.service.ValidateTaxLines(ctx, s.tenantID, domain.SourceSupplierInvoice,
		domain.TaxInput, decimal.RequireFromString("1000.00"), lines)

	s.Require().Error(err)
	s.ErrorIs(err, services.ErrTaxAmountMismatch)
}

func (s *TaxServiceTestSuite) TestValidateTaxLines_RoundingAtTwoDecimals() {
	ctx := context.Background()
	// 33.33 x 15% = 4.9995, rounded to 5.00.
	lines := []domain.TaxLine{s.line(s.rate15.TaxRateID, "33.33", "5.00")}

	s.mockTaxRepo.On("FindTaxRatesByIDs", ctx, s.tenantID, mock.Anything).
		Return(map[string]domain.TaxRate{s.rate15.TaxRateID: s.rate15}, nil).Once()

	summary, err := s.service.ValidateTaxLines(ctx, s.tenantID, domain.SourceSupplierInvoice,
		domain.TaxInput, decimal.RequireFromString("33.33"), lines)

	s.Require().NoError(err)
	s.True(summary.TotalTax.Equal(decimal.RequireFromString("5.00")))
}

func (s *TaxServiceTestSuite) TestValidateTaxLines_ControlTotalsGroupedAndOrdered() {
	ctx := context.Background()
	rateA := s.rate15
	rateA.GLAccountID = "acct-b"
	rateB := domain.TaxRate{
		TaxRateID:   uuid.NewString(),
		TenantID:    s.tenantID,
		Name:        "VAT 5%",
		Rate:        decimal.NewFromInt(5),
		RateType:    domain.TaxInput,
		GLAccountID: "acct-a",
		IsActive:    true,
	}
	lines := []domain.TaxLine{
		s.line(rateA.TaxRateID, "200.00", "30.00"),
		s.line(rateB.TaxRateID, "100.00", "5.00"),
	}

	s.mockTaxRepo.On("FindTaxRatesByIDs", ctx, s.tenantID, mock.Anything).
		Return(map[string]domain.TaxRate{rateA.TaxRateID: rateA, rateB.TaxRateID: rateB}, nil).Once()

	summary, err := s.service.ValidateTaxLines(ctx, s.tenantID, domain.SourceSupplierInvoice,
		domain.TaxInput, decimal.RequireFromString("300.00"), lines)

	s.Require().NoError(err)
	s.True(summary.TotalTax.Equal(decimal.RequireFromString("35.00")))
	s.Require().Len(summary.ControlTotals, 2)
	s.Equal("acct-a", summary.ControlTotals[0].GLAccountID)
	s.Equal("acct-b", summary.ControlTotals[1].GLAccountID)
	s.True(summary.ControlTotals[0].TaxAmount.Equal(decimal.RequireFromString("5.00")))
	s.True(summary.ControlTotals[1].TaxAmount.Equal(decimal.RequireFromString("30.00")))
}

func TestTaxServiceTestSuite(t *testing.T) {
	suite.Run(t, new(TaxServiceTestSuite))
}
