package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/finledger/fin_ledger_app/internal/apperrors"
	"github.com/finledger/fin_ledger_app/internal/core/domain"
	portssvc "github.com/finledger/fin_ledger_app/internal/core/ports/services"
	"github.com/finledger/fin_ledger_app/internal/core/services"
	"github.com/finledger/fin_ledger_app/internal/dto"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type CustomerReceiptServiceTestSuite struct {
	suite.Suite
	mockReceiptRepo *MockCustomerReceiptRepository
	mockInvoiceRepo *MockCustomerInvoiceRepository
	mockConfigRepo  *MockTenantConfigRepository
	mockPeriodSvc   *MockPeriodGuardService
	mockSoDSvc      *MockSoDGuardService
	mockAudit       *MockAuditService
	mockEngine      *MockPostingEngine
	service         portssvc.CustomerReceiptSvcFacade

	caller      domain.Caller
	receiptDate time.Time
	openPeriod  *domain.AccountingPeriod
}

func (s *CustomerReceiptServiceTestSuite) SetupTest() {
	s.mockReceiptRepo = new(MockCustomerReceiptRepository)
	s.mockInvoiceRepo = new(MockCustomerInvoiceRepository)
	s.mockConfigRepo = new(MockTenantConfigRepository)
	s.mockPeriodSvc = new(MockPeriodGuardService)
	s.mockSoDSvc = new(MockSoDGuardService)
	s.mockAudit = new(MockAuditService)
	s.mockEngine = new(MockPostingEngine)
	s.service = services.NewCustomerReceiptService(s.mockReceiptRepo, s.mockInvoiceRepo, s.mockConfigRepo,
		s.mockPeriodSvc, s.mockSoDSvc, s.mockAudit, s.mockEngine)

	s.caller = domain.Caller{
		TenantID: uuid.NewString(),
		UserID:   uuid.NewString(),
		Permissions: []string{
			domain.PermReceiptCreate,
			domain.PermReceiptSubmit,
			domain.PermReceiptApprove,
			domain.PermReceiptPost,
		},
	}
	s.receiptDate = time.Date(2025, 4, 10, 0, 0, 0, 0, time.UTC)
	s.openPeriod = &domain.AccountingPeriod{
		PeriodID: uuid.NewString(),
		TenantID: s.caller.TenantID,
		Name:     "2025-04",
		Status:   domain.PeriodOpen,
	}
}

func (s *CustomerReceiptServiceTestSuite) postedInvoice() *domain.CustomerInvoice {
	return &domain.CustomerInvoice{
		InvoiceID:   uuid.NewString(),
		TenantID:    s.caller.TenantID,
		CustomerID:  uuid.NewString(),
		Status:      domain.DocPosted,
		TotalAmount: decimal.RequireFromString("800.00"),
	}
}

func (s *CustomerReceiptServiceTestSuite) receipt(status domain.DocumentStatus) *domain.CustomerReceipt {
	receiptID := uuid.NewString()
	return &domain.CustomerReceipt{
		ReceiptID:   receiptID,
		TenantID:    s.caller.TenantID,
		CustomerID:  uuid.NewString(),
		ReceiptDate: s.receiptDate,
		Status:      status,
		TotalAmount: decimal.RequireFromString("250.00"),
		AuditFields: domain.AuditFields{CreatedBy: s.caller.UserID},
		Allocations: []domain.ReceiptAllocation{
			{
				AllocationID: uuid.NewString(),
				ReceiptID:    receiptID,
				InvoiceID:    uuid.NewString(),
				Amount:       decimal.RequireFromString("250.00"),
			},
		},
	}
}

func (s *CustomerReceiptServiceTestSuite) TestCreateReceipt_Success() {
	ctx := context.Background()
	first := s.postedInvoice()
	second := s.postedInvoice()
	req := dto.CreateReceiptRequest{
		CustomerID:  first.CustomerID,
		ReceiptDate: s.receiptDate,
		TotalAmount: decimal.RequireFromString("250.00"),
		Allocations: []dto.ReceiptAllocationRequest{
			{InvoiceID: first.InvoiceID, Amount: decimal.RequireFromString("150.00")},
			{InvoiceID: second.InvoiceID, Amount: decimal.RequireFromString("100.00")},
		},
	}

	s.mockPeriodSvc.On("AssertPostable", ctx, s.caller.TenantID, s.receiptDate,
		domain.PeriodActionCreate, s.caller.UserID, "customer_receipt", "").Return(s.openPeriod, nil).Once()
	s.mockInvoiceRepo.On("FindInvoiceByID", ctx, s.caller.TenantID, first.InvoiceID).Return(first, nil).Once()
	s.mockInvoiceRepo.On("FindInvoiceByID", ctx, s.caller.TenantID, second.InvoiceID).Return(second, nil).Once()
	s.mockReceiptRepo.On("SaveReceipt", ctx, mock.MatchedBy(func(r domain.CustomerReceipt) bool {
		return r.Status == domain.DocDraft && len(r.Allocations) == 2 &&
			r.Allocations[0].ReceiptID == r.ReceiptID &&
			r.AllocatedAmount().Equal(r.TotalAmount)
	})).Return(nil).Once()

	receipt, err := s.service.CreateReceipt(ctx, s.caller, req)

	s.Require().NoError(err)
	s.Equal(domain.DocDraft, receipt.Status)
	s.Len(receipt.Allocations, 2)
	s.mockReceiptRepo.AssertExpectations(s.T())
}

func (s *CustomerReceiptServiceTestSuite) TestCreateReceipt_AllocationToUnpostedInvoice() {
	ctx := context.Background()
	invoice := s.postedInvoice()
	invoice.Status = domain.DocApproved
	req := dto.CreateReceiptRequest{
		CustomerID:  invoice.CustomerID,
		ReceiptDate: s.receiptDate,
		TotalAmount: decimal.RequireFromString("100.00"),
		Allocations: []dto.ReceiptAllocationRequest{
			{InvoiceID: invoice.InvoiceID, Amount: decimal.RequireFromString("100.00")},
		},
	}

	s.mockPeriodSvc.On("AssertPostable", ctx, s.caller.TenantID, s.receiptDate,
		domain.PeriodActionCreate, s.caller.UserID, "customer_receipt", "").Return(s.openPeriod, nil).Once()
	s.mockInvoiceRepo.On("FindInvoiceByID", ctx, s.caller.TenantID, invoice.InvoiceID).Return(invoice, nil).Once()

	_, err := s.service.CreateReceipt(ctx, s.caller, req)

	s.Require().Error(err)
	s.ErrorIs(err, services.ErrAllocationTarget)
	s.ErrorIs(err, apperrors.ErrValidation)
	s.mockReceiptRepo.AssertNotCalled(s.T(), "SaveReceipt", mock.Anything, mock.Anything)
}

func (s *CustomerReceiptServiceTestSuite) TestCreateReceipt_AllocationsDoNotSumToTotal() {
	ctx := context.Background()
	invoice := s.postedInvoice()
	req := dto.CreateReceiptRequest{
		CustomerID:  invoice.CustomerID,
		ReceiptDate: s.receiptDate,
		TotalAmount: decimal.RequireFromString("250.00"),
		Allocations: []dto.ReceiptAllocationRequest{
			{InvoiceID: invoice.InvoiceID, Amount: decimal.RequireFromString("200.00")},
		},
	}

	s.mockPeriodSvc.On("AssertPostable", ctx, s.caller.TenantID, s.receiptDate,
		domain.PeriodActionCreate, s.caller.UserID, "customer_receipt", "").Return(s.openPeriod, nil).Once()
	s.mockInvoiceRepo.On("FindInvoiceByID", ctx, s.caller.TenantID, invoice.InvoiceID).Return(invoice, nil).Once()

	_, err := s.service.CreateReceipt(ctx, s.caller, req)

	s.Require().Error(err)
	s.ErrorIs(err, services.ErrAllocationMismatch)
	s.mockReceiptRepo.AssertNotCalled(s.T(), "SaveReceipt", mock.Anything, mock.Anything)
}

func (s *CustomerReceiptServiceTestSuite) TestCreateReceipt_NonPositiveAllocation() {
	ctx := context.Background()
	req := dto.CreateReceiptRequest{
		CustomerID:  uuid.NewString(),
		ReceiptDate: s.receiptDate,
		TotalAmount: decimal.RequireFromString("100.00"),
		Allocations: []dto.ReceiptAllocationRequest{
			{InvoiceID: uuid.NewString(), Amount: decimal.Zero},
		},
	}

	s.mockPeriodSvc.On("AssertPostable", ctx, s.caller.TenantID, s.receiptDate,
		domain.PeriodActionCreate, s.caller.UserID, "customer_receipt", "").Return(s.openPeriod, nil).Once()

	_, err := s.service.CreateReceipt(ctx, s.caller, req)

	s.Require().Error(err)
	s.ErrorIs(err, services.ErrAllocationMismatch)
	s.mockInvoiceRepo.AssertNotCalled(s.T(), "FindInvoiceByID", mock.Anything, mock.Anything, mock.Anything)
}

func (s *CustomerReceiptServiceTestSuite) TestSubmitReceipt_StampsAndPersists() {
	ctx := context.Background()
	receipt := s.receipt(domain.DocDraft)

	s.mockSoDSvc.On("CheckAndEnforce", ctx, s.caller.TenantID, s.caller.UserID, "customer_receipt:submit",
		[]string{domain.PermReceiptSubmit}, s.caller.Permissions).Return(nil).Once()
	s.mockReceiptRepo.On("FindReceiptByID", ctx, s.caller.TenantID, receipt.ReceiptID).Return(receipt, nil).Once()
	s.mockReceiptRepo.On("UpdateReceiptStatus", ctx, mock.MatchedBy(func(r domain.CustomerReceipt) bool {
		return r.Status == domain.DocSubmitted && r.SubmittedBy != nil && *r.SubmittedBy == s.caller.UserID
	}), domain.DocDraft).Return(nil).Once()

	submitted, err := s.service.SubmitReceipt(ctx, s.caller, receipt.ReceiptID)

	s.Require().NoError(err)
	s.Equal(domain.DocSubmitted, submitted.Status)
	s.mockReceiptRepo.AssertExpectations(s.T())
}

func (s *CustomerReceiptServiceTestSuite) TestSubmitReceipt_AllocationMismatchRejected() {
	ctx := context.Background()
	receipt := s.receipt(domain.DocDraft)
	// Stored allocations no longer cover the receipt total.
	receipt.Allocations[0].Amount = decimal.RequireFromString("200.00")

	s.mockSoDSvc.On("CheckAndEnforce", ctx, s.caller.TenantID, s.caller.UserID, "customer_receipt:submit",
		[]string{domain.PermReceiptSubmit}, s.caller.Permissions).Return(nil).Once()
	s.mockReceiptRepo.On("FindReceiptByID", ctx, s.caller.TenantID, receipt.ReceiptID).Return(receipt, nil).Once()

	_, err := s.service.SubmitReceipt(ctx, s.caller, receipt.ReceiptID)

	s.Require().Error(err)
	s.ErrorIs(err, services.ErrAllocationMismatch)
	s.mockReceiptRepo.AssertNotCalled(s.T(), "UpdateReceiptStatus", mock.Anything, mock.Anything, mock.Anything)
}

func (s *CustomerReceiptServiceTestSuite) TestApproveReceipt_OverAllocation() {
	ctx := context.Background()
	receipt := s.receipt(domain.DocSubmitted)
	// 800 invoiced, 600 already received: only 200 left against a 250 allocation.
	balance := &domain.OutstandingBalance{
		InvoiceID:      receipt.Allocations[0].InvoiceID,
		InvoiceTotal:   decimal.RequireFromString("800.00"),
		ReceiptsAmount: decimal.RequireFromString("600.00"),
	}

	s.mockSoDSvc.On("CheckAndEnforce", ctx, s.caller.TenantID, s.caller.UserID, "customer_receipt:approve",
		[]string{domain.PermReceiptApprove}, s.caller.Permissions).Return(nil).Once()
	s.mockReceiptRepo.On("FindReceiptByID", ctx, s.caller.TenantID, receipt.ReceiptID).Return(receipt, nil).Once()
	s.mockInvoiceRepo.On("GetOutstandingBalance", ctx, s.caller.TenantID, receipt.Allocations[0].InvoiceID).
		Return(balance, nil).Once()
	s.mockAudit.On("Record", ctx, mock.MatchedBy(func(e domain.AuditEvent) bool {
		return e.EventType == "ALLOCATION_GUARD" && e.EntityID == receipt.ReceiptID &&
			e.Action == "approve" && e.Outcome == domain.AuditBlocked
	})).Once()

	_, err := s.service.ApproveReceipt(ctx, s.caller, receipt.ReceiptID)

	s.Require().Error(err)
	s.ErrorIs(err, services.ErrOverAllocation)
	s.ErrorIs(err, apperrors.ErrPolicyBlocked)
	s.mockReceiptRepo.AssertNotCalled(s.T(), "UpdateReceiptStatus", mock.Anything, mock.Anything, mock.Anything)
	s.mockAudit.AssertExpectations(s.T())
}

func (s *CustomerReceiptServiceTestSuite) TestApproveReceipt_WithinOutstanding() {
	ctx := context.Background()
	receipt := s.receipt(domain.DocSubmitted)
	balance := &domain.OutstandingBalance{
		InvoiceID:    receipt.Allocations[0].InvoiceID,
		InvoiceTotal: decimal.RequireFromString("800.00"),
	}

	s.mockSoDSvc.On("CheckAndEnforce", ctx, s.caller.TenantID, s.caller.UserID, "customer_receipt:approve",
		[]string{domain.PermReceiptApprove}, s.caller.Permissions).Return(nil).Once()
	s.mockReceiptRepo.On("FindReceiptByID", ctx, s.caller.TenantID, receipt.ReceiptID).Return(receipt, nil).Once()
	s.mockInvoiceRepo.On("GetOutstandingBalance", ctx, s.caller.TenantID, receipt.Allocations[0].InvoiceID).
		Return(balance, nil).Once()
	s.mockReceiptRepo.On("UpdateReceiptStatus", ctx, mock.MatchedBy(func(r domain.CustomerReceipt) bool {
		return r.Status == domain.DocApproved && r.ApprovedBy != nil && *r.ApprovedBy == s.caller.UserID
	}), domain.DocSubmitted).Return(nil).Once()

	approved, err := s.service.ApproveReceipt(ctx, s.caller, receipt.ReceiptID)

	s.Require().NoError(err)
	s.Equal(domain.DocApproved, approved.Status)
}

func (s *CustomerReceiptServiceTestSuite) TestPostReceipt_Success() {
	ctx := context.Background()
	receipt := s.receipt(domain.DocApproved)
	bankClearingID := uuid.NewString()
	arAccountID := uuid.NewString()
	config := &domain.TenantConfig{
		TenantID:              s.caller.TenantID,
		BankClearingAccountID: bankClearingID,
		ARControlAccountID:    arAccountID,
	}
	journal := &domain.JournalEntry{
		JournalID: uuid.NewString(),
		TenantID:  s.caller.TenantID,
		Status:    domain.JournalPosted,
	}
	lines := []domain.JournalLine{
		{LineID: uuid.NewString(), JournalID: journal.JournalID},
		{LineID: uuid.NewString(), JournalID: journal.JournalID},
	}

	s.mockSoDSvc.On("CheckAndEnforce", ctx, s.caller.TenantID, s.caller.UserID, "customer_receipt:post",
		[]string{domain.PermReceiptPost}, s.caller.Permissions).Return(nil).Once()
	s.mockReceiptRepo.On("FindReceiptByID", ctx, s.caller.TenantID, receipt.ReceiptID).Return(receipt, nil).Once()
	s.mockEngine.On("FindPostedJournalForSource", ctx, s.caller.TenantID,
		domain.SourceCustomerReceipt, receipt.ReceiptID).Return(nil, nil).Once()
	s.mockConfigRepo.On("FindTenantConfig", ctx, s.caller.TenantID).Return(config, nil).Once()
	s.mockEngine.On("PrepareSourceJournal", ctx, s.caller, mock.MatchedBy(func(spec portssvc.SourceJournalSpec) bool {
		if spec.SourceType != domain.SourceCustomerReceipt || spec.SourceID != receipt.ReceiptID {
			return false
		}
		if len(spec.Lines) != 2 {
			return false
		}
		debit := spec.Lines[0]
		credit := spec.Lines[1]
		return debit.AccountID == bankClearingID && debit.Debit.Equal(receipt.TotalAmount) &&
			credit.AccountID == arAccountID && credit.Credit.Equal(receipt.TotalAmount)
	})).Return(journal, lines, nil).Once()
	s.mockReceiptRepo.On("MarkReceiptPosted", ctx, mock.MatchedBy(func(r domain.CustomerReceipt) bool {
		return r.Status == domain.DocPosted &&
			r.PostedJournalID != nil && *r.PostedJournalID == journal.JournalID
	}), *journal, lines).Return(nil).Once()
	s.mockAudit.On("Record", ctx, mock.MatchedBy(func(e domain.AuditEvent) bool {
		return e.EventType == "POSTING" && e.EntityType == "customer_receipt" &&
			e.Action == "post" && e.Outcome == domain.AuditAllowed
	})).Once()

	posted, postedJournal, err := s.service.PostReceipt(ctx, s.caller, receipt.ReceiptID)

	s.Require().NoError(err)
	s.Equal(domain.DocPosted, posted.Status)
	s.Equal(journal.JournalID, postedJournal.JournalID)
	s.mockReceiptRepo.AssertExpectations(s.T())
	s.mockEngine.AssertExpectations(s.T())
	s.mockAudit.AssertExpectations(s.T())
}

func (s *CustomerReceiptServiceTestSuite) TestPostReceipt_RepostReturnsExistingJournal() {
	ctx := context.Background()
	receipt := s.receipt(domain.DocPosted)
	existing := &domain.JournalEntry{
		JournalID: uuid.NewString(),
		TenantID:  s.caller.TenantID,
		Status:    domain.JournalPosted,
	}

	s.mockSoDSvc.On("CheckAndEnforce", ctx, s.caller.TenantID, s.caller.UserID, "customer_receipt:post",
		[]string{domain.PermReceiptPost}, s.caller.Permissions).Return(nil).Once()
	s.mockReceiptRepo.On("FindReceiptByID", ctx, s.caller.TenantID, receipt.ReceiptID).Return(receipt, nil).Once()
	s.mockEngine.On("FindPostedJournalForSource", ctx, s.caller.TenantID,
		domain.SourceCustomerReceipt, receipt.ReceiptID).Return(existing, nil).Once()

	posted, journal, err := s.service.PostReceipt(ctx, s.caller, receipt.ReceiptID)

	s.Require().NoError(err)
	s.Equal(receipt.ReceiptID, posted.ReceiptID)
	s.Equal(existing.JournalID, journal.JournalID)
	s.mockEngine.AssertNotCalled(s.T(), "PrepareSourceJournal", mock.Anything, mock.Anything, mock.Anything)
	s.mockReceiptRepo.AssertNotCalled(s.T(), "MarkReceiptPosted",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (s *CustomerReceiptServiceTestSuite) TestPostReceipt_MissingBankClearingAccount() {
	ctx := context.Background()
	receipt := s.receipt(domain.DocApproved)
	config := &domain.TenantConfig{
		TenantID:           s.caller.TenantID,
		ARControlAccountID: uuid.NewString(),
	}

	s.mockSoDSvc.On("CheckAndEnforce", ctx, s.caller.TenantID, s.caller.UserID, "customer_receipt:post",
		[]string{domain.PermReceiptPost}, s.caller.Permissions).Return(nil).Once()
	s.mockReceiptRepo.On("FindReceiptByID", ctx, s.caller.TenantID, receipt.ReceiptID).Return(receipt, nil).Once()
	s.mockEngine.On("FindPostedJournalForSource", ctx, s.caller.TenantID,
		domain.SourceCustomerReceipt, receipt.ReceiptID).Return(nil, nil).Once()
	s.mockConfigRepo.On("FindTenantConfig", ctx, s.caller.TenantID).Return(config, nil).Once()

	_, _, err := s.service.PostReceipt(ctx, s.caller, receipt.ReceiptID)

	s.Require().Error(err)
	s.ErrorIs(err, apperrors.ErrConfiguration)
	s.mockEngine.AssertNotCalled(s.T(), "PrepareSourceJournal", mock.Anything, mock.Anything, mock.Anything)
}

func TestCustomerReceiptServiceTestSuite(t *testing.T) {
	suite.Run(t, new(CustomerReceiptServiceTestSuite))
}
