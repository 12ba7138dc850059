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

type CreditNoteServiceTestSuite struct {
	suite.Suite
	mockNoteRepo    *MockCreditNoteRepository
	mockInvoiceRepo *MockCustomerInvoiceRepository
	mockTaxRepo     *MockTaxRepository
	mockConfigRepo  *MockTenantConfigRepository
	mockTaxSvc      *MockTaxValidatorService
	mockPeriodSvc   *MockPeriodGuardService
	mockSoDSvc      *MockSoDGuardService
	mockAudit       *MockAuditService
	mockEngine      *MockPostingEngine
	mockJournalRepo *MockJournalRepository
	service         portssvc.CreditNoteSvcFacade

	caller     domain.Caller
	creditDate time.Time
	openPeriod *domain.AccountingPeriod
}

func (s *CreditNoteServiceTestSuite) SetupTest() {
	s.mockNoteRepo = new(MockCreditNoteRepository)
	s.mockInvoiceRepo = new(MockCustomerInvoiceRepository)
	s.mockTaxRepo = new(MockTaxRepository)
	s.mockConfigRepo = new(MockTenantConfigRepository)
	s.mockTaxSvc = new(MockTaxValidatorService)
	s.mockPeriodSvc = new(MockPeriodGuardService)
	s.mockSoDSvc = new(MockSoDGuardService)
	s.mockAudit = new(MockAuditService)
	s.mockEngine = new(MockPostingEngine)
	s.mockJournalRepo = new(MockJournalRepository)
	s.service = services.NewCreditNoteService(s.mockNoteRepo, s.mockInvoiceRepo, s.mockTaxRepo, s.mockConfigRepo,
		s.mockTaxSvc, s.mockPeriodSvc, s.mockSoDSvc, s.mockAudit, s.mockEngine, s.mockJournalRepo)

	s.caller = domain.Caller{
		TenantID: uuid.NewString(),
		UserID:   uuid.NewString(),
		Permissions: []string{
			domain.PermCreditNoteCreate,
			domain.PermCreditNoteSubmit,
			domain.PermCreditNoteApprove,
			domain.PermCreditNotePost,
			domain.PermCreditNoteVoid,
		},
	}
	s.creditDate = time.Date(2025, 6, 3, 0, 0, 0, 0, time.UTC)
	s.openPeriod = &domain.AccountingPeriod{
		PeriodID: uuid.NewString(),
		TenantID: s.caller.TenantID,
		Name:     "2025-06",
		Status:   domain.PeriodOpen,
	}
}

func (s *CreditNoteServiceTestSuite) postedInvoice() *domain.CustomerInvoice {
	return &domain.CustomerInvoice{
		InvoiceID:   uuid.NewString(),
		TenantID:    s.caller.TenantID,
		CustomerID:  uuid.NewString(),
		Status:      domain.DocPosted,
		TotalAmount: decimal.RequireFromString("500.00"),
	}
}

func (s *CreditNoteServiceTestSuite) note(status domain.DocumentStatus) *domain.CustomerCreditNote {
	return &domain.CustomerCreditNote{
		CreditNoteID: uuid.NewString(),
		TenantID:     s.caller.TenantID,
		CustomerID:   uuid.NewString(),
		InvoiceID:    uuid.NewString(),
		CreditDate:   s.creditDate,
		Status:       status,
		TotalAmount:  decimal.RequireFromString("100.00"),
	}
}

func (s *CreditNoteServiceTestSuite) TestCreateCreditNote_RequiresPostedInvoice() {
	ctx := context.Background()
	invoice := s.postedInvoice()
	invoice.Status = domain.DocDraft
	req := dto.CreateCreditNoteRequest{
		CustomerID:  invoice.CustomerID,
		InvoiceID:   invoice.InvoiceID,
		CreditDate:  s.creditDate,
		TotalAmount: decimal.RequireFromString("100.00"),
		Lines: []dto.CreditNoteLineRequest{
			{AccountID: uuid.NewString(), Amount: decimal.RequireFromString("100.00")},
		},
	}

	s.mockPeriodSvc.On("AssertPostable", ctx, s.caller.TenantID, s.creditDate,
		domain.PeriodActionCreate, s.caller.UserID, "credit_note", "").Return(s.openPeriod, nil).Once()
	s.mockInvoiceRepo.On("FindInvoiceByID", ctx, s.caller.TenantID, invoice.InvoiceID).Return(invoice, nil).Once()

	_, err := s.service.CreateCreditNote(ctx, s.caller, req)

	s.Require().Error(err)
	s.ErrorIs(err, services.ErrCreditInvoiceNotPosted)
	s.mockNoteRepo.AssertNotCalled(s.T(), "SaveCreditNote", mock.Anything, mock.Anything, mock.Anything)
}

func (s *CreditNoteServiceTestSuite) TestCreateCreditNote_Success() {
	ctx := context.Background()
	invoice := s.postedInvoice()
	req := dto.CreateCreditNoteRequest{
		CustomerID:  invoice.CustomerID,
		InvoiceID:   invoice.InvoiceID,
		CreditDate:  s.creditDate,
		TotalAmount: decimal.RequireFromString("115.00"),
		Lines: []dto.CreditNoteLineRequest{
			{AccountID: uuid.NewString(), Amount: decimal.RequireFromString("100.00")},
		},
		TaxLines: []dto.TaxLineRequest{
			{TaxRateID: uuid.NewString(), TaxableAmount: decimal.RequireFromString("100.00"), TaxAmount: decimal.RequireFromString("15.00")},
		},
	}
	summary := &domain.TaxSummary{TotalTax: decimal.RequireFromString("15.00")}

	s.mockPeriodSvc.On("AssertPostable", ctx, s.caller.TenantID, s.creditDate,
		domain.PeriodActionCreate, s.caller.UserID, "credit_note", "").Return(s.openPeriod, nil).Once()
	s.mockInvoiceRepo.On("FindInvoiceByID", ctx, s.caller.TenantID, invoice.InvoiceID).Return(invoice, nil).Once()
	s.mockTaxSvc.On("ValidateTaxLines", ctx, s.caller.TenantID, domain.SourceCustomerCreditNote,
		domain.TaxOutput, mock.Anything, mock.AnythingOfType("[]domain.TaxLine")).Return(summary, nil).Once()
	s.mockNoteRepo.On("SaveCreditNote", ctx, mock.AnythingOfType("domain.CustomerCreditNote"),
		mock.AnythingOfType("[]domain.TaxLine")).Return(nil).Once()

	note, err := s.service.CreateCreditNote(ctx, s.caller, req)

	s.Require().NoError(err)
	s.Equal(domain.DocDraft, note.Status)
	s.Equal(invoice.InvoiceID, note.InvoiceID)
	s.mockNoteRepo.AssertExpectations(s.T())
}

func (s *CreditNoteServiceTestSuite) TestSubmitCreditNote_ReconcilesPersistedTotals() {
	ctx := context.Background()
	note := s.note(domain.DocDraft)
	note.CreatedBy = s.caller.UserID
	note.Lines = []domain.CreditNoteLine{
		{LineID: uuid.NewString(), AccountID: uuid.NewString(), Amount: decimal.RequireFromString("90.00")},
	}

	s.mockSoDSvc.On("CheckAndEnforce", ctx, s.caller.TenantID, s.caller.UserID, "credit_note:submit",
		[]string{domain.PermCreditNoteSubmit}, s.caller.Permissions).Return(nil).Once()
	s.mockNoteRepo.On("FindCreditNoteByID", ctx, s.caller.TenantID, note.CreditNoteID).Return(note, nil).Once()
	s.mockTaxRepo.On("FindTaxLinesForSource", ctx, s.caller.TenantID, domain.SourceCustomerCreditNote, note.CreditNoteID).
		Return([]domain.TaxLine{{TaxAmount: decimal.RequireFromString("10.00")}}, nil).Once()
	s.mockNoteRepo.On("UpdateCreditNoteStatus", ctx, mock.MatchedBy(func(n domain.CustomerCreditNote) bool {
		return n.Status == domain.DocSubmitted && n.SubmittedBy != nil && *n.SubmittedBy == s.caller.UserID
	}), domain.DocDraft).Return(nil).Once()

	submitted, err := s.service.SubmitCreditNote(ctx, s.caller, note.CreditNoteID)

	s.Require().NoError(err)
	s.Equal(domain.DocSubmitted, submitted.Status)
	s.mockNoteRepo.AssertExpectations(s.T())
}

func (s *CreditNoteServiceTestSuite) TestSubmitCreditNote_TotalMismatchRejected() {
	ctx := context.Background()
	note := s.note(domain.DocDraft)
	note.CreatedBy = s.caller.UserID
	note.Lines = []domain.CreditNoteLine{
		{LineID: uuid.NewString(), AccountID: uuid.NewString(), Amount: decimal.RequireFromString("90.00")},
	}

	s.mockSoDSvc.On("CheckAndEnforce", ctx, s.caller.TenantID, s.caller.UserID, "credit_note:submit",
		[]string{domain.PermCreditNoteSubmit}, s.caller.Permissions).Return(nil).Once()
	s.mockNoteRepo.On("FindCreditNoteByID", ctx, s.caller.TenantID, note.CreditNoteID).Return(note, nil).Once()
	s.mockTaxRepo.On("FindTaxLinesForSource", ctx, s.caller.TenantID, domain.SourceCustomerCreditNote, note.CreditNoteID).
		Return([]domain.TaxLine{}, nil).Once()

	_, err := s.service.SubmitCreditNote(ctx, s.caller, note.CreditNoteID)

	s.Require().Error(err)
	s.ErrorIs(err, services.ErrTotalMismatch)
	s.mockNoteRepo.AssertNotCalled(s.T(), "UpdateCreditNoteStatus", mock.Anything, mock.Anything, mock.Anything)
}

func (s *CreditNoteServiceTestSuite) TestApproveCreditNote_ExceedsOutstanding() {
	ctx := context.Background()
	note := s.note(domain.DocSubmitted)
	// 500 invoiced, 300 received, 150 already credited: 50 left.
	balance := &domain.OutstandingBalance{
		InvoiceID:        note.InvoiceID,
		InvoiceTotal:     decimal.RequireFromString("500.00"),
		ReceiptsAmount:   decimal.RequireFromString("300.00"),
		CreditNoteAmount: decimal.RequireFromString("150.00"),
	}

	s.mockSoDSvc.On("CheckAndEnforce", ctx, s.caller.TenantID, s.caller.UserID, "credit_note:approve",
		[]string{domain.PermCreditNoteApprove}, s.caller.Permissions).Return(nil).Once()
	s.mockNoteRepo.On("FindCreditNoteByID", ctx, s.caller.TenantID, note.CreditNoteID).Return(note, nil).Once()
	s.mockInvoiceRepo.On("GetOutstandingBalance", ctx, s.caller.TenantID, note.InvoiceID).Return(balance, nil).Once()
	s.mockAudit.On("Record", ctx, mock.MatchedBy(func(e domain.AuditEvent) bool {
		return e.EventType == "CREDIT_GUARD" && e.Outcome == domain.AuditBlocked
	})).Once()

	_, err := s.service.ApproveCreditNote(ctx, s.caller, note.CreditNoteID)

	s.Require().Error(err)
	s.ErrorIs(err, services.ErrCreditExceedsOutstanding)
	s.ErrorIs(err, apperrors.ErrPolicyBlocked)
	s.mockNoteRepo.AssertNotCalled(s.T(), "UpdateCreditNoteStatus", mock.Anything, mock.Anything, mock.Anything)
	s.mockAudit.AssertExpectations(s.T())
}

func (s *CreditNoteServiceTestSuite) TestApproveCreditNote_WithinOutstanding() {
	ctx := context.Background()
	note := s.note(domain.DocSubmitted)
	balance := &domain.OutstandingBalance{
		InvoiceID:    note.InvoiceID,
		InvoiceTotal: decimal.RequireFromString("500.00"),
	}

	s.mockSoDSvc.On("CheckAndEnforce", ctx, s.caller.TenantID, s.caller.UserID, "credit_note:approve",
		[]string{domain.PermCreditNoteApprove}, s.caller.Permissions).Return(nil).Once()
	s.mockNoteRepo.On("FindCreditNoteByID", ctx, s.caller.TenantID, note.CreditNoteID).Return(note, nil).Once()
	s.mockInvoiceRepo.On("GetOutstandingBalance", ctx, s.caller.TenantID, note.InvoiceID).Return(balance, nil).Once()
	s.mockNoteRepo.On("UpdateCreditNoteStatus", ctx, mock.MatchedBy(func(n domain.CustomerCreditNote) bool {
		return n.Status == domain.DocApproved && n.ApprovedBy != nil && *n.ApprovedBy == s.caller.UserID
	}), domain.DocSubmitted).Return(nil).Once()

	approved, err := s.service.ApproveCreditNote(ctx, s.caller, note.CreditNoteID)

	s.Require().NoError(err)
	s.Equal(domain.DocApproved, approved.Status)
}

func (s *CreditNoteServiceTestSuite) TestVoidCreditNote_ReasonTooShort() {
	ctx := context.Background()

	s.mockSoDSvc.On("CheckAndEnforce", ctx, s.caller.TenantID, s.caller.UserID, "credit_note:void",
		[]string{domain.PermCreditNoteVoid}, s.caller.Permissions).Return(nil).Once()

	_, _, err := s.service.VoidCreditNote(ctx, s.caller, uuid.NewString(), "too short")

	s.Require().Error(err)
	s.ErrorIs(err, services.ErrVoidReasonTooShort)
	s.mockNoteRepo.AssertNotCalled(s.T(), "FindCreditNoteByID", mock.Anything, mock.Anything, mock.Anything)
}

func (s *CreditNoteServiceTestSuite) TestVoidCreditNote_AlreadyVoidIsNoOp() {
	ctx := context.Background()
	note := s.note(domain.DocVoid)
	reversalID := uuid.NewString()
	note.ReversalJournalID = &reversalID
	reversal := &domain.JournalEntry{JournalID: reversalID, Status: domain.JournalPosted}

	s.mockSoDSvc.On("CheckAndEnforce", ctx, s.caller.TenantID, s.caller.UserID, "credit_note:void",
		[]string{domain.PermCreditNoteVoid}, s.caller.Permissions).Return(nil).Once()
	s.mockNoteRepo.On("FindCreditNoteByID", ctx, s.caller.TenantID, note.CreditNoteID).Return(note, nil).Once()
	s.mockJournalRepo.On("FindJournalByID", ctx, s.caller.TenantID, reversalID).Return(reversal, nil).Once()

	voided, journal, err := s.service.VoidCreditNote(ctx, s.caller, note.CreditNoteID, "duplicate credit issued in error")

	s.Require().NoError(err)
	s.Equal(domain.DocVoid, voided.Status)
	s.Equal(reversalID, journal.JournalID)
	s.mockEngine.AssertNotCalled(s.T(), "BuildReversalJournal",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	s.mockNoteRepo.AssertNotCalled(s.T(), "MarkCreditNoteVoided",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (s *CreditNoteServiceTestSuite) TestVoidCreditNote_Success() {
	ctx := context.Background()
	note := s.note(domain.DocPosted)
	postedJournalID := uuid.NewString()
	note.PostedJournalID = &postedJournalID
	original := &domain.JournalEntry{
		JournalID: postedJournalID,
		TenantID:  s.caller.TenantID,
		Status:    domain.JournalPosted,
	}
	reversal := &domain.JournalEntry{
		JournalID:         uuid.NewString(),
		TenantID:          s.caller.TenantID,
		Status:            domain.JournalPosted,
		JournalType:       domain.JournalReversing,
		OriginalJournalID: &postedJournalID,
	}
	reversalLines := []domain.JournalLine{{LineID: uuid.NewString(), JournalID: reversal.JournalID}}
	reason := "customer dispute resolved in supplier's favor"

	s.mockSoDSvc.On("CheckAndEnforce", ctx, s.caller.TenantID, s.caller.UserID, "credit_note:void",
		[]string{domain.PermCreditNoteVoid}, s.caller.Permissions).Return(nil).Once()
	s.mockNoteRepo.On("FindCreditNoteByID", ctx, s.caller.TenantID, note.CreditNoteID).Return(note, nil).Once()
	s.mockJournalRepo.On("FindJournalByID", ctx, s.caller.TenantID, postedJournalID).Return(original, nil).Once()
	s.mockEngine.On("BuildReversalJournal", ctx, s.caller, *original, s.creditDate,
		"Void of credit note "+note.CreditNoteID).Return(reversal, reversalLines, nil).Once()
	s.mockNoteRepo.On("MarkCreditNoteVoided", ctx, mock.MatchedBy(func(n domain.CustomerCreditNote) bool {
		return n.Status == domain.DocVoid &&
			n.ReversalJournalID != nil && *n.ReversalJournalID == reversal.JournalID &&
			n.VoidReason != nil && *n.VoidReason == reason
	}), *reversal, reversalLines).Return(nil).Once()
	s.mockAudit.On("Record", ctx, mock.MatchedBy(func(e domain.AuditEvent) bool {
		return e.EventType == "POSTING" && e.Action == "void" && e.Outcome == domain.AuditAllowed
	})).Once()

	voided, journal, err := s.service.VoidCreditNote(ctx, s.caller, note.CreditNoteID, reason)

	s.Require().NoError(err)
	s.Equal(domain.DocVoid, voided.Status)
	s.Equal(reversal.JournalID, journal.JournalID)
	s.mockNoteRepo.AssertExpectations(s.T())
	s.mockEngine.AssertExpectations(s.T())
}

func (s *CreditNoteServiceTestSuite) TestVoidCreditNote_RejectsUnpostedNote() {
	ctx := context.Background()
	note := s.note(domain.DocDraft)

	s.mockSoDSvc.On("CheckAndEnforce", ctx, s.caller.TenantID, s.caller.UserID, "credit_note:void",
		[]string{domain.PermCreditNoteVoid}, s.caller.Permissions).Return(nil).Once()
	s.mockNoteRepo.On("FindCreditNoteByID", ctx, s.caller.TenantID, note.CreditNoteID).Return(note, nil).Once()

	_, _, err := s.service.VoidCreditNote(ctx, s.caller, note.CreditNoteID, "entered against the wrong invoice")

	s.Require().Error(err)
	s.ErrorIs(err, services.ErrDocumentState)
}

func TestCreditNoteServiceTestSuite(t *testing.T) {
	suite.Run(t, new(CreditNoteServiceTestSuite))
}
