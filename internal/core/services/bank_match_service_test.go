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

type BankMatchServiceTestSuite struct {
	suite.Suite
	mockMatchRepo  *MockBankMatchRepository
	mockConfigRepo *MockTenantConfigRepository
	mockAccountSvc *MockAccountService
	mockPeriodSvc  *MockPeriodGuardService
	mockSoDSvc     *MockSoDGuardService
	mockAudit      *MockAuditService
	mockEngine     *MockPostingEngine
	service        portssvc.BankMatchSvcFacade

	caller        domain.Caller
	statementDate time.Time
	openPeriod    *domain.AccountingPeriod
	bankAccount   *domain.Account
}

func (s *BankMatchServiceTestSuite) SetupTest() {
	s.mockMatchRepo = new(MockBankMatchRepository)
	s.mockConfigRepo = new(MockTenantConfigRepository)
	s.mockAccountSvc = new(MockAccountService)
	s.mockPeriodSvc = new(MockPeriodGuardService)
	s.mockSoDSvc = new(MockSoDGuardService)
	s.mockAudit = new(MockAuditService)
	s.mockEngine = new(MockPostingEngine)
	s.service = services.NewBankMatchService(s.mockMatchRepo, s.mockConfigRepo, s.mockAccountSvc,
		s.mockPeriodSvc, s.mockSoDSvc, s.mockAudit, s.mockEngine)

	s.caller = domain.Caller{
		TenantID: uuid.NewString(),
		UserID:   uuid.NewString(),
		Permissions: []string{
			domain.PermBankMatchCreate,
			domain.PermBankMatchSubmit,
			domain.PermBankMatchApprove,
			domain.PermBankMatchPost,
		},
	}
	s.statementDate = time.Date(2025, 5, 28, 0, 0, 0, 0, time.UTC)
	s.openPeriod = &domain.AccountingPeriod{
		PeriodID: uuid.NewString(),
		TenantID: s.caller.TenantID,
		Name:     "2025-05",
		Status:   domain.PeriodOpen,
	}
	s.bankAccount = &domain.Account{
		AccountID:        uuid.NewString(),
		TenantID:         s.caller.TenantID,
		Code:             "1010",
		Name:             "Main bank account",
		AccountType:      domain.Asset,
		IsActive:         true,
		IsPostingAllowed: true,
	}
}

func (s *BankMatchServiceTestSuite) match(status domain.DocumentStatus, direction domain.BankMatchDirection) *domain.BankMatch {
	return &domain.BankMatch{
		MatchID:       uuid.NewString(),
		TenantID:      s.caller.TenantID,
		BankAccountID: s.bankAccount.AccountID,
		StatementRef:  "STMT-2025-05-117",
		StatementDate: s.statementDate,
		Direction:     direction,
		Amount:        decimal.RequireFromString("340.00"),
		Status:        status,
		AuditFields:   domain.AuditFields{CreatedBy: s.caller.UserID},
	}
}

func (s *BankMatchServiceTestSuite) TestCreateMatch_Success() {
	ctx := context.Background()
	req := dto.CreateBankMatchRequest{
		BankAccountID: s.bankAccount.AccountID,
		StatementRef:  "STMT-2025-05-117",
		StatementDate: s.statementDate,
		Direction:     domain.BankInflow,
		Amount:        decimal.RequireFromString("340.005"),
	}

	s.mockPeriodSvc.On("AssertPostable", ctx, s.caller.TenantID, s.statementDate,
		domain.PeriodActionCreate, s.caller.UserID, "bank_match", "").Return(s.openPeriod, nil).Once()
	s.mockAccountSvc.On("GetAccountByID", ctx, s.caller.TenantID, s.bankAccount.AccountID).
		Return(s.bankAccount, nil).Once()
	s.mockMatchRepo.On("SaveMatch", ctx, mock.MatchedBy(func(m domain.BankMatch) bool {
		return m.Status == domain.DocDraft && m.Direction == domain.BankInflow &&
			m.Amount.Equal(decimal.RequireFromString("340.01"))
	})).Return(nil).Once()

	match, err := s.service.CreateMatch(ctx, s.caller, req)

	s.Require().NoError(err)
	s.Equal(domain.DocDraft, match.Status)
	s.mockMatchRepo.AssertExpectations(s.T())
}

func (s *BankMatchServiceTestSuite) TestCreateMatch_NonPositiveAmount() {
	ctx := context.Background()
	req := dto.CreateBankMatchRequest{
		BankAccountID: s.bankAccount.AccountID,
		StatementRef:  "STMT-2025-05-118",
		StatementDate: s.statementDate,
		Direction:     domain.BankOutflow,
		Amount:        decimal.Zero,
	}

	s.mockPeriodSvc.On("AssertPostable", ctx, s.caller.TenantID, s.statementDate,
		domain.PeriodActionCreate, s.caller.UserID, "bank_match", "").Return(s.openPeriod, nil).Once()

	_, err := s.service.CreateMatch(ctx, s.caller, req)

	s.Require().Error(err)
	s.ErrorIs(err, apperrors.ErrValidation)
	s.mockAccountSvc.AssertNotCalled(s.T(), "GetAccountByID", mock.Anything, mock.Anything, mock.Anything)
}

func (s *BankMatchServiceTestSuite) TestCreateMatch_InactiveBankAccount() {
	ctx := context.Background()
	s.bankAccount.IsActive = false
	req := dto.CreateBankMatchRequest{
		BankAccountID: s.bankAccount.AccountID,
		StatementRef:  "STMT-2025-05-119",
		StatementDate: s.statementDate,
		Direction:     domain.BankInflow,
		Amount:        decimal.RequireFromString("12.50"),
	}

	s.mockPeriodSvc.On("AssertPostable", ctx, s.caller.TenantID, s.statementDate,
		domain.PeriodActionCreate, s.caller.UserID, "bank_match", "").Return(s.openPeriod, nil).Once()
	s.mockAccountSvc.On("GetAccountByID", ctx, s.caller.TenantID, s.bankAccount.AccountID).
		Return(s.bankAccount, nil).Once()

	_, err := s.service.CreateMatch(ctx, s.caller, req)

	s.Require().Error(err)
	s.ErrorIs(err, services.ErrAccountNotPostable)
	s.mockMatchRepo.AssertNotCalled(s.T(), "SaveMatch", mock.Anything, mock.Anything)
}

func (s *BankMatchServiceTestSuite) TestSubmitMatch_InvalidTransition() {
	ctx := context.Background()
	match := s.match(domain.DocPosted, domain.BankInflow)

	s.mockSoDSvc.On("CheckAndEnforce", ctx, s.caller.TenantID, s.caller.UserID, "bank_match:submit",
		[]string{domain.PermBankMatchSubmit}, s.caller.Permissions).Return(nil).Once()
	s.mockMatchRepo.On("FindMatchByID", ctx, s.caller.TenantID, match.MatchID).Return(match, nil).Once()

	_, err := s.service.SubmitMatch(ctx, s.caller, match.MatchID)

	s.Require().Error(err)
	s.ErrorIs(err, services.ErrDocumentState)
	s.ErrorIs(err, apperrors.ErrConflict)
	s.mockMatchRepo.AssertNotCalled(s.T(), "UpdateMatchStatus", mock.Anything, mock.Anything, mock.Anything)
}

func (s *BankMatchServiceTestSuite) TestPostMatch_InflowDebitsBankAccount() {
	ctx := context.Background()
	match := s.match(domain.DocApproved, domain.BankInflow)
	bankClearingID := uuid.NewString()
	config := &domain.TenantConfig{
		TenantID:              s.caller.TenantID,
		BankClearingAccountID: bankClearingID,
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

	s.mockSoDSvc.On("CheckAndEnforce", ctx, s.caller.TenantID, s.caller.UserID, "bank_match:post",
		[]string{domain.PermBankMatchPost}, s.caller.Permissions).Return(nil).Once()
	s.mockMatchRepo.On("FindMatchByID", ctx, s.caller.TenantID, match.MatchID).Return(match, nil).Once()
	s.mockEngine.On("FindPostedJournalForSource", ctx, s.caller.TenantID,
		domain.SourceBankMatch, match.MatchID).Return(nil, nil).Once()
	s.mockConfigRepo.On("FindTenantConfig", ctx, s.caller.TenantID).Return(config, nil).Once()
	s.mockEngine.On("PrepareSourceJournal", ctx, s.caller, mock.MatchedBy(func(spec portssvc.SourceJournalSpec) bool {
		if spec.SourceType != domain.SourceBankMatch || len(spec.Lines) != 2 {
			return false
		}
		debit := spec.Lines[0]
		credit := spec.Lines[1]
		return debit.AccountID == match.BankAccountID && debit.Debit.Equal(match.Amount) &&
			credit.AccountID == bankClearingID && credit.Credit.Equal(match.Amount)
	})).Return(journal, lines, nil).Once()
	s.mockMatchRepo.On("MarkMatchPosted", ctx, mock.MatchedBy(func(m domain.BankMatch) bool {
		return m.Status == domain.DocPosted &&
			m.PostedJournalID != nil && *m.PostedJournalID == journal.JournalID
	}), *journal, lines).Return(nil).Once()
	s.mockAudit.On("Record", ctx, mock.MatchedBy(func(e domain.AuditEvent) bool {
		return e.EventType == "POSTING" && e.EntityType == "bank_match" && e.Outcome == domain.AuditAllowed
	})).Once()

	posted, postedJournal, err := s.service.PostMatch(ctx, s.caller, match.MatchID)

	s.Require().NoError(err)
	s.Equal(domain.DocPosted, posted.Status)
	s.Equal(journal.JournalID, postedJournal.JournalID)
	s.mockMatchRepo.AssertExpectations(s.T())
	s.mockEngine.AssertExpectations(s.T())
}

func (s *BankMatchServiceTestSuite) TestPostMatch_OutflowCreditsBankAccount() {
	ctx := context.Background()
	match := s.match(domain.DocApproved, domain.BankOutflow)
	bankClearingID := uuid.NewString()
	config := &domain.TenantConfig{
		TenantID:              s.caller.TenantID,
		BankClearingAccountID: bankClearingID,
	}
	journal := &domain.JournalEntry{
		JournalID: uuid.NewString(),
		TenantID:  s.caller.TenantID,
		Status:    domain.JournalPosted,
	}
	lines := []domain.JournalLine{{LineID: uuid.NewString(), JournalID: journal.JournalID}}

	s.mockSoDSvc.On("CheckAndEnforce", ctx, s.caller.TenantID, s.caller.UserID, "bank_match:post",
		[]string{domain.PermBankMatchPost}, s.caller.Permissions).Return(nil).Once()
	s.mockMatchRepo.On("FindMatchByID", ctx, s.caller.TenantID, match.MatchID).Return(match, nil).Once()
	s.mockEngine.On("FindPostedJournalForSource", ctx, s.caller.TenantID,
		domain.SourceBankMatch, match.MatchID).Return(nil, nil).Once()
	s.mockConfigRepo.On("FindTenantConfig", ctx, s.caller.TenantID).Return(config, nil).Once()
	s.mockEngine.On("PrepareSourceJournal", ctx, s.caller, mock.MatchedBy(func(spec portssvc.SourceJournalSpec) bool {
		if len(spec.Lines) != 2 {
			return false
		}
		debit := spec.Lines[0]
		credit := spec.Lines[1]
		return debit.AccountID == bankClearingID && debit.Debit.Equal(match.Amount) &&
			credit.AccountID == match.BankAccountID && credit.Credit.Equal(match.Amount)
	})).Return(journal, lines, nil).Once()
	s.mockMatchRepo.On("MarkMatchPosted", ctx, mock.AnythingOfType("domain.BankMatch"), *journal, lines).
		Return(nil).Once()
	s.mockAudit.On("Record", ctx, mock.AnythingOfType("domain.AuditEvent")).Once()

	_, _, err := s.service.PostMatch(ctx, s.caller, match.MatchID)

	s.Require().NoError(err)
	s.mockEngine.AssertExpectations(s.T())
}

func (s *BankMatchServiceTestSuite) TestPostMatch_RepostReturnsExistingJournal() {
	ctx := context.Background()
	match := s.match(domain.DocPosted, domain.BankInflow)
	existing := &domain.JournalEntry{
		JournalID: uuid.NewString(),
		TenantID:  s.caller.TenantID,
		Status:    domain.JournalPosted,
	}

	s.mockSoDSvc.On("CheckAndEnforce", ctx, s.caller.TenantID, s.caller.UserID, "bank_match:post",
		[]string{domain.PermBankMatchPost}, s.caller.Permissions).Return(nil).Once()
	s.mockMatchRepo.On("FindMatchByID", ctx, s.caller.TenantID, match.MatchID).Return(match, nil).Once()
	s.mockEngine.On("FindPostedJournalForSource", ctx, s.caller.TenantID,
		domain.SourceBankMatch, match.MatchID).Return(existing, nil).Once()

	_, journal, err := s.service.PostMatch(ctx, s.caller, match.MatchID)

	s.Require().NoError(err)
	s.Equal(existing.JournalID, journal.JournalID)
	s.mockEngine.AssertNotCalled(s.T(), "PrepareSourceJournal", mock.Anything, mock.Anything, mock.Anything)
	s.mockMatchRepo.AssertNotCalled(s.T(), "MarkMatchPosted",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestBankMatchServiceTestSuite(t *testing.T) {
	suite.Run(t, new(BankMatchServiceTestSuite))
}
