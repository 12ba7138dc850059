package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/finledger/fin_ledger_app/internal/apperrors"
	"github.com/finledger/fin_ledger_app/internal/core/domain"
	portsrepo "github.com/finledger/fin_ledger_app/internal/core/ports/repositories"
	portssvc "github.com/finledger/fin_ledger_app/internal/core/ports/services"
	"github.com/finledger/fin_ledger_app/internal/dto"
	"github.com/finledger/fin_ledger_app/internal/utils/money"
	"github.com/google/uuid"
)

// bankMatchService drives the bank reconciliation match lifecycle. Posting an
// inflow debits the bank GL account and credits bank clearing; an outflow
// posts the opposite pair.
type bankMatchService struct {
	BaseService
	matchRepo  portsrepo.BankMatchRepositoryFacade
	configRepo portsrepo.TenantConfigRepositoryFacade
	accountSvc portssvc.AccountSvcFacade
	periodSvc  portssvc.PeriodGuardSvcFacade
	sodSvc     portssvc.SoDGuardSvcFacade
	auditSvc   portssvc.AuditSvcFacade
	engine     portssvc.PostingEngineSvc
}

// NewBankMatchService creates the bank reconciliation match service.
func NewBankMatchService(
	matchRepo portsrepo.BankMatchRepositoryFacade,
	configRepo portsrepo.TenantConfigRepositoryFacade,
	accountSvc portssvc.AccountSvcFacade,
	periodSvc portssvc.PeriodGuardSvcFacade,
	sodSvc portssvc.SoDGuardSvcFacade,
	auditSvc portssvc.AuditSvcFacade,
	engine portssvc.PostingEngineSvc,
) portssvc.BankMatchSvcFacade {
	return &bankMatchService{
		matchRepo:  matchRepo,
		configRepo: configRepo,
		accountSvc: accountSvc,
		periodSvc:  periodSvc,
		sodSvc:     sodSvc,
		auditSvc:   auditSvc,
		engine:     engine,
	}
}

var _ portssvc.BankMatchSvcFacade = (*bankMatchService)(nil)

func (s *bankMatchService) CreateMatch(ctx context.Context, caller domain.Caller, req dto.CreateBankMatchRequest) (*domain.BankMatch, error) {
	if err := s.RequirePermission(ctx, caller, domain.PermBankMatchCreate); err != nil {
		return nil, err
	}
	if _, err := s.periodSvc.AssertPostable(ctx, caller.TenantID, req.StatementDate, domain.PeriodActionCreate,
		caller.UserID, "bank_match", ""); err != nil {
		return nil, err
	}
	if !req.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: match amount must be positive", apperrors.ErrValidation)
	}

	bankAccount, err := s.accountSvc.GetAccountByID(ctx, caller.TenantID, req.BankAccountID)
	if err != nil {
		return nil, fmt.Errorf("failed to find bank account %s: %w", req.BankAccountID, err)
	}
	if !bankAccount.MayPost() {
		return nil, fmt.Errorf("%w: bank account %s", ErrAccountNotPostable, bankAccount.Code)
	}

	now := time.Now().UTC()
	match := domain.BankMatch{
		MatchID:       uuid.NewString(),
		TenantID:      caller.TenantID,
		BankAccountID: req.BankAccountID,
		StatementRef:  req.StatementRef,
		StatementDate: req.StatementDate,
		Direction:     req.Direction,
		Amount:        money.Round2(req.Amount),
		Status:        domain.DocDraft,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     caller.UserID,
			LastUpdatedAt: now,
			LastUpdatedBy: caller.UserID,
		},
	}
	if err := s.matchRepo.SaveMatch(ctx, match); err != nil {
		s.LogError(ctx, err, "Failed to save bank match", slog.String("statement_ref", req.StatementRef))
		return nil, fmt.Errorf("failed to save bank match: %w", err)
	}
	s.LogInfo(ctx, "Bank match created", slog.String("match_id", match.MatchID))
	return &match, nil
}

func (s *bankMatchService) SubmitMatch(ctx context.Context, caller domain.Caller, matchID string) (*domain.BankMatch, error) {
	if err := s.RequirePermission(ctx, caller, domain.PermBankMatchSubmit); err != nil {
		return nil, err
	}
	if err := s.sodSvc.CheckAndEnforce(ctx, caller.TenantID, caller.UserID, "bank_match:submit",
		[]string{domain.PermBankMatchSubmit}, caller.Permissions); err != nil {
		return nil, err
	}

	match, err := s.matchRepo.FindMatchByID(ctx, caller.TenantID, matchID)
	if err != nil {
		return nil, fmt.Errorf("failed to find bank match %s: %w", matchID, err)
	}
	if err := assertCreator(match.CreatedBy, caller.UserID); err != nil {
		return nil, err
	}
	if err := assertTransition(match.Status, domain.DocSubmitted); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	expected := match.Status
	match.Status = domain.DocSubmitted
	match.SubmittedBy = &caller.UserID
	match.SubmittedAt = &now
	match.LastUpdatedAt = now
	match.LastUpdatedBy = caller.UserID
	if err := s.matchRepo.UpdateMatchStatus(ctx, *match, expected); err != nil {
		return nil, fmt.Errorf("failed to submit bank match %s: %w", matchID, err)
	}
	return match, nil
}

func (s *bankMatchService) ApproveMatch(ctx context.Context, caller domain.Caller, matchID string) (*domain.BankMatch, error) {
	if err := s.RequirePermission(ctx, caller, domain.PermBankMatchApprove); err != nil {
		return nil, err
	}
	if err := s.sodSvc.CheckAndEnforce(ctx, caller.TenantID, caller.UserID, "bank_match:approve",
		[]string{domain.PermBankMatchApprove}, caller.Permissions); err != nil {
		return nil, err
	}

	match, err := s.matchRepo.FindMatchByID(ctx, caller.TenantID, matchID)
	if err != nil {
		return nil, fmt.Errorf("failed to find bank match %s: %w", matchID, err)
	}
	if err := assertTransition(match.Status, domain.DocApproved); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	expected := match.Status
	match.Status = domain.DocApproved
	match.ApprovedBy = &caller.UserID
	match.ApprovedAt = &now
	match.LastUpdatedAt = now
	match.LastUpdatedBy = caller.UserID
	if err := s.matchRepo.UpdateMatchStatus(ctx, *match, expected); err != nil {
		return nil, fmt.Errorf("failed to approve bank match %s: %w", matchID, err)
	}
	return match, nil
}

func (s *bankMatchService) PostMatch(ctx context.Context, caller domain.Caller, matchID string) (*domain.BankMatch, *domain.JournalEntry, error) {
	if err := s.RequirePermission(ctx, caller, domain.PermBankMatchPost); err != nil {
		return nil, nil, err
	}
	if err := s.sodSvc.CheckAndEnforce(ctx, caller.TenantID, caller.UserID, "bank_match:post",
		[]string{domain.PermBankMatchPost}, caller.Permissions); err != nil {
		return nil, nil, err
	}

	match, err := s.matchRepo.FindMatchByID(ctx, caller.TenantID, matchID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to find bank match %s: %w", matchID, err)
	}

	existing, err := s.engine.FindPostedJournalForSource(ctx, caller.TenantID, domain.SourceBankMatch, matchID)
	if err != nil {
		return nil, nil, err
	}
	if existing != nil {
		s.LogInfo(ctx, "Bank match already posted",
			slog.String("match_id", matchID),
			slog.String("journal_id", existing.JournalID))
		return match, existing, nil
	}
	if err := assertTransition(match.Status, domain.DocPosted); err != nil {
		return nil, nil, err
	}

	config, err := s.configRepo.FindTenantConfig(ctx, caller.TenantID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load tenant config: %w", err)
	}
	bankClearingID, err := config.ControlAccount(domain.ControlBankClearing)
	if err != nil {
		return nil, nil, err
	}

	var journalLines []domain.JournalLine
	memo := "Statement " + match.StatementRef
	if match.Direction == domain.BankInflow {
		journalLines = []domain.JournalLine{
			{AccountID: match.BankAccountID, Debit: match.Amount, Memo: memo},
			{AccountID: bankClearingID, Credit: match.Amount, Memo: "Bank clearing"},
		}
	} else {
		journalLines = []domain.JournalLine{
			{AccountID: bankClearingID, Debit: match.Amount, Memo: "Bank clearing"},
			{AccountID: match.BankAccountID, Credit: match.Amount, Memo: memo},
		}
	}

	journal, lines, err := s.engine.PrepareSourceJournal(ctx, caller, portssvc.SourceJournalSpec{
		SourceType:  domain.SourceBankMatch,
		SourceID:    match.MatchID,
		JournalDate: match.StatementDate,
		Description: "Bank reconciliation " + match.StatementRef,
		Lines:       journalLines,
	})
	if err != nil {
		return nil, nil, err
	}

	now := time.Now().UTC()
	match.Status = domain.DocPosted
	match.PostedBy = &caller.UserID
	match.PostedAt = &now
	match.PostedJournalID = &journal.JournalID
	match.LastUpdatedAt = now
	match.LastUpdatedBy = caller.UserID

	if err := s.matchRepo.MarkMatchPosted(ctx, *match, *journal, lines); err != nil {
		s.LogError(ctx, err, "Failed to post bank match", slog.String("match_id", matchID))
		return nil, nil, fmt.Errorf("failed to post bank match %s: %w", matchID, err)
	}

	s.auditSvc.Record(ctx, domain.AuditEvent{
		TenantID:    caller.TenantID,
		EventType:   "POSTING",
		EntityType:  "bank_match",
		EntityID:    match.MatchID,
		Action:      "post",
		Outcome:     domain.AuditAllowed,
		Reason:      "posted journal " + journal.JournalID,
		ActorUserID: caller.UserID,
	})
	s.LogInfo(ctx, "Bank match posted",
		slog.String("match_id", matchID),
		slog.String("journal_id", journal.JournalID))
	return match, journal, nil
}

func (s *bankMatchService) GetMatchByID(ctx context.Context, caller domain.Caller, matchID string) (*domain.BankMatch, error) {
	match, err := s.matchRepo.FindMatchByID(ctx, caller.TenantID, matchID)
	if err != nil {
		return nil, fmt.Errorf("failed to find bank match %s: %w", matchID, err)
	}
	return match, nil
}
