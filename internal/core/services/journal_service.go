package services

import (
	"context"
	"errors"
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
	"github.com/shopspring/decimal"
)

var (
	// ErrJournalTooFewLines indicates a journal with fewer than two lines.
	ErrJournalTooFewLines = fmt.Errorf("%w: a journal requires at least two lines", apperrors.ErrValidation)
	// ErrJournalLineAmount indicates a line that does not carry exactly one
	// positive side.
	ErrJournalLineAmount = fmt.Errorf("%w: each line must carry exactly one of debit or credit, positive", apperrors.ErrValidation)
	// ErrJournalUnbalanced indicates total debits and credits differ after
	// rounding to 2 decimal places.
	ErrJournalUnbalanced = fmt.Errorf("%w: journal debits and credits do not balance", apperrors.ErrValidation)
	// ErrAccountNotPostable indicates a line references a missing, inactive or
	// posting-forbidden account.
	ErrAccountNotPostable = fmt.Errorf("%w: account is not available for posting", apperrors.ErrValidation)
	// ErrSourceJournalNotPosted indicates a journal already exists for the
	// source document but is stuck short of POSTED.
	ErrSourceJournalNotPosted = fmt.Errorf("%w: a journal exists for this source but is not posted", apperrors.ErrConflict)
	// ErrJournalNotPostable indicates a posting attempt on a journal whose
	// status does not allow it.
	ErrJournalNotPostable = fmt.Errorf("%w: journal is not in a postable status", apperrors.ErrConflict)
)

// journalService is the posting engine. It owns journal validation and is the
// only code path that produces POSTED journals, whether from manual entry or
// from the subledger document state machines.
type journalService struct {
	BaseService
	journalRepo portsrepo.JournalRepositoryFacade
	accountSvc  portssvc.AccountSvcFacade
	periodSvc   portssvc.PeriodGuardSvcFacade
	sodSvc      portssvc.SoDGuardSvcFacade
}

// NewJournalService creates the posting engine.
func NewJournalService(
	journalRepo portsrepo.JournalRepositoryFacade,
	accountSvc portssvc.AccountSvcFacade,
	periodSvc portssvc.PeriodGuardSvcFacade,
	sodSvc portssvc.SoDGuardSvcFacade,
) portssvc.JournalSvcFacade {
	return &journalService{
		journalRepo: journalRepo,
		accountSvc:  accountSvc,
		periodSvc:   periodSvc,
		sodSvc:      sodSvc,
	}
}

var _ portssvc.JournalSvcFacade = (*journalService)(nil)

// validateLines enforces the structural journal invariants: at least two
// lines, exactly one positive side per line, every account active and
// posting-allowed, and debits equal to credits after rounding.
func (s *journalService) validateLines(ctx context.Context, tenantID string, lines []domain.JournalLine) error {
	if len(lines) < 2 {
		return ErrJournalTooFewLines
	}

	accountIDs := make([]string, 0, len(lines))
	seen := make(map[string]struct{}, len(lines))
	totalDebit := decimal.Zero
	totalCredit := decimal.Zero

	for i, line := range lines {
		debitSet := line.Debit.IsPositive()
		creditSet := line.Credit.IsPositive()
		if line.Debit.IsNegative() || line.Credit.IsNegative() || debitSet == creditSet {
			return fmt.Errorf("line %d: %w", i+1, ErrJournalLineAmount)
		}
		totalDebit = totalDebit.Add(line.Debit)
		totalCredit = totalCredit.Add(line.Credit)
		if _, ok := seen[line.AccountID]; !ok {
			seen[line.AccountID] = struct{}{}
			accountIDs = append(accountIDs, line.AccountID)
		}
	}

	if !money.EqualRounded(totalDebit, totalCredit) {
		return fmt.Errorf("%w: debits %s, credits %s", ErrJournalUnbalanced,
			money.Round2(totalDebit).String(), money.Round2(totalCredit).String())
	}

	accounts, err := s.accountSvc.GetAccountsByIDs(ctx, tenantID, accountIDs)
	if err != nil {
		return fmt.Errorf("failed to load line accounts: %w", err)
	}
	for _, id := range accountIDs {
		account, ok := accounts[id]
		if !ok {
			return fmt.Errorf("%w: account %s not found", ErrAccountNotPostable, id)
		}
		if !account.MayPost() {
			return fmt.Errorf("%w: account %s (%s)", ErrAccountNotPostable, account.Code, account.AccountID)
		}
	}
	return nil
}

func (s *journalService) FindPostedJournalForSource(ctx context.Context, tenantID string, sourceType domain.SourceType, sourceID string) (*domain.JournalEntry, error) {
	reference := domain.SourceReference(sourceType, sourceID)
	journal, err := s.journalRepo.FindJournalByReference(ctx, tenantID, reference)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to look up journal for %s: %w", reference, err)
	}
	if journal.Status != domain.JournalPosted {
		s.LogError(ctx, ErrSourceJournalNotPosted, "Source journal exists but is not posted",
			slog.String("tenant_id", tenantID),
			slog.String("reference", reference),
			slog.String("journal_id", journal.JournalID),
			slog.String("status", string(journal.Status)))
		return nil, fmt.Errorf("journal %s for %s: %w", journal.JournalID, reference, ErrSourceJournalNotPosted)
	}
	lines, err := s.journalRepo.FindLinesByJournalID(ctx, journal.JournalID)
	if err != nil {
		return nil, fmt.Errorf("failed to load lines for journal %s: %w", journal.JournalID, err)
	}
	journal.Lines = lines
	return journal, nil
}

func (s *journalService) PrepareSourceJournal(ctx context.Context, caller domain.Caller, spec portssvc.SourceJournalSpec) (*domain.JournalEntry, []domain.JournalLine, error) {
	if err := s.validateLines(ctx, caller.TenantID, spec.Lines); err != nil {
		return nil, nil, err
	}
	if _, err := s.periodSvc.AssertPostable(ctx, caller.TenantID, spec.JournalDate, domain.PeriodActionPost,
		caller.UserID, string(spec.SourceType), spec.SourceID); err != nil {
		return nil, nil, err
	}

	journalType := spec.JournalType
	if journalType == "" {
		journalType = domain.JournalStandard
	}

	now := time.Now().UTC()
	journal := domain.JournalEntry{
		JournalID:         uuid.NewString(),
		TenantID:          caller.TenantID,
		JournalDate:       spec.JournalDate,
		Reference:         domain.SourceReference(spec.SourceType, spec.SourceID),
		Description:       spec.Description,
		Status:            domain.JournalPosted,
		JournalType:       journalType,
		SourceType:        spec.SourceType,
		SourceID:          spec.SourceID,
		PostedBy:          &caller.UserID,
		PostedAt:          &now,
		OriginalJournalID: spec.OriginalJournalID,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     caller.UserID,
			LastUpdatedAt: now,
			LastUpdatedBy: caller.UserID,
		},
	}

	lines := make([]domain.JournalLine, len(spec.Lines))
	for i, line := range spec.Lines {
		line.LineID = uuid.NewString()
		line.JournalID = journal.JournalID
		line.Debit = money.Round2(line.Debit)
		line.Credit = money.Round2(line.Credit)
		lines[i] = line
	}
	journal.Lines = lines
	return &journal, lines, nil
}

func (s *journalService) BuildReversalJournal(ctx context.Context, caller domain.Caller, original domain.JournalEntry, journalDate time.Time, description string) (*domain.JournalEntry, []domain.JournalLine, error) {
	if original.Status != domain.JournalPosted {
		return nil, nil, fmt.Errorf("cannot reverse journal %s: %w", original.JournalID, ErrJournalNotPostable)
	}

	originalLines := original.Lines
	if len(originalLines) == 0 {
		var err error
		originalLines, err = s.journalRepo.FindLinesByJournalID(ctx, original.JournalID)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to load lines for journal %s: %w", original.JournalID, err)
		}
	}

	if _, err := s.periodSvc.AssertPostable(ctx, caller.TenantID, journalDate, domain.PeriodActionPost,
		caller.UserID, "journal", original.JournalID); err != nil {
		return nil, nil, err
	}

	now := time.Now().UTC()
	reversal := domain.JournalEntry{
		JournalID:         uuid.NewString(),
		TenantID:          caller.TenantID,
		JournalDate:       journalDate,
		Reference:         "REV:" + original.JournalID,
		Description:       description,
		Status:            domain.JournalPosted,
		JournalType:       domain.JournalReversing,
		SourceType:        original.SourceType,
		SourceID:          original.SourceID,
		PostedBy:          &caller.UserID,
		PostedAt:          &now,
		OriginalJournalID: &original.JournalID,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     caller.UserID,
			LastUpdatedAt: now,
			LastUpdatedBy: caller.UserID,
		},
	}

	lines := make([]domain.JournalLine, len(originalLines))
	for i, line := range originalLines {
		mirrored := line.Mirror()
		mirrored.LineID = uuid.NewString()
		mirrored.JournalID = reversal.JournalID
		lines[i] = mirrored
	}
	reversal.Lines = lines
	return &reversal, lines, nil
}

func (s *journalService) CreateJournal(ctx context.Context, caller domain.Caller, req dto.CreateJournalRequest) (*domain.JournalEntry, error) {
	if err := s.RequirePermission(ctx, caller, domain.PermJournalCreate); err != nil {
		return nil, err
	}

	lines := make([]domain.JournalLine, len(req.Lines))
	for i, lr := range req.Lines {
		lines[i] = domain.JournalLine{
			AccountID:  lr.AccountID,
			Debit:      lr.Debit,
			Credit:     lr.Credit,
			Memo:       lr.Memo,
			Department: lr.Department,
			Project:    lr.Project,
			Fund:       lr.Fund,
		}
	}
	if err := s.validateLines(ctx, caller.TenantID, lines); err != nil {
		return nil, err
	}
	if _, err := s.periodSvc.AssertPostable(ctx, caller.TenantID, req.JournalDate, domain.PeriodActionCreate,
		caller.UserID, "journal", ""); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	journal := domain.JournalEntry{
		JournalID:   uuid.NewString(),
		TenantID:    caller.TenantID,
		JournalDate: req.JournalDate,
		Reference:   req.Reference,
		Description: req.Description,
		Status:      domain.JournalDraft,
		JournalType: domain.JournalStandard,
		SourceType:  domain.SourceManual,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     caller.UserID,
			LastUpdatedAt: now,
			LastUpdatedBy: caller.UserID,
		},
	}
	for i := range lines {
		lines[i].LineID = uuid.NewString()
		lines[i].JournalID = journal.JournalID
		lines[i].Debit = money.Round2(lines[i].Debit)
		lines[i].Credit = money.Round2(lines[i].Credit)
	}
	journal.Lines = lines

	if err := s.journalRepo.SaveJournal(ctx, journal, lines); err != nil {
		s.LogError(ctx, err, "Failed to save journal", slog.String("tenant_id", caller.TenantID))
		return nil, fmt.Errorf("failed to save journal: %w", err)
	}
	s.LogInfo(ctx, "Journal created",
		slog.String("journal_id", journal.JournalID),
		slog.Int("lines", len(lines)))
	return &journal, nil
}

func (s *journalService) PostJournal(ctx context.Context, caller domain.Caller, journalID string) (*domain.JournalEntry, error) {
	if err := s.RequirePermission(ctx, caller, domain.PermJournalPost); err != nil {
		return nil, err
	}
	if err := s.sodSvc.CheckAndEnforce(ctx, caller.TenantID, caller.UserID, "journal:post",
		[]string{domain.PermJournalPost}, caller.Permissions); err != nil {
		return nil, err
	}

	journal, err := s.journalRepo.FindJournalByID(ctx, caller.TenantID, journalID)
	if err != nil {
		return nil, fmt.Errorf("failed to find journal %s: %w", journalID, err)
	}
	lines, err := s.journalRepo.FindLinesByJournalID(ctx, journalID)
	if err != nil {
		return nil, fmt.Errorf("failed to load lines for journal %s: %w", journalID, err)
	}
	journal.Lines = lines
	if journal.Status == domain.JournalPosted {
		return journal, nil
	}

	// Accounts or periods may have changed since the draft was saved, so the
	// full validation runs again at posting time.
	if err := s.validateLines(ctx, caller.TenantID, lines); err != nil {
		return nil, err
	}
	if _, err := s.periodSvc.AssertPostable(ctx, caller.TenantID, journal.JournalDate, domain.PeriodActionPost,
		caller.UserID, "journal", journalID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if err := s.journalRepo.MarkJournalPosted(ctx, caller.TenantID, journalID, caller.UserID, now); err != nil {
		s.LogError(ctx, err, "Failed to post journal", slog.String("journal_id", journalID))
		return nil, fmt.Errorf("failed to post journal %s: %w", journalID, err)
	}

	journal.Status = domain.JournalPosted
	journal.PostedBy = &caller.UserID
	journal.PostedAt = &now
	s.LogInfo(ctx, "Journal posted", slog.String("journal_id", journalID))
	return journal, nil
}

func (s *journalService) GetJournalByID(ctx context.Context, caller domain.Caller, journalID string) (*domain.JournalEntry, error) {
	journal, err := s.journalRepo.FindJournalByID(ctx, caller.TenantID, journalID)
	if err != nil {
		return nil, fmt.Errorf("failed to find journal %s: %w", journalID, err)
	}
	lines, err := s.journalRepo.FindLinesByJournalID(ctx, journalID)
	if err != nil {
		return nil, fmt.Errorf("failed to load lines for journal %s: %w", journalID, err)
	}
	journal.Lines = lines
	return journal, nil
}

func (s *journalService) ListJournals(ctx context.Context, caller domain.Caller, limit, offset int) ([]domain.JournalEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	journals, err := s.journalRepo.ListJournals(ctx, caller.TenantID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list journals: %w", err)
	}
	return journals, nil
}
