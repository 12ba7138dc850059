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

var (
	// ErrCreditInvoiceNotPosted indicates a credit note referencing an invoice
	// that is not posted.
	ErrCreditInvoiceNotPosted = fmt.Errorf("%w: credit notes may only reference posted customer invoices", apperrors.ErrValidation)
	// ErrCreditExceedsOutstanding indicates a credit note total above the
	// referenced invoice's outstanding balance.
	ErrCreditExceedsOutstanding = fmt.Errorf("%w: credit note exceeds the invoice outstanding balance", apperrors.ErrPolicyBlocked)
)

// creditNoteService drives the customer credit note lifecycle, including void
// via a compensating reversal journal.
type creditNoteService struct {
	BaseService
	noteRepo    portsrepo.CreditNoteRepositoryFacade
	invoiceRepo portsrepo.CustomerInvoiceRepositoryFacade
	taxRepo     portsrepo.TaxRepositoryFacade
	configRepo  portsrepo.TenantConfigRepositoryFacade
	taxSvc      portssvc.TaxValidatorSvcFacade
	periodSvc   portssvc.PeriodGuardSvcFacade
	sodSvc      portssvc.SoDGuardSvcFacade
	auditSvc    portssvc.AuditSvcFacade
	engine      portssvc.PostingEngineSvc
	journalRepo portsrepo.JournalRepositoryFacade
}

// NewCreditNoteService creates the credit note service.
func NewCreditNoteService(
	noteRepo portsrepo.CreditNoteRepositoryFacade,
	invoiceRepo portsrepo.CustomerInvoiceRepositoryFacade,
	taxRepo portsrepo.TaxRepositoryFacade,
	configRepo portsrepo.TenantConfigRepositoryFacade,
	taxSvc portssvc.TaxValidatorSvcFacade,
	periodSvc portssvc.PeriodGuardSvcFacade,
	sodSvc portssvc.SoDGuardSvcFacade,
	auditSvc portssvc.AuditSvcFacade,
	engine portssvc.PostingEngineSvc,
	journalRepo portsrepo.JournalRepositoryFacade,
) portssvc.CreditNoteSvcFacade {
	return &creditNoteService{
		noteRepo:    noteRepo,
		invoiceRepo: invoiceRepo,
		taxRepo:     taxRepo,
		configRepo:  configRepo,
		taxSvc:      taxSvc,
		periodSvc:   periodSvc,
		sodSvc:      sodSvc,
		auditSvc:    auditSvc,
		engine:      engine,
		journalRepo: journalRepo,
	}
}

var _ portssvc.CreditNoteSvcFacade = (*creditNoteService)(nil)

func (s *creditNoteService) CreateCreditNote(ctx context.Context, caller domain.Caller, req dto.CreateCreditNoteRequest) (*domain.CustomerCreditNote, error) {
	if err := s.RequirePermission(ctx, caller, domain.PermCreditNoteCreate); err != nil {
		return nil, err
	}
	if _, err := s.periodSvc.AssertPostable(ctx, caller.TenantID, req.CreditDate, domain.PeriodActionCreate,
		caller.UserID, "credit_note", ""); err != nil {
		return nil, err
	}

	invoice, err := s.invoiceRepo.FindInvoiceByID(ctx, caller.TenantID, req.InvoiceID)
	if err != nil {
		return nil, fmt.Errorf("failed to find customer invoice %s: %w", req.InvoiceID, err)
	}
	if invoice.Status != domain.DocPosted {
		return nil, fmt.Errorf("invoice %s is %s: %w", invoice.InvoiceID, invoice.Status, ErrCreditInvoiceNotPosted)
	}

	now := time.Now().UTC()
	note := domain.CustomerCreditNote{
		CreditNoteID: uuid.NewString(),
		TenantID:     caller.TenantID,
		CustomerID:   req.CustomerID,
		InvoiceID:    req.InvoiceID,
		CreditDate:   req.CreditDate,
		Status:       domain.DocDraft,
		TotalAmount:  money.Round2(req.TotalAmount),
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     caller.UserID,
			LastUpdatedAt: now,
			LastUpdatedBy: caller.UserID,
		},
	}
	for _, lr := range req.Lines {
		if !lr.Amount.IsPositive() {
			return nil, fmt.Errorf("line amount must be positive: %w", ErrTotalMismatch)
		}
		note.Lines = append(note.Lines, domain.CreditNoteLine{
			LineID:       uuid.NewString(),
			CreditNoteID: note.CreditNoteID,
			AccountID:    lr.AccountID,
			Description:  lr.Description,
			Amount:       money.Round2(lr.Amount),
		})
	}

	taxLines := make([]domain.TaxLine, len(req.TaxLines))
	for i, tl := range req.TaxLines {
		taxLines[i] = domain.TaxLine{
			TaxLineID:     uuid.NewString(),
			TenantID:      caller.TenantID,
			SourceType:    domain.SourceCustomerCreditNote,
			SourceID:      note.CreditNoteID,
			TaxRateID:     tl.TaxRateID,
			TaxableAmount: tl.TaxableAmount,
			TaxAmount:     tl.TaxAmount,
		}
	}
	summary, err := s.taxSvc.ValidateTaxLines(ctx, caller.TenantID, domain.SourceCustomerCreditNote,
		domain.TaxOutput, note.NetAmount(), taxLines)
	if err != nil {
		return nil, err
	}
	gross := note.NetAmount().Add(summary.TotalTax)
	if !money.EqualRounded(note.TotalAmount, gross) {
		return nil, fmt.Errorf("total %s, net plus tax %s: %w",
			note.TotalAmount.String(), money.Round2(gross).String(), ErrTotalMismatch)
	}

	if err := s.noteRepo.SaveCreditNote(ctx, note, taxLines); err != nil {
		s.LogError(ctx, err, "Failed to save credit note", slog.String("invoice_id", req.InvoiceID))
		return nil, fmt.Errorf("failed to save credit note: %w", err)
	}
	s.LogInfo(ctx, "Credit note created", slog.String("credit_note_id", note.CreditNoteID))
	return &note, nil
}

func (s *creditNoteService) SubmitCreditNote(ctx context.Context, caller domain.Caller, creditNoteID string) (*domain.CustomerCreditNote, error) {
	if err := s.RequirePermission(ctx, caller, domain.PermCreditNoteSubmit); err != nil {
		return nil, err
	}
	if err := s.sodSvc.CheckAndEnforce(ctx, caller.TenantID, caller.UserID, "credit_note:submit",
		[]string{domain.PermCreditNoteSubmit}, caller.Permissions); err != nil {
		return nil, err
	}

	note, err := s.noteRepo.FindCreditNoteByID(ctx, caller.TenantID, creditNoteID)
	if err != nil {
		return nil, fmt.Errorf("failed to find credit note %s: %w", creditNoteID, err)
	}
	if err := assertCreator(note.CreatedBy, caller.UserID); err != nil {
		return nil, err
	}
	if err := assertTransition(note.Status, domain.DocSubmitted); err != nil {
		return nil, err
	}

	taxLines, err := s.taxRepo.FindTaxLinesForSource(ctx, caller.TenantID, domain.SourceCustomerCreditNote, creditNoteID)
	if err != nil {
		return nil, fmt.Errorf("failed to load tax lines for credit note %s: %w", creditNoteID, err)
	}
	gross := note.NetAmount()
	for _, tl := range taxLines {
		gross = gross.Add(tl.TaxAmount)
	}
	if !money.EqualRounded(note.TotalAmount, gross) {
		return nil, fmt.Errorf("total %s, net plus tax %s: %w",
			note.TotalAmount.String(), money.Round2(gross).String(), ErrTotalMismatch)
	}

	now := time.Now().UTC()
	expected := note.Status
	note.Status = domain.DocSubmitted
	note.SubmittedBy = &caller.UserID
	note.SubmittedAt = &now
	note.LastUpdatedAt = now
	note.LastUpdatedBy = caller.UserID
	if err := s.noteRepo.UpdateCreditNoteStatus(ctx, *note, expected); err != nil {
		return nil, fmt.Errorf("failed to submit credit note %s: %w", creditNoteID, err)
	}
	return note, nil
}

func (s *creditNoteService) ApproveCreditNote(ctx context.Context, caller domain.Caller, creditNoteID string) (*domain.CustomerCreditNote, error) {
	if err := s.RequirePermission(ctx, caller, domain.PermCreditNoteApprove); err != nil {
		return nil, err
	}
	if err := s.sodSvc.CheckAndEnforce(ctx, caller.TenantID, caller.UserID, "credit_note:approve",
		[]string{domain.PermCreditNoteApprove}, caller.Permissions); err != nil {
		return nil, err
	}

	note, err := s.noteRepo.FindCreditNoteByID(ctx, caller.TenantID, creditNoteID)
	if err != nil {
		return nil, fmt.Errorf("failed to find credit note %s: %w", creditNoteID, err)
	}
	if err := assertTransition(note.Status, domain.DocApproved); err != nil {
		return nil, err
	}

	balance, err := s.invoiceRepo.GetOutstandingBalance(ctx, caller.TenantID, note.InvoiceID)
	if err != nil {
		return nil, fmt.Errorf("failed to compute outstanding balance for invoice %s: %w", note.InvoiceID, err)
	}
	outstanding := money.Round2(balance.Outstanding())
	if note.TotalAmount.GreaterThan(outstanding) {
		s.auditSvc.Record(ctx, domain.AuditEvent{
			TenantID:    caller.TenantID,
			EventType:   "CREDIT_GUARD",
			EntityType:  "credit_note",
			EntityID:    creditNoteID,
			Action:      "approve",
			Outcome:     domain.AuditBlocked,
			Reason:      fmt.Sprintf("credit %s exceeds outstanding %s on invoice %s", note.TotalAmount.String(), outstanding.String(), note.InvoiceID),
			ActorUserID: caller.UserID,
		})
		return nil, fmt.Errorf("credit %s, outstanding %s on invoice %s: %w",
			note.TotalAmount.String(), outstanding.String(), note.InvoiceID, ErrCreditExceedsOutstanding)
	}

	now := time.Now().UTC()
	expected := note.Status
	note.Status = domain.DocApproved
	note.ApprovedBy = &caller.UserID
	note.ApprovedAt = &now
	note.LastUpdatedAt = now
	note.LastUpdatedBy = caller.UserID
	if err := s.noteRepo.UpdateCreditNoteStatus(ctx, *note, expected); err != nil {
		return nil, fmt.Errorf("failed to approve credit note %s: %w", creditNoteID, err)
	}
	return note, nil
}

func (s *creditNoteService) PostCreditNote(ctx context.Context, caller domain.Caller, creditNoteID string) (*domain.CustomerCreditNote, *domain.JournalEntry, error) {
	if err := s.RequirePermission(ctx, caller, domain.PermCreditNotePost); err != nil {
		return nil, nil, err
	}
	if err := s.sodSvc.CheckAndEnforce(ctx, caller.TenantID, caller.UserID, "credit_note:post",
		[]string{domain.PermCreditNotePost}, caller.Permissions); err != nil {
		return nil, nil, err
	}

	note, err := s.noteRepo.FindCreditNoteByID(ctx, caller.TenantID, creditNoteID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to find credit note %s: %w", creditNoteID, err)
	}

	existing, err := s.engine.FindPostedJournalForSource(ctx, caller.TenantID, domain.SourceCustomerCreditNote, creditNoteID)
	if err != nil {
		return nil, nil, err
	}
	if existing != nil {
		s.LogInfo(ctx, "Credit note already posted",
			slog.String("credit_note_id", creditNoteID),
			slog.String("journal_id", existing.JournalID))
		return note, existing, nil
	}
	if err := assertTransition(note.Status, domain.DocPosted); err != nil {
		return nil, nil, err
	}

	taxLines, err := s.taxRepo.FindTaxLinesForSource(ctx, caller.TenantID, domain.SourceCustomerCreditNote, creditNoteID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load tax lines for credit note %s: %w", creditNoteID, err)
	}
	summary, err := s.taxSvc.ValidateTaxLines(ctx, caller.TenantID, domain.SourceCustomerCreditNote,
		domain.TaxOutput, note.NetAmount(), taxLines)
	if err != nil {
		return nil, nil, err
	}
	gross := note.NetAmount().Add(summary.TotalTax)
	if !money.EqualRounded(note.TotalAmount, gross) {
		return nil, nil, fmt.Errorf("total %s, net plus tax %s: %w",
			note.TotalAmount.String(), money.Round2(gross).String(), ErrTotalMismatch)
	}

	config, err := s.configRepo.FindTenantConfig(ctx, caller.TenantID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load tenant config: %w", err)
	}
	arAccountID, err := config.ControlAccount(domain.ControlAR)
	if err != nil {
		return nil, nil, err
	}

	var journalLines []domain.JournalLine
	for _, line := range note.Lines {
		journalLines = append(journalLines, domain.JournalLine{
			AccountID: line.AccountID,
			Debit:     line.Amount,
			Memo:      line.Description,
		})
	}
	for _, ct := range summary.ControlTotals {
		journalLines = append(journalLines, domain.JournalLine{
			AccountID: ct.GLAccountID,
			Debit:     ct.TaxAmount,
			Memo:      "Output tax",
		})
	}
	journalLines = append(journalLines, domain.JournalLine{
		AccountID: arAccountID,
		Credit:    money.Round2(gross),
		Memo:      "AR control",
	})

	journal, lines, err := s.engine.PrepareSourceJournal(ctx, caller, portssvc.SourceJournalSpec{
		SourceType:  domain.SourceCustomerCreditNote,
		SourceID:    note.CreditNoteID,
		JournalDate: note.CreditDate,
		Description: "Credit note against invoice " + note.InvoiceID,
		Lines:       journalLines,
	})
	if err != nil {
		return nil, nil, err
	}

	now := time.Now().UTC()
	note.Status = domain.DocPosted
	note.PostedBy = &caller.UserID
	note.PostedAt = &now
	note.PostedJournalID = &journal.JournalID
	note.LastUpdatedAt = now
	note.LastUpdatedBy = caller.UserID

	if err := s.noteRepo.MarkCreditNotePosted(ctx, *note, *journal, lines); err != nil {
		s.LogError(ctx, err, "Failed to post credit note", slog.String("credit_note_id", creditNoteID))
		return nil, nil, fmt.Errorf("failed to post credit note %s: %w", creditNoteID, err)
	}

	s.auditSvc.Record(ctx, domain.AuditEvent{
		TenantID:    caller.TenantID,
		EventType:   "POSTING",
		EntityType:  "credit_note",
		EntityID:    note.CreditNoteID,
		Action:      "post",
		Outcome:     domain.AuditAllowed,
		Reason:      "posted journal " + journal.JournalID,
		ActorUserID: caller.UserID,
	})
	s.LogInfo(ctx, "Credit note posted",
		slog.String("credit_note_id", creditNoteID),
		slog.String("journal_id", journal.JournalID))
	return note, journal, nil
}

func (s *creditNoteService) VoidCreditNote(ctx context.Context, caller domain.Caller, creditNoteID, reason string) (*domain.CustomerCreditNote, *domain.JournalEntry, error) {
	if err := s.RequirePermission(ctx, caller, domain.PermCreditNoteVoid); err != nil {
		return nil, nil, err
	}
	if err := s.sodSvc.CheckAndEnforce(ctx, caller.TenantID, caller.UserID, "credit_note:void",
		[]string{domain.PermCreditNoteVoid}, caller.Permissions); err != nil {
		return nil, nil, err
	}
	if err := validateVoidReason(reason); err != nil {
		return nil, nil, err
	}

	note, err := s.noteRepo.FindCreditNoteByID(ctx, caller.TenantID, creditNoteID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to find credit note %s: %w", creditNoteID, err)
	}
	if note.Status == domain.DocVoid {
		var reversal *domain.JournalEntry
		if note.ReversalJournalID != nil {
			reversal, err = s.journalRepo.FindJournalByID(ctx, caller.TenantID, *note.ReversalJournalID)
			if err != nil {
				return nil, nil, fmt.Errorf("failed to find reversal journal %s: %w", *note.ReversalJournalID, err)
			}
		}
		s.LogInfo(ctx, "Credit note already void", slog.String("credit_note_id", creditNoteID))
		return note, reversal, nil
	}
	if err := assertTransition(note.Status, domain.DocVoid); err != nil {
		return nil, nil, err
	}
	if note.PostedJournalID == nil {
		return nil, nil, fmt.Errorf("credit note %s has no posted journal: %w", creditNoteID, ErrDocumentState)
	}

	original, err := s.journalRepo.FindJournalByID(ctx, caller.TenantID, *note.PostedJournalID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to find journal %s: %w", *note.PostedJournalID, err)
	}
	reversal, lines, err := s.engine.BuildReversalJournal(ctx, caller, *original, note.CreditDate,
		"Void of credit note "+note.CreditNoteID)
	if err != nil {
		return nil, nil, err
	}

	now := time.Now().UTC()
	trimmed := reason
	note.Status = domain.DocVoid
	note.VoidedBy = &caller.UserID
	note.VoidedAt = &now
	note.VoidReason = &trimmed
	note.ReversalJournalID = &reversal.JournalID
	note.LastUpdatedAt = now
	note.LastUpdatedBy = caller.UserID

	if err := s.noteRepo.MarkCreditNoteVoided(ctx, *note, *reversal, lines); err != nil {
		s.LogError(ctx, err, "Failed to void credit note", slog.String("credit_note_id", creditNoteID))
		return nil, nil, fmt.Errorf("failed to void credit note %s: %w", creditNoteID, err)
	}

	s.auditSvc.Record(ctx, domain.AuditEvent{
		TenantID:    caller.TenantID,
		EventType:   "POSTING",
		EntityType:  "credit_note",
		EntityID:    note.CreditNoteID,
		Action:      "void",
		Outcome:     domain.AuditAllowed,
		Reason:      "reversal journal " + reversal.JournalID,
		ActorUserID: caller.UserID,
	})
	s.LogInfo(ctx, "Credit note voided",
		slog.String("credit_note_id", creditNoteID),
		slog.String("reversal_journal_id", reversal.JournalID))
	return note, reversal, nil
}

func (s *creditNoteService) GetCreditNoteByID(ctx context.Context, caller domain.Caller, creditNoteID string) (*domain.CustomerCreditNote, error) {
	note, err := s.noteRepo.FindCreditNoteByID(ctx, caller.TenantID, creditNoteID)
	if err != nil {
		return nil, fmt.Errorf("failed to find credit note %s: %w", creditNoteID, err)
	}
	return note, nil
}
