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
	// ErrRefundCreditNote indicates a refund referencing a credit note that is
	// not posted or belongs to a different customer.
	ErrRefundCreditNote = fmt.Errorf("%w: refunds may only settle posted credit notes of the same customer", apperrors.ErrValidation)
	// ErrRefundExceedsCredit indicates a refund total above the referenced
	// credit note total.
	ErrRefundExceedsCredit = fmt.Errorf("%w: refund exceeds the credit note total", apperrors.ErrPolicyBlocked)
)

// refundService drives the customer refund lifecycle, including void via a
// compensating reversal journal.
type refundService struct {
	BaseService
	refundRepo portsrepo.RefundRepositoryFacade
	noteRepo   portsrepo.CreditNoteRepositoryFacade
	configRepo portsrepo.TenantConfigRepositoryFacade
	periodSvc  portssvc.PeriodGuardSvcFacade
	sodSvc     portssvc.SoDGuardSvcFacade
	auditSvc   portssvc.AuditSvcFacade
	engine     portssvc.PostingEngineSvc
	journalRepo portsrepo.JournalRepositoryFacade
}

// NewRefundService creates the customer refund service.
func NewRefundService(
	refundRepo portsrepo.RefundRepositoryFacade,
	noteRepo portsrepo.CreditNoteRepositoryFacade,
	configRepo portsrepo.TenantConfigRepositoryFacade,
	periodSvc portssvc.PeriodGuardSvcFacade,
	sodSvc portssvc.SoDGuardSvcFacade,
	auditSvc portssvc.AuditSvcFacade,
	engine portssvc.PostingEngineSvc,
	journalRepo portsrepo.JournalRepositoryFacade,
) portssvc.RefundSvcFacade {
	return &refundService{
		refundRepo:  refundRepo,
		noteRepo:    noteRepo,
		configRepo:  configRepo,
		periodSvc:   periodSvc,
		sodSvc:      sodSvc,
		auditSvc:    auditSvc,
		engine:      engine,
		journalRepo: journalRepo,
	}
}

var _ portssvc.RefundSvcFacade = (*refundService)(nil)

func (s *refundService) CreateRefund(ctx context.Context, caller domain.Caller, req dto.CreateRefundRequest) (*domain.CustomerRefund, error) {
	if err := s.RequirePermission(ctx, caller, domain.PermRefundCreate); err != nil {
		return nil, err
	}
	if _, err := s.periodSvc.AssertPostable(ctx, caller.TenantID, req.RefundDate, domain.PeriodActionCreate,
		caller.UserID, "refund", ""); err != nil {
		return nil, err
	}
	if !req.TotalAmount.IsPositive() {
		return nil, fmt.Errorf("%w: refund total must be positive", apperrors.ErrValidation)
	}

	if req.CreditNoteID != nil {
		note, err := s.noteRepo.FindCreditNoteByID(ctx, caller.TenantID, *req.CreditNoteID)
		if err != nil {
			return nil, fmt.Errorf("failed to find credit note %s: %w", *req.CreditNoteID, err)
		}
		if note.Status != domain.DocPosted || note.CustomerID != req.CustomerID {
			return nil, fmt.Errorf("credit note %s: %w", note.CreditNoteID, ErrRefundCreditNote)
		}
		if money.Round2(req.TotalAmount).GreaterThan(note.TotalAmount) {
			return nil, fmt.Errorf("refund %s, credit note total %s: %w",
				money.Round2(req.TotalAmount).String(), note.TotalAmount.String(), ErrRefundExceedsCredit)
		}
	}

	now := time.Now().UTC()
	refund := domain.CustomerRefund{
		RefundID:     uuid.NewString(),
		TenantID:     caller.TenantID,
		CustomerID:   req.CustomerID,
		RefundDate:   req.RefundDate,
		CreditNoteID: req.CreditNoteID,
		Status:       domain.DocDraft,
		TotalAmount:  money.Round2(req.TotalAmount),
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     caller.UserID,
			LastUpdatedAt: now,
			LastUpdatedBy: caller.UserID,
		},
	}
	if err := s.refundRepo.SaveRefund(ctx, refund); err != nil {
		s.LogError(ctx, err, "Failed to save refund", slog.String("customer_id", req.CustomerID))
		return nil, fmt.Errorf("failed to save refund: %w", err)
	}
	s.LogInfo(ctx, "Refund created", slog.String("refund_id", refund.RefundID))
	return &refund, nil
}

func (s *refundService) SubmitRefund(ctx context.Context, caller domain.Caller, refundID string) (*domain.CustomerRefund, error) {
	if err := s.RequirePermission(ctx, caller, domain.PermRefundSubmit); err != nil {
		return nil, err
	}
	if err := s.sodSvc.CheckAndEnforce(ctx, caller.TenantID, caller.UserID, "refund:submit",
		[]string{domain.PermRefundSubmit}, caller.Permissions); err != nil {
		return nil, err
	}

	refund, err := s.refundRepo.FindRefundByID(ctx, caller.TenantID, refundID)
	if err != nil {
		return nil, fmt.Errorf("failed to find refund %s: %w", refundID, err)
	}
	if err := assertCreator(refund.CreatedBy, caller.UserID); err != nil {
		return nil, err
	}
	if err := assertTransition(refund.Status, domain.DocSubmitted); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	expected := refund.Status
	refund.Status = domain.DocSubmitted
	refund.SubmittedBy = &caller.UserID
	refund.SubmittedAt = &now
	refund.LastUpdatedAt = now
	refund.LastUpdatedBy = caller.UserID
	if err := s.refundRepo.UpdateRefundStatus(ctx, *refund, expected); err != nil {
		return nil, fmt.Errorf("failed to submit refund %s: %w", refundID, err)
	}
	return refund, nil
}

func (s *refundService) ApproveRefund(ctx context.Context, caller domain.Caller, refundID string) (*domain.CustomerRefund, error) {
	if err := s.RequirePermission(ctx, caller, domain.PermRefundApprove); err != nil {
		return nil, err
	}
	if err := s.sodSvc.CheckAndEnforce(ctx, caller.TenantID, caller.UserID, "refund:approve",
		[]string{domain.PermRefundApprove}, caller.Permissions); err != nil {
		return nil, err
	}

	refund, err := s.refundRepo.FindRefundByID(ctx, caller.TenantID, refundID)
	if err != nil {
		return nil, fmt.Errorf("failed to find refund %s: %w", refundID, err)
	}
	if err := assertTransition(refund.Status, domain.DocApproved); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	expected := refund.Status
	refund.Status = domain.DocApproved
	refund.ApprovedBy = &caller.UserID
	refund.ApprovedAt = &now
	refund.LastUpdatedAt = now
	refund.LastUpdatedBy = caller.UserID
	if err := s.refundRepo.UpdateRefundStatus(ctx, *refund, expected); err != nil {
		return nil, fmt.Errorf("failed to approve refund %s: %w", refundID, err)
	}
	return refund, nil
}

func (s *refundService) PostRefund(ctx context.Context, caller domain.Caller, refundID string) (*domain.CustomerRefund, *domain.JournalEntry, error) {
	if err := s.RequirePermission(ctx, caller, domain.PermRefundPost); err != nil {
		return nil, nil, err
	}
	if err := s.sodSvc.CheckAndEnforce(ctx, caller.TenantID, caller.UserID, "refund:post",
		[]string{domain.PermRefundPost}, caller.Permissions); err != nil {
		return nil, nil, err
	}

	refund, err := s.refundRepo.FindRefundByID(ctx, caller.TenantID, refundID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to find refund %s: %w", refundID, err)
	}

	existing, err := s.engine.FindPostedJournalForSource(ctx, caller.TenantID, domain.SourceCustomerRefund, refundID)
	if err != nil {
		return nil, nil, err
	}
	if existing != nil {
		s.LogInfo(ctx, "Refund already posted",
			slog.String("refund_id", refundID),
			slog.String("journal_id", existing.JournalID))
		return refund, existing, nil
	}
	if err := assertTransition(refund.Status, domain.DocPosted); err != nil {
		return nil, nil, err
	}

	config, err := s.configRepo.FindTenantConfig(ctx, caller.TenantID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load tenant config: %w", err)
	}
	arAccountID, err := config.ControlAccount(domain.ControlAR)
	if err != nil {
		return nil, nil, err
	}
	bankClearingID, err := config.ControlAccount(domain.ControlBankClearing)
	if err != nil {
		return nil, nil, err
	}

	journal, lines, err := s.engine.PrepareSourceJournal(ctx, caller, portssvc.SourceJournalSpec{
		SourceType:  domain.SourceCustomerRefund,
		SourceID:    refund.RefundID,
		JournalDate: refund.RefundDate,
		Description: "Customer refund to " + refund.CustomerID,
		Lines: []domain.JournalLine{
			{AccountID: arAccountID, Debit: refund.TotalAmount, Memo: "AR control"},
			{AccountID: bankClearingID, Credit: refund.TotalAmount, Memo: "Bank clearing"},
		},
	})
	if err != nil {
		return nil, nil, err
	}

	now := time.Now().UTC()
	refund.Status = domain.DocPosted
	refund.PostedBy = &caller.UserID
	refund.PostedAt = &now
	refund.PostedJournalID = &journal.JournalID
	refund.LastUpdatedAt = now
	refund.LastUpdatedBy = caller.UserID

	if err := s.refundRepo.MarkRefundPosted(ctx, *refund, *journal, lines); err != nil {
		s.LogError(ctx, err, "Failed to post refund", slog.String("refund_id", refundID))
		return nil, nil, fmt.Errorf("failed to post refund %s: %w", refundID, err)
	}

	s.auditSvc.Record(ctx, domain.AuditEvent{
		TenantID:    caller.TenantID,
		EventType:   "POSTING",
		EntityType:  "refund",
		EntityID:    refund.RefundID,
		Action:      "post",
		Outcome:     domain.AuditAllowed,
		Reason:      "posted journal " + journal.JournalID,
		ActorUserID: caller.UserID,
	})
	s.LogInfo(ctx, "Refund posted",
		slog.String("refund_id", refundID),
		slog.String("journal_id", journal.JournalID))
	return refund, journal, nil
}

func (s *refundService) VoidRefund(ctx context.Context, caller domain.Caller, refundID, reason string) (*domain.CustomerRefund, *domain.JournalEntry, error) {
	if err := s.RequirePermission(ctx, caller, domain.PermRefundVoid); err != nil {
		return nil, nil, err
	}
	if err := s.sodSvc.CheckAndEnforce(ctx, caller.TenantID, caller.UserID, "refund:void",
		[]string{domain.PermRefundVoid}, caller.Permissions); err != nil {
		return nil, nil, err
	}
	if err := validateVoidReason(reason); err != nil {
		return nil, nil, err
	}

	refund, err := s.refundRepo.FindRefundByID(ctx, caller.TenantID, refundID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to find refund %s: %w", refundID, err)
	}
	if refund.Status == domain.DocVoid {
		var reversal *domain.JournalEntry
		if refund.ReversalJournalID != nil {
			reversal, err = s.journalRepo.FindJournalByID(ctx, caller.TenantID, *refund.ReversalJournalID)
			if err != nil {
				return nil, nil, fmt.Errorf("failed to find reversal journal %s: %w", *refund.ReversalJournalID, err)
			}
		}
		s.LogInfo(ctx, "Refund already void", slog.String("refund_id", refundID))
		return refund, reversal, nil
	}
	if err := assertTransition(refund.Status, domain.DocVoid); err != nil {
		return nil, nil, err
	}
	if refund.PostedJournalID == nil {
		return nil, nil, fmt.Errorf("refund %s has no posted journal: %w", refundID, ErrDocumentState)
	}

	original, err := s.journalRepo.FindJournalByID(ctx, caller.TenantID, *refund.PostedJournalID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to find journal %s: %w", *refund.PostedJournalID, err)
	}
	reversal, lines, err := s.engine.BuildReversalJournal(ctx, caller, *original, refund.RefundDate,
		"Void of refund "+refund.RefundID)
	if err != nil {
		return nil, nil, err
	}

	now := time.Now().UTC()
	voidReason := reason
	refund.Status = domain.DocVoid
	refund.VoidedBy = &caller.UserID
	refund.VoidedAt = &now
	refund.VoidReason = &voidReason
	refund.ReversalJournalID = &reversal.JournalID
	refund.LastUpdatedAt = now
	refund.LastUpdatedBy = caller.UserID

	if err := s.refundRepo.MarkRefundVoided(ctx, *refund, *reversal, lines); err != nil {
		s.LogError(ctx, err, "Failed to void refund", slog.String("refund_id", refundID))
		return nil, nil, fmt.Errorf("failed to void refund %s: %w", refundID, err)
	}

	s.auditSvc.Record(ctx, domain.AuditEvent{
		TenantID:    caller.TenantID,
		EventType:   "POSTING",
		EntityType:  "refund",
		EntityID:    refund.RefundID,
		Action:      "void",
		Outcome:     domain.AuditAllowed,
		Reason:      "reversal journal " + reversal.JournalID,
		ActorUserID: caller.UserID,
	})
	s.LogInfo(ctx, "Refund voided",
		slog.String("refund_id", refundID),
		slog.String("reversal_journal_id", reversal.JournalID))
	return refund, reversal, nil
}

func (s *refundService) GetRefundByID(ctx context.Context, caller domain.Caller, refundID string) (*domain.CustomerRefund, error) {
	refund, err := s.refundRepo.FindRefundByID(ctx, caller.TenantID, refundID)
	if err != nil {
		return nil, fmt.Errorf("failed to find refund %s: %w", refundID, err)
	}
	return refund, nil
}
