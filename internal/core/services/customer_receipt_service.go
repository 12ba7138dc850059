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
	// ErrAllocationMismatch indicates receipt allocations that do not sum to
	// the receipt total.
	ErrAllocationMismatch = fmt.Errorf("%w: allocations do not sum to the receipt total", apperrors.ErrValidation)
	// ErrAllocationTarget indicates an allocation against an invoice that is
	// not posted.
	ErrAllocationTarget = fmt.Errorf("%w: allocations may only target posted customer invoices", apperrors.ErrValidation)
	// ErrOverAllocation indicates an allocation exceeding the invoice's
	// outstanding balance.
	ErrOverAllocation = fmt.Errorf("%w: allocation exceeds the invoice outstanding balance", apperrors.ErrPolicyBlocked)
)

// customerReceiptService drives the customer receipt lifecycle. Posting debits
// bank clearing and credits AR control for the receipt total.
type customerReceiptService struct {
	BaseService
	receiptRepo portsrepo.CustomerReceiptRepositoryFacade
	invoiceRepo portsrepo.CustomerInvoiceRepositoryFacade
	configRepo  portsrepo.TenantConfigRepositoryFacade
	periodSvc   portssvc.PeriodGuardSvcFacade
	sodSvc      portssvc.SoDGuardSvcFacade
	auditSvc    portssvc.AuditSvcFacade
	engine      portssvc.PostingEngineSvc
}

// NewCustomerReceiptService creates the customer receipt service.
func NewCustomerReceiptService(
	receiptRepo portsrepo.CustomerReceiptRepositoryFacade,
	invoiceRepo portsrepo.CustomerInvoiceRepositoryFacade,
	configRepo portsrepo.TenantConfigRepositoryFacade,
	periodSvc portssvc.PeriodGuardSvcFacade,
	sodSvc portssvc.SoDGuardSvcFacade,
	auditSvc portssvc.AuditSvcFacade,
	engine portssvc.PostingEngineSvc,
) portssvc.CustomerReceiptSvcFacade {
	return &customerReceiptService{
		receiptRepo: receiptRepo,
		invoiceRepo: invoiceRepo,
		configRepo:  configRepo,
		periodSvc:   periodSvc,
		sodSvc:      sodSvc,
		auditSvc:    auditSvc,
		engine:      engine,
	}
}

var _ portssvc.CustomerReceiptSvcFacade = (*customerReceiptService)(nil)

func (s *customerReceiptService) CreateReceipt(ctx context.Context, caller domain.Caller, req dto.CreateReceiptRequest) (*domain.CustomerReceipt, error) {
	if err := s.RequirePermission(ctx, caller, domain.PermReceiptCreate); err != nil {
		return nil, err
	}
	if _, err := s.periodSvc.AssertPostable(ctx, caller.TenantID, req.ReceiptDate, domain.PeriodActionCreate,
		caller.UserID, "customer_receipt", ""); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	receipt := domain.CustomerReceipt{
		ReceiptID:   uuid.NewString(),
		TenantID:    caller.TenantID,
		CustomerID:  req.CustomerID,
		ReceiptDate: req.ReceiptDate,
		Status:      domain.DocDraft,
		TotalAmount: money.Round2(req.TotalAmount),
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     caller.UserID,
			LastUpdatedAt: now,
			LastUpdatedBy: caller.UserID,
		},
	}
	for _, ar := range req.Allocations {
		if !ar.Amount.IsPositive() {
			return nil, fmt.Errorf("allocation amount must be positive: %w", ErrAllocationMismatch)
		}
		invoice, err := s.invoiceRepo.FindInvoiceByID(ctx, caller.TenantID, ar.InvoiceID)
		if err != nil {
			return nil, fmt.Errorf("failed to find customer invoice %s: %w", ar.InvoiceID, err)
		}
		if invoice.Status != domain.DocPosted {
			return nil, fmt.Errorf("invoice %s is %s: %w", invoice.InvoiceID, invoice.Status, ErrAllocationTarget)
		}
		receipt.Allocations = append(receipt.Allocations, domain.ReceiptAllocation{
			AllocationID: uuid.NewString(),
			ReceiptID:    receipt.ReceiptID,
			InvoiceID:    ar.InvoiceID,
			Amount:       money.Round2(ar.Amount),
		})
	}
	if !money.EqualRounded(receipt.AllocatedAmount(), receipt.TotalAmount) {
		return nil, fmt.Errorf("allocated %s, total %s: %w",
			receipt.AllocatedAmount().String(), receipt.TotalAmount.String(), ErrAllocationMismatch)
	}

	if err := s.receiptRepo.SaveReceipt(ctx, receipt); err != nil {
		s.LogError(ctx, err, "Failed to save receipt", slog.String("customer_id", req.CustomerID))
		return nil, fmt.Errorf("failed to save receipt: %w", err)
	}
	s.LogInfo(ctx, "Receipt created", slog.String("receipt_id", receipt.ReceiptID))
	return &receipt, nil
}

func (s *customerReceiptService) SubmitReceipt(ctx context.Context, caller domain.Caller, receiptID string) (*domain.CustomerReceipt, error) {
	if err := s.RequirePermission(ctx, caller, domain.PermReceiptSubmit); err != nil {
		return nil, err
	}
	if err := s.sodSvc.CheckAndEnforce(ctx, caller.TenantID, caller.UserID, "customer_receipt:submit",
		[]string{domain.PermReceiptSubmit}, caller.Permissions); err != nil {
		return nil, err
	}

	receipt, err := s.receiptRepo.FindReceiptByID(ctx, caller.TenantID, receiptID)
	if err != nil {
		return nil, fmt.Errorf("failed to find receipt %s: %w", receiptID, err)
	}
	if err := assertCreator(receipt.CreatedBy, caller.UserID); err != nil {
		return nil, err
	}
	if err := assertTransition(receipt.Status, domain.DocSubmitted); err != nil {
		return nil, err
	}
	if !money.EqualRounded(receipt.AllocatedAmount(), receipt.TotalAmount) {
		return nil, fmt.Errorf("allocated %s, total %s: %w",
			receipt.AllocatedAmount().String(), receipt.TotalAmount.String(), ErrAllocationMismatch)
	}

	now := time.Now().UTC()
	expected := receipt.Status
	receipt.Status = domain.DocSubmitted
	receipt.SubmittedBy = &caller.UserID
	receipt.SubmittedAt = &now
	receipt.LastUpdatedAt = now
	receipt.LastUpdatedBy = caller.UserID
	if err := s.receiptRepo.UpdateReceiptStatus(ctx, *receipt, expected); err != nil {
		return nil, fmt.Errorf("failed to submit receipt %s: %w", receiptID, err)
	}
	return receipt, nil
}

func (s *customerReceiptService) ApproveReceipt(ctx context.Context, caller domain.Caller, receiptID string) (*domain.CustomerReceipt, error) {
	if err := s.RequirePermission(ctx, caller, domain.PermReceiptApprove); err != nil {
		return nil, err
	}
	if err := s.sodSvc.CheckAndEnforce(ctx, caller.TenantID, caller.UserID, "customer_receipt:approve",
		[]string{domain.PermReceiptApprove}, caller.Permissions); err != nil {
		return nil, err
	}

	receipt, err := s.receiptRepo.FindReceiptByID(ctx, caller.TenantID, receiptID)
	if err != nil {
		return nil, fmt.Errorf("failed to find receipt %s: %w", receiptID, err)
	}
	if err := assertTransition(receipt.Status, domain.DocApproved); err != nil {
		return nil, err
	}

	// Outstanding balances may have moved since the draft was written, so the
	// over-allocation check runs against current posted activity.
	for _, a := range receipt.Allocations {
		balance, err := s.invoiceRepo.GetOutstandingBalance(ctx, caller.TenantID, a.InvoiceID)
		if err != nil {
			return nil, fmt.Errorf("failed to compute outstanding balance for invoice %s: %w", a.InvoiceID, err)
		}
		if a.Amount.GreaterThan(money.Round2(balance.Outstanding())) {
			s.auditSvc.Record(ctx, domain.AuditEvent{
				TenantID:    caller.TenantID,
				EventType:   "ALLOCATION_GUARD",
				EntityType:  "customer_receipt",
				EntityID:    receiptID,
				Action:      "approve",
				Outcome:     domain.AuditBlocked,
				Reason:      fmt.Sprintf("allocation %s exceeds outstanding %s on invoice %s", a.Amount.String(), money.Round2(balance.Outstanding()).String(), a.InvoiceID),
				ActorUserID: caller.UserID,
			})
			return nil, fmt.Errorf("allocation %s on invoice %s: %w", a.Amount.String(), a.InvoiceID, ErrOverAllocation)
		}
	}

	now := time.Now().UTC()
	expected := receipt.Status
	receipt.Status = domain.DocApproved
	receipt.ApprovedBy = &caller.UserID
	receipt.ApprovedAt = &now
	receipt.LastUpdatedAt = now
	receipt.LastUpdatedBy = caller.UserID
	if err := s.receiptRepo.UpdateReceiptStatus(ctx, *receipt, expected); err != nil {
		return nil, fmt.Errorf("failed to approve receipt %s: %w", receiptID, err)
	}
	return receipt, nil
}

func (s *customerReceiptService) PostReceipt(ctx context.Context, caller domain.Caller, receiptID string) (*domain.CustomerReceipt, *domain.JournalEntry, error) {
	if err := s.RequirePermission(ctx, caller, domain.PermReceiptPost); err != nil {
		return nil, nil, err
	}
	if err := s.sodSvc.CheckAndEnforce(ctx, caller.TenantID, caller.UserID, "customer_receipt:post",
		[]string{domain.PermReceiptPost}, caller.Permissions); err != nil {
		return nil, nil, err
	}

	receipt, err := s.receiptRepo.FindReceiptByID(ctx, caller.TenantID, receiptID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to find receipt %s: %w", receiptID, err)
	}

	existing, err := s.engine.FindPostedJournalForSource(ctx, caller.TenantID, domain.SourceCustomerReceipt, receiptID)
	if err != nil {
		return nil, nil, err
	}
	if existing != nil {
		s.LogInfo(ctx, "Receipt already posted",
			slog.String("receipt_id", receiptID),
			slog.String("journal_id", existing.JournalID))
		return receipt, existing, nil
	}
	if err := assertTransition(receipt.Status, domain.DocPosted); err != nil {
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
	arAccountID, err := config.ControlAccount(domain.ControlAR)
	if err != nil {
		return nil, nil, err
	}

	journal, lines, err := s.engine.PrepareSourceJournal(ctx, caller, portssvc.SourceJournalSpec{
		SourceType:  domain.SourceCustomerReceipt,
		SourceID:    receipt.ReceiptID,
		JournalDate: receipt.ReceiptDate,
		Description: "Customer receipt from " + receipt.CustomerID,
		Lines: []domain.JournalLine{
			{AccountID: bankClearingID, Debit: receipt.TotalAmount, Memo: "Bank clearing"},
			{AccountID: arAccountID, Credit: receipt.TotalAmount, Memo: "AR control"},
		},
	})
	if err != nil {
		return nil, nil, err
	}

	now := time.Now().UTC()
	receipt.Status = domain.DocPosted
	receipt.PostedBy = &caller.UserID
	receipt.PostedAt = &now
	receipt.PostedJournalID = &journal.JournalID
	receipt.LastUpdatedAt = now
	receipt.LastUpdatedBy = caller.UserID

	if err := s.receiptRepo.MarkReceiptPosted(ctx, *receipt, *journal, lines); err != nil {
		s.LogError(ctx, err, "Failed to post receipt", slog.String("receipt_id", receiptID))
		return nil, nil, fmt.Errorf("failed to post receipt %s: %w", receiptID, err)
	}

	s.auditSvc.Record(ctx, domain.AuditEvent{
		TenantID:    caller.TenantID,
		EventType:   "POSTING",
		EntityType:  "customer_receipt",
		EntityID:    receipt.ReceiptID,
		Action:      "post",
		Outcome:     domain.AuditAllowed,
		Reason:      "posted journal " + journal.JournalID,
		ActorUserID: caller.UserID,
	})
	s.LogInfo(ctx, "Receipt posted",
		slog.String("receipt_id", receiptID),
		slog.String("journal_id", journal.JournalID))
	return receipt, journal, nil
}

func (s *customerReceiptService) GetReceiptByID(ctx context.Context, caller domain.Caller, receiptID string) (*domain.CustomerReceipt, error) {
	receipt, err := s.receiptRepo.FindReceiptByID(ctx, caller.TenantID, receiptID)
	if err != nil {
		return nil, fmt.Errorf("failed to find receipt %s: %w", receiptID, err)
	}
	return receipt, nil
}
