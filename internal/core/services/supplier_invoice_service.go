package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/finledger/fin_ledger_app/internal/core/domain"
	portsrepo "github.com/finledger/fin_ledger_app/internal/core/ports/repositories"
	portssvc "github.com/finledger/fin_ledger_app/internal/core/ports/services"
	"github.com/finledger/fin_ledger_app/internal/dto"
	"github.com/finledger/fin_ledger_app/internal/utils/money"
	"github.com/google/uuid"
)

// supplierInvoiceService drives the AP invoice lifecycle. Posting debits the
// item lines and input tax and credits the AP control account for the gross.
type supplierInvoiceService struct {
	BaseService
	invoiceRepo portsrepo.SupplierInvoiceRepositoryFacade
	taxRepo     portsrepo.TaxRepositoryFacade
	configRepo  portsrepo.TenantConfigRepositoryFacade
	taxSvc      portssvc.TaxValidatorSvcFacade
	periodSvc   portssvc.PeriodGuardSvcFacade
	sodSvc      portssvc.SoDGuardSvcFacade
	auditSvc    portssvc.AuditSvcFacade
	engine      portssvc.PostingEngineSvc
}

// NewSupplierInvoiceService creates the AP invoice service.
func NewSupplierInvoiceService(
	invoiceRepo portsrepo.SupplierInvoiceRepositoryFacade,
	taxRepo portsrepo.TaxRepositoryFacade,
	configRepo portsrepo.TenantConfigRepositoryFacade,
	taxSvc portssvc.TaxValidatorSvcFacade,
	periodSvc portssvc.PeriodGuardSvcFacade,
	sodSvc portssvc.SoDGuardSvcFacade,
	auditSvc portssvc.AuditSvcFacade,
	engine portssvc.PostingEngineSvc,
) portssvc.SupplierInvoiceSvcFacade {
	return &supplierInvoiceService{
		invoiceRepo: invoiceRepo,
		taxRepo:     taxRepo,
		configRepo:  configRepo,
		taxSvc:      taxSvc,
		periodSvc:   periodSvc,
		sodSvc:      sodSvc,
		auditSvc:    auditSvc,
		engine:      engine,
	}
}

var _ portssvc.SupplierInvoiceSvcFacade = (*supplierInvoiceService)(nil)

func (s *supplierInvoiceService) CreateInvoice(ctx context.Context, caller domain.Caller, req dto.CreateSupplierInvoiceRequest) (*domain.SupplierInvoice, error) {
	if err := s.RequirePermission(ctx, caller, domain.PermSupplierInvoiceCreate); err != nil {
		return nil, err
	}
	if _, err := s.periodSvc.AssertPostable(ctx, caller.TenantID, req.InvoiceDate, domain.PeriodActionCreate,
		caller.UserID, "supplier_invoice", ""); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	invoice := domain.SupplierInvoice{
		InvoiceID:     uuid.NewString(),
		TenantID:      caller.TenantID,
		SupplierID:    req.SupplierID,
		InvoiceNumber: req.InvoiceNumber,
		InvoiceDate:   req.InvoiceDate,
		Status:        domain.DocDraft,
		TotalAmount:   money.Round2(req.TotalAmount),
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
		invoice.Lines = append(invoice.Lines, domain.SupplierInvoiceLine{
			LineID:      uuid.NewString(),
			InvoiceID:   invoice.InvoiceID,
			AccountID:   lr.AccountID,
			Description: lr.Description,
			Amount:      money.Round2(lr.Amount),
		})
	}

	taxLines := make([]domain.TaxLine, len(req.TaxLines))
	for i, tl := range req.TaxLines {
		taxLines[i] = domain.TaxLine{
			TaxLineID:     uuid.NewString(),
			TenantID:      caller.TenantID,
			SourceType:    domain.SourceSupplierInvoice,
			SourceID:      invoice.InvoiceID,
			TaxRateID:     tl.TaxRateID,
			TaxableAmount: tl.TaxableAmount,
			TaxAmount:     tl.TaxAmount,
		}
	}

	summary, err := s.taxSvc.ValidateTaxLines(ctx, caller.TenantID, domain.SourceSupplierInvoice,
		domain.TaxInput, invoice.NetAmount(), taxLines)
	if err != nil {
		return nil, err
	}
	gross := invoice.NetAmount().Add(summary.TotalTax)
	if !money.EqualRounded(invoice.TotalAmount, gross) {
		return nil, fmt.Errorf("total %s, net plus tax %s: %w",
			invoice.TotalAmount.String(), money.Round2(gross).String(), ErrTotalMismatch)
	}

	if err := s.invoiceRepo.SaveInvoice(ctx, invoice, taxLines); err != nil {
		s.LogError(ctx, err, "Failed to save supplier invoice", slog.String("invoice_number", req.InvoiceNumber))
		return nil, fmt.Errorf("failed to save supplier invoice: %w", err)
	}
	s.LogInfo(ctx, "Supplier invoice created",
		slog.String("invoice_id", invoice.InvoiceID),
		slog.String("invoice_number", invoice.InvoiceNumber))
	return &invoice, nil
}

func (s *supplierInvoiceService) SubmitInvoice(ctx context.Context, caller domain.Caller, invoiceID string) (*domain.SupplierInvoice, error) {
	if err := s.RequirePermission(ctx, caller, domain.PermSupplierInvoiceSubmit); err != nil {
		return nil, err
	}
	if err := s.sodSvc.CheckAndEnforce(ctx, caller.TenantID, caller.UserID, "supplier_invoice:submit",
		[]string{domain.PermSupplierInvoiceSubmit}, caller.Permissions); err != nil {
		return nil, err
	}

	invoice, err := s.invoiceRepo.FindInvoiceByID(ctx, caller.TenantID, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("failed to find supplier invoice %s: %w", invoiceID, err)
	}
	if err := assertCreator(invoice.CreatedBy, caller.UserID); err != nil {
		return nil, err
	}
	if err := assertTransition(invoice.Status, domain.DocSubmitted); err != nil {
		return nil, err
	}

	taxLines, err := s.taxRepo.FindTaxLinesForSource(ctx, caller.TenantID, domain.SourceSupplierInvoice, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("failed to load tax lines for invoice %s: %w", invoiceID, err)
	}
	gross := invoice.NetAmount()
	for _, tl := range taxLines {
		gross = gross.Add(tl.TaxAmount)
	}
	if !money.EqualRounded(invoice.TotalAmount, gross) {
		return nil, fmt.Errorf("total %s, net plus tax %s: %w",
			invoice.TotalAmount.String(), money.Round2(gross).String(), ErrTotalMismatch)
	}

	now := time.Now().UTC()
	expected := invoice.Status
	invoice.Status = domain.DocSubmitted
	invoice.SubmittedBy = &caller.UserID
	invoice.SubmittedAt = &now
	invoice.LastUpdatedAt = now
	invoice.LastUpdatedBy = caller.UserID
	if err := s.invoiceRepo.UpdateInvoiceStatus(ctx, *invoice, expected); err != nil {
		return nil, fmt.Errorf("failed to submit supplier invoice %s: %w", invoiceID, err)
	}
	return invoice, nil
}

func (s *supplierInvoiceService) ApproveInvoice(ctx context.Context, caller domain.Caller, invoiceID string) (*domain.SupplierInvoice, error) {
	if err := s.RequirePermission(ctx, caller, domain.PermSupplierInvoiceApprove); err != nil {
		return nil, err
	}
	if err := s.sodSvc.CheckAndEnforce(ctx, caller.TenantID, caller.UserID, "supplier_invoice:approve",
		[]string{domain.PermSupplierInvoiceApprove}, caller.Permissions); err != nil {
		return nil, err
	}

	invoice, err := s.invoiceRepo.FindInvoiceByID(ctx, caller.TenantID, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("failed to find supplier invoice %s: %w", invoiceID, err)
	}
	if err := assertTransition(invoice.Status, domain.DocApproved); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	expected := invoice.Status
	invoice.Status = domain.DocApproved
	invoice.ApprovedBy = &caller.UserID
	invoice.ApprovedAt = &now
	invoice.LastUpdatedAt = now
	invoice.LastUpdatedBy = caller.UserID
	if err := s.invoiceRepo.UpdateInvoiceStatus(ctx, *invoice, expected); err != nil {
		return nil, fmt.Errorf("failed to approve supplier invoice %s: %w", invoiceID, err)
	}
	return invoice, nil
}

func (s *supplierInvoiceService) PostInvoice(ctx context.Context, caller domain.Caller, invoiceID string) (*domain.SupplierInvoice, *domain.JournalEntry, error) {
	if err := s.RequirePermission(ctx, caller, domain.PermSupplierInvoicePost); err != nil {
		return nil, nil, err
	}
	if err := s.sodSvc.CheckAndEnforce(ctx, caller.TenantID, caller.UserID, "supplier_invoice:post",
		[]string{domain.PermSupplierInvoicePost}, caller.Permissions); err != nil {
		return nil, nil, err
	}

	invoice, err := s.invoiceRepo.FindInvoiceByID(ctx, caller.TenantID, invoiceID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to find supplier invoice %s: %w", invoiceID, err)
	}

	existing, err := s.engine.FindPostedJournalForSource(ctx, caller.TenantID, domain.SourceSupplierInvoice, invoiceID)
	if err != nil {
		return nil, nil, err
	}
	if existing != nil {
		s.LogInfo(ctx, "Supplier invoice already posted",
			slog.String("invoice_id", invoiceID),
			slog.String("journal_id", existing.JournalID))
		return invoice, existing, nil
	}
	if err := assertTransition(invoice.Status, domain.DocPosted); err != nil {
		return nil, nil, err
	}

	taxLines, err := s.taxRepo.FindTaxLinesForSource(ctx, caller.TenantID, domain.SourceSupplierInvoice, invoiceID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load tax lines for invoice %s: %w", invoiceID, err)
	}
	summary, err := s.taxSvc.ValidateTaxLines(ctx, caller.TenantID, domain.SourceSupplierInvoice,
		domain.TaxInput, invoice.NetAmount(), taxLines)
	if err != nil {
		return nil, nil, err
	}
	gross := invoice.NetAmount().Add(summary.TotalTax)
	if !money.EqualRounded(invoice.TotalAmount, gross) {
		return nil, nil, fmt.Errorf("total %s, net plus tax %s: %w",
			invoice.TotalAmount.String(), money.Round2(gross).String(), ErrTotalMismatch)
	}

	config, err := s.configRepo.FindTenantConfig(ctx, caller.TenantID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load tenant config: %w", err)
	}
	apAccountID, err := config.ControlAccount(domain.ControlAP)
	if err != nil {
		return nil, nil, err
	}

	var journalLines []domain.JournalLine
	for _, line := range invoice.Lines {
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
			Memo:      "Input tax",
		})
	}
	journalLines = append(journalLines, domain.JournalLine{
		AccountID: apAccountID,
		Credit:    money.Round2(gross),
		Memo:      "AP control " + invoice.InvoiceNumber,
	})

	journal, lines, err := s.engine.PrepareSourceJournal(ctx, caller, portssvc.SourceJournalSpec{
		SourceType:  domain.SourceSupplierInvoice,
		SourceID:    invoice.InvoiceID,
		JournalDate: invoice.InvoiceDate,
		Description: "Supplier invoice " + invoice.InvoiceNumber,
		Lines:       journalLines,
	})
	if err != nil {
		return nil, nil, err
	}

	now := time.Now().UTC()
	invoice.Status = domain.DocPosted
	invoice.PostedBy = &caller.UserID
	invoice.PostedAt = &now
	invoice.PostedJournalID = &journal.JournalID
	invoice.LastUpdatedAt = now
	invoice.LastUpdatedBy = caller.UserID

	if err := s.invoiceRepo.MarkInvoicePosted(ctx, *invoice, *journal, lines); err != nil {
		s.LogError(ctx, err, "Failed to post supplier invoice", slog.String("invoice_id", invoiceID))
		return nil, nil, fmt.Errorf("failed to post supplier invoice %s: %w", invoiceID, err)
	}

	s.auditSvc.Record(ctx, domain.AuditEvent{
		TenantID:    caller.TenantID,
		EventType:   "POSTING",
		EntityType:  "supplier_invoice",
		EntityID:    invoice.InvoiceID,
		Action:      "post",
		Outcome:     domain.AuditAllowed,
		Reason:      "posted journal " + journal.JournalID,
		ActorUserID: caller.UserID,
	})
	s.LogInfo(ctx, "Supplier invoice posted",
		slog.String("invoice_id", invoiceID),
		slog.String("journal_id", journal.JournalID))
	return invoice, journal, nil
}

func (s *supplierInvoiceService) GetInvoiceByID(ctx context.Context, caller domain.Caller, invoiceID string) (*domain.SupplierInvoice, error) {
	invoice, err := s.invoiceRepo.FindInvoiceByID(ctx, caller.TenantID, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("failed to find supplier invoice %s: %w", invoiceID, err)
	}
	return invoice, nil
}

func (s *supplierInvoiceService) GetInvoiceTaxLines(ctx context.Context, caller domain.Caller, invoiceID string) ([]domain.TaxLine, error) {
	if _, err := s.invoiceRepo.FindInvoiceByID(ctx, caller.TenantID, invoiceID); err != nil {
		return nil, fmt.Errorf("failed to find supplier invoice %s: %w", invoiceID, err)
	}
	taxLines, err := s.taxRepo.FindTaxLinesForSource(ctx, caller.TenantID, domain.SourceSupplierInvoice, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("failed to load tax lines for invoice %s: %w", invoiceID, err)
	}
	return taxLines, nil
}
