package services

import (
	portsrepo "github.com/finledger/fin_ledger_app/internal/core/ports/repositories"
	portssvc "github.com/finledger/fin_ledger_app/internal/core/ports/services"
)

// NewServiceContainer wires every service against the repository provider.
// Construction order follows the dependency chain: audit first, then the
// guards, then the posting engine, then the document state machines on top.
func NewServiceContainer(repos *portsrepo.RepositoryProvider) *portssvc.ServiceContainer {
	auditSvc := NewAuditService(repos.AuditRepo)
	periodSvc := NewPeriodService(repos.PeriodRepo, auditSvc)
	taxSvc := NewTaxService(repos.TaxRepo)
	sodSvc := NewSoDService(repos.SoDRepo, auditSvc)
	accountSvc := NewAccountService(repos.AccountRepo)
	journalSvc := NewJournalService(repos.JournalRepo, accountSvc, periodSvc, sodSvc)

	return &portssvc.ServiceContainer{
		Account:         accountSvc,
		Journal:         journalSvc,
		Period:          periodSvc,
		Tax:             taxSvc,
		SoD:             sodSvc,
		Audit:           auditSvc,
		SupplierInvoice: NewSupplierInvoiceService(repos.SupplierInvoiceRepo, repos.TaxRepo, repos.TenantConfigRepo, taxSvc, periodSvc, sodSvc, auditSvc, journalSvc),
		CustomerReceipt: NewCustomerReceiptService(repos.ReceiptRepo, repos.CustomerInvoiceRepo, repos.TenantConfigRepo, periodSvc, sodSvc, auditSvc, journalSvc),
		CreditNote:      NewCreditNoteService(repos.CreditNoteRepo, repos.CustomerInvoiceRepo, repos.TaxRepo, repos.TenantConfigRepo, taxSvc, periodSvc, sodSvc, auditSvc, journalSvc, repos.JournalRepo),
		Refund:          NewRefundService(repos.RefundRepo, repos.CreditNoteRepo, repos.TenantConfigRepo, periodSvc, sodSvc, auditSvc, journalSvc, repos.JournalRepo),
		BankMatch:       NewBankMatchService(repos.BankMatchRepo, repos.TenantConfigRepo, accountSvc, periodSvc, sodSvc, auditSvc, journalSvc),
		Variance:        NewVarianceService(repos.BudgetRepo, repos.PeriodRepo),
	}
}
