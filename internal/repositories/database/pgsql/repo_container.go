package pgsql

import (
	portsrepo "github.com/finledger/fin_ledger_app/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	accountRepo := newPgxAccountRepository(dbPool)
	periodRepo := newPgxPeriodRepository(dbPool)
	journalRepo := newPgxJournalRepository(dbPool)
	taxRepo := newPgxTaxRepository(dbPool)
	supplierInvoiceRepo := newPgxSupplierInvoiceRepository(dbPool, journalRepo)
	customerInvoiceRepo := newPgxCustomerInvoiceRepository(dbPool)
	receiptRepo := newPgxCustomerReceiptRepository(dbPool, journalRepo)
	creditNoteRepo := newPgxCreditNoteRepository(dbPool, journalRepo)
	refundRepo := newPgxRefundRepository(dbPool, journalRepo)
	bankMatchRepo := newPgxBankMatchRepository(dbPool, journalRepo)
	budgetRepo := newPgxBudgetRepository(dbPool)
	sodRepo := newPgxSoDRepository(dbPool)
	auditRepo := newPgxAuditRepository(dbPool)
	tenantConfigRepo := newPgxTenantConfigRepository(dbPool)

	return portsrepo.RepositoryProvider{
		AccountRepo:         accountRepo,
		PeriodRepo:          periodRepo,
		JournalRepo:         journalRepo,
		TaxRepo:             taxRepo,
		SupplierInvoiceRepo: supplierInvoiceRepo,
		CustomerInvoiceRepo: customerInvoiceRepo,
		ReceiptRepo:         receiptRepo,
		CreditNoteRepo:      creditNoteRepo,
		RefundRepo:          refundRepo,
		BankMatchRepo:       bankMatchRepo,
		BudgetRepo:          budgetRepo,
		SoDRepo:             sodRepo,
		AuditRepo:           auditRepo,
		TenantConfigRepo:    tenantConfigRepo,
	}
}
