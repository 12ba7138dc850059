package repositories

// RepositoryProvider bundles all repository implementations for wiring into
// the service container.
type RepositoryProvider struct {
	AccountRepo         AccountRepositoryFacade
	PeriodRepo          PeriodRepositoryFacade
	JournalRepo         JournalRepositoryFacade
	TaxRepo             TaxRepositoryFacade
	SupplierInvoiceRepo SupplierInvoiceRepositoryFacade
	CustomerInvoiceRepo CustomerInvoiceRepositoryFacade
	ReceiptRepo         CustomerReceiptRepositoryFacade
	CreditNoteRepo      CreditNoteRepositoryFacade
	RefundRepo          RefundRepositoryFacade
	BankMatchRepo       BankMatchRepositoryFacade
	BudgetRepo          BudgetRepositoryFacade
	SoDRepo             SoDRepositoryFacade
	AuditRepo           AuditRepositoryFacade
	TenantConfigRepo    TenantConfigRepositoryFacade
}
