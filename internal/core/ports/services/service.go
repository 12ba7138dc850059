package services

// ServiceContainer holds instances of all the application services. It is the
// entry point for accessing service functionality, particularly in handlers.
type ServiceContainer struct {
	Account         AccountSvcFacade
	Journal         JournalSvcFacade
	Period          PeriodGuardSvcFacade
	Tax             TaxValidatorSvcFacade
	SoD             SoDGuardSvcFacade
	Audit           AuditSvcFacade
	SupplierInvoice SupplierInvoiceSvcFacade
	CustomerReceipt CustomerReceiptSvcFacade
	CreditNote      CreditNoteSvcFacade
	Refund          RefundSvcFacade
	BankMatch       BankMatchSvcFacade
	Variance        VarianceSvcFacade
}
