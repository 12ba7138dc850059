package services_test

import (
	"context"
	"time"

	"github.com/finledger/fin_ledger_app/internal/core/domain"
	portsrepo "github.com/finledger/fin_ledger_app/internal/core/ports/repositories"
	portssvc "github.com/finledger/fin_ledger_app/internal/core/ports/services"
	"github.com/finledger/fin_ledger_app/internal/dto"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// --- Mock JournalRepository ---
type MockJournalRepository struct {
	mock.Mock
}

var _ portsrepo.JournalRepositoryFacade = (*MockJournalRepository)(nil)

func (m *MockJournalRepository) SaveJournal(ctx context.Context, journal domain.JournalEntry, lines []domain.JournalLine) error {
	args := m.Called(ctx, journal, lines)
	return args.Error(0)
}

func (m *MockJournalRepository) InsertJournalInTx(ctx context.Context, tx pgx.Tx, journal domain.JournalEntry, lines []domain.JournalLine) error {
	args := m.Called(ctx, tx, journal, lines)
	return args.Error(0)
}

func (m *MockJournalRepository) FindJournalByID(ctx context.Context, tenantID, journalID string) (*domain.JournalEntry, error) {
	args := m.Called(ctx, tenantID, journalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}

func (m *MockJournalRepository) FindJournalByReference(ctx context.Context, tenantID, reference string) (*domain.JournalEntry, error) {
	args := m.Called(ctx, tenantID, reference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}

func (m *MockJournalRepository) FindLinesByJournalID(ctx context.Context, journalID string) ([]domain.JournalLine, error) {
	args := m.Called(ctx, journalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.JournalLine), args.Error(1)
}

func (m *MockJournalRepository) MarkJournalPosted(ctx context.Context, tenantID, journalID, postedBy string, postedAt time.Time) error {
	args := m.Called(ctx, tenantID, journalID, postedBy, postedAt)
	return args.Error(0)
}

func (m *MockJournalRepository) ListJournals(ctx context.Context, tenantID string, limit int, offset int) ([]domain.JournalEntry, error) {
	args := m.Called(ctx, tenantID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.JournalEntry), args.Error(1)
}

// --- Mock AccountRepository ---
type MockAccountRepository struct {
	mock.Mock
}

var _ portsrepo.AccountRepositoryFacade = (*MockAccountRepository)(nil)

func (m *MockAccountRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountRepository) FindAccountByID(ctx context.Context, tenantID, accountID string) (*domain.Account, error) {
	args := m.Called(ctx, tenantID, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) FindAccountsByIDs(ctx context.Context, tenantID string, accountIDs []string) (map[string]domain.Account, error) {
	args := m.Called(ctx, tenantID, accountIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.Account), args.Error(1)
}

func (m *MockAccountRepository) ListAccounts(ctx context.Context, tenantID string) ([]domain.Account, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Account), args.Error(1)
}

// --- Mock AccountService (as consumed by the journal service) ---
type MockAccountService struct {
	mock.Mock
}

var _ portssvc.AccountSvcFacade = (*MockAccountService)(nil)

func (m *MockAccountService) CreateAccount(ctx context.Context, caller domain.Caller, req dto.CreateAccountRequest) (*domain.Account, error) {
	args := m.Called(ctx, caller, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountService) GetAccountByID(ctx context.Context, tenantID, accountID string) (*domain.Account, error) {
	args := m.Called(ctx, tenantID, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountService) GetAccountsByIDs(ctx context.Context, tenantID string, accountIDs []string) (map[string]domain.Account, error) {
	args := m.Called(ctx, tenantID, accountIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.Account), args.Error(1)
}

func (m *MockAccountService) ListAccounts(ctx context.Context, tenantID string) ([]domain.Account, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Account), args.Error(1)
}

// --- Mock PeriodRepository ---
type MockPeriodRepository struct {
	mock.Mock
}

var _ portsrepo.PeriodRepositoryFacade = (*MockPeriodRepository)(nil)

func (m *MockPeriodRepository) SavePeriod(ctx context.Context, period domain.AccountingPeriod) error {
	args := m.Called(ctx, period)
	return args.Error(0)
}

func (m *MockPeriodRepository) FindPeriodForDate(ctx context.Context, tenantID string, date time.Time) (*domain.AccountingPeriod, error) {
	args := m.Called(ctx, tenantID, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AccountingPeriod), args.Error(1)
}

func (m *MockPeriodRepository) FindOpeningBalancesPeriod(ctx context.Context, tenantID string) (*domain.AccountingPeriod, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AccountingPeriod), args.Error(1)
}

func (m *MockPeriodRepository) ListPeriodsOverlappingRange(ctx context.Context, tenantID string, from, to time.Time) ([]domain.AccountingPeriod, error) {
	args := m.Called(ctx, tenantID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AccountingPeriod), args.Error(1)
}

func (m *MockPeriodRepository) UpdatePeriodStatus(ctx context.Context, tenantID, periodID string, status domain.PeriodStatus, updatedBy string, updatedAt time.Time) error {
	args := m.Called(ctx, tenantID, periodID, status, updatedBy, updatedAt)
	return args.Error(0)
}

// --- Mock PeriodGuardService ---
type MockPeriodGuardService struct {
	mock.Mock
}

var _ portssvc.PeriodGuardSvcFacade = (*MockPeriodGuardService)(nil)

func (m *MockPeriodGuardService) ResolvePeriod(ctx context.Context, tenantID string, date time.Time) (*domain.AccountingPeriod, error) {
	args := m.Called(ctx, tenantID, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AccountingPeriod), args.Error(1)
}

func (m *MockPeriodGuardService) AssertPostable(ctx context.Context, tenantID string, date time.Time, action domain.PeriodAction, actorUserID, entityType, entityID string) (*domain.AccountingPeriod, error) {
	args := m.Called(ctx, tenantID, date, action, actorUserID, entityType, entityID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AccountingPeriod), args.Error(1)
}

// --- Mock SoDGuardService ---
type MockSoDGuardService struct {
	mock.Mock
}

var _ portssvc.SoDGuardSvcFacade = (*MockSoDGuardService)(nil)

func (m *MockSoDGuardService) CheckAndEnforce(ctx context.Context, tenantID, userID, action string, required, granted []string) error {
	args := m.Called(ctx, tenantID, userID, action, required, granted)
	return args.Error(0)
}

// --- Mock AuditService ---
type MockAuditService struct {
	mock.Mock
}

var _ portssvc.AuditSvcFacade = (*MockAuditService)(nil)

func (m *MockAuditService) Record(ctx context.Context, event domain.AuditEvent) {
	m.Called(ctx, event)
}

// --- Mock TaxValidatorService ---
type MockTaxValidatorService struct {
	mock.Mock
}

var _ portssvc.TaxValidatorSvcFacade = (*MockTaxValidatorService)(nil)

func (m *MockTaxValidatorService) ValidateTaxLines(ctx context.Context, tenantID string, sourceType domain.SourceType, expectedRateType domain.TaxRateType, netAmount decimal.Decimal, lines []domain.TaxLine) (*domain.TaxSummary, error) {
	args := m.Called(ctx, tenantID, sourceType, expectedRateType, netAmount, lines)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TaxSummary), args.Error(1)
}

// --- Mock PostingEngine ---
type MockPostingEngine struct {
	mock.Mock
}

var _ portssvc.PostingEngineSvc = (*MockPostingEngine)(nil)

func (m *MockPostingEngine) FindPostedJournalForSource(ctx context.Context, tenantID string, sourceType domain.SourceType, sourceID string) (*domain.JournalEntry, error) {
	args := m.Called(ctx, tenantID, sourceType, sourceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}

func (m *MockPostingEngine) PrepareSourceJournal(ctx context.Context, caller domain.Caller, spec portssvc.SourceJournalSpec) (*domain.JournalEntry, []domain.JournalLine, error) {
	args := m.Called(ctx, caller, spec)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*domain.JournalEntry), args.Get(1).([]domain.JournalLine), args.Error(2)
}

func (m *MockPostingEngine) BuildReversalJournal(ctx context.Context, caller domain.Caller, original domain.JournalEntry, journalDate time.Time, description string) (*domain.JournalEntry, []domain.JournalLine, error) {
	args := m.Called(ctx, caller, original, journalDate, description)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*domain.JournalEntry), args.Get(1).([]domain.JournalLine), args.Error(2)
}

// --- Mock TaxRepository ---
type MockTaxRepository struct {
	mock.Mock
}

var _ portsrepo.TaxRepositoryFacade = (*MockTaxRepository)(nil)

func (m *MockTaxRepository) SaveTaxRate(ctx context.Context, rate domain.TaxRate) error {
	args := m.Called(ctx, rate)
	return args.Error(0)
}

func (m *MockTaxRepository) FindTaxRatesByIDs(ctx context.Context, tenantID string, rateIDs []string) (map[string]domain.TaxRate, error) {
	args := m.Called(ctx, tenantID, rateIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.TaxRate), args.Error(1)
}

func (m *MockTaxRepository) FindTaxLinesForSource(ctx context.Context, tenantID string, sourceType domain.SourceType, sourceID string) ([]domain.TaxLine, error) {
	args := m.Called(ctx, tenantID, sourceType, sourceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.TaxLine), args.Error(1)
}

// --- Mock SoDRepository ---
type MockSoDRepository struct {
	mock.Mock
}

var _ portsrepo.SoDRepositoryFacade = (*MockSoDRepository)(nil)

func (m *MockSoDRepository) SaveRule(ctx context.Context, rule domain.SoDRule) error {
	args := m.Called(ctx, rule)
	return args.Error(0)
}

func (m *MockSoDRepository) FindRulesForPermissions(ctx context.Context, tenantID string, permissions []string) ([]domain.SoDRule, error) {
	args := m.Called(ctx, tenantID, permissions)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.SoDRule), args.Error(1)
}

func (m *MockSoDRepository) SaveViolation(ctx context.Context, violation domain.SoDViolation) error {
	args := m.Called(ctx, violation)
	return args.Error(0)
}

// --- Mock AuditRepository ---
type MockAuditRepository struct {
	mock.Mock
}

var _ portsrepo.AuditRepositoryFacade = (*MockAuditRepository)(nil)

func (m *MockAuditRepository) SaveAuditEvent(ctx context.Context, event domain.AuditEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

// --- Mock BudgetRepository ---
type MockBudgetRepository struct {
	mock.Mock
}

var _ portsrepo.BudgetRepositoryFacade = (*MockBudgetRepository)(nil)

func (m *MockBudgetRepository) SaveBudget(ctx context.Context, budget domain.Budget, revision domain.BudgetRevision, lines []domain.BudgetLine) error {
	args := m.Called(ctx, budget, revision, lines)
	return args.Error(0)
}

func (m *MockBudgetRepository) FindActiveBudget(ctx context.Context, tenantID string, fiscalYear int) (*domain.Budget, error) {
	args := m.Called(ctx, tenantID, fiscalYear)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Budget), args.Error(1)
}

func (m *MockBudgetRepository) FindLatestRevision(ctx context.Context, budgetID string) (*domain.BudgetRevision, error) {
	args := m.Called(ctx, budgetID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BudgetRevision), args.Error(1)
}

func (m *MockBudgetRepository) FindBudgetLines(ctx context.Context, revisionID string, periodIDs []string) ([]domain.BudgetLine, error) {
	args := m.Called(ctx, revisionID, periodIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.BudgetLine), args.Error(1)
}

func (m *MockBudgetRepository) GetActuals(ctx context.Context, tenantID string, periodIDs []string) ([]domain.ActualAmount, error) {
	args := m.Called(ctx, tenantID, periodIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ActualAmount), args.Error(1)
}

// --- Mock SupplierInvoiceRepository ---
type MockSupplierInvoiceRepository struct {
	mock.Mock
}

var _ portsrepo.SupplierInvoiceRepositoryFacade = (*MockSupplierInvoiceRepository)(nil)

func (m *MockSupplierInvoiceRepository) SaveInvoice(ctx context.Context, invoice domain.SupplierInvoice, taxLines []domain.TaxLine) error {
	args := m.Called(ctx, invoice, taxLines)
	return args.Error(0)
}

func (m *MockSupplierInvoiceRepository) FindInvoiceByID(ctx context.Context, tenantID, invoiceID string) (*domain.SupplierInvoice, error) {
	args := m.Called(ctx, tenantID, invoiceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SupplierInvoice), args.Error(1)
}

func (m *MockSupplierInvoiceRepository) UpdateInvoiceStatus(ctx context.Context, invoice domain.SupplierInvoice, expected domain.DocumentStatus) error {
	args := m.Called(ctx, invoice, expected)
	return args.Error(0)
}

func (m *MockSupplierInvoiceRepository) MarkInvoicePosted(ctx context.Context, invoice domain.SupplierInvoice, journal domain.JournalEntry, lines []domain.JournalLine) error {
	args := m.Called(ctx, invoice, journal, lines)
	return args.Error(0)
}

// --- Mock CustomerInvoiceRepository ---
type MockCustomerInvoiceRepository struct {
	mock.Mock
}

var _ portsrepo.CustomerInvoiceRepositoryFacade = (*MockCustomerInvoiceRepository)(nil)

func (m *MockCustomerInvoiceRepository) FindInvoiceByID(ctx context.Context, tenantID, invoiceID string) (*domain.CustomerInvoice, error) {
	args := m.Called(ctx, tenantID, invoiceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CustomerInvoice), args.Error(1)
}

func (m *MockCustomerInvoiceRepository) GetOutstandingBalance(ctx context.Context, tenantID, invoiceID string) (*domain.OutstandingBalance, error) {
	args := m.Called(ctx, tenantID, invoiceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.OutstandingBalance), args.Error(1)
}

// --- Mock CustomerReceiptRepository ---
type MockCustomerReceiptRepository struct {
	mock.Mock
}

var _ portsrepo.CustomerReceiptRepositoryFacade = (*MockCustomerReceiptRepository)(nil)

func (m *MockCustomerReceiptRepository) SaveReceipt(ctx context.Context, receipt domain.CustomerReceipt) error {
	args := m.Called(ctx, receipt)
	return args.Error(0)
}

func (m *MockCustomerReceiptRepository) FindReceiptByID(ctx context.Context, tenantID, receiptID string) (*domain.CustomerReceipt, error) {
	args := m.Called(ctx, tenantID, receiptID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CustomerReceipt), args.Error(1)
}

func (m *MockCustomerReceiptRepository) UpdateReceiptStatus(ctx context.Context, receipt domain.CustomerReceipt, expected domain.DocumentStatus) error {
	args := m.Called(ctx, receipt, expected)
	return args.Error(0)
}

func (m *MockCustomerReceiptRepository) MarkReceiptPosted(ctx context.Context, receipt domain.CustomerReceipt, journal domain.JournalEntry, lines []domain.JournalLine) error {
	args := m.Called(ctx, receipt, journal, lines)
	return args.Error(0)
}

// --- Mock CreditNoteRepository ---
type MockCreditNoteRepository struct {
	mock.Mock
}

var _ portsrepo.CreditNoteRepositoryFacade = (*MockCreditNoteRepository)(nil)

func (m *MockCreditNoteRepository) SaveCreditNote(ctx context.Context, note domain.CustomerCreditNote, taxLines []domain.TaxLine) error {
	args := m.Called(ctx, note, taxLines)
	return args.Error(0)
}

func (m *MockCreditNoteRepository) FindCreditNoteByID(ctx context.Context, tenantID, creditNoteID string) (*domain.CustomerCreditNote, error) {
	args := m.Called(ctx, tenantID, creditNoteID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CustomerCreditNote), args.Error(1)
}

func (m *MockCreditNoteRepository) UpdateCreditNoteStatus(ctx context.Context, note domain.CustomerCreditNote, expected domain.DocumentStatus) error {
	args := m.Called(ctx, note, expected)
	return args.Error(0)
}

func (m *MockCreditNoteRepository) MarkCreditNotePosted(ctx context.Context, note domain.CustomerCreditNote, journal domain.JournalEntry, lines []domain.JournalLine) error {
	args := m.Called(ctx, note, journal, lines)
	return args.Error(0)
}

func (m *MockCreditNoteRepository) MarkCreditNoteVoided(ctx context.Context, note domain.CustomerCreditNote, reversal domain.JournalEntry, lines []domain.JournalLine) error {
	args := m.Called(ctx, note, reversal, lines)
	return args.Error(0)
}

// --- Mock RefundRepository ---
type MockRefundRepository struct {
	mock.Mock
}

var _ portsrepo.RefundRepositoryFacade = (*MockRefundRepository)(nil)

func (m *MockRefundRepository) SaveRefund(ctx context.Context, refund domain.CustomerRefund) error {
	args := m.Called(ctx, refund)
	return args.Error(0)
}

func (m *MockRefundRepository) FindRefundByID(ctx context.Context, tenantID, refundID string) (*domain.CustomerRefund, error) {
	args := m.Called(ctx, tenantID, refundID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CustomerRefund), args.Error(1)
}

func (m *MockRefundRepository) UpdateRefundStatus(ctx context.Context, refund domain.CustomerRefund, expected domain.DocumentStatus) error {
	args := m.Called(ctx, refund, expected)
	return args.Error(0)
}

func (m *MockRefundRepository) MarkRefundPosted(ctx context.Context, refund domain.CustomerRefund, journal domain.JournalEntry, lines []domain.JournalLine) error {
	args := m.Called(ctx, refund, journal, lines)
	return args.Error(0)
}

func (m *MockRefundRepository) MarkRefundVoided(ctx context.Context, refund domain.CustomerRefund, reversal domain.JournalEntry, lines []domain.JournalLine) error {
	args := m.Called(ctx, refund, reversal, lines)
	return args.Error(0)
}

// --- Mock BankMatchRepository ---
type MockBankMatchRepository struct {
	mock.Mock
}

var _ portsrepo.BankMatchRepositoryFacade = (*MockBankMatchRepository)(nil)

func (m *MockBankMatchRepository) SaveMatch(ctx context.Context, match domain.BankMatch) error {
	args := m.Called(ctx, match)
	return args.Error(0)
}

func (m *MockBankMatchRepository) FindMatchByID(ctx context.Context, tenantID, matchID string) (*domain.BankMatch, error) {
	args := m.Called(ctx, tenantID, matchID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BankMatch), args.Error(1)
}

func (m *MockBankMatchRepository) UpdateMatchStatus(ctx context.Context, match domain.BankMatch, expected domain.DocumentStatus) error {
	args := m.Called(ctx, match, expected)
	return args.Error(0)
}

func (m *MockBankMatchRepository) MarkMatchPosted(ctx context.Context, match domain.BankMatch, journal domain.JournalEntry, lines []domain.JournalLine) error {
	args := m.Called(ctx, match, journal, lines)
	return args.Error(0)
}

// --- Mock TenantConfigRepository ---
type MockTenantConfigRepository struct {
	mock.Mock
}

var _ portsrepo.TenantConfigRepositoryFacade = (*MockTenantConfigRepository)(nil)

func (m *MockTenantConfigRepository) SaveTenantConfig(ctx context.Context, config domain.TenantConfig) error {
	args := m.Called(ctx, config)
	return args.Error(0)
}

func (m *MockTenantConfigRepository) FindTenantConfig(ctx context.Context, tenantID string) (*domain.TenantConfig, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TenantConfig), args.Error(1)
}
