package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// JournalStatus indicates the lifecycle state of a journal entry.
type JournalStatus string

const (
	JournalDraft  JournalStatus = "DRAFT"
	JournalPosted JournalStatus = "POSTED"
)

// JournalType distinguishes ordinary journals from compensating reversals.
// Reversals are always new journals; a posted journal is never edited.
type JournalType string

const (
	JournalStandard  JournalType = "STANDARD"
	JournalReversing JournalType = "REVERSING"
)

// SourceType identifies the subledger document type that originated a journal.
type SourceType string

const (
	SourceSupplierInvoice    SourceType = "SUPPLIER_INVOICE"
	SourceCustomerInvoice    SourceType = "CUSTOMER_INVOICE"
	SourceCustomerReceipt    SourceType = "CUSTOMER_RECEIPT"
	SourceCustomerCreditNote SourceType = "CUSTOMER_CREDIT_NOTE"
	SourceCustomerRefund     SourceType = "CUSTOMER_REFUND"
	SourceBankMatch          SourceType = "BANK_MATCH"
	SourceManual             SourceType = "MANUAL"
)

// SourceReference builds the canonical journal reference for a subledger
// document. The uniqueness of this reference per tenant is the idempotency
// safeguard against double-posting.
func SourceReference(sourceType SourceType, sourceID string) string {
	return string(sourceType) + ":" + sourceID
}

// JournalEntry is a balanced set of debit/credit lines posted to the GL for one
// business event. It is owned exclusively by the posting engine; subledger
// services never mutate it after creation.
type JournalEntry struct {
	JournalID   string        `json:"journalID"`
	TenantID    string        `json:"tenantID"`
	JournalDate time.Time     `json:"journalDate"`
	Reference   string        `json:"reference"`
	Description string        `json:"description"`
	Status      JournalStatus `json:"status"`
	JournalType JournalType   `json:"journalType"`
	SourceType  SourceType    `json:"sourceType"`
	SourceID    string        `json:"sourceID"` // back-link to the originating document
	// Set once the journal reaches POSTED; immutable afterwards.
	PostedBy *string    `json:"postedBy,omitempty"`
	PostedAt *time.Time `json:"postedAt,omitempty"`
	// For REVERSING journals, the journal being reversed.
	OriginalJournalID *string `json:"originalJournalID,omitempty"`
	AuditFields
	Lines []JournalLine `json:"lines,omitempty"`
}

// JournalLine is a single debit or credit against one account. Exactly one of
// Debit/Credit is nonzero; the other is stored as zero.
type JournalLine struct {
	LineID    string          `json:"lineID"`
	JournalID string          `json:"journalID"`
	AccountID string          `json:"accountID"`
	Debit     decimal.Decimal `json:"debit"`
	Credit    decimal.Decimal `json:"credit"`
	Memo      string          `json:"memo"`
	// Optional analysis dimensions.
	Department  string `json:"department,omitempty"`
	Project     string `json:"project,omitempty"`
	Fund        string `json:"fund,omitempty"`
	LegalEntity string `json:"legalEntity,omitempty"`
}

// Mirror returns the debit/credit mirror image of the line, used when building
// a compensating reversal journal.
func (l JournalLine) Mirror() JournalLine {
	m := l
	m.Debit = l.Credit
	m.Credit = l.Debit
	return m
}
