package domain

import "github.com/shopspring/decimal"

// BudgetStatus is the lifecycle of a budget. Only the single ACTIVE budget per
// fiscal year is used for variance.
type BudgetStatus string

const (
	BudgetDraft    BudgetStatus = "DRAFT"
	BudgetActive   BudgetStatus = "ACTIVE"
	BudgetArchived BudgetStatus = "ARCHIVED"
)

// Budget is a tenant's plan for a fiscal year. Revisions are immutable; only
// the latest revision of the ACTIVE budget feeds variance.
type Budget struct {
	BudgetID   string       `json:"budgetID"`
	TenantID   string       `json:"tenantID"`
	FiscalYear int          `json:"fiscalYear"`
	Name       string       `json:"name"`
	Status     BudgetStatus `json:"status"`
	AuditFields
}

// BudgetRevision is one immutable snapshot of a budget's lines.
type BudgetRevision struct {
	RevisionID string `json:"revisionID"`
	BudgetID   string `json:"budgetID"`
	RevisionNo int    `json:"revisionNo"`
	AuditFields
}

// BudgetLine is a planned amount for one (account, period) cell.
type BudgetLine struct {
	LineID     string          `json:"lineID"`
	RevisionID string          `json:"revisionID"`
	AccountID  string          `json:"accountID"`
	PeriodID   string          `json:"periodID"`
	Amount     decimal.Decimal `json:"amount"`
}

// VarianceStatus classifies actual spend against budget.
type VarianceStatus string

const (
	VarianceOK   VarianceStatus = "OK"   // actual <= 90% of budget
	VarianceWarn VarianceStatus = "WARN" // 90% < actual <= 100%
	VarianceOver VarianceStatus = "OVER" // actual > 100%
)

// ActualAmount is the posted debit/credit totals for one (account, period)
// cell, as read from the ledger.
type ActualAmount struct {
	AccountID   string
	PeriodID    string
	AccountType AccountType
	Debit       decimal.Decimal
	Credit      decimal.Decimal
}

// VarianceRow is one row of the budget-vs-actual report.
type VarianceRow struct {
	AccountID   string           `json:"accountID"`
	PeriodID    string           `json:"periodID"`
	Budget      decimal.Decimal  `json:"budget"`
	Actual      decimal.Decimal  `json:"actual"`
	Variance    decimal.Decimal  `json:"variance"`
	VariancePct *decimal.Decimal `json:"variancePct,omitempty"` // nil when budget is zero
	Status      VarianceStatus   `json:"status"`
}
