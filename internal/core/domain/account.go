package domain

// AccountType defines the fundamental accounting type of an account.
type AccountType string

const (
	Asset     AccountType = "ASSET"
	Liability AccountType = "LIABILITY"
	Equity    AccountType = "EQUITY"
	Income    AccountType = "INCOME"
	Expense   AccountType = "EXPENSE"
)

// NormalBalance indicates the side on which an account normally carries its balance.
type NormalBalance string

const (
	NormalDebit  NormalBalance = "DEBIT"
	NormalCredit NormalBalance = "CREDIT"
)

// Account represents a GL account in the chart of accounts.
// Only active, posting-allowed accounts may appear on a journal line.
type Account struct {
	AccountID        string        `json:"accountID"`
	TenantID         string        `json:"tenantID"`
	Code             string        `json:"code"`
	Name             string        `json:"name"`
	AccountType      AccountType   `json:"accountType"`
	NormalBalance    NormalBalance `json:"normalBalance"`
	IsActive         bool          `json:"isActive"`
	IsPostingAllowed bool          `json:"isPostingAllowed"`
	AuditFields
}

// MayPost reports whether journal lines may reference this account.
func (a Account) MayPost() bool {
	return a.IsActive && a.IsPostingAllowed
}
