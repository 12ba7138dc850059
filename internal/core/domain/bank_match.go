package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// BankMatchDirection is the direction of the matched bank statement movement.
type BankMatchDirection string

const (
	BankInflow  BankMatchDirection = "IN"
	BankOutflow BankMatchDirection = "OUT"
)

// BankMatch reconciles one bank statement line against the ledger. On post an
// inflow debits the bank GL account and credits bank clearing; an outflow is
// the opposite pair.
type BankMatch struct {
	MatchID         string             `json:"matchID"`
	TenantID        string             `json:"tenantID"`
	BankAccountID   string             `json:"bankAccountID"` // GL account of the bank
	StatementRef    string             `json:"statementRef"`
	StatementDate   time.Time          `json:"statementDate"`
	Direction       BankMatchDirection `json:"direction"`
	Amount          decimal.Decimal    `json:"amount"`
	Status          DocumentStatus     `json:"status"`
	PostedJournalID *string            `json:"postedJournalID,omitempty"`
	DocumentStamps
	AuditFields
}
