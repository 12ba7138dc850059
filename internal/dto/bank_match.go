package dto

import (
	"time"

	"github.com/finledger/fin_ledger_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateBankMatchRequest defines the data needed to draft a bank
// reconciliation match for one statement line.
type CreateBankMatchRequest struct {
	BankAccountID string                    `json:"bankAccountID" binding:"required"`
	StatementRef  string                    `json:"statementRef" binding:"required"`
	StatementDate time.Time                 `json:"statementDate" binding:"required"`
	Direction     domain.BankMatchDirection `json:"direction" binding:"required,oneof=IN OUT"`
	Amount        decimal.Decimal           `json:"amount" binding:"required,dgt0"`
}

// BankMatchResponse defines the data returned for a bank match.
type BankMatchResponse struct {
	MatchID         string                    `json:"matchID"`
	BankAccountID   string                    `json:"bankAccountID"`
	StatementRef    string                    `json:"statementRef"`
	StatementDate   time.Time                 `json:"statementDate"`
	Direction       domain.BankMatchDirection `json:"direction"`
	Amount          decimal.Decimal           `json:"amount"`
	Status          domain.DocumentStatus     `json:"status"`
	PostedJournalID *string                   `json:"postedJournalID,omitempty"`
	CreatedAt       time.Time                 `json:"createdAt"`
	CreatedBy       string                    `json:"createdBy"`
}

// ToBankMatchResponse converts a domain.BankMatch.
func ToBankMatchResponse(m *domain.BankMatch) BankMatchResponse {
	return BankMatchResponse{
		MatchID:         m.MatchID,
		BankAccountID:   m.BankAccountID,
		StatementRef:    m.StatementRef,
		StatementDate:   m.StatementDate,
		Direction:       m.Direction,
		Amount:          m.Amount,
		Status:          m.Status,
		PostedJournalID: m.PostedJournalID,
		CreatedAt:       m.CreatedAt,
		CreatedBy:       m.CreatedBy,
	}
}
