package dto

import (
	"time"

	"github.com/finledger/fin_ledger_app/internal/core/domain"
)

// CreateAccountRequest defines the data needed to create a new GL account.
type CreateAccountRequest struct {
	Code             string               `json:"code" binding:"required"`
	Name             string               `json:"name" binding:"required"`
	AccountType      domain.AccountType   `json:"accountType" binding:"required,oneof=ASSET LIABILITY EQUITY INCOME EXPENSE"`
	NormalBalance    domain.NormalBalance `json:"normalBalance" binding:"required,oneof=DEBIT CREDIT"`
	IsPostingAllowed *bool                `json:"isPostingAllowed"` // defaults to true
}

// AccountResponse defines the data returned for a GL account.
type AccountResponse struct {
	AccountID        string               `json:"accountID"`
	Code             string               `json:"code"`
	Name             string               `json:"name"`
	AccountType      domain.AccountType   `json:"accountType"`
	NormalBalance    domain.NormalBalance `json:"normalBalance"`
	IsActive         bool                 `json:"isActive"`
	IsPostingAllowed bool                 `json:"isPostingAllowed"`
	CreatedAt        time.Time            `json:"createdAt"`
	CreatedBy        string               `json:"createdBy"`
}

// ToAccountResponse converts a domain.Account to AccountResponse.
func ToAccountResponse(a *domain.Account) AccountResponse {
	return AccountResponse{
		AccountID:        a.AccountID,
		Code:             a.Code,
		Name:             a.Name,
		AccountType:      a.AccountType,
		NormalBalance:    a.NormalBalance,
		IsActive:         a.IsActive,
		IsPostingAllowed: a.IsPostingAllowed,
		CreatedAt:        a.CreatedAt,
		CreatedBy:        a.CreatedBy,
	}
}

// ToAccountResponses converts a slice of domain accounts.
func ToAccountResponses(accounts []domain.Account) []AccountResponse {
	responses := make([]AccountResponse, len(accounts))
	for i := range accounts {
		responses[i] = ToAccountResponse(&accounts[i])
	}
	return responses
}
