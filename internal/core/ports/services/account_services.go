package services

import (
	"context"

	"github.com/finledger/fin_ledger_app/internal/core/domain"
	"github.com/finledger/fin_ledger_app/internal/dto"
)

// AccountSvcFacade exposes the chart-of-accounts reads the posting engine
// needs, plus creation for provisioning.
type AccountSvcFacade interface {
	CreateAccount(ctx context.Context, caller domain.Caller, req dto.CreateAccountRequest) (*domain.Account, error)
	GetAccountByID(ctx context.Context, tenantID, accountID string) (*domain.Account, error)
	// GetAccountsByIDs returns the accounts found keyed by id.
	GetAccountsByIDs(ctx context.Context, tenantID string, accountIDs []string) (map[string]domain.Account, error)
	ListAccounts(ctx context.Context, tenantID string) ([]domain.Account, error)
}
