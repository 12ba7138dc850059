package domain

import (
	"fmt"

	"github.com/finledger/fin_ledger_app/internal/apperrors"
)

// ControlAccountKind names the control-account mappings a tenant must
// configure before documents of the corresponding kind can post.
type ControlAccountKind string

const (
	ControlAR           ControlAccountKind = "arControlAccountID"
	ControlAP           ControlAccountKind = "apControlAccountID"
	ControlBankClearing ControlAccountKind = "bankClearingAccountID"
	ControlCashClearing ControlAccountKind = "cashClearingAccountID"
)

// TenantConfig holds the per-tenant control-account mapping. A missing value
// is a ConfigurationError naming the field, raised at the point of use.
type TenantConfig struct {
	TenantID              string `json:"tenantID"`
	ARControlAccountID    string `json:"arControlAccountID"`
	APControlAccountID    string `json:"apControlAccountID"`
	BankClearingAccountID string `json:"bankClearingAccountID"`
	CashClearingAccountID string `json:"cashClearingAccountID"`
	AuditFields
}

// ControlAccount returns the configured account id for the given kind, or a
// ConfigurationError naming the missing field.
func (c TenantConfig) ControlAccount(kind ControlAccountKind) (string, error) {
	var id string
	switch kind {
	case ControlAR:
		id = c.ARControlAccountID
	case ControlAP:
		id = c.APControlAccountID
	case ControlBankClearing:
		id = c.BankClearingAccountID
	case ControlCashClearing:
		id = c.CashClearingAccountID
	default:
		return "", fmt.Errorf("%w: unknown control account kind %q", apperrors.ErrConfiguration, kind)
	}
	if id == "" {
		return "", fmt.Errorf("%w: tenant %s is missing control account mapping %q", apperrors.ErrConfiguration, c.TenantID, kind)
	}
	return id, nil
}
