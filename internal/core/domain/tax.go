package domain

import "github.com/shopspring/decimal"

// TaxRateType is the direction of a tax rate: INPUT rates apply to AP
// documents, OUTPUT rates to AR documents.
type TaxRateType string

const (
	TaxInput  TaxRateType = "INPUT"
	TaxOutput TaxRateType = "OUTPUT"
)

// TaxRate is a tenant-scoped VAT/GST rate with its control account.
type TaxRate struct {
	TaxRateID   string          `json:"taxRateID"`
	TenantID    string          `json:"tenantID"`
	Name        string          `json:"name"`
	Rate        decimal.Decimal `json:"rate"` // percentage, 0-100
	RateType    TaxRateType     `json:"rateType"`
	GLAccountID string          `json:"glAccountID"` // VAT control account
	IsActive    bool            `json:"isActive"`
	AuditFields
}

// TaxLine is a tax amount attached to a subledger document. The source is a
// tagged (sourceType, sourceID) pair resolved through a dispatch table rather
// than a loose foreign key.
type TaxLine struct {
	TaxLineID     string          `json:"taxLineID"`
	TenantID      string          `json:"tenantID"`
	SourceType    SourceType      `json:"sourceType"`
	SourceID      string          `json:"sourceID"`
	TaxRateID     string          `json:"taxRateID"`
	TaxableAmount decimal.Decimal `json:"taxableAmount"`
	TaxAmount     decimal.Decimal `json:"taxAmount"`
}

// TaxControlTotal is the aggregated tax amount per distinct control account,
// used to build one journal line per control account at post time.
type TaxControlTotal struct {
	GLAccountID string
	TaxAmount   decimal.Decimal
}

// TaxSummary is the result of validating a document's tax lines.
type TaxSummary struct {
	TotalTax      decimal.Decimal
	ControlTotals []TaxControlTotal // ordered by account id for deterministic journals
}
