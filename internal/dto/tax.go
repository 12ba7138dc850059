package dto

import (
	"github.com/finledger/fin_ledger_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// TaxLineRequest is one tax line attached to a document at creation time.
type TaxLineRequest struct {
	TaxRateID     string          `json:"taxRateID" binding:"required"`
	TaxableAmount decimal.Decimal `json:"taxableAmount" binding:"required,dgt0"`
	TaxAmount     decimal.Decimal `json:"taxAmount" binding:"required"`
}

// TaxLineResponse defines the data returned for a persisted tax line.
type TaxLineResponse struct {
	TaxLineID     string          `json:"taxLineID"`
	TaxRateID     string          `json:"taxRateID"`
	TaxableAmount decimal.Decimal `json:"taxableAmount"`
	TaxAmount     decimal.Decimal `json:"taxAmount"`
}

// ToTaxLineResponses converts persisted tax lines.
func ToTaxLineResponses(lines []domain.TaxLine) []TaxLineResponse {
	resp := make([]TaxLineResponse, len(lines))
	for i, l := range lines {
		resp[i] = TaxLineResponse{
			TaxLineID:     l.TaxLineID,
			TaxRateID:     l.TaxRateID,
			TaxableAmount: l.TaxableAmount,
			TaxAmount:     l.TaxAmount,
		}
	}
	return resp
}
