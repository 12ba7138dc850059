package dto

import (
	"time"

	"github.com/finledger/fin_ledger_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// ReceiptAllocationRequest assigns part of a receipt to a customer invoice.
type ReceiptAllocationRequest struct {
	InvoiceID string          `json:"invoiceID" binding:"required"`
	Amount    decimal.Decimal `json:"amount" binding:"required,dgt0"`
}

// CreateReceiptRequest defines the data needed to draft a customer receipt.
type CreateReceiptRequest struct {
	CustomerID  string                     `json:"customerID" binding:"required"`
	ReceiptDate time.Time                  `json:"receiptDate" binding:"required"`
	TotalAmount decimal.Decimal            `json:"totalAmount" binding:"required,dgt0"`
	Allocations []ReceiptAllocationRequest `json:"allocations" binding:"required,min=1,dive"`
}

// ReceiptResponse defines the data returned for a customer receipt.
type ReceiptResponse struct {
	ReceiptID       string                      `json:"receiptID"`
	CustomerID      string                      `json:"customerID"`
	ReceiptDate     time.Time                   `json:"receiptDate"`
	Status          domain.DocumentStatus       `json:"status"`
	TotalAmount     decimal.Decimal             `json:"totalAmount"`
	PostedJournalID *string                     `json:"postedJournalID,omitempty"`
	Allocations     []ReceiptAllocationResponse `json:"allocations,omitempty"`
	CreatedAt       time.Time                   `json:"createdAt"`
	CreatedBy       string                      `json:"createdBy"`
}

// ReceiptAllocationResponse defines the data returned for an allocation.
type ReceiptAllocationResponse struct {
	AllocationID string          `json:"allocationID"`
	InvoiceID    string          `json:"invoiceID"`
	Amount       decimal.Decimal `json:"amount"`
}

// ToReceiptResponse converts a domain.CustomerReceipt.
func ToReceiptResponse(r *domain.CustomerReceipt) ReceiptResponse {
	resp := ReceiptResponse{
		ReceiptID:       r.ReceiptID,
		CustomerID:      r.CustomerID,
		ReceiptDate:     r.ReceiptDate,
		Status:          r.Status,
		TotalAmount:     r.TotalAmount,
		PostedJournalID: r.PostedJournalID,
		CreatedAt:       r.CreatedAt,
		CreatedBy:       r.CreatedBy,
	}
	if len(r.Allocations) > 0 {
		resp.Allocations = make([]ReceiptAllocationResponse, len(r.Allocations))
		for i, a := range r.Allocations {
			resp.Allocations[i] = ReceiptAllocationResponse{
				AllocationID: a.AllocationID,
				InvoiceID:    a.InvoiceID,
				Amount:       a.Amount,
			}
		}
	}
	return resp
}
