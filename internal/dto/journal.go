package dto

import (
	"time"

	"github.com/finledger/fin_ledger_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// JournalLineRequest is one debit or credit line on a manual journal.
// Exactly one of Debit/Credit must be nonzero.
type JournalLineRequest struct {
	AccountID  string          `json:"accountID" binding:"required"`
	Debit      decimal.Decimal `json:"debit"`
	Credit     decimal.Decimal `json:"credit"`
	Memo       string          `json:"memo"`
	Department string          `json:"department"`
	Project    string          `json:"project"`
	Fund       string          `json:"fund"`
}

// CreateJournalRequest defines the data needed to create a manual journal.
type CreateJournalRequest struct {
	JournalDate time.Time            `json:"journalDate" binding:"required"`
	Description string               `json:"description" binding:"required"`
	Reference   string               `json:"reference"`
	Lines       []JournalLineRequest `json:"lines" binding:"required,min=2,dive"`
}

// JournalLineResponse defines the data returned for a journal line.
type JournalLineResponse struct {
	LineID    string          `json:"lineID"`
	AccountID string          `json:"accountID"`
	Debit     decimal.Decimal `json:"debit"`
	Credit    decimal.Decimal `json:"credit"`
	Memo      string          `json:"memo,omitempty"`
}

// JournalResponse defines the data returned for a journal entry.
type JournalResponse struct {
	JournalID   string                `json:"journalID"`
	JournalDate time.Time             `json:"journalDate"`
	Reference   string                `json:"reference"`
	Description string                `json:"description"`
	Status      domain.JournalStatus  `json:"status"`
	JournalType domain.JournalType    `json:"journalType"`
	SourceType  domain.SourceType     `json:"sourceType"`
	SourceID    string                `json:"sourceID,omitempty"`
	PostedBy    *string               `json:"postedBy,omitempty"`
	PostedAt    *time.Time            `json:"postedAt,omitempty"`
	CreatedAt   time.Time             `json:"createdAt"`
	CreatedBy   string                `json:"createdBy"`
	Lines       []JournalLineResponse `json:"lines,omitempty"`
}

// ToJournalLineResponse converts a domain.JournalLine.
func ToJournalLineResponse(l *domain.JournalLine) JournalLineResponse {
	return JournalLineResponse{
		LineID:    l.LineID,
		AccountID: l.AccountID,
		Debit:     l.Debit,
		Credit:    l.Credit,
		Memo:      l.Memo,
	}
}

// ToJournalResponse converts a domain.JournalEntry with any loaded lines.
func ToJournalResponse(j *domain.JournalEntry) JournalResponse {
	resp := JournalResponse{
		JournalID:   j.JournalID,
		JournalDate: j.JournalDate,
		Reference:   j.Reference,
		Description: j.Description,
		Status:      j.Status,
		JournalType: j.JournalType,
		SourceType:  j.SourceType,
		SourceID:    j.SourceID,
		PostedBy:    j.PostedBy,
		PostedAt:    j.PostedAt,
		CreatedAt:   j.CreatedAt,
		CreatedBy:   j.CreatedBy,
	}
	if len(j.Lines) > 0 {
		resp.Lines = make([]JournalLineResponse, len(j.Lines))
		for i := range j.Lines {
			resp.Lines[i] = ToJournalLineResponse(&j.Lines[i])
		}
	}
	return resp
}

// ToJournalResponses converts a slice of domain journals.
func ToJournalResponses(journals []domain.JournalEntry) []JournalResponse {
	responses := make([]JournalResponse, len(journals))
	for i := range journals {
		responses[i] = ToJournalResponse(&journals[i])
	}
	return responses
}
