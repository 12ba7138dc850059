package repositories

import (
	"context"

	"github.com/finledger/fin_ledger_app/internal/core/domain"
)

// RefundRepositoryFacade defines persistence operations for customer refunds.
type RefundRepositoryFacade interface {
	SaveRefund(ctx context.Context, refund domain.CustomerRefund) error
	FindRefundByID(ctx context.Context, tenantID, refundID string) (*domain.CustomerRefund, error)
	UpdateRefundStatus(ctx context.Context, refund domain.CustomerRefund, expected domain.DocumentStatus) error
	MarkRefundPosted(ctx context.Context, refund domain.CustomerRefund, journal domain.JournalEntry, lines []domain.JournalLine) error
	MarkRefundVoided(ctx context.Context, refund domain.CustomerRefund, reversal domain.JournalEntry, lines []domain.JournalLine) error
}
