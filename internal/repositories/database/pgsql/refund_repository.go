package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/finledger/fin_ledger_app/internal/apperrors"
	"github.com/finledger/fin_ledger_app/internal/core/domain"
	portsrepo "github.com/finledger/fin_ledger_app/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxRefundRepository struct {
	BaseRepository
	journalRepo portsrepo.JournalRepositoryFacade
}

// newPgxRefundRepository creates a new repository for customer refund data.
func newPgxRefundRepository(pool *pgxpool.Pool, journalRepo portsrepo.JournalRepositoryFacade) portsrepo.RefundRepositoryFacade {
	return &PgxRefundRepository{
		BaseRepository: BaseRepository{Pool: pool},
		journalRepo:    journalRepo,
	}
}

var _ portsrepo.RefundRepositoryFacade = (*PgxRefundRepository)(nil)

const refundColumns = `refund_id, tenant_id, customer_id, refund_date, credit_note_id, status, total_amount, posted_journal_id, reversal_journal_id, submitted_by, submitted_at, approved_by, approved_at, posted_by, posted_at, voided_by, voided_at, void_reason, created_at, created_by, last_updated_at, last_updated_by`

func scanRefund(row pgx.Row) (domain.CustomerRefund, error) {
	var rf domain.CustomerRefund
	err := row.Scan(
		&rf.RefundID, &rf.TenantID, &rf.CustomerID, &rf.RefundDate, &rf.CreditNoteID,
		&rf.Status, &rf.TotalAmount, &rf.PostedJournalID, &rf.ReversalJournalID,
		&rf.SubmittedBy, &rf.SubmittedAt, &rf.ApprovedBy, &rf.ApprovedAt,
		&rf.PostedBy, &rf.PostedAt, &rf.VoidedBy, &rf.VoidedAt, &rf.VoidReason,
		&rf.CreatedAt, &rf.CreatedBy, &rf.LastUpdatedAt, &rf.LastUpdatedBy,
	)
	return rf, err
}

func (r *PgxRefundRepository) SaveRefund(ctx context.Context, refund domain.CustomerRefund) error {
	query := `
		INSERT INTO refunds (` + refundColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22);
	`
	_, err := r.Pool.Exec(ctx, query,
		refund.RefundID, refund.TenantID, refund.CustomerID, refund.RefundDate, refund.CreditNoteID,
		refund.Status, refund.TotalAmount, refund.PostedJournalID, refund.ReversalJournalID,
		refund.SubmittedBy, refund.SubmittedAt, refund.ApprovedBy, refund.ApprovedAt,
		refund.PostedBy, refund.PostedAt, refund.VoidedBy, refund.VoidedAt, refund.VoidReason,
		refund.CreatedAt, refund.CreatedBy, refund.LastUpdatedAt, refund.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to save refund %s: %w", refund.RefundID, err)
	}
	return nil
}

func (r *PgxRefundRepository) FindRefundByID(ctx context.Context, tenantID, refundID string) (*domain.CustomerRefund, error) {
	query := `SELECT ` + refundColumns + ` FROM refunds WHERE tenant_id = $1 AND refund_id = $2;`
	refund, err := scanRefund(r.Pool.QueryRow(ctx, query, tenantID, refundID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("refund %s: %w", refundID, apperrors.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find refund %s: %w", refundID, err)
	}
	return &refund, nil
}

func (r *PgxRefundRepository) UpdateRefundStatus(ctx context.Context, refund domain.CustomerRefund, expected domain.DocumentStatus) error {
	query := `
		UPDATE refunds
		SET status = $3, submitted_by = $4, submitted_at = $5, approved_by = $6, approved_at = $7,
		    last_updated_by = $8, last_updated_at = $9
		WHERE tenant_id = $1 AND refund_id = $2 AND status = $10;
	`
	tag, err := r.Pool.Exec(ctx, query,
		refund.TenantID, refund.RefundID, refund.Status,
		refund.SubmittedBy, refund.SubmittedAt, refund.ApprovedBy, refund.ApprovedAt,
		refund.LastUpdatedBy, refund.LastUpdatedAt, expected,
	)
	if err != nil {
		return fmt.Errorf("failed to update refund %s: %w", refund.RefundID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("refund %s is no longer %s: %w", refund.RefundID, expected, apperrors.ErrConflict)
	}
	return nil
}

func (r *PgxRefundRepository) MarkRefundPosted(ctx context.Context, refund domain.CustomerRefund, journal domain.JournalEntry, lines []domain.JournalLine) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	if err := r.journalRepo.InsertJournalInTx(ctx, tx, journal, lines); err != nil {
		return err
	}

	query := `
		UPDATE refunds
		SET status = $3, posted_journal_id = $4, posted_by = $5, posted_at = $6,
		    last_updated_by = $5, last_updated_at = $6
		WHERE tenant_id = $1 AND refund_id = $2 AND status = $7;
	`
	tag, err := tx.Exec(ctx, query,
		refund.TenantID, refund.RefundID, domain.DocPosted,
		refund.PostedJournalID, refund.PostedBy, refund.PostedAt, domain.DocApproved,
	)
	if err != nil {
		return fmt.Errorf("failed to post refund %s: %w", refund.RefundID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("refund %s is not approved: %w", refund.RefundID, apperrors.ErrConflict)
	}
	return r.Commit(ctx, tx)
}

func (r *PgxRefundRepository) MarkRefundVoided(ctx context.Context, refund domain.CustomerRefund, reversal domain.JournalEntry, lines []domain.JournalLine) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	if err := r.journalRepo.InsertJournalInTx(ctx, tx, reversal, lines); err != nil {
		return err
	}

	query := `
		UPDATE refunds
		SET status = $3, reversal_journal_id = $4, voided_by = $5, voided_at = $6, void_reason = $7,
		    last_updated_by = $5, last_updated_at = $6
		WHERE tenant_id = $1 AND refund_id = $2 AND status = $8;
	`
	tag, err := tx.Exec(ctx, query,
		refund.TenantID, refund.RefundID, domain.DocVoid,
		refund.ReversalJournalID, refund.VoidedBy, refund.VoidedAt, refund.VoidReason, domain.DocPosted,
	)
	if err != nil {
		return fmt.Errorf("failed to void refund %s: %w", refund.RefundID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("refund %s is not posted: %w", refund.RefundID, apperrors.ErrConflict)
	}
	return r.Commit(ctx, tx)
}
