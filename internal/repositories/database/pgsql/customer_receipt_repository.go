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

type PgxCustomerReceiptRepository struct {
	BaseRepository
	journalRepo portsrepo.JournalRepositoryFacade
}

// newPgxCustomerReceiptRepository creates a new repository for customer
// receipt data.
func newPgxCustomerReceiptRepository(pool *pgxpool.Pool, journalRepo portsrepo.JournalRepositoryFacade) portsrepo.CustomerReceiptRepositoryFacade {
	return &PgxCustomerReceiptRepository{
		BaseRepository: BaseRepository{Pool: pool},
		journalRepo:    journalRepo,
	}
}

var _ portsrepo.CustomerReceiptRepositoryFacade = (*PgxCustomerReceiptRepository)(nil)

const receiptColumns = `receipt_id, tenant_id, customer_id, receipt_date, status, total_amount, posted_journal_id, submitted_by, submitted_at, approved_by, approved_at, posted_by, posted_at, voided_by, voided_at, void_reason, created_at, created_by, last_updated_at, last_updated_by`

func scanReceipt(row pgx.Row) (domain.CustomerReceipt, error) {
	var rec domain.CustomerReceipt
	err := row.Scan(
		&rec.ReceiptID, &rec.TenantID, &rec.CustomerID, &rec.ReceiptDate,
		&rec.Status, &rec.TotalAmount, &rec.PostedJournalID,
		&rec.SubmittedBy, &rec.SubmittedAt, &rec.ApprovedBy, &rec.ApprovedAt,
		&rec.PostedBy, &rec.PostedAt, &rec.VoidedBy, &rec.VoidedAt, &rec.VoidReason,
		&rec.CreatedAt, &rec.CreatedBy, &rec.LastUpdatedAt, &rec.LastUpdatedBy,
	)
	return rec, err
}

func (r *PgxCustomerReceiptRepository) SaveReceipt(ctx context.Context, receipt domain.CustomerReceipt) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	query := `
		INSERT INTO customer_receipts (` + receiptColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20);
	`
	_, err = tx.Exec(ctx, query,
		receipt.ReceiptID, receipt.TenantID, receipt.CustomerID, receipt.ReceiptDate,
		receipt.Status, receipt.TotalAmount, receipt.PostedJournalID,
		receipt.SubmittedBy, receipt.SubmittedAt, receipt.ApprovedBy, receipt.ApprovedAt,
		receipt.PostedBy, receipt.PostedAt, receipt.VoidedBy, receipt.VoidedAt, receipt.VoidReason,
		receipt.CreatedAt, receipt.CreatedBy, receipt.LastUpdatedAt, receipt.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to insert receipt %s: %w", receipt.ReceiptID, err)
	}

	batch := &pgx.Batch{}
	allocQuery := `
		INSERT INTO receipt_allocations (allocation_id, receipt_id, invoice_id, amount)
		VALUES ($1, $2, $3, $4);
	`
	for _, a := range receipt.Allocations {
		batch.Queue(allocQuery, a.AllocationID, a.ReceiptID, a.InvoiceID, a.Amount)
	}
	results := tx.SendBatch(ctx, batch)
	for range receipt.Allocations {
		if _, err := results.Exec(); err != nil {
			results.Close()
			return fmt.Errorf("failed to insert allocation for receipt %s: %w", receipt.ReceiptID, err)
		}
	}
	results.Close()
	return r.Commit(ctx, tx)
}

func (r *PgxCustomerReceiptRepository) FindReceiptByID(ctx context.Context, tenantID, receiptID string) (*domain.CustomerReceipt, error) {
	query := `SELECT ` + receiptColumns + ` FROM customer_receipts WHERE tenant_id = $1 AND receipt_id = $2;`
	receipt, err := scanReceipt(r.Pool.QueryRow(ctx, query, tenantID, receiptID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("receipt %s: %w", receiptID, apperrors.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find receipt %s: %w", receiptID, err)
	}

	allocQuery := `SELECT allocation_id, receipt_id, invoice_id, amount FROM receipt_allocations WHERE receipt_id = $1 ORDER BY allocation_id;`
	rows, err := r.Pool.Query(ctx, allocQuery, receiptID)
	if err != nil {
		return nil, fmt.Errorf("failed to query allocations: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var a domain.ReceiptAllocation
		if err := rows.Scan(&a.AllocationID, &a.ReceiptID, &a.InvoiceID, &a.Amount); err != nil {
			return nil, fmt.Errorf("failed to scan allocation row: %w", err)
		}
		receipt.Allocations = append(receipt.Allocations, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read allocation rows: %w", err)
	}
	return &receipt, nil
}

func (r *PgxCustomerReceiptRepository) UpdateReceiptStatus(ctx context.Context, receipt domain.CustomerReceipt, expected domain.DocumentStatus) error {
	query := `
		UPDATE customer_receipts
		SET status = $3, submitted_by = $4, submitted_at = $5, approved_by = $6, approved_at = $7,
		    last_updated_by = $8, last_updated_at = $9
		WHERE tenant_id = $1 AND receipt_id = $2 AND status = $10;
	`
	tag, err := r.Pool.Exec(ctx, query,
		receipt.TenantID, receipt.ReceiptID, receipt.Status,
		receipt.SubmittedBy, receipt.SubmittedAt, receipt.ApprovedBy, receipt.ApprovedAt,
		receipt.LastUpdatedBy, receipt.LastUpdatedAt, expected,
	)
	if err != nil {
		return fmt.Errorf("failed to update receipt %s: %w", receipt.ReceiptID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("receipt %s is no longer %s: %w", receipt.ReceiptID, expected, apperrors.ErrConflict)
	}
	return nil
}

func (r *PgxCustomerReceiptRepository) MarkReceiptPosted(ctx context.Context, receipt domain.CustomerReceipt, journal domain.JournalEntry, lines []domain.JournalLine) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	if err := r.journalRepo.InsertJournalInTx(ctx, tx, journal, lines); err != nil {
		return err
	}

	query := `
		UPDATE customer_receipts
		SET status = $3, posted_journal_id = $4, posted_by = $5, posted_at = $6,
		    last_updated_by = $5, last_updated_at = $6
		WHERE tenant_id = $1 AND receipt_id = $2 AND status = $7;
	`
	tag, err := tx.Exec(ctx, query,
		receipt.TenantID, receipt.ReceiptID, domain.DocPosted,
		receipt.PostedJournalID, receipt.PostedBy, receipt.PostedAt, domain.DocApproved,
	)
	if err != nil {
		return fmt.Errorf("failed to post receipt %s: %w", receipt.ReceiptID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("receipt %s is not approved: %w", receipt.ReceiptID, apperrors.ErrConflict)
	}
	return r.Commit(ctx, tx)
}
