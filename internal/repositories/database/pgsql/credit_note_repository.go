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

type PgxCreditNoteRepository struct {
	BaseRepository
	journalRepo portsrepo.JournalRepositoryFacade
}

// newPgxCreditNoteRepository creates a new repository for credit note data.
func newPgxCreditNoteRepository(pool *pgxpool.Pool, journalRepo portsrepo.JournalRepositoryFacade) portsrepo.CreditNoteRepositoryFacade {
	return &PgxCreditNoteRepository{
		BaseRepository: BaseRepository{Pool: pool},
		journalRepo:    journalRepo,
	}
}

var _ portsrepo.CreditNoteRepositoryFacade = (*PgxCreditNoteRepository)(nil)

const creditNoteColumns = `credit_note_id, tenant_id, customer_id, invoice_id, credit_date, status, total_amount, posted_journal_id, reversal_journal_id, submitted_by, submitted_at, approved_by, approved_at, posted_by, posted_at, voided_by, voided_at, void_reason, created_at, created_by, last_updated_at, last_updated_by`

func scanCreditNote(row pgx.Row) (domain.CustomerCreditNote, error) {
	var cn domain.CustomerCreditNote
	err := row.Scan(
		&cn.CreditNoteID, &cn.TenantID, &cn.CustomerID, &cn.InvoiceID, &cn.CreditDate,
		&cn.Status, &cn.TotalAmount, &cn.PostedJournalID, &cn.ReversalJournalID,
		&cn.SubmittedBy, &cn.SubmittedAt, &cn.ApprovedBy, &cn.ApprovedAt,
		&cn.PostedBy, &cn.PostedAt, &cn.VoidedBy, &cn.VoidedAt, &cn.VoidReason,
		&cn.CreatedAt, &cn.CreatedBy, &cn.LastUpdatedAt, &cn.LastUpdatedBy,
	)
	return cn, err
}

func (r *PgxCreditNoteRepository) SaveCreditNote(ctx context.Context, note domain.CustomerCreditNote, taxLines []domain.TaxLine) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	query := `
		INSERT INTO credit_notes (` + creditNoteColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22);
	`
	_, err = tx.Exec(ctx, query,
		note.CreditNoteID, note.TenantID, note.CustomerID, note.InvoiceID, note.CreditDate,
		note.Status, note.TotalAmount, note.PostedJournalID, note.ReversalJournalID,
		note.SubmittedBy, note.SubmittedAt, note.ApprovedBy, note.ApprovedAt,
		note.PostedBy, note.PostedAt, note.VoidedBy, note.VoidedAt, note.VoidReason,
		note.CreatedAt, note.CreatedBy, note.LastUpdatedAt, note.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to insert credit note %s: %w", note.CreditNoteID, err)
	}

	batch := &pgx.Batch{}
	lineQuery := `
		INSERT INTO credit_note_lines (line_id, credit_note_id, account_id, description, amount)
		VALUES ($1, $2, $3, $4, $5);
	`
	for _, line := range note.Lines {
		batch.Queue(lineQuery, line.LineID, line.CreditNoteID, line.AccountID, line.Description, line.Amount)
	}
	results := tx.SendBatch(ctx, batch)
	for range note.Lines {
		if _, err := results.Exec(); err != nil {
			results.Close()
			return fmt.Errorf("failed to insert credit note line for %s: %w", note.CreditNoteID, err)
		}
	}
	results.Close()

	if err := insertTaxLinesInTx(ctx, tx, taxLines); err != nil {
		return err
	}
	return r.Commit(ctx, tx)
}

func (r *PgxCreditNoteRepository) FindCreditNoteByID(ctx context.Context, tenantID, creditNoteID string) (*domain.CustomerCreditNote, error) {
	query := `SELECT ` + creditNoteColumns + ` FROM credit_notes WHERE tenant_id = $1 AND credit_note_id = $2;`
	note, err := scanCreditNote(r.Pool.QueryRow(ctx, query, tenantID, creditNoteID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("credit note %s: %w", creditNoteID, apperrors.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find credit note %s: %w", creditNoteID, err)
	}

	lineQuery := `SELECT line_id, credit_note_id, account_id, description, amount FROM credit_note_lines WHERE credit_note_id = $1 ORDER BY line_id;`
	rows, err := r.Pool.Query(ctx, lineQuery, creditNoteID)
	if err != nil {
		return nil, fmt.Errorf("failed to query credit note lines: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var l domain.CreditNoteLine
		if err := rows.Scan(&l.LineID, &l.CreditNoteID, &l.AccountID, &l.Description, &l.Amount); err != nil {
			return nil, fmt.Errorf("failed to scan credit note line row: %w", err)
		}
		note.Lines = append(note.Lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read credit note line rows: %w", err)
	}
	return &note, nil
}

func (r *PgxCreditNoteRepository) UpdateCreditNoteStatus(ctx context.Context, note domain.CustomerCreditNote, expected domain.DocumentStatus) error {
	query := `
		UPDATE credit_notes
		SET status = $3, submitted_by = $4, submitted_at = $5, approved_by = $6, approved_at = $7,
		    last_updated_by = $8, last_updated_at = $9
		WHERE tenant_id = $1 AND credit_note_id = $2 AND status = $10;
	`
	tag, err := r.Pool.Exec(ctx, query,
		note.TenantID, note.CreditNoteID, note.Status,
		note.SubmittedBy, note.SubmittedAt, note.ApprovedBy, note.ApprovedAt,
		note.LastUpdatedBy, note.LastUpdatedAt, expected,
	)
	if err != nil {
		return fmt.Errorf("failed to update credit note %s: %w", note.CreditNoteID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("credit note %s is no longer %s: %w", note.CreditNoteID, expected, apperrors.ErrConflict)
	}
	return nil
}

func (r *PgxCreditNoteRepository) MarkCreditNotePosted(ctx context.Context, note domain.CustomerCreditNote, journal domain.JournalEntry, lines []domain.JournalLine) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	if err := r.journalRepo.InsertJournalInTx(ctx, tx, journal, lines); err != nil {
		return err
	}

	query := `
		UPDATE credit_notes
		SET status = $3, posted_journal_id = $4, posted_by = $5, posted_at = $6,
		    last_updated_by = $5, last_updated_at = $6
		WHERE tenant_id = $1 AND credit_note_id = $2 AND status = $7;
	`
	tag, err := tx.Exec(ctx, query,
		note.TenantID, note.CreditNoteID, domain.DocPosted,
		note.PostedJournalID, note.PostedBy, note.PostedAt, domain.DocApproved,
	)
	if err != nil {
		return fmt.Errorf("failed to post credit note %s: %w", note.CreditNoteID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("credit note %s is not approved: %w", note.CreditNoteID, apperrors.ErrConflict)
	}
	return r.Commit(ctx, tx)
}

func (r *PgxCreditNoteRepository) MarkCreditNoteVoided(ctx context.Context, note domain.CustomerCreditNote, reversal domain.JournalEntry, lines []domain.JournalLine) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	if err := r.journalRepo.InsertJournalInTx(ctx, tx, reversal, lines); err != nil {
		return err
	}

	query := `
		UPDATE credit_notes
		SET status = $3, reversal_journal_id = $4, voided_by = $5, voided_at = $6, void_reason = $7,
		    last_updated_by = $5, last_updated_at = $6
		WHERE tenant_id = $1 AND credit_note_id = $2 AND status = $8;
	`
	tag, err := tx.Exec(ctx, query,
		note.TenantID, note.CreditNoteID, domain.DocVoid,
		note.ReversalJournalID, note.VoidedBy, note.VoidedAt, note.VoidReason, domain.DocPosted,
	)
	if err != nil {
		return fmt.Errorf("failed to void credit note %s: %w", note.CreditNoteID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("credit note %s is not posted: %w", note.CreditNoteID, apperrors.ErrConflict)
	}
	return r.Commit(ctx, tx)
}
