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

type PgxSupplierInvoiceRepository struct {
	BaseRepository
	journalRepo portsrepo.JournalRepositoryFacade
}

// newPgxSupplierInvoiceRepository creates a new repository for supplier
// invoice data. The journal repository is injected so posting can insert the
// journal inside the invoice's own transaction.
func newPgxSupplierInvoiceRepository(pool *pgxpool.Pool, journalRepo portsrepo.JournalRepositoryFacade) portsrepo.SupplierInvoiceRepositoryFacade {
	return &PgxSupplierInvoiceRepository{
		BaseRepository: BaseRepository{Pool: pool},
		journalRepo:    journalRepo,
	}
}

var _ portsrepo.SupplierInvoiceRepositoryFacade = (*PgxSupplierInvoiceRepository)(nil)

const supplierInvoiceColumns = `invoice_id, tenant_id, supplier_id, invoice_number, invoice_date, status, total_amount, posted_journal_id, submitted_by, submitted_at, approved_by, approved_at, posted_by, posted_at, voided_by, voided_at, void_reason, created_at, created_by, last_updated_at, last_updated_by`

func scanSupplierInvoice(row pgx.Row) (domain.SupplierInvoice, error) {
	var inv domain.SupplierInvoice
	err := row.Scan(
		&inv.InvoiceID, &inv.TenantID, &inv.SupplierID, &inv.InvoiceNumber, &inv.InvoiceDate,
		&inv.Status, &inv.TotalAmount, &inv.PostedJournalID,
		&inv.SubmittedBy, &inv.SubmittedAt, &inv.ApprovedBy, &inv.ApprovedAt,
		&inv.PostedBy, &inv.PostedAt, &inv.VoidedBy, &inv.VoidedAt, &inv.VoidReason,
		&inv.CreatedAt, &inv.CreatedBy, &inv.LastUpdatedAt, &inv.LastUpdatedBy,
	)
	return inv, err
}

func (r *PgxSupplierInvoiceRepository) SaveInvoice(ctx context.Context, invoice domain.SupplierInvoice, taxLines []domain.TaxLine) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	query := `
		INSERT INTO supplier_invoices (` + supplierInvoiceColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21);
	`
	_, err = tx.Exec(ctx, query,
		invoice.InvoiceID, invoice.TenantID, invoice.SupplierID, invoice.InvoiceNumber, invoice.InvoiceDate,
		invoice.Status, invoice.TotalAmount, invoice.PostedJournalID,
		invoice.SubmittedBy, invoice.SubmittedAt, invoice.ApprovedBy, invoice.ApprovedAt,
		invoice.PostedBy, invoice.PostedAt, invoice.VoidedBy, invoice.VoidedAt, invoice.VoidReason,
		invoice.CreatedAt, invoice.CreatedBy, invoice.LastUpdatedAt, invoice.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: invoice number %s already exists for supplier", apperrors.ErrDuplicate, invoice.InvoiceNumber)
		}
		return fmt.Errorf("failed to insert supplier invoice %s: %w", invoice.InvoiceID, err)
	}

	batch := &pgx.Batch{}
	lineQuery := `
		INSERT INTO supplier_invoice_lines (line_id, invoice_id, account_id, description, amount)
		VALUES ($1, $2, $3, $4, $5);
	`
	for _, line := range invoice.Lines {
		batch.Queue(lineQuery, line.LineID, line.InvoiceID, line.AccountID, line.Description, line.Amount)
	}
	results := tx.SendBatch(ctx, batch)
	for range invoice.Lines {
		if _, err := results.Exec(); err != nil {
			results.Close()
			return fmt.Errorf("failed to insert invoice line for %s: %w", invoice.InvoiceID, err)
		}
	}
	results.Close()

	if err := insertTaxLinesInTx(ctx, tx, taxLines); err != nil {
		return err
	}
	return r.Commit(ctx, tx)
}

func (r *PgxSupplierInvoiceRepository) FindInvoiceByID(ctx context.Context, tenantID, invoiceID string) (*domain.SupplierInvoice, error) {
	query := `SELECT ` + supplierInvoiceColumns + ` FROM supplier_invoices WHERE tenant_id = $1 AND invoice_id = $2;`
	invoice, err := scanSupplierInvoice(r.Pool.QueryRow(ctx, query, tenantID, invoiceID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("supplier invoice %s: %w", invoiceID, apperrors.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find supplier invoice %s: %w", invoiceID, err)
	}

	lineQuery := `SELECT line_id, invoice_id, account_id, description, amount FROM supplier_invoice_lines WHERE invoice_id = $1 ORDER BY line_id;`
	rows, err := r.Pool.Query(ctx, lineQuery, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("failed to query invoice lines: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var l domain.SupplierInvoiceLine
		if err := rows.Scan(&l.LineID, &l.InvoiceID, &l.AccountID, &l.Description, &l.Amount); err != nil {
			return nil, fmt.Errorf("failed to scan invoice line row: %w", err)
		}
		invoice.Lines = append(invoice.Lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read invoice line rows: %w", err)
	}
	return &invoice, nil
}

func (r *PgxSupplierInvoiceRepository) UpdateInvoiceStatus(ctx context.Context, invoice domain.SupplierInvoice, expected domain.DocumentStatus) error {
	query := `
		UPDATE supplier_invoices
		SET status = $3, submitted_by = $4, submitted_at = $5, approved_by = $6, approved_at = $7,
		    last_updated_by = $8, last_updated_at = $9
		WHERE tenant_id = $1 AND invoice_id = $2 AND status = $10;
	`
	tag, err := r.Pool.Exec(ctx, query,
		invoice.TenantID, invoice.InvoiceID, invoice.Status,
		invoice.SubmittedBy, invoice.SubmittedAt, invoice.ApprovedBy, invoice.ApprovedAt,
		invoice.LastUpdatedBy, invoice.LastUpdatedAt, expected,
	)
	if err != nil {
		return fmt.Errorf("failed to update supplier invoice %s: %w", invoice.InvoiceID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("supplier invoice %s is no longer %s: %w", invoice.InvoiceID, expected, apperrors.ErrConflict)
	}
	return nil
}

func (r *PgxSupplierInvoiceRepository) MarkInvoicePosted(ctx context.Context, invoice domain.SupplierInvoice, journal domain.JournalEntry, lines []domain.JournalLine) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	if err := r.journalRepo.InsertJournalInTx(ctx, tx, journal, lines); err != nil {
		return err
	}

	query := `
		UPDATE supplier_invoices
		SET status = $3, posted_journal_id = $4, posted_by = $5, posted_at = $6,
		    last_updated_by = $5, last_updated_at = $6
		WHERE tenant_id = $1 AND invoice_id = $2 AND status = $7;
	`
	tag, err := tx.Exec(ctx, query,
		invoice.TenantID, invoice.InvoiceID, domain.DocPosted,
		invoice.PostedJournalID, invoice.PostedBy, invoice.PostedAt, domain.DocApproved,
	)
	if err != nil {
		return fmt.Errorf("failed to post supplier invoice %s: %w", invoice.InvoiceID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("supplier invoice %s is not approved: %w", invoice.InvoiceID, apperrors.ErrConflict)
	}
	return r.Commit(ctx, tx)
}
