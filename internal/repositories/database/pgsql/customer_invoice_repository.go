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

type PgxCustomerInvoiceRepository struct {
	BaseRepository
}

// newPgxCustomerInvoiceRepository creates a new repository for AR invoice data.
func newPgxCustomerInvoiceRepository(pool *pgxpool.Pool) portsrepo.CustomerInvoiceRepositoryFacade {
	return &PgxCustomerInvoiceRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.CustomerInvoiceRepositoryFacade = (*PgxCustomerInvoiceRepository)(nil)

const customerInvoiceColumns = `invoice_id, tenant_id, customer_id, invoice_number, invoice_date, status, total_amount, posted_journal_id, submitted_by, submitted_at, approved_by, approved_at, posted_by, posted_at, voided_by, voided_at, void_reason, created_at, created_by, last_updated_at, last_updated_by`

func (r *PgxCustomerInvoiceRepository) FindInvoiceByID(ctx context.Context, tenantID, invoiceID string) (*domain.CustomerInvoice, error) {
	query := `SELECT ` + customerInvoiceColumns + ` FROM customer_invoices WHERE tenant_id = $1 AND invoice_id = $2;`
	var inv domain.CustomerInvoice
	err := r.Pool.QueryRow(ctx, query, tenantID, invoiceID).Scan(
		&inv.InvoiceID, &inv.TenantID, &inv.CustomerID, &inv.InvoiceNumber, &inv.InvoiceDate,
		&inv.Status, &inv.TotalAmount, &inv.PostedJournalID,
		&inv.SubmittedBy, &inv.SubmittedAt, &inv.ApprovedBy, &inv.ApprovedAt,
		&inv.PostedBy, &inv.PostedAt, &inv.VoidedBy, &inv.VoidedAt, &inv.VoidReason,
		&inv.CreatedAt, &inv.CreatedBy, &inv.LastUpdatedAt, &inv.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("customer invoice %s: %w", invoiceID, apperrors.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find customer invoice %s: %w", invoiceID, err)
	}
	return &inv, nil
}

// GetOutstandingBalance sums posted receipt allocations and posted credit
// notes against the invoice total. Voided credit notes do not reduce the
// balance; their reversal restored it.
func (r *PgxCustomerInvoiceRepository) GetOutstandingBalance(ctx context.Context, tenantID, invoiceID string) (*domain.OutstandingBalance, error) {
	query := `
		SELECT ci.invoice_id,
		       ci.total_amount,
		       COALESCE((
		           SELECT SUM(ra.amount)
		           FROM receipt_allocations ra
		           JOIN customer_receipts cr ON cr.receipt_id = ra.receipt_id
		           WHERE ra.invoice_id = ci.invoice_id AND cr.status = 'POSTED'
		       ), 0),
		       COALESCE((
		           SELECT SUM(cn.total_amount)
		           FROM credit_notes cn
		           WHERE cn.invoice_id = ci.invoice_id AND cn.status = 'POSTED'
		       ), 0)
		FROM customer_invoices ci
		WHERE ci.tenant_id = $1 AND ci.invoice_id = $2;
	`
	var b domain.OutstandingBalance
	err := r.Pool.QueryRow(ctx, query, tenantID, invoiceID).Scan(
		&b.InvoiceID, &b.InvoiceTotal, &b.ReceiptsAmount, &b.CreditNoteAmount,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("customer invoice %s: %w", invoiceID, apperrors.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to compute outstanding balance for %s: %w", invoiceID, err)
	}
	return &b, nil
}
