package pgsql

import (
	"context"
	"fmt"

	"github.com/finledger/fin_ledger_app/internal/apperrors"
	"github.com/finledger/fin_ledger_app/internal/core/domain"
	portsrepo "github.com/finledger/fin_ledger_app/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxTaxRepository struct {
	BaseRepository
}

// newPgxTaxRepository creates a new repository for tax rates and tax lines.
func newPgxTaxRepository(pool *pgxpool.Pool) portsrepo.TaxRepositoryFacade {
	return &PgxTaxRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.TaxRepositoryFacade = (*PgxTaxRepository)(nil)

func (r *PgxTaxRepository) SaveTaxRate(ctx context.Context, rate domain.TaxRate) error {
	query := `
		INSERT INTO tax_rates (tax_rate_id, tenant_id, name, rate, rate_type, gl_account_id, is_active, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);
	`
	_, err := r.Pool.Exec(ctx, query,
		rate.TaxRateID, rate.TenantID, rate.Name, rate.Rate, rate.RateType,
		rate.GLAccountID, rate.IsActive,
		rate.CreatedAt, rate.CreatedBy, rate.LastUpdatedAt, rate.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: tax rate %s already exists", apperrors.ErrDuplicate, rate.Name)
		}
		return fmt.Errorf("failed to save tax rate %s: %w", rate.TaxRateID, err)
	}
	return nil
}

func (r *PgxTaxRepository) FindTaxRatesByIDs(ctx context.Context, tenantID string, rateIDs []string) (map[string]domain.TaxRate, error) {
	if len(rateIDs) == 0 {
		return map[string]domain.TaxRate{}, nil
	}
	query := `
		SELECT tax_rate_id, tenant_id, name, rate, rate_type, gl_account_id, is_active, created_at, created_by, last_updated_at, last_updated_by
		FROM tax_rates WHERE tenant_id = $1 AND tax_rate_id = ANY($2);
	`
	rows, err := r.Pool.Query(ctx, query, tenantID, rateIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query tax rates: %w", err)
	}
	defer rows.Close()

	rates := make(map[string]domain.TaxRate, len(rateIDs))
	for rows.Next() {
		var t domain.TaxRate
		if err := rows.Scan(&t.TaxRateID, &t.TenantID, &t.Name, &t.Rate, &t.RateType,
			&t.GLAccountID, &t.IsActive,
			&t.CreatedAt, &t.CreatedBy, &t.LastUpdatedAt, &t.LastUpdatedBy); err != nil {
			return nil, fmt.Errorf("failed to scan tax rate row: %w", err)
		}
		rates[t.TaxRateID] = t
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read tax rate rows: %w", err)
	}
	return rates, nil
}

func (r *PgxTaxRepository) FindTaxLinesForSource(ctx context.Context, tenantID string, sourceType domain.SourceType, sourceID string) ([]domain.TaxLine, error) {
	query := `
		SELECT tax_line_id, tenant_id, source_type, source_id, tax_rate_id, taxable_amount, tax_amount
		FROM tax_lines WHERE tenant_id = $1 AND source_type = $2 AND source_id = $3 ORDER BY tax_line_id;
	`
	rows, err := r.Pool.Query(ctx, query, tenantID, sourceType, sourceID)
	if err != nil {
		return nil, fmt.Errorf("failed to query tax lines: %w", err)
	}
	defer rows.Close()

	var lines []domain.TaxLine
	for rows.Next() {
		var l domain.TaxLine
		if err := rows.Scan(&l.TaxLineID, &l.TenantID, &l.SourceType, &l.SourceID,
			&l.TaxRateID, &l.TaxableAmount, &l.TaxAmount); err != nil {
			return nil, fmt.Errorf("failed to scan tax line row: %w", err)
		}
		lines = append(lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read tax line rows: %w", err)
	}
	return lines, nil
}

// insertTaxLinesInTx queues the document's tax lines into the caller's batch
// transaction. Document repositories call it while saving drafts.
func insertTaxLinesInTx(ctx context.Context, tx pgx.Tx, lines []domain.TaxLine) error {
	if len(lines) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	query := `
		INSERT INTO tax_lines (tax_line_id, tenant_id, source_type, source_id, tax_rate_id, taxable_amount, tax_amount)
		VALUES ($1, $2, $3, $4, $5, $6, $7);
	`
	for _, l := range lines {
		batch.Queue(query, l.TaxLineID, l.TenantID, l.SourceType, l.SourceID, l.TaxRateID, l.TaxableAmount, l.TaxAmount)
	}
	results := tx.SendBatch(ctx, batch)
	defer results.Close()
	for range lines {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("failed to insert tax line: %w", err)
		}
	}
	return nil
}
