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

type PgxBudgetRepository struct {
	BaseRepository
}

// newPgxBudgetRepository creates a new repository for budgets and actuals.
func newPgxBudgetRepository(pool *pgxpool.Pool) portsrepo.BudgetRepositoryFacade {
	return &PgxBudgetRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.BudgetRepositoryFacade = (*PgxBudgetRepository)(nil)

func (r *PgxBudgetRepository) SaveBudget(ctx context.Context, budget domain.Budget, revision domain.BudgetRevision, lines []domain.BudgetLine) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	budgetQuery := `
		INSERT INTO budgets (budget_id, tenant_id, fiscal_year, name, status, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
	`
	_, err = tx.Exec(ctx, budgetQuery,
		budget.BudgetID, budget.TenantID, budget.FiscalYear, budget.Name, budget.Status,
		budget.CreatedAt, budget.CreatedBy, budget.LastUpdatedAt, budget.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: an active budget already exists for fiscal year %d", apperrors.ErrDuplicate, budget.FiscalYear)
		}
		return fmt.Errorf("failed to insert budget %s: %w", budget.BudgetID, err)
	}

	revisionQuery := `
		INSERT INTO budget_revisions (revision_id, budget_id, revision_no, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7);
	`
	_, err = tx.Exec(ctx, revisionQuery,
		revision.RevisionID, revision.BudgetID, revision.RevisionNo,
		revision.CreatedAt, revision.CreatedBy, revision.LastUpdatedAt, revision.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to insert budget revision %s: %w", revision.RevisionID, err)
	}

	batch := &pgx.Batch{}
	lineQuery := `
		INSERT INTO budget_lines (line_id, revision_id, account_id, period_id, amount)
		VALUES ($1, $2, $3, $4, $5);
	`
	for _, line := range lines {
		batch.Queue(lineQuery, line.LineID, line.RevisionID, line.AccountID, line.PeriodID, line.Amount)
	}
	results := tx.SendBatch(ctx, batch)
	for range lines {
		if _, err := results.Exec(); err != nil {
			results.Close()
			return fmt.Errorf("failed to insert budget line: %w", err)
		}
	}
	results.Close()
	return r.Commit(ctx, tx)
}

func (r *PgxBudgetRepository) FindActiveBudget(ctx context.Context, tenantID string, fiscalYear int) (*domain.Budget, error) {
	query := `
		SELECT budget_id, tenant_id, fiscal_year, name, status, created_at, created_by, last_updated_at, last_updated_by
		FROM budgets WHERE tenant_id = $1 AND fiscal_year = $2 AND status = $3;
	`
	var b domain.Budget
	err := r.Pool.QueryRow(ctx, query, tenantID, fiscalYear, domain.BudgetActive).Scan(
		&b.BudgetID, &b.TenantID, &b.FiscalYear, &b.Name, &b.Status,
		&b.CreatedAt, &b.CreatedBy, &b.LastUpdatedAt, &b.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("active budget for fiscal year %d: %w", fiscalYear, apperrors.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find active budget: %w", err)
	}
	return &b, nil
}

func (r *PgxBudgetRepository) FindLatestRevision(ctx context.Context, budgetID string) (*domain.BudgetRevision, error) {
	query := `
		SELECT revision_id, budget_id, revision_no, created_at, created_by, last_updated_at, last_updated_by
		FROM budget_revisions WHERE budget_id = $1 ORDER BY revision_no DESC LIMIT 1;
	`
	var rev domain.BudgetRevision
	err := r.Pool.QueryRow(ctx, query, budgetID).Scan(
		&rev.RevisionID, &rev.BudgetID, &rev.RevisionNo,
		&rev.CreatedAt, &rev.CreatedBy, &rev.LastUpdatedAt, &rev.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("revisions of budget %s: %w", budgetID, apperrors.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find latest revision of budget %s: %w", budgetID, err)
	}
	return &rev, nil
}

func (r *PgxBudgetRepository) FindBudgetLines(ctx context.Context, revisionID string, periodIDs []string) ([]domain.BudgetLine, error) {
	query := `
		SELECT line_id, revision_id, account_id, period_id, amount
		FROM budget_lines WHERE revision_id = $1 AND period_id = ANY($2)
		ORDER BY period_id, account_id;
	`
	rows, err := r.Pool.Query(ctx, query, revisionID, periodIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query budget lines: %w", err)
	}
	defer rows.Close()

	var lines []domain.BudgetLine
	for rows.Next() {
		var l domain.BudgetLine
		if err := rows.Scan(&l.LineID, &l.RevisionID, &l.AccountID, &l.PeriodID, &l.Amount); err != nil {
			return nil, fmt.Errorf("failed to scan budget line row: %w", err)
		}
		lines = append(lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read budget line rows: %w", err)
	}
	return lines, nil
}

// GetActuals aggregates posted journal lines into per-(account, period)
// debit/credit totals. A journal belongs to the period covering its date.
func (r *PgxBudgetRepository) GetActuals(ctx context.Context, tenantID string, periodIDs []string) ([]domain.ActualAmount, error) {
	query := `
		SELECT jl.account_id, p.period_id, a.account_type,
		       COALESCE(SUM(jl.debit), 0), COALESCE(SUM(jl.credit), 0)
		FROM journal_lines jl
		JOIN journals j ON j.journal_id = jl.journal_id
		JOIN accounts a ON a.account_id = jl.account_id AND a.tenant_id = j.tenant_id
		JOIN accounting_periods p ON p.tenant_id = j.tenant_id
		     AND j.journal_date >= p.start_date AND j.journal_date <= p.end_date
		WHERE j.tenant_id = $1 AND j.status = 'POSTED' AND p.period_id = ANY($2)
		GROUP BY jl.account_id, p.period_id, a.account_type
		ORDER BY p.period_id, jl.account_id;
	`
	rows, err := r.Pool.Query(ctx, query, tenantID, periodIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query actuals: %w", err)
	}
	defer rows.Close()

	var actuals []domain.ActualAmount
	for rows.Next() {
		var a domain.ActualAmount
		if err := rows.Scan(&a.AccountID, &a.PeriodID, &a.AccountType, &a.Debit, &a.Credit); err != nil {
			return nil, fmt.Errorf("failed to scan actuals row: %w", err)
		}
		actuals = append(actuals, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read actuals rows: %w", err)
	}
	return actuals, nil
}
