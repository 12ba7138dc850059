package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/finledger/fin_ledger_app/internal/apperrors"
	"github.com/finledger/fin_ledger_app/internal/core/domain"
	portsrepo "github.com/finledger/fin_ledger_app/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxJournalRepository struct {
	BaseRepository
}

// newPgxJournalRepository creates a new repository for journal entries and lines.
func newPgxJournalRepository(pool *pgxpool.Pool) portsrepo.JournalRepositoryFacade {
	return &PgxJournalRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.JournalRepositoryFacade = (*PgxJournalRepository)(nil)

const journalColumns = `journal_id, tenant_id, journal_date, reference, description, status, journal_type, source_type, source_id, posted_by, posted_at, original_journal_id, created_at, created_by, last_updated_at, last_updated_by`

func scanJournal(row pgx.Row) (domain.JournalEntry, error) {
	var j domain.JournalEntry
	err := row.Scan(
		&j.JournalID, &j.TenantID, &j.JournalDate, &j.Reference, &j.Description,
		&j.Status, &j.JournalType, &j.SourceType, &j.SourceID,
		&j.PostedBy, &j.PostedAt, &j.OriginalJournalID,
		&j.CreatedAt, &j.CreatedBy, &j.LastUpdatedAt, &j.LastUpdatedBy,
	)
	return j, err
}

func (r *PgxJournalRepository) SaveJournal(ctx context.Context, journal domain.JournalEntry, lines []domain.JournalLine) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	if err := r.InsertJournalInTx(ctx, tx, journal, lines); err != nil {
		return err
	}
	return r.Commit(ctx, tx)
}

// InsertJournalInTx inserts the journal and its lines inside the caller's
// transaction. The unique index on (tenant_id, reference) is the idempotency
// safeguard against double-posting the same source document.
func (r *PgxJournalRepository) InsertJournalInTx(ctx context.Context, tx pgx.Tx, journal domain.JournalEntry, lines []domain.JournalLine) error {
	journalQuery := `
		INSERT INTO journals (` + journalColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16);
	`
	_, err := tx.Exec(ctx, journalQuery,
		journal.JournalID, journal.TenantID, journal.JournalDate, journal.Reference, journal.Description,
		journal.Status, journal.JournalType, journal.SourceType, journal.SourceID,
		journal.PostedBy, journal.PostedAt, journal.OriginalJournalID,
		journal.CreatedAt, journal.CreatedBy, journal.LastUpdatedAt, journal.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: journal reference %s already exists", apperrors.ErrDuplicate, journal.Reference)
		}
		return fmt.Errorf("failed to insert journal %s: %w", journal.JournalID, err)
	}

	batch := &pgx.Batch{}
	lineQuery := `
		INSERT INTO journal_lines (line_id, journal_id, account_id, debit, credit, memo, department, project, fund, legal_entity)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
	`
	for _, line := range lines {
		batch.Queue(lineQuery,
			line.LineID, line.JournalID, line.AccountID, line.Debit, line.Credit,
			line.Memo, line.Department, line.Project, line.Fund, line.LegalEntity,
		)
	}
	results := tx.SendBatch(ctx, batch)
	defer results.Close()
	for range lines {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("failed to insert journal line for %s: %w", journal.JournalID, err)
		}
	}
	return nil
}

func (r *PgxJournalRepository) FindJournalByID(ctx context.Context, tenantID, journalID string) (*domain.JournalEntry, error) {
	query := `SELECT ` + journalColumns + ` FROM journals WHERE tenant_id = $1 AND journal_id = $2;`
	journal, err := scanJournal(r.Pool.QueryRow(ctx, query, tenantID, journalID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("journal %s: %w", journalID, apperrors.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find journal %s: %w", journalID, err)
	}
	return &journal, nil
}

func (r *PgxJournalRepository) FindJournalByReference(ctx context.Context, tenantID, reference string) (*domain.JournalEntry, error) {
	query := `SELECT ` + journalColumns + ` FROM journals WHERE tenant_id = $1 AND reference = $2;`
	journal, err := scanJournal(r.Pool.QueryRow(ctx, query, tenantID, reference))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("journal with reference %s: %w", reference, apperrors.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find journal by reference %s: %w", reference, err)
	}
	return &journal, nil
}

func (r *PgxJournalRepository) FindLinesByJournalID(ctx context.Context, journalID string) ([]domain.JournalLine, error) {
	query := `
		SELECT line_id, journal_id, account_id, debit, credit, memo, department, project, fund, legal_entity
		FROM journal_lines WHERE journal_id = $1 ORDER BY line_id;
	`
	rows, err := r.Pool.Query(ctx, query, journalID)
	if err != nil {
		return nil, fmt.Errorf("failed to query journal lines: %w", err)
	}
	defer rows.Close()

	var lines []domain.JournalLine
	for rows.Next() {
		var l domain.JournalLine
		if err := rows.Scan(&l.LineID, &l.JournalID, &l.AccountID, &l.Debit, &l.Credit,
			&l.Memo, &l.Department, &l.Project, &l.Fund, &l.LegalEntity); err != nil {
			return nil, fmt.Errorf("failed to scan journal line row: %w", err)
		}
		lines = append(lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read journal line rows: %w", err)
	}
	return lines, nil
}

func (r *PgxJournalRepository) MarkJournalPosted(ctx context.Context, tenantID, journalID, postedBy string, postedAt time.Time) error {
	query := `
		UPDATE journals
		SET status = $3, posted_by = $4, posted_at = $5, last_updated_by = $4, last_updated_at = $5
		WHERE tenant_id = $1 AND journal_id = $2 AND status <> $3;
	`
	tag, err := r.Pool.Exec(ctx, query, tenantID, journalID, domain.JournalPosted, postedBy, postedAt)
	if err != nil {
		return fmt.Errorf("failed to post journal %s: %w", journalID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("journal %s is not in a postable state: %w", journalID, apperrors.ErrConflict)
	}
	return nil
}

func (r *PgxJournalRepository) ListJournals(ctx context.Context, tenantID string, limit int, offset int) ([]domain.JournalEntry, error) {
	query := `
		SELECT ` + journalColumns + ` FROM journals
		WHERE tenant_id = $1 ORDER BY journal_date DESC, journal_id LIMIT $2 OFFSET $3;
	`
	rows, err := r.Pool.Query(ctx, query, tenantID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query journals: %w", err)
	}
	defer rows.Close()

	var journals []domain.JournalEntry
	for rows.Next() {
		journal, err := scanJournal(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan journal row: %w", err)
		}
		journals = append(journals, journal)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read journal rows: %w", err)
	}
	return journals, nil
}
