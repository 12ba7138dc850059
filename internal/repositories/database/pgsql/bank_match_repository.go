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

type PgxBankMatchRepository struct {
	BaseRepository
	journalRepo portsrepo.JournalRepositoryFacade
}

// newPgxBankMatchRepository creates a new repository for bank reconciliation
// match data.
func newPgxBankMatchRepository(pool *pgxpool.Pool, journalRepo portsrepo.JournalRepositoryFacade) portsrepo.BankMatchRepositoryFacade {
	return &PgxBankMatchRepository{
		BaseRepository: BaseRepository{Pool: pool},
		journalRepo:    journalRepo,
	}
}

var _ portsrepo.BankMatchRepositoryFacade = (*PgxBankMatchRepository)(nil)

const bankMatchColumns = `match_id, tenant_id, bank_account_id, statement_ref, statement_date, direction, amount, status, posted_journal_id, submitted_by, submitted_at, approved_by, approved_at, posted_by, posted_at, voided_by, voided_at, void_reason, created_at, created_by, last_updated_at, last_updated_by`

func scanBankMatch(row pgx.Row) (domain.BankMatch, error) {
	var m domain.BankMatch
	err := row.Scan(
		&m.MatchID, &m.TenantID, &m.BankAccountID, &m.StatementRef, &m.StatementDate,
		&m.Direction, &m.Amount, &m.Status, &m.PostedJournalID,
		&m.SubmittedBy, &m.SubmittedAt, &m.ApprovedBy, &m.ApprovedAt,
		&m.PostedBy, &m.PostedAt, &m.VoidedBy, &m.VoidedAt, &m.VoidReason,
		&m.CreatedAt, &m.CreatedBy, &m.LastUpdatedAt, &m.LastUpdatedBy,
	)
	return m, err
}

func (r *PgxBankMatchRepository) SaveMatch(ctx context.Context, match domain.BankMatch) error {
	query := `
		INSERT INTO bank_matches (` + bankMatchColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22);
	`
	_, err := r.Pool.Exec(ctx, query,
		match.MatchID, match.TenantID, match.BankAccountID, match.StatementRef, match.StatementDate,
		match.Direction, match.Amount, match.Status, match.PostedJournalID,
		match.SubmittedBy, match.SubmittedAt, match.ApprovedBy, match.ApprovedAt,
		match.PostedBy, match.PostedAt, match.VoidedBy, match.VoidedAt, match.VoidReason,
		match.CreatedAt, match.CreatedBy, match.LastUpdatedAt, match.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: statement line %s is already matched", apperrors.ErrDuplicate, match.StatementRef)
		}
		return fmt.Errorf("failed to save bank match %s: %w", match.MatchID, err)
	}
	return nil
}

func (r *PgxBankMatchRepository) FindMatchByID(ctx context.Context, tenantID, matchID string) (*domain.BankMatch, error) {
	query := `SELECT ` + bankMatchColumns + ` FROM bank_matches WHERE tenant_id = $1 AND match_id = $2;`
	match, err := scanBankMatch(r.Pool.QueryRow(ctx, query, tenantID, matchID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("bank match %s: %w", matchID, apperrors.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find bank match %s: %w", matchID, err)
	}
	return &match, nil
}

func (r *PgxBankMatchRepository) UpdateMatchStatus(ctx context.Context, match domain.BankMatch, expected domain.DocumentStatus) error {
	query := `
		UPDATE bank_matches
		SET status = $3, submitted_by = $4, submitted_at = $5, approved_by = $6, approved_at = $7,
		    last_updated_by = $8, last_updated_at = $9
		WHERE tenant_id = $1 AND match_id = $2 AND status = $10;
	`
	tag, err := r.Pool.Exec(ctx, query,
		match.TenantID, match.MatchID, match.Status,
		match.SubmittedBy, match.SubmittedAt, match.ApprovedBy, match.ApprovedAt,
		match.LastUpdatedBy, match.LastUpdatedAt, expected,
	)
	if err != nil {
		return fmt.Errorf("failed to update bank match %s: %w", match.MatchID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("bank match %s is no longer %s: %w", match.MatchID, expected, apperrors.ErrConflict)
	}
	return nil
}

func (r *PgxBankMatchRepository) MarkMatchPosted(ctx context.Context, match domain.BankMatch, journal domain.JournalEntry, lines []domain.JournalLine) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	if err := r.journalRepo.InsertJournalInTx(ctx, tx, journal, lines); err != nil {
		return err
	}

	query := `
		UPDATE bank_matches
		SET status = $3, posted_journal_id = $4, posted_by = $5, posted_at = $6,
		    last_updated_by = $5, last_updated_at = $6
		WHERE tenant_id = $1 AND match_id = $2 AND status = $7;
	`
	tag, err := tx.Exec(ctx, query,
		match.TenantID, match.MatchID, domain.DocPosted,
		match.PostedJournalID, match.PostedBy, match.PostedAt, domain.DocApproved,
	)
	if err != nil {
		return fmt.Errorf("failed to post bank match %s: %w", match.MatchID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("bank match %s is not approved: %w", match.MatchID, apperrors.ErrConflict)
	}
	return r.Commit(ctx, tx)
}
