package pgsql

import (
	"context"
	"fmt"

	"github.com/finledger/fin_ledger_app/internal/apperrors"
	"github.com/finledger/fin_ledger_app/internal/core/domain"
	portsrepo "github.com/finledger/fin_ledger_app/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxSoDRepository struct {
	BaseRepository
}

// newPgxSoDRepository creates a new repository for segregation-of-duties rules
// and violations.
func newPgxSoDRepository(pool *pgxpool.Pool) portsrepo.SoDRepositoryFacade {
	return &PgxSoDRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.SoDRepositoryFacade = (*PgxSoDRepository)(nil)

func (r *PgxSoDRepository) SaveRule(ctx context.Context, rule domain.SoDRule) error {
	query := `
		INSERT INTO sod_rules (rule_id, tenant_id, permission_a, permission_b, description, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
	`
	_, err := r.Pool.Exec(ctx, query,
		rule.RuleID, rule.TenantID, rule.PermissionA, rule.PermissionB, rule.Description,
		rule.CreatedAt, rule.CreatedBy, rule.LastUpdatedAt, rule.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: rule for pair (%s, %s) already exists", apperrors.ErrDuplicate, rule.PermissionA, rule.PermissionB)
		}
		return fmt.Errorf("failed to insert sod rule %s: %w", rule.RuleID, err)
	}
	return nil
}

func (r *PgxSoDRepository) FindRulesForPermissions(ctx context.Context, tenantID string, permissions []string) ([]domain.SoDRule, error) {
	query := `
		SELECT rule_id, tenant_id, permission_a, permission_b, description, created_at, created_by, last_updated_at, last_updated_by
		FROM sod_rules
		WHERE tenant_id = $1 AND (permission_a = ANY($2) OR permission_b = ANY($2));
	`
	rows, err := r.Pool.Query(ctx, query, tenantID, permissions)
	if err != nil {
		return nil, fmt.Errorf("failed to query sod rules: %w", err)
	}
	defer rows.Close()

	var rules []domain.SoDRule
	for rows.Next() {
		var rule domain.SoDRule
		err := rows.Scan(
			&rule.RuleID, &rule.TenantID, &rule.PermissionA, &rule.PermissionB, &rule.Description,
			&rule.CreatedAt, &rule.CreatedBy, &rule.LastUpdatedAt, &rule.LastUpdatedBy,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan sod rule row: %w", err)
		}
		rules = append(rules, rule)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read sod rule rows: %w", err)
	}
	return rules, nil
}

func (r *PgxSoDRepository) SaveViolation(ctx context.Context, violation domain.SoDViolation) error {
	query := `
		INSERT INTO sod_violations (violation_id, tenant_id, user_id, attempted_permission, conflicting_permission, rule_id, action, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
	`
	_, err := r.Pool.Exec(ctx, query,
		violation.ViolationID, violation.TenantID, violation.UserID,
		violation.AttemptedPermission, violation.ConflictingPermission,
		violation.RuleID, violation.Action, violation.OccurredAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert sod violation %s: %w", violation.ViolationID, err)
	}
	return nil
}
