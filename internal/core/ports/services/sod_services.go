package services

import "context"

// SoDGuardSvcFacade evaluates segregation-of-duties rules. It runs after the
// coarse permission check, so a caller missing a base permission never learns
// which fine-grained rule would have blocked them.
type SoDGuardSvcFacade interface {
	// CheckAndEnforce fails with a SoDViolationError (wrapping
	// ErrPolicyBlocked) when any tenant rule pairs a required permission with
	// one the user already holds. Every conflict is persisted to the
	// violation log and audited before the error is returned.
	CheckAndEnforce(ctx context.Context, tenantID, userID, action string, required, granted []string) error
}
