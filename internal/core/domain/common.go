package domain

import "time"

// AuditFields holds standard audit information for domain entities.
type AuditFields struct {
	CreatedAt     time.Time `json:"createdAt"`
	CreatedBy     string    `json:"createdBy"` // UserID reference
	LastUpdatedAt time.Time `json:"lastUpdatedAt"`
	LastUpdatedBy string    `json:"lastUpdatedBy"` // UserID reference
}

// Caller is the per-request caller context resolved by the auth middleware:
// the acting user, their tenant, and the permissions granted to them.
// It is passed explicitly through every service call; there is no process-wide
// tenant state anywhere.
type Caller struct {
	TenantID    string
	UserID      string
	Permissions []string
}

// HasPermission reports whether the caller holds the given permission.
func (c Caller) HasPermission(perm string) bool {
	for _, p := range c.Permissions {
		if p == perm {
			return true
		}
	}
	return false
}
