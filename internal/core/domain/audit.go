package domain

import "time"

// AuditOutcome is the result recorded on an audit event.
type AuditOutcome string

const (
	AuditAllowed AuditOutcome = "ALLOWED"
	AuditBlocked AuditOutcome = "BLOCKED"
)

// AuditEvent is one row in the append-only audit trail. Every policy rejection
// (period, cutover, SoD) writes one of these with the specific reason before
// the caller sees the error, so the trail is a complete record of why any
// document did not post. Audit writes are best-effort and never block the
// primary transaction.
type AuditEvent struct {
	EventID     string       `json:"eventID"`
	TenantID    string       `json:"tenantID"`
	EventType   string       `json:"eventType"`
	EntityType  string       `json:"entityType"`
	EntityID    string       `json:"entityID"`
	Action      string       `json:"action"`
	Outcome     AuditOutcome `json:"outcome"`
	Reason      string       `json:"reason"`
	ActorUserID string       `json:"actorUserID"`
	OccurredAt  time.Time    `json:"occurredAt"`
}
