package domain

import "time"

// DocumentStatus is the shared subledger document lifecycle.
// DRAFT -> SUBMITTED -> APPROVED -> POSTED, with VOID reachable from POSTED
// for credit notes and refunds via a compensating reversal journal.
type DocumentStatus string

const (
	DocDraft     DocumentStatus = "DRAFT"
	DocSubmitted DocumentStatus = "SUBMITTED"
	DocApproved  DocumentStatus = "APPROVED"
	DocPosted    DocumentStatus = "POSTED"
	DocVoid      DocumentStatus = "VOID"
)

// CanTransitionTo reports whether the lifecycle permits moving to next.
func (s DocumentStatus) CanTransitionTo(next DocumentStatus) bool {
	switch s {
	case DocDraft:
		return next == DocSubmitted
	case DocSubmitted:
		return next == DocApproved
	case DocApproved:
		return next == DocPosted
	case DocPosted:
		return next == DocVoid
	}
	return false
}

// MinVoidReasonLen is the minimum length of a void reason.
const MinVoidReasonLen = 10

// DocumentStamps carries the actor/timestamp pairs recorded on each lifecycle
// transition of a subledger document.
type DocumentStamps struct {
	SubmittedBy *string    `json:"submittedBy,omitempty"`
	SubmittedAt *time.Time `json:"submittedAt,omitempty"`
	ApprovedBy  *string    `json:"approvedBy,omitempty"`
	ApprovedAt  *time.Time `json:"approvedAt,omitempty"`
	PostedBy    *string    `json:"postedBy,omitempty"`
	PostedAt    *time.Time `json:"postedAt,omitempty"`
	VoidedBy    *string    `json:"voidedBy,omitempty"`
	VoidedAt    *time.Time `json:"voidedAt,omitempty"`
	VoidReason  *string    `json:"voidReason,omitempty"`
}
