package domain

import "time"

// Permission names for the subledger actions guarded by SoD rules.
// Granted permissions arrive in the caller context from the auth middleware.
const (
	PermSupplierInvoiceCreate  = "supplier_invoice:create"
	PermSupplierInvoiceSubmit  = "supplier_invoice:submit"
	PermSupplierInvoiceApprove = "supplier_invoice:approve"
	PermSupplierInvoicePost    = "supplier_invoice:post"

	PermReceiptCreate  = "customer_receipt:create"
	PermReceiptSubmit  = "customer_receipt:submit"
	PermReceiptApprove = "customer_receipt:approve"
	PermReceiptPost    = "customer_receipt:post"

	PermCreditNoteCreate  = "credit_note:create"
	PermCreditNoteSubmit  = "credit_note:submit"
	PermCreditNoteApprove = "credit_note:approve"
	PermCreditNotePost    = "credit_note:post"
	PermCreditNoteVoid    = "credit_note:void"

	PermRefundCreate  = "refund:create"
	PermRefundSubmit  = "refund:submit"
	PermRefundApprove = "refund:approve"
	PermRefundPost    = "refund:post"
	PermRefundVoid    = "refund:void"

	PermBankMatchCreate  = "bank_match:create"
	PermBankMatchSubmit  = "bank_match:submit"
	PermBankMatchApprove = "bank_match:approve"
	PermBankMatchPost    = "bank_match:post"

	PermJournalCreate = "journal:create"
	PermJournalPost   = "journal:post"

	PermBudgetRead = "budget:read"
	PermLedgerRead = "ledger:read"
)

// SoDRule is a tenant-scoped forbidden permission pair: a user may not
// exercise PermissionA while holding PermissionB (the pair is symmetric).
type SoDRule struct {
	RuleID      string `json:"ruleID"`
	TenantID    string `json:"tenantID"`
	PermissionA string `json:"permissionA"`
	PermissionB string `json:"permissionB"`
	Description string `json:"description"`
	AuditFields
}

// Conflicts reports whether the rule forbids exercising attempted while
// holding held.
func (r SoDRule) Conflicts(attempted, held string) bool {
	return (r.PermissionA == attempted && r.PermissionB == held) ||
		(r.PermissionB == attempted && r.PermissionA == held)
}

// SoDViolation is an append-only record of a blocked attempt.
type SoDViolation struct {
	ViolationID           string    `json:"violationID"`
	TenantID              string    `json:"tenantID"`
	UserID                string    `json:"userID"`
	AttemptedPermission   string    `json:"attemptedPermission"`
	ConflictingPermission string    `json:"conflictingPermission"`
	RuleID                string    `json:"ruleID"`
	Action                string    `json:"action"`
	OccurredAt            time.Time `json:"occurredAt"`
}
