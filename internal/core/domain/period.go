package domain

import "time"

// PeriodStatus is the postability status of an accounting period.
type PeriodStatus string

const (
	PeriodOpen     PeriodStatus = "OPEN"
	PeriodClosed   PeriodStatus = "CLOSED"
	PeriodReopened PeriodStatus = "REOPENED"
)

// OpeningBalancesPeriodName is the reserved name of the balance carry-forward
// period. Operational documents may never post into it, and once it is CLOSED
// its start date becomes the cutover date for the tenant.
const OpeningBalancesPeriodName = "Opening Balances"

// PeriodAction tags the reason an assertPostable check is running, so the
// audit trail distinguishes pre-checks during drafting from the binding check
// immediately before journal creation.
type PeriodAction string

const (
	PeriodActionCreate PeriodAction = "create"
	PeriodActionPost   PeriodAction = "post"
)

// AccountingPeriod is a non-overlapping date range with a postability status.
// Periods partition time without gaps or overlaps per tenant.
type AccountingPeriod struct {
	PeriodID  string       `json:"periodID"`
	TenantID  string       `json:"tenantID"`
	Name      string       `json:"name"`
	StartDate time.Time    `json:"startDate"`
	EndDate   time.Time    `json:"endDate"`
	Status    PeriodStatus `json:"status"`
	AuditFields
}

// Contains reports whether the given date falls inside the period (inclusive).
func (p AccountingPeriod) Contains(date time.Time) bool {
	d := date.Truncate(24 * time.Hour)
	return !d.Before(p.StartDate) && !d.After(p.EndDate)
}

// IsOpeningBalances reports whether this is the reserved cutover period.
func (p AccountingPeriod) IsOpeningBalances() bool {
	return p.Name == OpeningBalancesPeriodName
}

// IsPostable reports whether the period accepts postings. REOPENED periods are
// not postable; they must be explicitly re-opened to OPEN first.
func (p AccountingPeriod) IsPostable() bool {
	return p.Status == PeriodOpen
}
