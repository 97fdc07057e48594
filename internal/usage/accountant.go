package usage

import (
	"time"

	"github.com/archbuilder/orchestrator/internal/types"
)

// CheckResult is the outcome of a pre-check against a tenant's quota.
type CheckResult struct {
	Allowed   bool
	Reason    string
	Remaining int
	Limit     int
}

// CategoryRemaining reports the remaining units for one category.
type CategoryRemaining struct {
	Category  Category
	Remaining int
	Limit     int
}

// Accountant is C9: pre-check quota, record usage units, and expose
// remaining per-category counts per tenant. Pre-check is advisory, not
// a strict lock — per spec §4.9, concurrent over-consumption within a
// single tenant is permissible up to the limit plus a small overshoot;
// the append-only ledger remains the authoritative record.
type Accountant struct {
	ledger        Ledger
	tierOf        PerTenantTier
	billingPeriod time.Duration
	now           func() time.Time
}

// New creates an Accountant. tierOf resolves a tenant's subscription
// tier; billingPeriod is the rolling window quota sums are computed
// over (the calendar month is approximated as a fixed duration, per
// config.UsageConfig.BillingPeriod).
func New(ledger Ledger, tierOf PerTenantTier, billingPeriod time.Duration) *Accountant {
	return &Accountant{
		ledger:        ledger,
		tierOf:        tierOf,
		billingPeriod: billingPeriod,
		now:           time.Now,
	}
}

// CheckAllowed reports whether tenantID may consume units more of
// category without exceeding its tier's limit. Categories or tiers
// absent from the limit table are treated as unlimited.
func (a *Accountant) CheckAllowed(tenantID string, category Category, units int) CheckResult {
	tier := a.tierOf(tenantID)
	lim, ok := limitFor(tier, category)
	if !ok {
		return CheckResult{Allowed: true, Reason: "no quota configured", Remaining: -1, Limit: -1}
	}

	since := a.now().Add(-a.billingPeriod)
	used := a.ledger.Sum(tenantID, category, since)
	remaining := lim - used
	if remaining < 0 {
		remaining = 0
	}

	if used+units > lim {
		return CheckResult{Allowed: false, Reason: "quota exceeded", Remaining: remaining, Limit: lim}
	}
	return CheckResult{Allowed: true, Remaining: remaining, Limit: lim}
}

// Record appends a usage event. units=0 records a failed operation
// that consumed no quota while still leaving an audit trail.
func (a *Accountant) Record(tenantID string, category Category, units int, correlationID string, success bool) {
	a.ledger.Append(Record{
		TenantID:      tenantID,
		Category:      category,
		Units:         units,
		Timestamp:     a.now(),
		CorrelationID: correlationID,
		Success:       success,
	})
}

// Remaining reports the remaining units for every category in
// tenantID's tier.
func (a *Accountant) Remaining(tenantID string) []CategoryRemaining {
	tier := a.tierOf(tenantID)
	byCategory, ok := tierLimits[tier]
	if !ok {
		return nil
	}

	since := a.now().Add(-a.billingPeriod)
	out := make([]CategoryRemaining, 0, len(byCategory))
	for category, l := range byCategory {
		used := a.ledger.Sum(tenantID, category, since)
		remaining := l.Units - used
		if remaining < 0 {
			remaining = 0
		}
		out = append(out, CategoryRemaining{Category: category, Remaining: remaining, Limit: l.Units})
	}
	return out
}

// StaticTier returns a PerTenantTier that ignores the tenant id and
// always resolves to tier, useful for tests and single-tier
// deployments.
func StaticTier(tier types.SubscriptionTier) PerTenantTier {
	return func(string) types.SubscriptionTier { return tier }
}
