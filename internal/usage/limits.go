// Package usage implements C9: pre-check quota, record usage units, and
// expose remaining per-category counts for a tenant, backed by an
// append-only ledger. Grounded on the teacher's tier-keyed table
// convention (ratelimit.TierLimits) and the original's tier-based
// config pattern (app/core/config.py), generalized from a single
// requests-per-hour number into a per-category, per-billing-period
// limit table.
package usage

import "github.com/archbuilder/orchestrator/internal/types"

// Category is a billable unit of work tracked against a tenant's quota.
type Category string

const (
	CategoryAIRequests      Category = "ai_requests"
	CategoryLayoutGenerations Category = "layout_generations"
	CategoryDocumentUploads Category = "document_uploads"
	CategoryProjectCreations Category = "project_creations"
	CategoryAPICallsHourly  Category = "api_calls_hourly"
)

// limit is one category's ceiling within a billing period.
type limit struct {
	Units int
}

// tierLimits is the per-tier, per-category quota table. Values are
// placeholders for a real billing integration (out of scope) but fix a
// concrete, testable ceiling per tier as spec §4.9 requires.
var tierLimits = map[types.SubscriptionTier]map[Category]limit{
	types.TierFree: {
		CategoryAIRequests:       {Units: 50},
		CategoryLayoutGenerations: {Units: 10},
		CategoryDocumentUploads:  {Units: 5},
		CategoryProjectCreations: {Units: 3},
		CategoryAPICallsHourly:   {Units: 100},
	},
	types.TierStarter: {
		CategoryAIRequests:       {Units: 500},
		CategoryLayoutGenerations: {Units: 100},
		CategoryDocumentUploads:  {Units: 50},
		CategoryProjectCreations: {Units: 25},
		CategoryAPICallsHourly:   {Units: 1000},
	},
	types.TierProfessional: {
		CategoryAIRequests:       {Units: 5000},
		CategoryLayoutGenerations: {Units: 1000},
		CategoryDocumentUploads:  {Units: 500},
		CategoryProjectCreations: {Units: 250},
		CategoryAPICallsHourly:   {Units: 5000},
	},
	types.TierEnterprise: {
		CategoryAIRequests:       {Units: 50000},
		CategoryLayoutGenerations: {Units: 10000},
		CategoryDocumentUploads:  {Units: 5000},
		CategoryProjectCreations: {Units: 2500},
		CategoryAPICallsHourly:   {Units: 50000},
	},
}

// limitFor returns the unit ceiling for tier/category, or ok=false if
// either is unrecognized (treated as "no quota configured").
func limitFor(tier types.SubscriptionTier, category Category) (int, bool) {
	byCategory, ok := tierLimits[tier]
	if !ok {
		return 0, false
	}
	l, ok := byCategory[category]
	if !ok {
		return 0, false
	}
	return l.Units, true
}
