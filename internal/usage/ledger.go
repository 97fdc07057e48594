package usage

import (
	"sync"
	"time"

	"github.com/archbuilder/orchestrator/internal/types"
)

// Record is one append-only ledger entry: `(tenant_id, category, units,
// timestamp, correlation_id, success)` per spec §3's UsageRecord.
type Record struct {
	TenantID      string
	Category      Category
	Units         int
	Timestamp     time.Time
	CorrelationID string
	Success       bool
}

// Ledger is an append-only usage log. Quota lookups sum Units across
// Records where Success and Timestamp falls within the current billing
// period.
type Ledger interface {
	Append(r Record)
	// Sum returns the total units recorded for tenant+category with
	// Success=true and Timestamp >= since.
	Sum(tenantID string, category Category, since time.Time) int
}

// RingLedger is an in-memory, fixed-capacity ledger: once full, the
// oldest record is overwritten. The real durable store is an
// out-of-scope DAO; this is the core's append-only accounting surface,
// sized generously enough that one tenant's billing-period history
// doesn't wrap inside a single period under ordinary load.
type RingLedger struct {
	mu       sync.Mutex
	records  []Record
	next     int
	size     int
	capacity int
}

// NewRingLedger creates a ledger holding up to capacity records.
func NewRingLedger(capacity int) *RingLedger {
	if capacity <= 0 {
		capacity = 100000
	}
	return &RingLedger{
		records:  make([]Record, capacity),
		capacity: capacity,
	}
}

// Append adds r, overwriting the oldest record once capacity is reached.
func (l *RingLedger) Append(r Record) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.records[l.next] = r
	l.next = (l.next + 1) % l.capacity
	if l.size < l.capacity {
		l.size++
	}
}

// Sum reports the total successful units for tenantID/category recorded
// at or after since.
func (l *RingLedger) Sum(tenantID string, category Category, since time.Time) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	var total int
	for i := 0; i < l.size; i++ {
		r := l.records[i]
		if r.TenantID != tenantID || r.Category != category || !r.Success {
			continue
		}
		if r.Timestamp.Before(since) {
			continue
		}
		total += r.Units
	}
	return total
}

// PerTenantTier is the lookup the Accountant needs to resolve a
// tenant's subscription tier before consulting the limit table. The
// real lookup lives in the (out-of-scope) tenant store; callers supply
// it here so usage stays decoupled from that boundary.
type PerTenantTier func(tenantID string) types.SubscriptionTier
