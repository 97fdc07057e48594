package usage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/archbuilder/orchestrator/internal/types"
)

func TestRingLedger_SumOnlyCountsSuccessfulRecordsWithinWindow(t *testing.T) {
	ledger := NewRingLedger(10)
	now := time.Now()

	ledger.Append(Record{TenantID: "t1", Category: CategoryAIRequests, Units: 5, Timestamp: now, Success: true})
	ledger.Append(Record{TenantID: "t1", Category: CategoryAIRequests, Units: 3, Timestamp: now, Success: false})
	ledger.Append(Record{TenantID: "t1", Category: CategoryAIRequests, Units: 2, Timestamp: now.Add(-48 * time.Hour), Success: true})
	ledger.Append(Record{TenantID: "t2", Category: CategoryAIRequests, Units: 100, Timestamp: now, Success: true})

	sum := ledger.Sum("t1", CategoryAIRequests, now.Add(-time.Hour))
	assert.Equal(t, 5, sum)
}

func TestRingLedger_OverwritesOldestRecordAtCapacity(t *testing.T) {
	ledger := NewRingLedger(2)
	now := time.Now()

	ledger.Append(Record{TenantID: "t1", Category: CategoryAIRequests, Units: 1, Timestamp: now, Success: true})
	ledger.Append(Record{TenantID: "t1", Category: CategoryAIRequests, Units: 1, Timestamp: now, Success: true})
	ledger.Append(Record{TenantID: "t1", Category: CategoryAIRequests, Units: 1, Timestamp: now, Success: true})

	sum := ledger.Sum("t1", CategoryAIRequests, now.Add(-time.Hour))
	assert.Equal(t, 2, sum, "only the 2 most recent records should survive capacity eviction")
}

func TestAccountant_CheckAllowedRejectsOverLimit(t *testing.T) {
	ledger := NewRingLedger(100)
	a := New(ledger, StaticTier(types.TierFree), 30*24*time.Hour)

	for i := 0; i < 50; i++ {
		a.Record("tenant-1", CategoryAIRequests, 1, "corr", true)
	}

	result := a.CheckAllowed("tenant-1", CategoryAIRequests, 1)
	assert.False(t, result.Allowed)
	assert.Equal(t, "quota exceeded", result.Reason)
	assert.Equal(t, 0, result.Remaining)
}

func TestAccountant_CheckAllowedPermitsUnderLimit(t *testing.T) {
	ledger := NewRingLedger(100)
	a := New(ledger, StaticTier(types.TierFree), 30*24*time.Hour)

	a.Record("tenant-1", CategoryAIRequests, 10, "corr", true)

	result := a.CheckAllowed("tenant-1", CategoryAIRequests, 1)
	require.True(t, result.Allowed)
	assert.Equal(t, 40, result.Remaining)
	assert.Equal(t, 50, result.Limit)
}

func TestAccountant_RecordWithZeroUnitsDoesNotConsumeQuota(t *testing.T) {
	ledger := NewRingLedger(100)
	a := New(ledger, StaticTier(types.TierFree), 30*24*time.Hour)

	a.Record("tenant-1", CategoryAIRequests, 0, "corr", false)

	result := a.CheckAllowed("tenant-1", CategoryAIRequests, 1)
	assert.True(t, result.Allowed)
	assert.Equal(t, 50, result.Remaining)
}

func TestAccountant_RemainingCoversEveryTierCategory(t *testing.T) {
	ledger := NewRingLedger(100)
	a := New(ledger, StaticTier(types.TierStarter), 30*24*time.Hour)

	remaining := a.Remaining("tenant-1")
	assert.Len(t, remaining, 5)
	for _, r := range remaining {
		assert.Equal(t, r.Limit, r.Remaining, "no usage recorded yet, remaining should equal limit")
	}
}

func TestAccountant_UnknownTierHasUnlimitedQuota(t *testing.T) {
	ledger := NewRingLedger(100)
	a := New(ledger, StaticTier(types.SubscriptionTier("UNKNOWN")), 30*24*time.Hour)

	result := a.CheckAllowed("tenant-1", CategoryAIRequests, 1000000)
	assert.True(t, result.Allowed)
	assert.Equal(t, -1, result.Limit)
}

func TestAccountant_BillingPeriodExpiryResetsUsage(t *testing.T) {
	ledger := NewRingLedger(100)
	a := New(ledger, StaticTier(types.TierFree), time.Hour)

	ledger.Append(Record{
		TenantID:  "tenant-1",
		Category:  CategoryAIRequests,
		Units:     50,
		Timestamp: time.Now().Add(-2 * time.Hour),
		Success:   true,
	})

	result := a.CheckAllowed("tenant-1", CategoryAIRequests, 1)
	assert.True(t, result.Allowed, "usage outside the billing period window should not count")
}
