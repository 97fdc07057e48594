package types

import "time"

// UsageCategory buckets usage units for per-tier quota enforcement.
type UsageCategory string

const (
	CategoryAIRequests        UsageCategory = "ai_requests"
	CategoryLayoutGenerations UsageCategory = "layout_generations"
	CategoryDocumentUploads   UsageCategory = "document_uploads"
	CategoryProjectCreations  UsageCategory = "project_creations"
	CategoryAPICallsHourly    UsageCategory = "api_calls_hourly"
)

// UsageRecord is a single append-only ledger entry.
type UsageRecord struct {
	TenantID      string        `json:"tenant_id"`
	Category      UsageCategory `json:"category"`
	Units         int           `json:"units"`
	Timestamp     time.Time     `json:"timestamp"`
	CorrelationID string        `json:"correlation_id"`
	Success       bool          `json:"success"`
}

// CacheEntry is a single L1/L2 cache record.
type CacheEntry struct {
	Key       string
	Value     []byte
	Tags      []string
	ExpiresAt time.Time
}

// Expired reports whether the entry's TTL has elapsed as of now.
func (e CacheEntry) Expired(now time.Time) bool {
	return !e.ExpiresAt.IsZero() && now.After(e.ExpiresAt)
}
