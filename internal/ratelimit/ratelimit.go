// Package ratelimit implements C12's per-tenant token bucket, with an
// in-process implementation (grounded on the teacher's
// orchestration.SimpleCache mutex-protected map style) and a Redis-backed
// distributed implementation behind the same interface, selected by
// whether a Redis URL is configured — matching spec §4.12's "distributed
// K/V when present, otherwise in-process."
package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

// Limiter admits or rejects a request for a tenant against its
// tier-derived quota.
type Limiter interface {
	// Allow reports whether tenant may make one more request right now.
	Allow(ctx context.Context, tenant string, limit int, window time.Duration) (allowed bool, retryAfter time.Duration, err error)
}

// bucket is one tenant's in-process token bucket state.
type bucket struct {
	tokens     float64
	limit      float64
	refillRate float64 // tokens per second
	updatedAt  time.Time
}

// InProcessLimiter is a mutex-protected map of per-tenant token buckets.
type InProcessLimiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	now     func() time.Time
}

// NewInProcessLimiter creates an in-process limiter.
func NewInProcessLimiter() *InProcessLimiter {
	return &InProcessLimiter{
		buckets: make(map[string]*bucket),
		now:     time.Now,
	}
}

// Allow implements Limiter using a continuously-refilling token bucket
// keyed by tenant. limit tokens are available per window; a fraction of a
// token refills every elapsed second.
func (l *InProcessLimiter) Allow(_ context.Context, tenant string, limit int, window time.Duration) (bool, time.Duration, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	refillRate := float64(limit) / window.Seconds()

	b, ok := l.buckets[tenant]
	if !ok || b.limit != float64(limit) {
		b = &bucket{tokens: float64(limit), limit: float64(limit), refillRate: refillRate, updatedAt: now}
		l.buckets[tenant] = b
	}

	elapsed := now.Sub(b.updatedAt).Seconds()
	b.tokens += elapsed * b.refillRate
	if b.tokens > b.limit {
		b.tokens = b.limit
	}
	b.updatedAt = now

	if b.tokens >= 1 {
		b.tokens -= 1
		return true, 0, nil
	}

	deficit := 1 - b.tokens
	wait := time.Duration(deficit/b.refillRate*float64(time.Second)) + time.Millisecond
	return false, wait, nil
}

// RedisLimiter implements Limiter with a fixed-window counter per
// tenant+window, using INCR+EXPIRE for a single round trip on the common
// path. This trades perfect token-bucket smoothness for simplicity and
// atomicity across orchestrator replicas, acceptable for admission
// control per spec §4.12.
type RedisLimiter struct {
	client *redis.Client
	prefix string
}

// NewRedisLimiter wraps an existing Redis client.
func NewRedisLimiter(client *redis.Client) *RedisLimiter {
	return &RedisLimiter{client: client, prefix: "ratelimit"}
}

func (l *RedisLimiter) Allow(ctx context.Context, tenant string, limit int, window time.Duration) (bool, time.Duration, error) {
	key := fmt.Sprintf("%s:%s:%d", l.prefix, tenant, window)
	count, err := l.client.Incr(ctx, key).Result()
	if err != nil {
		return false, 0, fmt.Errorf("ratelimit incr: %w", err)
	}
	if count == 1 {
		l.client.Expire(ctx, key, window)
	}
	if int(count) <= limit {
		return true, 0, nil
	}
	ttl, err := l.client.TTL(ctx, key).Result()
	if err != nil || ttl < 0 {
		ttl = window
	}
	return false, ttl, nil
}

// TierLimits maps subscription tiers to requests-per-hour, per spec §4.12.
var TierLimits = map[string]int{
	"FREE":         100,
	"STARTER":      1000,
	"PROFESSIONAL": 5000,
	"ENTERPRISE":   50000,
}
