package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

func secondsToDuration(seconds int64) time.Duration {
	return time.Duration(seconds) * time.Second
}

// L2 is the optional distributed tier, grounded on core/redis_client.go's
// namespacing and reverse-tag-index conventions. A nil *L2 is valid and
// behaves as an always-miss tier, so L2 is entirely optional per
// deployment (spec §4.8 calls it "optional").
type L2 struct {
	client    *redis.Client
	namespace string
}

// NewL2 wraps client with a key namespace ("archbuilder:cache" by
// default), matching the teacher's per-concern Redis namespacing.
func NewL2(client *redis.Client, namespace string) *L2 {
	if namespace == "" {
		namespace = "archbuilder:cache"
	}
	return &L2{client: client, namespace: namespace}
}

func (l *L2) dataKey(key string) string { return fmt.Sprintf("%s:data:%s", l.namespace, key) }
func (l *L2) tagKey(tag string) string  { return fmt.Sprintf("%s:tag:%s", l.namespace, tag) }

// Get returns the cached bytes for key, or ok=false on miss or nil L2.
func (l *L2) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if l == nil {
		return nil, false, nil
	}
	val, err := l.client.Get(ctx, l.dataKey(key)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache: l2 get: %w", err)
	}
	return val, true, nil
}

// Set stores value under key with the given TTL, and registers key
// against every tag's reverse-index set for later InvalidateByTags.
func (l *L2) Set(ctx context.Context, key string, value []byte, ttlSeconds int64, tags ...string) error {
	if l == nil {
		return nil
	}
	if err := l.client.Set(ctx, l.dataKey(key), value, secondsToDuration(ttlSeconds)).Err(); err != nil {
		return fmt.Errorf("cache: l2 set: %w", err)
	}
	for _, tag := range tags {
		if err := l.client.SAdd(ctx, l.tagKey(tag), key).Err(); err != nil {
			return fmt.Errorf("cache: l2 tag index: %w", err)
		}
	}
	return nil
}

// InvalidateByTags deletes every key registered under any of tags, plus
// the reverse-index sets themselves.
func (l *L2) InvalidateByTags(ctx context.Context, tags ...string) (int, error) {
	if l == nil {
		return 0, nil
	}
	var removed int
	for _, tag := range tags {
		members, err := l.client.SMembers(ctx, l.tagKey(tag)).Result()
		if err != nil && err != redis.Nil {
			return removed, fmt.Errorf("cache: l2 tag members: %w", err)
		}
		for _, key := range members {
			if err := l.client.Del(ctx, l.dataKey(key)).Err(); err != nil {
				return removed, fmt.Errorf("cache: l2 delete: %w", err)
			}
			removed++
		}
		l.client.Del(ctx, l.tagKey(tag))
	}
	return removed, nil
}
