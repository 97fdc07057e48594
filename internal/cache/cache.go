package cache

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/archbuilder/orchestrator/internal/types"
)

// Cache composes L1 and L2 behind a single Get/Compute/InvalidateByTags
// surface keyed by Key(cmd). Concurrent misses on the same key collapse
// into one Compute call via singleflight — an enrichment spec §4.8's
// "eventually consistent, last-write-wins" note permits but does not
// require, included because golang.org/x/sync is already a pack
// dependency and it measurably helps the "cached on second call"
// scenario under concurrent load.
type Cache struct {
	l1         *L1
	l2         *L2
	defaultTTL time.Duration
	l2CapTTL   time.Duration
	group      singleflight.Group
}

// New creates a Cache. l2 may be nil to run L1-only.
func New(l1 *L1, l2 *L2, defaultTTL, l2CapTTL time.Duration) *Cache {
	return &Cache{l1: l1, l2: l2, defaultTTL: defaultTTL, l2CapTTL: l2CapTTL}
}

// Get looks up cmd's result, checking L1 then L2, backfilling L1 from an
// L2 hit.
func (c *Cache) Get(ctx context.Context, cmd types.AICommand) (types.AICommandResult, bool, error) {
	key := Key(cmd)

	if raw, ok := c.l1.Get(key); ok {
		result, err := decodeResult(raw)
		if err != nil {
			return types.AICommandResult{}, false, fmt.Errorf("cache: decode l1 entry: %w", err)
		}
		return result, true, nil
	}

	raw, ok, err := c.l2.Get(ctx, key)
	if err != nil {
		return types.AICommandResult{}, false, err
	}
	if !ok {
		return types.AICommandResult{}, false, nil
	}

	result, err := decodeResult(raw)
	if err != nil {
		return types.AICommandResult{}, false, fmt.Errorf("cache: decode l2 entry: %w", err)
	}
	c.l1.Set(key, raw, c.defaultTTL, tagsFor(cmd)...)
	return result, true, nil
}

// Store writes result into both tiers under cmd's key, tagged by tenant
// and task type so InvalidateByTags can clear a tenant's or a task
// type's entries in one call.
func (c *Cache) Store(ctx context.Context, cmd types.AICommand, result types.AICommandResult) error {
	key := Key(cmd)
	raw, err := encodeResult(cmd.TaskType, result)
	if err != nil {
		return fmt.Errorf("cache: encode result: %w", err)
	}

	tags := tagsFor(cmd)
	c.l1.Set(key, raw, c.defaultTTL, tags...)

	ttl := c.defaultTTL
	if c.l2CapTTL > 0 && ttl > c.l2CapTTL {
		ttl = c.l2CapTTL
	}
	return c.l2.Set(ctx, key, raw, int64(ttl.Seconds()), tags...)
}

// ComputeIfAbsent returns the cached result for cmd, or calls compute
// once (collapsing concurrent identical-key misses) and stores its
// result before returning it.
func (c *Cache) ComputeIfAbsent(ctx context.Context, cmd types.AICommand, compute func() (types.AICommandResult, error)) (types.AICommandResult, bool, error) {
	if result, ok, err := c.Get(ctx, cmd); ok || err != nil {
		return result, ok, err
	}

	key := Key(cmd)
	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		if result, ok, err := c.Get(ctx, cmd); ok || err != nil {
			return result, err
		}
		result, err := compute()
		if err != nil {
			return types.AICommandResult{}, err
		}
		if storeErr := c.Store(ctx, cmd, result); storeErr != nil {
			return result, storeErr
		}
		return result, nil
	})
	if err != nil {
		return types.AICommandResult{}, false, err
	}
	return v.(types.AICommandResult), false, nil
}

// InvalidateByTags clears every entry tagged with any of tags from both
// tiers.
func (c *Cache) InvalidateByTags(ctx context.Context, tags ...string) (int, error) {
	removed := c.l1.InvalidateByTags(tags...)
	l2Removed, err := c.l2.InvalidateByTags(ctx, tags...)
	return removed + l2Removed, err
}

func tagsFor(cmd types.AICommand) []string {
	return []string{
		"tenant:" + cmd.TenantID,
		"task:" + string(cmd.TaskType),
	}
}
