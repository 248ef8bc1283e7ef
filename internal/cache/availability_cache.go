package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/venuecore/booking-engine/internal/engine"
	"github.com/venuecore/booking-engine/internal/model"
)

// AvailabilityCache stores serialized availability reports keyed by
// tenant+venue+interval.  Venue-scoped invalidation works through a
// per-venue generation counter baked into every report key: bumping the
// generation orphans all existing entries at once, and the orphans age
// out via TTL.  No SCAN, no key bookkeeping.
type AvailabilityCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewAvailabilityCache returns a cache with the given entry TTL.  A
// non-positive TTL defaults to 30 seconds; reports are cheap to rebuild
// and short TTLs bound the staleness window on top of the generation
// scheme.
func NewAvailabilityCache(rdb *redis.Client, ttl time.Duration) *AvailabilityCache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &AvailabilityCache{rdb: rdb, ttl: ttl}
}

func generationKey(tenant, venue uuid.UUID) string {
	return fmt.Sprintf("avail:gen:%s:%s", tenant, venue)
}

func (c *AvailabilityCache) reportKey(ctx context.Context, tenant, venue uuid.UUID, iv model.Interval) (string, error) {
	gen, err := c.rdb.Get(ctx, generationKey(tenant, venue)).Int64()
	if err != nil && err != redis.Nil {
		return "", err
	}
	return fmt.Sprintf("avail:%s:%s:%d:%d:%d",
		tenant, venue, gen, iv.Start.Unix(), iv.End.Unix()), nil
}

// Get returns the cached report for the interval, if any.
func (c *AvailabilityCache) Get(ctx context.Context, tenant, venue uuid.UUID, iv model.Interval) (*engine.AvailabilityReport, bool) {
	key, err := c.reportKey(ctx, tenant, venue, iv)
	if err != nil {
		return nil, false
	}
	raw, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}
	var report engine.AvailabilityReport
	if err := json.Unmarshal(raw, &report); err != nil {
		return nil, false
	}
	return &report, true
}

// Set stores the report under the venue's current generation.
func (c *AvailabilityCache) Set(ctx context.Context, tenant, venue uuid.UUID, iv model.Interval, report *engine.AvailabilityReport) {
	key, err := c.reportKey(ctx, tenant, venue, iv)
	if err != nil {
		return
	}
	raw, err := json.Marshal(report)
	if err != nil {
		return
	}
	_ = c.rdb.Set(ctx, key, raw, c.ttl).Err()
}

// Invalidate bumps the venue's generation, orphaning every cached
// report for it in a single write.
func (c *AvailabilityCache) Invalidate(ctx context.Context, tenant, venue uuid.UUID) {
	_ = c.rdb.Incr(ctx, generationKey(tenant, venue)).Err()
}
