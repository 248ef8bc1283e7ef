// Package cache implements the engine's ephemeral-store interfaces on
// Redis: the sequence fast path and the availability report cache.
// Redis is never authoritative here; every consumer degrades to the
// durable store when a call fails.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// SequenceCounter is the fast path of booking number generation: an
// atomic per-tenant-per-year counter.  The first increment of a counter
// attaches an expiry at year end so abandoned tenants clean themselves
// up.  Failures propagate to the caller, which falls back to the
// durable scan.
type SequenceCounter struct {
	rdb *redis.Client
}

// NewSequenceCounter returns a counter backed by the given client.
func NewSequenceCounter(rdb *redis.Client) *SequenceCounter {
	return &SequenceCounter{rdb: rdb}
}

func sequenceKey(tenant uuid.UUID, year int) string {
	return fmt.Sprintf("seq:%s:%d", tenant, year)
}

// Incr atomically increments the tenant+year counter and returns the
// new value.  When the increment created the key, expireAt is attached.
func (c *SequenceCounter) Incr(ctx context.Context, tenant uuid.UUID, year int, expireAt time.Time) (int64, error) {
	key := sequenceKey(tenant, year)
	n, err := c.rdb.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	if n == 1 {
		if err := c.rdb.ExpireAt(ctx, key, expireAt).Err(); err != nil {
			return 0, err
		}
	}
	return n, nil
}

// resyncScript raises the counter to at least the given floor without
// ever lowering it, in one atomic step.  The expiry is refreshed only
// when the value moves.
var resyncScript = redis.NewScript(`
	local cur = tonumber(redis.call('GET', KEYS[1]) or '0')
	local floor = tonumber(ARGV[1])
	if cur < floor then
		redis.call('SET', KEYS[1], floor)
		redis.call('EXPIREAT', KEYS[1], ARGV[2])
	end
	return cur
`)

// Resync raises the counter to at least floor.  It is called after a
// durable fallback issued a number so the fast path resumes above it.
func (c *SequenceCounter) Resync(ctx context.Context, tenant uuid.UUID, year int, floor int64) error {
	key := sequenceKey(tenant, year)
	expireAt := time.Date(year+1, time.January, 1, 0, 0, 0, 0, time.UTC).Unix()
	return resyncScript.Run(ctx, c.rdb, []string{key}, floor, expireAt).Err()
}
