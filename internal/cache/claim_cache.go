// Package cache implements the claim-side store used by the
// reconciliation merge: a Redis copy of the claim timestamps keyed by
// the coupon's composite identity.  The cache is written optimistically
// on a successful claim so list views render a consistent countdown
// immediately; the MySQL row stays the durable source of truth and the
// cache converges toward it on every refresh.  All operations degrade
// to no-ops when Redis is unavailable; the cache is never
// correctness-critical.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/zidduhhere/isgconf-reg-sub000/internal/coupon"
)

// keyPrefix namespaces claim entries in Redis.
const keyPrefix = "claim"

// ClaimCache stores coupon.CachedClaim values with a TTL slightly
// longer than the validity window, so entries vanish on their own once
// they can no longer influence a merge.
type ClaimCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewClaimCache builds a cache around the given client.  A nil client
// is permitted and turns every operation into a no-op; window is the
// coupon validity window the TTL is derived from.
func NewClaimCache(rdb *redis.Client, window time.Duration) *ClaimCache {
	return &ClaimCache{rdb: rdb, ttl: window + 5*time.Minute}
}

func (c *ClaimCache) key(couponKey string) string { return keyPrefix + ":" + couponKey }

// Put stores the claim timestamps for a coupon key.  Errors are
// returned so callers can log them, but a failed put only costs the
// optimistic countdown, never correctness.
func (c *ClaimCache) Put(ctx context.Context, couponKey string, entry coupon.CachedClaim) error {
	if c.rdb == nil {
		return nil
	}
	raw, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, c.key(couponKey), raw, c.ttl).Err()
}

// Get returns the cached claim for a coupon key, or nil when the key
// is absent, Redis is down, or the stored value is unreadable.  A
// corrupt entry is treated as absent so a bad write can never wedge
// the merge.
func (c *ClaimCache) Get(ctx context.Context, couponKey string) *coupon.CachedClaim {
	if c.rdb == nil {
		return nil
	}
	raw, err := c.rdb.Get(ctx, c.key(couponKey)).Bytes()
	if err != nil {
		return nil
	}
	var entry coupon.CachedClaim
	if err := json.Unmarshal(raw, &entry); err != nil {
		return nil
	}
	return &entry
}

// Delete evicts the entry for a coupon key.  Used when the remote
// record contradicts the cache terminally (USED, or an admin reset).
func (c *ClaimCache) Delete(ctx context.Context, couponKey string) error {
	if c.rdb == nil {
		return nil
	}
	return c.rdb.Del(ctx, c.key(couponKey)).Err()
}
