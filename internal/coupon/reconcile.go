package coupon

import (
	"time"

	"github.com/zidduhhere/isgconf-reg-sub000/internal/model"
)

// CachedClaim is the optimistic local record kept in the claim cache
// after a successful claim: just the two timestamps for one coupon
// key.  It lets list views render a consistent countdown immediately,
// before the authoritative write is observed on a refresh.
type CachedClaim struct {
	ClaimedAt time.Time `json:"claimed_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Reconcile merges the authoritative remote coupon with the cached
// claim for the same key.  When the cache holds both timestamps they
// win: the effective status is derived from them against now (ACTIVE
// until expiry, USED after).  Without a usable cache entry the remote
// record stands as-is, run through CheckExpiry so an overdue active
// row never surfaces as ACTIVE.
//
// The remote record still wins terminally: once it shows USED, or
// shows AVAILABLE with its own timestamps cleared by an admin reset
// after the cached claim was taken, the cache entry is stale and the
// second return value tells the caller to evict it.
func Reconcile(remote model.Coupon, cached *CachedClaim, now time.Time) (model.Coupon, bool) {
	if cached == nil {
		return CheckExpiry(remote, now), false
	}

	// Remote USED is terminal; a reset after the cached claim clears
	// remote timestamps while the cache still holds the old ones.
	if remote.Status == model.CouponUsed {
		return remote, true
	}
	if remote.Status == model.CouponAvailable && remote.ClaimedAt == nil &&
		!cached.ExpiresAt.After(now) {
		// The cached claim has fully run out and the remote never
		// recorded it (or was reset): trust the remote view.
		return remote, true
	}

	claimed := cached.ClaimedAt
	expires := cached.ExpiresAt
	remote.ClaimedAt = &claimed
	remote.ExpiresAt = &expires
	if now.Before(expires) {
		remote.Status = model.CouponActive
	} else {
		remote.Status = model.CouponUsed
	}
	return remote, false
}
