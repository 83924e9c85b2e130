// Package coupon implements the meal-coupon claim engine: the claim
// and expiry state machine, the derived display states, the exhibitor
// allocation policy and the local/remote reconciliation merge.  The
// package is pure: it never touches the database, the cache or the
// clock; callers supply "now" explicitly so every rule is testable.
package coupon

import (
	"errors"
	"fmt"
	"time"

	"github.com/zidduhhere/isgconf-reg-sub000/internal/model"
)

// DefaultValidityWindow is how long a claimed coupon stays ACTIVE
// before auto-expiring to USED.  Overridable via COUPON_TTL_MIN.
const DefaultValidityWindow = 15 * time.Minute

// ErrNotAvailable is returned by Claim when the coupon is not in the
// AVAILABLE state.  The caller must not mutate anything in that case.
var ErrNotAvailable = errors.New("coupon is not available to claim")

// DeriveKey builds the composite identity of one claimable unit:
// holder, meal slot and family-member index.  Index 0 is the primary
// holder.  The key is used for the claim cache and for the unique
// constraint on the coupons table.
func DeriveKey(participantID, mealSlotID uint64, familyIndex uint8) string {
	return fmt.Sprintf("%d:%d:%d", participantID, mealSlotID, familyIndex)
}

// TimestampsConsistent reports whether a coupon satisfies the
// timestamp invariant: ClaimedAt and ExpiresAt are both nil, or both
// set with ExpiresAt exactly window after ClaimedAt.
func TimestampsConsistent(c model.Coupon, window time.Duration) bool {
	if c.ClaimedAt == nil && c.ExpiresAt == nil {
		return true
	}
	if c.ClaimedAt == nil || c.ExpiresAt == nil {
		return false
	}
	return c.ExpiresAt.Equal(c.ClaimedAt.Add(window))
}

// Claim transitions an AVAILABLE coupon to ACTIVE, stamping ClaimedAt
// and ExpiresAt.  Any other starting state is rejected with
// ErrNotAvailable and the coupon is returned unchanged.  Claiming the
// same unit twice before expiry therefore fails on the second call.
func Claim(c model.Coupon, now time.Time, window time.Duration) (model.Coupon, error) {
	if c.Status != model.CouponAvailable {
		return c, ErrNotAvailable
	}
	claimed := now.UTC()
	expires := claimed.Add(window)
	c.Status = model.CouponActive
	c.ClaimedAt = &claimed
	c.ExpiresAt = &expires
	return c, nil
}

// CheckExpiry demotes an ACTIVE coupon whose validity window has
// elapsed to USED.  The timestamps are kept for audit; only an
// administrative reset clears them.  The call is idempotent: any
// coupon that is not ACTIVE, or whose window is still running, is
// returned unchanged.
func CheckExpiry(c model.Coupon, now time.Time) model.Coupon {
	if c.Status != model.CouponActive || c.ExpiresAt == nil {
		return c
	}
	if now.Before(*c.ExpiresAt) {
		return c
	}
	c.Status = model.CouponUsed
	return c
}

// AdminReset unconditionally returns a coupon to AVAILABLE, clearing
// both timestamps.  It has no precondition and is the only transition
// out of USED.
func AdminReset(c model.Coupon) model.Coupon {
	c.Status = model.CouponAvailable
	c.ClaimedAt = nil
	c.ExpiresAt = nil
	return c
}

// Remaining returns how much of the validity window is left for an
// ACTIVE coupon, clamped at zero.  Non-active coupons have no
// remaining time.
func Remaining(c model.Coupon, now time.Time) time.Duration {
	if c.Status != model.CouponActive || c.ExpiresAt == nil {
		return 0
	}
	d := c.ExpiresAt.Sub(now)
	if d < 0 {
		return 0
	}
	return d
}

// DisplayStatus derives the state shown to the holder.  AVAILABLE
// coupons outside the slot's serving window render as LOCKED_UPCOMING
// or LOCKED_PAST; these are display states only and never persisted.
// A claim on an AVAILABLE coupon succeeds regardless of the window.
// ACTIVE coupons past their expiry render as USED even before the
// sweep has landed in the store.
func DisplayStatus(c model.Coupon, slot model.MealSlot, now time.Time) model.CouponStatus {
	switch c.Status {
	case model.CouponAvailable:
		if now.Before(slot.OpensAt) {
			return model.CouponLockedUpcoming
		}
		if now.After(slot.ClosesAt) {
			return model.CouponLockedPast
		}
		return model.CouponAvailable
	case model.CouponActive:
		if c.ExpiresAt != nil && !now.Before(*c.ExpiresAt) {
			return model.CouponUsed
		}
		return model.CouponActive
	default:
		return c.Status
	}
}
