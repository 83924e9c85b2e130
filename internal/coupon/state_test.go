package coupon

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zidduhhere/isgconf-reg-sub000/internal/model"
)

func availableCoupon() model.Coupon {
	return model.Coupon{
		ID:            1,
		ParticipantID: 42,
		MealSlotID:    7,
		FamilyIndex:   0,
		Status:        model.CouponAvailable,
	}
}

func TestDeriveKey(t *testing.T) {
	assert.Equal(t, "42:7:0", DeriveKey(42, 7, 0))
	assert.Equal(t, "42:7:2", DeriveKey(42, 7, 2))
	assert.NotEqual(t, DeriveKey(42, 7, 1), DeriveKey(42, 7, 0))
}

func TestClaim_SetsWindow(t *testing.T) {
	now := time.Date(2026, 10, 1, 10, 0, 0, 0, time.UTC)

	c, err := Claim(availableCoupon(), now, DefaultValidityWindow)

	require.NoError(t, err)
	assert.Equal(t, model.CouponActive, c.Status)
	require.NotNil(t, c.ClaimedAt)
	require.NotNil(t, c.ExpiresAt)
	assert.True(t, c.ClaimedAt.Equal(now))
	assert.True(t, c.ExpiresAt.Equal(now.Add(15*time.Minute)))
	assert.True(t, TimestampsConsistent(c, DefaultValidityWindow))
}

func TestClaim_SecondClaimRejected(t *testing.T) {
	now := time.Date(2026, 10, 1, 10, 0, 0, 0, time.UTC)

	c, err := Claim(availableCoupon(), now, DefaultValidityWindow)
	require.NoError(t, err)

	again, err := Claim(c, now.Add(time.Minute), DefaultValidityWindow)

	require.ErrorIs(t, err, ErrNotAvailable)
	// The rejected call must not mutate the coupon.
	assert.Equal(t, c, again)
}

func TestClaim_UsedIsTerminal(t *testing.T) {
	c := availableCoupon()
	c.Status = model.CouponUsed

	_, err := Claim(c, time.Now().UTC(), DefaultValidityWindow)

	require.ErrorIs(t, err, ErrNotAvailable)
}

func TestCheckExpiry_Monotonic(t *testing.T) {
	start := time.Date(2026, 10, 1, 10, 0, 0, 0, time.UTC)
	c, err := Claim(availableCoupon(), start, DefaultValidityWindow)
	require.NoError(t, err)

	// One second before the deadline the coupon is still active.
	c = CheckExpiry(c, start.Add(15*time.Minute-time.Second))
	assert.Equal(t, model.CouponActive, c.Status)

	// At the deadline exactly it flips to used.
	c = CheckExpiry(c, start.Add(15*time.Minute))
	assert.Equal(t, model.CouponUsed, c.Status)

	// Every later check keeps it used and keeps the audit timestamps.
	for i := 0; i < 5; i++ {
		c = CheckExpiry(c, start.Add(time.Duration(16+i)*time.Minute))
		assert.Equal(t, model.CouponUsed, c.Status)
		assert.NotNil(t, c.ClaimedAt)
		assert.NotNil(t, c.ExpiresAt)
	}
}

func TestCheckExpiry_IdempotentAtFixedNow(t *testing.T) {
	start := time.Date(2026, 10, 1, 10, 0, 0, 0, time.UTC)
	c, err := Claim(availableCoupon(), start, DefaultValidityWindow)
	require.NoError(t, err)

	now := start.Add(20 * time.Minute)
	once := CheckExpiry(c, now)
	many := once
	for i := 0; i < 10; i++ {
		many = CheckExpiry(many, now)
	}
	assert.Equal(t, once, many)
}

func TestCheckExpiry_NoopOnNonActive(t *testing.T) {
	c := availableCoupon()
	assert.Equal(t, c, CheckExpiry(c, time.Now().UTC()))
}

func TestAdminReset_ClearsTimestamps(t *testing.T) {
	start := time.Date(2026, 10, 1, 10, 0, 0, 0, time.UTC)
	c, err := Claim(availableCoupon(), start, DefaultValidityWindow)
	require.NoError(t, err)
	c = CheckExpiry(c, start.Add(time.Hour))
	require.Equal(t, model.CouponUsed, c.Status)

	c = AdminReset(c)

	assert.Equal(t, model.CouponAvailable, c.Status)
	assert.Nil(t, c.ClaimedAt)
	assert.Nil(t, c.ExpiresAt)

	// After a reset the coupon is claimable again.
	_, err = Claim(c, start.Add(2*time.Hour), DefaultValidityWindow)
	assert.NoError(t, err)
}

// The end-to-end scenario: claim at 10:00:00 with a 15 minute window,
// still active with 1s left at 10:14:59, used at 10:15:00, and a second
// claim at 10:15:01 fails until an admin reset intervenes.
func TestClaimLifecycleScenario(t *testing.T) {
	at := func(h, m, s int) time.Time {
		return time.Date(2026, 10, 1, h, m, s, 0, time.UTC)
	}

	c, err := Claim(availableCoupon(), at(10, 0, 0), DefaultValidityWindow)
	require.NoError(t, err)

	c = CheckExpiry(c, at(10, 14, 59))
	assert.Equal(t, model.CouponActive, c.Status)
	assert.Equal(t, time.Second, Remaining(c, at(10, 14, 59)))

	c = CheckExpiry(c, at(10, 15, 0))
	assert.Equal(t, model.CouponUsed, c.Status)
	assert.Equal(t, time.Duration(0), Remaining(c, at(10, 15, 0)))

	_, err = Claim(c, at(10, 15, 1), DefaultValidityWindow)
	require.ErrorIs(t, err, ErrNotAvailable)

	c = AdminReset(c)
	c, err = Claim(c, at(10, 20, 0), DefaultValidityWindow)
	require.NoError(t, err)
	assert.Equal(t, model.CouponActive, c.Status)
}

func TestTimestampsConsistent(t *testing.T) {
	c := availableCoupon()
	assert.True(t, TimestampsConsistent(c, DefaultValidityWindow))

	now := time.Now().UTC()
	c.ClaimedAt = &now
	assert.False(t, TimestampsConsistent(c, DefaultValidityWindow))

	bad := now.Add(5 * time.Minute)
	c.ExpiresAt = &bad
	assert.False(t, TimestampsConsistent(c, DefaultValidityWindow))

	good := now.Add(DefaultValidityWindow)
	c.ExpiresAt = &good
	assert.True(t, TimestampsConsistent(c, DefaultValidityWindow))
}

func TestDisplayStatus_LockedVariants(t *testing.T) {
	slot := model.MealSlot{
		ID:      7,
		Type:    model.MealLunch,
		OpensAt: time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC),
		ClosesAt: time.Date(2026, 10, 1, 14, 0, 0, 0,
			time.UTC),
	}
	c := availableCoupon()

	assert.Equal(t, model.CouponLockedUpcoming,
		DisplayStatus(c, slot, time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC)))
	assert.Equal(t, model.CouponAvailable,
		DisplayStatus(c, slot, time.Date(2026, 10, 1, 12, 30, 0, 0, time.UTC)))
	assert.Equal(t, model.CouponLockedPast,
		DisplayStatus(c, slot, time.Date(2026, 10, 1, 15, 0, 0, 0, time.UTC)))
}

func TestDisplayStatus_NeverBlocksClaim(t *testing.T) {
	// Locked states are display-only: an AVAILABLE coupon outside the
	// serving window still claims successfully.
	now := time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC)
	c, err := Claim(availableCoupon(), now, DefaultValidityWindow)
	require.NoError(t, err)
	assert.Equal(t, model.CouponActive, c.Status)
}

func TestDisplayStatus_OverdueActiveRendersUsed(t *testing.T) {
	start := time.Date(2026, 10, 1, 10, 0, 0, 0, time.UTC)
	c, err := Claim(availableCoupon(), start, DefaultValidityWindow)
	require.NoError(t, err)

	slot := model.MealSlot{OpensAt: start, ClosesAt: start.Add(2 * time.Hour)}
	got := DisplayStatus(c, slot, start.Add(time.Hour))
	assert.Equal(t, model.CouponUsed, got)
}
