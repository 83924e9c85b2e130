package coupon

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zidduhhere/isgconf-reg-sub000/internal/model"
)

func TestReconcile_LocalTimestampsWin(t *testing.T) {
	// The remote store has not observed the claim yet and still says
	// AVAILABLE; the cached timestamps must win until the next sync.
	claimed := time.Date(2026, 10, 1, 10, 0, 0, 0, time.UTC)
	cached := &CachedClaim{ClaimedAt: claimed, ExpiresAt: claimed.Add(15 * time.Minute)}
	remote := availableCoupon()

	merged, evict := Reconcile(remote, cached, claimed.Add(5*time.Minute))

	assert.False(t, evict)
	assert.Equal(t, model.CouponActive, merged.Status)
	require.NotNil(t, merged.ClaimedAt)
	require.NotNil(t, merged.ExpiresAt)
	assert.True(t, merged.ClaimedAt.Equal(cached.ClaimedAt))
	assert.True(t, merged.ExpiresAt.Equal(cached.ExpiresAt))
}

func TestReconcile_CachedClaimPastExpiryShowsUsed(t *testing.T) {
	claimed := time.Date(2026, 10, 1, 10, 0, 0, 0, time.UTC)
	cached := &CachedClaim{ClaimedAt: claimed, ExpiresAt: claimed.Add(15 * time.Minute)}
	remote := availableCoupon()
	remote.Status = model.CouponActive
	remote.ClaimedAt = &claimed
	exp := claimed.Add(15 * time.Minute)
	remote.ExpiresAt = &exp

	merged, _ := Reconcile(remote, cached, claimed.Add(20*time.Minute))

	assert.Equal(t, model.CouponUsed, merged.Status)
}

func TestReconcile_NoCacheFallsBackToRemote(t *testing.T) {
	claimed := time.Date(2026, 10, 1, 10, 0, 0, 0, time.UTC)
	exp := claimed.Add(15 * time.Minute)
	remote := availableCoupon()
	remote.Status = model.CouponActive
	remote.ClaimedAt = &claimed
	remote.ExpiresAt = &exp

	// Still inside the window: remote active stands.
	merged, evict := Reconcile(remote, nil, claimed.Add(time.Minute))
	assert.False(t, evict)
	assert.Equal(t, model.CouponActive, merged.Status)

	// Past the window the on-read expiry check demotes it.
	merged, _ = Reconcile(remote, nil, claimed.Add(time.Hour))
	assert.Equal(t, model.CouponUsed, merged.Status)
}

func TestReconcile_RemoteUsedIsTerminal(t *testing.T) {
	claimed := time.Date(2026, 10, 1, 10, 0, 0, 0, time.UTC)
	cached := &CachedClaim{ClaimedAt: claimed, ExpiresAt: claimed.Add(15 * time.Minute)}
	remote := availableCoupon()
	remote.Status = model.CouponUsed

	merged, evict := Reconcile(remote, cached, claimed.Add(time.Minute))

	assert.True(t, evict)
	assert.Equal(t, model.CouponUsed, merged.Status)
}

func TestReconcile_AdminResetConvergesAfterCacheExpiry(t *testing.T) {
	// The coupon was claimed, expired, and an admin reset cleared the
	// remote timestamps.  Once the cached window has fully run out the
	// remote AVAILABLE view wins and the cache entry is evicted.
	claimed := time.Date(2026, 10, 1, 10, 0, 0, 0, time.UTC)
	cached := &CachedClaim{ClaimedAt: claimed, ExpiresAt: claimed.Add(15 * time.Minute)}
	remote := availableCoupon()

	merged, evict := Reconcile(remote, cached, claimed.Add(time.Hour))

	assert.True(t, evict)
	assert.Equal(t, model.CouponAvailable, merged.Status)
	assert.Nil(t, merged.ClaimedAt)
	assert.Nil(t, merged.ExpiresAt)
}
