package model

import "time"

// CouponStatus enumerates the stored lifecycle states of a meal coupon.
// Only the first three values are ever persisted; the two locked
// variants are derived at read time from the meal slot's serving window
// and exist purely for display.
type CouponStatus string

const (
	CouponAvailable CouponStatus = "AVAILABLE" // provisioned, not yet claimed
	CouponActive    CouponStatus = "ACTIVE"    // claimed, validity window running
	CouponUsed      CouponStatus = "USED"      // redeemed or auto-expired (terminal)

	// Derived display states, never written to the database.
	CouponLockedUpcoming CouponStatus = "LOCKED_UPCOMING" // slot window not open yet
	CouponLockedPast     CouponStatus = "LOCKED_PAST"     // slot window already closed
)

// Coupon represents one claimable meal voucher for a specific holder,
// meal slot and family-member index.  Index 0 is the primary holder;
// indices 1..familySize-1 are dependents with fully independent claim
// state.  ClaimedAt and ExpiresAt are either both nil (never claimed,
// or administratively reset) or both set, with ExpiresAt exactly the
// configured validity window after ClaimedAt.  Auto-expiry keeps both
// timestamps for audit; only an administrative reset clears them.
//
// Fields:
//  ID            – primary key identifier.
//  ParticipantID – holder of the coupon.
//  MealSlotID    – meal slot this coupon belongs to.
//  FamilyIndex   – 0 for the primary holder, 1..N-1 for dependents.
//  Status        – one of AVAILABLE, ACTIVE, USED.
//  ClaimedAt     – when the coupon was claimed (nullable).
//  ExpiresAt     – ClaimedAt plus the validity window (nullable).
//  CreatedAt     – when the row was provisioned.
//  UpdatedAt     – last modification timestamp.
type Coupon struct {
	ID            uint64       // coupons.id
	ParticipantID uint64       // coupons.participant_id
	MealSlotID    uint64       // coupons.meal_slot_id
	FamilyIndex   uint8        // coupons.family_index
	Status        CouponStatus // coupons.status
	ClaimedAt     *time.Time   // coupons.claimed_at (nullable)
	ExpiresAt     *time.Time   // coupons.expires_at (nullable)
	CreatedAt     time.Time    // coupons.created_at
	UpdatedAt     time.Time    // coupons.updated_at
}
