// Package queue defines message payloads exchanged over the message broker.
package queue

// Event kinds carried on the coupon.audit queue.
const (
	KindCouponClaimed = "coupon.claimed"
	KindCouponExpired = "coupon.expired"
	KindCouponReset   = "coupon.reset"
	KindBulkClaimed   = "allocation.claimed"
)

// CouponEvent is published on every coupon transition worth auditing:
// a successful claim, an expiry demotion, an administrative reset and
// an exhibitor bulk claim.  It carries enough information for
// downstream consumers to log or notify without querying the primary
// database.  Fields that do not apply to a kind are left zero.
type CouponEvent struct {
	Kind          string `json:"kind"`
	CouponID      uint64 `json:"coupon_id,omitempty"`
	ParticipantID uint64 `json:"participant_id,omitempty"`
	MealSlotID    uint64 `json:"meal_slot_id,omitempty"`
	FamilyIndex   uint8  `json:"family_index"`
	CompanyID     uint64 `json:"company_id,omitempty"`
	EmployeeID    uint64 `json:"employee_id,omitempty"`
	MealType      string `json:"meal_type,omitempty"`
	Quantity      uint16 `json:"quantity,omitempty"`
	ClaimedAt     string `json:"claimed_at,omitempty"`
	ExpiresAt     string `json:"expires_at,omitempty"`
	OccurredAt    string `json:"occurred_at"`
}
