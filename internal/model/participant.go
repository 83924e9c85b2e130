package model

import "time"

// Participant is an individual conference attendee who holds personal
// meal coupons.  When IsFamily is true, FamilySize-1 additional
// dependent coupon rows (family indices 1..FamilySize-1) are
// provisioned per meal slot, each with independent claim state.
//
// Fields:
//  ID         – primary key identifier.
//  UserID     – login account backing this participant.
//  FullName   – display name.
//  IsFamily   – whether dependents attend with this participant.
//  FamilySize – total headcount including the primary holder; 1 when
//               IsFamily is false.
//  CreatedAt  – registration timestamp.
type Participant struct {
	ID         uint64    // participants.id
	UserID     uint64    // participants.user_id
	FullName   string    // participants.full_name
	IsFamily   bool      // participants.is_family
	FamilySize uint8     // participants.family_size
	CreatedAt  time.Time // participants.created_at
}
