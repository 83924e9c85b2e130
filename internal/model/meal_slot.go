package model

import "time"

// MealType distinguishes lunch and dinner slots.  Exhibitor plan
// allocations are defined per meal type.
type MealType string

const (
	MealLunch  MealType = "LUNCH"
	MealDinner MealType = "DINNER"
)

// MealSlot is static reference data describing one scheduled meal
// event, e.g. "Day 1 Lunch".  Slots are configured by admins before
// the conference and treated as read-only by the coupon engine.  The
// serving window (OpensAt..ClosesAt) is used only to derive the
// locked-upcoming / locked-past display states; it never gates a claim.
//
// Fields:
//  ID        – primary key identifier.
//  Name      – display name shown to holders.
//  Day       – conference day number, starting at 1.
//  Type      – LUNCH or DINNER.
//  EventDate – calendar date of the slot.
//  OpensAt   – when serving starts (UTC).
//  ClosesAt  – when serving ends (UTC, after OpensAt).
//  CreatedAt – when the slot was configured.
type MealSlot struct {
	ID        uint64    // meal_slots.id
	Name      string    // meal_slots.name
	Day       uint8     // meal_slots.day
	Type      MealType  // meal_slots.type
	EventDate time.Time // meal_slots.event_date
	OpensAt   time.Time // meal_slots.opens_at
	ClosesAt  time.Time // meal_slots.closes_at
	CreatedAt time.Time // meal_slots.created_at
}
