// Package repository defines sentinel errors reused across the
// repositories.  Handlers compare against these values with errors.Is
// to translate persistence failures into precise HTTP responses: a
// rejected claim is not the same thing as a missing coupon, and an
// exhibitor retrying an already-consumed slot must be told exactly
// that.
package repository

import "errors"

// ErrCouponNotFound is returned when no coupon row matches the
// requested identity.  Handlers translate this into a 404.
var ErrCouponNotFound = errors.New("coupon not found")

// ErrCouponNotAvailable is returned when a conditional claim touches
// zero rows because the coupon is no longer AVAILABLE.  This is the
// store-side arbiter of the double-claim race: the losing session gets
// this error instead of silently overwriting.  Handlers translate it
// into a 409.
var ErrCouponNotAvailable = errors.New("coupon not available")

// ErrSlotAlreadyClaimed is returned when an exhibitor company retries
// a meal slot it has already consumed.  The unique key on
// (company_id, meal_slot_id) raises it atomically on insert.
var ErrSlotAlreadyClaimed = errors.New("slot already claimed by company")

// ErrMealSlotNotFound is returned when a referenced meal slot does not
// exist in the catalog.
var ErrMealSlotNotFound = errors.New("meal slot not found")

// ErrParticipantNotFound is returned when no participant profile
// matches the given identity.
var ErrParticipantNotFound = errors.New("participant not found")

// ErrEmployeeNotFound is returned when the authenticated user has no
// exhibitor employee profile; bulk claims without an employee context
// are rejected with it.
var ErrEmployeeNotFound = errors.New("exhibitor employee not found")

// ErrCompanyNotFound is returned when an exhibitor company id does not
// resolve.
var ErrCompanyNotFound = errors.New("exhibitor company not found")
