package model

import "time"

// AllocationClaim records one exhibitor bulk claim: a company-level
// grant of Quantity meals for a single slot.  A company may claim each
// slot at most once (slot-level exclusivity, enforced by a unique key
// on company_id + meal_slot_id).  Remaining allocation is always
// recomputed from these rows; no running total is stored.
//
// Fields:
//  ID         – primary key identifier.
//  CompanyID  – claiming company.
//  MealSlotID – slot that was claimed.
//  MealType   – denormalized slot type at claim time.
//  Quantity   – meals granted, 1..plan allocation for the type.
//  EmployeeID – employee who performed the claim.
//  ClaimedAt  – when the claim was made.
type AllocationClaim struct {
	ID         uint64    // allocation_claims.id
	CompanyID  uint64    // allocation_claims.company_id
	MealSlotID uint64    // allocation_claims.meal_slot_id
	MealType   MealType  // allocation_claims.meal_type
	Quantity   uint16    // allocation_claims.quantity
	EmployeeID uint64    // allocation_claims.employee_id
	ClaimedAt  time.Time // allocation_claims.claimed_at
}
