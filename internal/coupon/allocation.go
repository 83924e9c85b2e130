package coupon

import (
	"errors"

	"github.com/zidduhhere/isgconf-reg-sub000/internal/model"
)

// Validation errors for exhibitor bulk claims.  Each failure mode is a
// distinct sentinel so handlers can report it precisely.
var (
	ErrNoEmployee         = errors.New("no employee context for bulk claim")
	ErrQuantityInvalid    = errors.New("quantity must be positive")
	ErrAllocationExceeded = errors.New("quantity exceeds plan allocation")
	ErrUnknownPlan        = errors.New("unknown exhibitor plan")
)

// Allocation is the fixed per-meal-type quantity cap of an exhibitor
// plan.  Every meal slot independently grants the full per-type
// allocation; a company consumes a slot entirely with its first claim.
type Allocation struct {
	Lunch  uint16
	Dinner uint16
}

// planAllocations maps each sponsorship tier to its allocation.
var planAllocations = map[model.ExhibitorPlan]Allocation{
	model.PlanDiamond:  {Lunch: 5, Dinner: 4},
	model.PlanPlatinum: {Lunch: 4, Dinner: 3},
	model.PlanGold:     {Lunch: 3, Dinner: 2},
	model.PlanSilver:   {Lunch: 2, Dinner: 1},
}

// PlanAllocation returns the allocation table entry for a plan.
func PlanAllocation(plan model.ExhibitorPlan) (Allocation, error) {
	a, ok := planAllocations[plan]
	if !ok {
		return Allocation{}, ErrUnknownPlan
	}
	return a, nil
}

// ForType returns the cap for one meal type.
func (a Allocation) ForType(t model.MealType) uint16 {
	if t == model.MealDinner {
		return a.Dinner
	}
	return a.Lunch
}

// ValidateBulkClaim checks an exhibitor bulk claim against the plan
// allocation for a fresh (unclaimed) slot.  Slot-level exclusivity is
// not checked here; that is enforced atomically by the store's unique
// key, never by a read-then-write.
func ValidateBulkClaim(plan model.ExhibitorPlan, mealType model.MealType, quantity uint16, employeeID uint64) error {
	if employeeID == 0 {
		return ErrNoEmployee
	}
	if quantity == 0 {
		return ErrQuantityInvalid
	}
	alloc, err := PlanAllocation(plan)
	if err != nil {
		return err
	}
	if quantity > alloc.ForType(mealType) {
		return ErrAllocationExceeded
	}
	return nil
}

// RemainingForSlot computes the allocation still claimable for one
// slot from the claim history: the full per-type cap when the company
// has not claimed the slot, zero once it has.  Remaining quantity is
// always recomputed; no running total is stored anywhere.
func RemainingForSlot(plan model.ExhibitorPlan, mealType model.MealType, alreadyClaimed bool) (uint16, error) {
	if alreadyClaimed {
		return 0, nil
	}
	alloc, err := PlanAllocation(plan)
	if err != nil {
		return 0, err
	}
	return alloc.ForType(mealType), nil
}
