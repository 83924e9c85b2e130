package coupon

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zidduhhere/isgconf-reg-sub000/internal/model"
)

func TestPlanAllocation_Table(t *testing.T) {
	diamond, err := PlanAllocation(model.PlanDiamond)
	require.NoError(t, err)
	assert.Equal(t, uint16(5), diamond.Lunch)
	assert.Equal(t, uint16(4), diamond.Dinner)

	silver, err := PlanAllocation(model.PlanSilver)
	require.NoError(t, err)
	assert.Equal(t, uint16(2), silver.Lunch)
	assert.Equal(t, uint16(1), silver.Dinner)

	_, err = PlanAllocation(model.ExhibitorPlan("BRONZE"))
	assert.ErrorIs(t, err, ErrUnknownPlan)
}

func TestValidateBulkClaim_Ceiling(t *testing.T) {
	// Diamond allows 5 lunches per fresh slot; 6 must be rejected and
	// nothing about the slot changes.
	err := ValidateBulkClaim(model.PlanDiamond, model.MealLunch, 6, 11)
	assert.ErrorIs(t, err, ErrAllocationExceeded)

	err = ValidateBulkClaim(model.PlanDiamond, model.MealLunch, 5, 11)
	assert.NoError(t, err)
}

func TestValidateBulkClaim_PerTypeCaps(t *testing.T) {
	// Dinner caps are lower than lunch caps on every plan.
	err := ValidateBulkClaim(model.PlanSilver, model.MealDinner, 2, 11)
	assert.ErrorIs(t, err, ErrAllocationExceeded)

	err = ValidateBulkClaim(model.PlanSilver, model.MealDinner, 1, 11)
	assert.NoError(t, err)
}

func TestValidateBulkClaim_FailureModesDistinct(t *testing.T) {
	assert.ErrorIs(t, ValidateBulkClaim(model.PlanGold, model.MealLunch, 1, 0), ErrNoEmployee)
	assert.ErrorIs(t, ValidateBulkClaim(model.PlanGold, model.MealLunch, 0, 11), ErrQuantityInvalid)
	assert.ErrorIs(t, ValidateBulkClaim(model.ExhibitorPlan(""), model.MealLunch, 1, 11), ErrUnknownPlan)
}

func TestRemainingForSlot(t *testing.T) {
	remaining, err := RemainingForSlot(model.PlanPlatinum, model.MealLunch, false)
	require.NoError(t, err)
	assert.Equal(t, uint16(4), remaining)

	// Once a company claims a slot it is fully consumed regardless of
	// the quantity that was taken.
	remaining, err = RemainingForSlot(model.PlanPlatinum, model.MealLunch, true)
	require.NoError(t, err)
	assert.Equal(t, uint16(0), remaining)
}
