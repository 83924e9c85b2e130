package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/zidduhhere/isgconf-reg-sub000/internal/coupon"
	"github.com/zidduhhere/isgconf-reg-sub000/internal/model"
	"github.com/zidduhhere/isgconf-reg-sub000/internal/queue"
	"github.com/zidduhhere/isgconf-reg-sub000/internal/repository"
	queue_publisher "github.com/zidduhhere/isgconf-reg-sub000/internal/service"
)

// ExhibitorHandler serves the exhibitor dashboard: per-slot remaining
// allocation and company-level bulk claims.  Every claim is recorded
// against the employee who performed it; requests from accounts
// without an employee profile are rejected outright.
type ExhibitorHandler struct {
	Exhibitors  *repository.ExhibitorRepo
	Slots       *repository.MealSlotRepo
	Allocations *repository.AllocationRepo
}

// NewExhibitorHandler constructs an ExhibitorHandler; all
// dependencies must be non-nil.
func NewExhibitorHandler(e *repository.ExhibitorRepo, s *repository.MealSlotRepo, a *repository.AllocationRepo) *ExhibitorHandler {
	if e == nil || s == nil || a == nil {
		panic("nil repository passed to NewExhibitorHandler")
	}
	return &ExhibitorHandler{Exhibitors: e, Slots: s, Allocations: a}
}

// employeeOf resolves the employee profile and company of the
// authenticated user.
func (h *ExhibitorHandler) employeeOf(c echo.Context) (model.ExhibitorEmployee, model.ExhibitorCompany, error) {
	userID, err := getUserID(c)
	if err != nil {
		return model.ExhibitorEmployee{}, model.ExhibitorCompany{},
			echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	ctx := c.Request().Context()
	emp, err := h.Exhibitors.GetEmployeeByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrEmployeeNotFound) {
			return model.ExhibitorEmployee{}, model.ExhibitorCompany{},
				echo.NewHTTPError(http.StatusForbidden, "no exhibitor profile for this account")
		}
		return model.ExhibitorEmployee{}, model.ExhibitorCompany{},
			echo.NewHTTPError(http.StatusInternalServerError, "database error")
	}
	company, err := h.Exhibitors.GetCompanyByID(ctx, emp.CompanyID)
	if err != nil {
		return model.ExhibitorEmployee{}, model.ExhibitorCompany{},
			echo.NewHTTPError(http.StatusInternalServerError, "database error")
	}
	return emp, company, nil
}

// slotAllocationView is one meal slot as the exhibitor dashboard sees
// it: the plan cap for the slot's type and what is still claimable.
// Remaining is recomputed from the claim history on every request.
type slotAllocationView struct {
	MealSlotID uint64 `json:"meal_slot_id"`
	SlotName   string `json:"slot_name"`
	Day        uint8  `json:"day"`
	MealType   string `json:"meal_type"`
	PlanCap    uint16 `json:"plan_cap"`
	Remaining  uint16 `json:"remaining"`
	Claimed    bool   `json:"claimed"`
}

// ListAllocations handles GET /v1/exhibitor/allocations.  Each slot
// independently grants the full per-type plan allocation; a slot the
// company has already claimed shows zero remaining.
func (h *ExhibitorHandler) ListAllocations(c echo.Context) error {
	_, company, err := h.employeeOf(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	alloc, err := coupon.PlanAllocation(company.Plan)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "unknown plan for company"})
	}
	slots, err := h.Slots.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load slots failed"})
	}
	claimed, err := h.Allocations.ClaimedSlotIDs(ctx, company.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load claims failed"})
	}

	views := make([]slotAllocationView, 0, len(slots))
	for _, s := range slots {
		remaining, remErr := coupon.RemainingForSlot(company.Plan, s.Type, claimed[s.ID])
		if remErr != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "unknown plan for company"})
		}
		views = append(views, slotAllocationView{
			MealSlotID: s.ID,
			SlotName:   s.Name,
			Day:        s.Day,
			MealType:   string(s.Type),
			PlanCap:    alloc.ForType(s.Type),
			Remaining:  remaining,
			Claimed:    claimed[s.ID],
		})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"company_id": company.ID,
		"plan":       company.Plan,
		"slots":      views,
	})
}

type bulkClaimReq struct {
	MealSlotID uint64 `json:"meal_slot_id"`
	Quantity   uint16 `json:"quantity"`
}

// ClaimBulk handles POST /v1/exhibitor/allocations/claim.  Validation
// against the plan allocation happens up front; slot-level
// exclusivity is enforced by the unique key at insert time, so two
// employees racing on the same slot cannot both win.  Each failure
// mode gets its own response so the dashboard can tell the user
// exactly what went wrong.
func (h *ExhibitorHandler) ClaimBulk(c echo.Context) error {
	emp, company, err := h.employeeOf(c)
	if err != nil {
		return err
	}
	var req bulkClaimReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if req.MealSlotID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "meal_slot_id is required"})
	}

	ctx := c.Request().Context()
	slot, err := h.Slots.GetByID(ctx, req.MealSlotID)
	if err != nil {
		if errors.Is(err, repository.ErrMealSlotNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "meal slot not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	if err := coupon.ValidateBulkClaim(company.Plan, slot.Type, req.Quantity, emp.ID); err != nil {
		switch {
		case errors.Is(err, coupon.ErrQuantityInvalid):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "quantity must be positive"})
		case errors.Is(err, coupon.ErrAllocationExceeded):
			alloc, allocErr := coupon.PlanAllocation(company.Plan)
			if allocErr != nil {
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "unknown plan for company"})
			}
			return c.JSON(http.StatusUnprocessableEntity, echo.Map{
				"error":     "quantity exceeds plan allocation",
				"plan_cap":  alloc.ForType(slot.Type),
				"meal_type": slot.Type,
			})
		case errors.Is(err, coupon.ErrNoEmployee):
			return c.JSON(http.StatusForbidden, echo.Map{"error": "no employee context"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "unknown plan for company"})
		}
	}

	claim := model.AllocationClaim{
		CompanyID:  company.ID,
		MealSlotID: slot.ID,
		MealType:   slot.Type,
		Quantity:   req.Quantity,
		EmployeeID: emp.ID,
	}
	if err := h.Allocations.CreateClaim(ctx, &claim); err != nil {
		if errors.Is(err, repository.ErrSlotAlreadyClaimed) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "slot already claimed by your company"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "claim failed"})
	}

	now := time.Now().UTC()
	go func(ev queue.CouponEvent) {
		pubCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = queue_publisher.PublishCouponEvent(pubCtx, ev)
	}(queue.CouponEvent{
		Kind:       queue.KindBulkClaimed,
		CompanyID:  company.ID,
		MealSlotID: slot.ID,
		EmployeeID: emp.ID,
		MealType:   string(slot.Type),
		Quantity:   req.Quantity,
		OccurredAt: now.Format(time.RFC3339),
	})

	return c.JSON(http.StatusCreated, echo.Map{
		"claim_id":     claim.ID,
		"company_id":   company.ID,
		"meal_slot_id": slot.ID,
		"meal_type":    slot.Type,
		"quantity":     req.Quantity,
	})
}

// ListClaims handles GET /v1/exhibitor/claims: the claim history of
// the caller's company.
func (h *ExhibitorHandler) ListClaims(c echo.Context) error {
	_, company, err := h.employeeOf(c)
	if err != nil {
		return err
	}
	claims, err := h.Allocations.ListByCompany(c.Request().Context(), company.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load claims failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"company_id": company.ID, "claims": claims})
}
