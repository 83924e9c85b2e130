package handler

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/zidduhhere/isgconf-reg-sub000/internal/cache"
	"github.com/zidduhhere/isgconf-reg-sub000/internal/coupon"
	"github.com/zidduhhere/isgconf-reg-sub000/internal/model"
	"github.com/zidduhhere/isgconf-reg-sub000/internal/queue"
	"github.com/zidduhhere/isgconf-reg-sub000/internal/repository"
	queue_publisher "github.com/zidduhhere/isgconf-reg-sub000/internal/service"
)

// AdminHandler groups the operational endpoints: meal slot catalog
// management, exhibitor company registration, coupon provisioning,
// coupon resets and the overview tables.  All routes behind it
// require the ADMIN role.
type AdminHandler struct {
	Slots        *repository.MealSlotRepo
	Participants *repository.ParticipantRepo
	Exhibitors   *repository.ExhibitorRepo
	Coupons      *repository.CouponRepo
	Allocations  *repository.AllocationRepo
	Cache        *cache.ClaimCache
}

// NewAdminHandler constructs an AdminHandler; all dependencies must be
// non-nil.
func NewAdminHandler(s *repository.MealSlotRepo, p *repository.ParticipantRepo, e *repository.ExhibitorRepo, cp *repository.CouponRepo, a *repository.AllocationRepo, cc *cache.ClaimCache) *AdminHandler {
	if s == nil || p == nil || e == nil || cp == nil || a == nil || cc == nil {
		panic("nil dependency passed to NewAdminHandler")
	}
	return &AdminHandler{Slots: s, Participants: p, Exhibitors: e, Coupons: cp, Allocations: a, Cache: cc}
}

type createSlotReq struct {
	Name      string `json:"name"`
	Day       uint8  `json:"day"`
	Type      string `json:"type"`       // LUNCH | DINNER
	EventDate string `json:"event_date"` // YYYY-MM-DD
	OpensAt   string `json:"opens_at"`   // RFC3339
	ClosesAt  string `json:"closes_at"`  // RFC3339
}

// CreateMealSlot handles POST /v1/admin/slots.  Slots are configured
// once before the conference; the serving window only drives the
// locked display states.
func (h *AdminHandler) CreateMealSlot(c echo.Context) error {
	var req createSlotReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" || req.Day == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name and day are required"})
	}
	mealType := model.MealType(strings.ToUpper(strings.TrimSpace(req.Type)))
	if mealType != model.MealLunch && mealType != model.MealDinner {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "type must be LUNCH or DINNER"})
	}
	eventDate, err := time.Parse("2006-01-02", req.EventDate)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "event_date must be YYYY-MM-DD"})
	}
	opensAt, err := time.Parse(time.RFC3339, req.OpensAt)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "opens_at must be RFC3339"})
	}
	closesAt, err := time.Parse(time.RFC3339, req.ClosesAt)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "closes_at must be RFC3339"})
	}
	if !closesAt.After(opensAt) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "closes_at must be after opens_at"})
	}

	slot := model.MealSlot{
		Name:      req.Name,
		Day:       req.Day,
		Type:      mealType,
		EventDate: eventDate,
		OpensAt:   opensAt.UTC(),
		ClosesAt:  closesAt.UTC(),
	}
	if err := h.Slots.Create(c.Request().Context(), &slot); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create slot failed"})
	}
	return c.JSON(http.StatusCreated, slot)
}

// ListMealSlots handles GET /v1/admin/slots (the catalog is also
// readable by holders through their own dashboards).
func (h *AdminHandler) ListMealSlots(c echo.Context) error {
	slots, err := h.Slots.List(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load slots failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"slots": slots})
}

type createCompanyReq struct {
	Name string `json:"name"`
	Plan string `json:"plan"` // DIAMOND | PLATINUM | GOLD | SILVER
}

// CreateCompany handles POST /v1/admin/companies.
func (h *AdminHandler) CreateCompany(c echo.Context) error {
	var req createCompanyReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}
	plan := model.ExhibitorPlan(strings.ToUpper(strings.TrimSpace(req.Plan)))
	if _, err := coupon.PlanAllocation(plan); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown plan"})
	}
	company := model.ExhibitorCompany{Name: req.Name, Plan: plan}
	if err := h.Exhibitors.CreateCompany(c.Request().Context(), &company); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create company failed"})
	}
	return c.JSON(http.StatusCreated, company)
}

// ListCompanies handles GET /v1/admin/companies.
func (h *AdminHandler) ListCompanies(c echo.Context) error {
	companies, err := h.Exhibitors.ListCompanies(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load companies failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"companies": companies})
}

// ListParticipants handles GET /v1/admin/participants.
func (h *AdminHandler) ListParticipants(c echo.Context) error {
	participants, err := h.Participants.List(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load participants failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"participants": participants})
}

// ProvisionCoupons handles POST /v1/admin/participants/:id/provision.
// It (re)creates the coupon rows for one participant across the full
// slot catalog.  The insert ignores rows that already exist, so the
// endpoint is safe to call after adding slots mid-conference: only the
// missing coupons appear, existing claim state is untouched.
func (h *AdminHandler) ProvisionCoupons(c echo.Context) error {
	participantID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || participantID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid participant id"})
	}
	ctx := c.Request().Context()
	p, err := h.Participants.GetByID(ctx, participantID)
	if err != nil {
		if errors.Is(err, repository.ErrParticipantNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "participant not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	slotIDs, err := h.Slots.ListIDs(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load slots failed"})
	}
	if err := h.Coupons.Provision(ctx, p.ID, slotIDs, p.FamilySize); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "provision failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"participant_id": p.ID,
		"slots":          len(slotIDs),
		"family_size":    p.FamilySize,
	})
}

// ListCoupons handles GET /v1/admin/coupons?slot_id=N|participant_id=N.
// One filter is required; unfiltered dumps are not served.
func (h *AdminHandler) ListCoupons(c echo.Context) error {
	ctx := c.Request().Context()
	if raw := c.QueryParam("slot_id"); raw != "" {
		slotID, err := strconv.ParseUint(raw, 10, 64)
		if err != nil || slotID == 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid slot_id"})
		}
		coupons, err := h.Coupons.ListBySlot(ctx, slotID)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load coupons failed"})
		}
		return c.JSON(http.StatusOK, echo.Map{"coupons": coupons})
	}
	if raw := c.QueryParam("participant_id"); raw != "" {
		participantID, err := strconv.ParseUint(raw, 10, 64)
		if err != nil || participantID == 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid participant_id"})
		}
		coupons, err := h.Coupons.ListByParticipant(ctx, participantID)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load coupons failed"})
		}
		return c.JSON(http.StatusOK, echo.Map{"coupons": coupons})
	}
	return c.JSON(http.StatusBadRequest, echo.Map{"error": "slot_id or participant_id is required"})
}

// ResetCoupon handles POST /v1/admin/coupons/:id/reset.  The reset is
// unconditional: whatever state the coupon is in, it returns to
// AVAILABLE with cleared timestamps, the cached claim is evicted so
// the reconciliation merge cannot resurrect it, and an audit event is
// published.
func (h *AdminHandler) ResetCoupon(c echo.Context) error {
	couponID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || couponID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid coupon id"})
	}
	ctx := c.Request().Context()
	reset, err := h.Coupons.Reset(ctx, couponID)
	if err != nil {
		if errors.Is(err, repository.ErrCouponNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "coupon not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "reset failed"})
	}

	key := coupon.DeriveKey(reset.ParticipantID, reset.MealSlotID, reset.FamilyIndex)
	if cacheErr := h.Cache.Delete(ctx, key); cacheErr != nil {
		log.Printf("coupon: cache evict failed for %s: %v", key, cacheErr)
	}

	now := time.Now().UTC()
	go func(ev queue.CouponEvent) {
		pubCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = queue_publisher.PublishCouponEvent(pubCtx, ev)
	}(queue.CouponEvent{
		Kind:          queue.KindCouponReset,
		CouponID:      reset.ID,
		ParticipantID: reset.ParticipantID,
		MealSlotID:    reset.MealSlotID,
		FamilyIndex:   reset.FamilyIndex,
		OccurredAt:    now.Format(time.RFC3339),
	})

	return c.JSON(http.StatusOK, reset)
}

// ListAllocationClaims handles GET /v1/admin/allocations: every
// exhibitor bulk claim across all companies.
func (h *AdminHandler) ListAllocationClaims(c echo.Context) error {
	claims, err := h.Allocations.ListAll(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load claims failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"claims": claims})
}
