package handler

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/zidduhhere/isgconf-reg-sub000/internal/cache"
	"github.com/zidduhhere/isgconf-reg-sub000/internal/coupon"
	"github.com/zidduhhere/isgconf-reg-sub000/internal/model"
	"github.com/zidduhhere/isgconf-reg-sub000/internal/queue"
	"github.com/zidduhhere/isgconf-reg-sub000/internal/repository"
	queue_publisher "github.com/zidduhhere/isgconf-reg-sub000/internal/service"
)

// ParticipantHandler serves the participant dashboard: listing the
// holder's coupons (reconciled against the claim cache and expiry
// swept on read) and claiming one coupon for a meal slot and family
// index.  Methods assume JWT authentication and role validation have
// already run; the holder identity is always taken from the request
// context, never from ambient state.
type ParticipantHandler struct {
	Participants *repository.ParticipantRepo
	Slots        *repository.MealSlotRepo
	Coupons      *repository.CouponRepo
	Cache        *cache.ClaimCache
	Window       time.Duration
}

// NewParticipantHandler constructs a ParticipantHandler.  The cache
// may wrap a nil Redis client; every other dependency must be non-nil.
func NewParticipantHandler(p *repository.ParticipantRepo, s *repository.MealSlotRepo, cp *repository.CouponRepo, cc *cache.ClaimCache, window time.Duration) *ParticipantHandler {
	if p == nil || s == nil || cp == nil || cc == nil {
		panic("nil dependency passed to NewParticipantHandler")
	}
	if window <= 0 {
		window = coupon.DefaultValidityWindow
	}
	return &ParticipantHandler{Participants: p, Slots: s, Coupons: cp, Cache: cc, Window: window}
}

// couponView is one coupon in a list or claim response.  Status is the
// display status, which includes the derived locked variants.
type couponView struct {
	ID               uint64     `json:"id"`
	MealSlotID       uint64     `json:"meal_slot_id"`
	SlotName         string     `json:"slot_name,omitempty"`
	Day              uint8      `json:"day,omitempty"`
	MealType         string     `json:"meal_type,omitempty"`
	FamilyIndex      uint8      `json:"family_index"`
	Status           string     `json:"status"`
	ClaimedAt        *time.Time `json:"claimed_at,omitempty"`
	ExpiresAt        *time.Time `json:"expires_at,omitempty"`
	RemainingSeconds int64      `json:"remaining_seconds"`
}

func viewOf(c model.Coupon, slot model.MealSlot, now time.Time) couponView {
	return couponView{
		ID:               c.ID,
		MealSlotID:       c.MealSlotID,
		SlotName:         slot.Name,
		Day:              slot.Day,
		MealType:         string(slot.Type),
		FamilyIndex:      c.FamilyIndex,
		Status:           string(coupon.DisplayStatus(c, slot, now)),
		ClaimedAt:        c.ClaimedAt,
		ExpiresAt:        c.ExpiresAt,
		RemainingSeconds: int64(coupon.Remaining(c, now) / time.Second),
	}
}

// participantOf resolves the participant profile for the
// authenticated user.  A login without a profile cannot use any
// coupon endpoint; that is a blocking configuration problem, not a
// retryable one.
func (h *ParticipantHandler) participantOf(c echo.Context) (model.Participant, error) {
	userID, err := getUserID(c)
	if err != nil {
		return model.Participant{}, echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	p, err := h.Participants.GetByUserID(c.Request().Context(), userID)
	if err != nil {
		if errors.Is(err, repository.ErrParticipantNotFound) {
			return model.Participant{}, echo.NewHTTPError(http.StatusForbidden, "no participant profile for this account")
		}
		return model.Participant{}, echo.NewHTTPError(http.StatusInternalServerError, "database error")
	}
	return p, nil
}

// ListCoupons handles GET /v1/participant/coupons.  The flow is: sweep this
// holder's overdue actives (on-read expiry; a failure here is logged
// and never blocks the response), fetch the authoritative rows, merge
// each with its cached claim, write the merged view back to the cache
// so it converges toward the store, and render display statuses with
// the remaining countdown.
func (h *ParticipantHandler) ListCoupons(c echo.Context) error {
	p, err := h.participantOf(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	now := time.Now().UTC()

	if _, sweepErr := h.Coupons.ExpireOverdueForParticipant(ctx, p.ID); sweepErr != nil {
		log.Printf("coupon: on-read sweep failed for participant %d: %v", p.ID, sweepErr)
	}

	slots, err := h.Slots.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load slots failed"})
	}
	slotByID := make(map[uint64]model.MealSlot, len(slots))
	for _, s := range slots {
		slotByID[s.ID] = s
	}

	coupons, err := h.Coupons.ListByParticipant(ctx, p.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load coupons failed"})
	}

	views := make([]couponView, 0, len(coupons))
	for _, raw := range coupons {
		merged := h.reconcileAndSync(ctx, p.ID, raw, now)
		views = append(views, viewOf(merged, slotByID[merged.MealSlotID], now))
	}
	return c.JSON(http.StatusOK, echo.Map{
		"participant_id": p.ID,
		"family_size":    p.FamilySize,
		"coupons":        views,
	})
}

// reconcileAndSync merges one authoritative coupon with its cached
// claim and pushes the merged result back to the cache.  Cache errors
// are logged only; the merge result stands either way.
func (h *ParticipantHandler) reconcileAndSync(ctx context.Context, participantID uint64, raw model.Coupon, now time.Time) model.Coupon {
	key := coupon.DeriveKey(participantID, raw.MealSlotID, raw.FamilyIndex)
	cached := h.Cache.Get(ctx, key)
	merged, evict := coupon.Reconcile(raw, cached, now)
	if evict {
		if err := h.Cache.Delete(ctx, key); err != nil {
			log.Printf("coupon: cache evict failed for %s: %v", key, err)
		}
	} else if merged.ClaimedAt != nil && merged.ExpiresAt != nil {
		entry := coupon.CachedClaim{ClaimedAt: *merged.ClaimedAt, ExpiresAt: *merged.ExpiresAt}
		if err := h.Cache.Put(ctx, key, entry); err != nil {
			log.Printf("coupon: cache sync failed for %s: %v", key, err)
		}
	}
	return merged
}

type claimReq struct {
	MealSlotID  uint64 `json:"meal_slot_id"`
	FamilyIndex uint8  `json:"family_index"`
}

// ClaimCoupon handles POST /v1/participant/coupons/claim.  The claim
// itself is a single conditional UPDATE at the store, so a double
// claim from a second session loses cleanly with a 409 instead of
// overwriting.  On success the claim timestamps are written to the
// cache for the optimistic countdown and an audit event is published
// best-effort.
func (h *ParticipantHandler) ClaimCoupon(c echo.Context) error {
	p, err := h.participantOf(c)
	if err != nil {
		return err
	}
	var req claimReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if req.MealSlotID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "meal_slot_id is required"})
	}
	if req.FamilyIndex >= p.FamilySize {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "family_index out of range"})
	}

	ctx := c.Request().Context()
	slot, err := h.Slots.GetByID(ctx, req.MealSlotID)
	if err != nil {
		if errors.Is(err, repository.ErrMealSlotNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "meal slot not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	now := time.Now().UTC()
	expires := now.Add(h.Window)
	claimed, err := h.Coupons.Claim(ctx, p.ID, slot.ID, req.FamilyIndex, now, expires)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrCouponNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "coupon not found"})
		case errors.Is(err, repository.ErrCouponNotAvailable):
			return c.JSON(http.StatusConflict, echo.Map{"error": "coupon already claimed or used"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "claim failed"})
		}
	}

	key := coupon.DeriveKey(p.ID, slot.ID, req.FamilyIndex)
	if cacheErr := h.Cache.Put(ctx, key, coupon.CachedClaim{ClaimedAt: now, ExpiresAt: expires}); cacheErr != nil {
		log.Printf("coupon: cache put failed for %s: %v", key, cacheErr)
	}

	go func(ev queue.CouponEvent) {
		pubCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = queue_publisher.PublishCouponEvent(pubCtx, ev)
	}(queue.CouponEvent{
		Kind:          queue.KindCouponClaimed,
		CouponID:      claimed.ID,
		ParticipantID: p.ID,
		MealSlotID:    slot.ID,
		FamilyIndex:   req.FamilyIndex,
		ClaimedAt:     now.Format(time.RFC3339),
		ExpiresAt:     expires.Format(time.RFC3339),
		OccurredAt:    now.Format(time.RFC3339),
	})

	return c.JSON(http.StatusCreated, viewOf(claimed, slot, now))
}
