// Package sweeper runs the background job that demotes overdue claims.
// Expiry is authoritative on read as well, so the sweeper is a
// convergence aid rather than a correctness requirement: it keeps the
// database honest for holders who never reopen their dashboard.
package sweeper

import (
	"context"
	"log"
	"time"

	"github.com/zidduhhere/isgconf-reg-sub000/internal/cache"
	"github.com/zidduhhere/isgconf-reg-sub000/internal/coupon"
	"github.com/zidduhhere/isgconf-reg-sub000/internal/model"
	"github.com/zidduhhere/isgconf-reg-sub000/internal/queue"
	"github.com/zidduhhere/isgconf-reg-sub000/internal/repository"
	queue_publisher "github.com/zidduhhere/isgconf-reg-sub000/internal/service"
)

// Sweeper periodically scans for ACTIVE coupons whose validity window
// has elapsed and marks them USED in a single transaction.
type Sweeper struct {
	Coupons  *repository.CouponRepo
	Cache    *cache.ClaimCache
	Interval time.Duration
}

// New constructs a Sweeper.  Coupons and Cache must be non-nil; a
// non-positive interval falls back to 30 seconds.
func New(coupons *repository.CouponRepo, claimCache *cache.ClaimCache, interval time.Duration) *Sweeper {
	if coupons == nil || claimCache == nil {
		panic("nil dependency passed to sweeper.New")
	}
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &Sweeper{Coupons: coupons, Cache: claimCache, Interval: interval}
}

// Run sweeps on a fixed interval until ctx is cancelled.  A failed
// sweep is logged and retried on the next tick; it never terminates
// the loop.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()
	log.Printf("sweeper: running every %s", s.Interval)
	for {
		select {
		case <-ctx.Done():
			log.Println("sweeper: stopped")
			return
		case <-ticker.C:
			if n, err := s.SweepOnce(ctx); err != nil {
				log.Printf("sweeper: sweep failed: %v", err)
			} else if n > 0 {
				log.Printf("sweeper: expired %d coupon(s)", n)
			}
		}
	}
}

// SweepOnce performs a single sweep pass and returns the number of
// coupons it expired.  The select and update share one transaction so
// a claim racing the sweeper is either seen with its final timestamps
// or not at all.
func (s *Sweeper) SweepOnce(ctx context.Context) (int, error) {
	tx, err := s.Coupons.DB().BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	overdue, err := s.Coupons.ListOverdueTx(ctx, tx)
	if err != nil {
		return 0, err
	}
	if len(overdue) == 0 {
		return 0, tx.Commit()
	}

	ids := make([]uint64, 0, len(overdue))
	for _, c := range overdue {
		ids = append(ids, c.ID)
	}
	if err := s.Coupons.ExpireByIDsTx(ctx, tx, ids); err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}

	for _, c := range overdue {
		s.afterExpire(ctx, c)
	}
	return len(overdue), nil
}

// afterExpire evicts the cached claim and publishes the audit event
// for one expired coupon.  Both are best effort; the database row is
// already USED.
func (s *Sweeper) afterExpire(ctx context.Context, c model.Coupon) {
	key := coupon.DeriveKey(c.ParticipantID, c.MealSlotID, c.FamilyIndex)
	if err := s.Cache.Delete(ctx, key); err != nil {
		log.Printf("sweeper: cache evict failed for %s: %v", key, err)
	}

	ev := queue.CouponEvent{
		Kind:          queue.KindCouponExpired,
		CouponID:      c.ID,
		ParticipantID: c.ParticipantID,
		MealSlotID:    c.MealSlotID,
		FamilyIndex:   c.FamilyIndex,
		OccurredAt:    time.Now().UTC().Format(time.RFC3339),
	}
	if c.ClaimedAt != nil {
		ev.ClaimedAt = c.ClaimedAt.UTC().Format(time.RFC3339)
	}
	if c.ExpiresAt != nil {
		ev.ExpiresAt = c.ExpiresAt.UTC().Format(time.RFC3339)
	}
	pubCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = queue_publisher.PublishCouponEvent(pubCtx, ev)
}
