package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/zidduhhere/isgconf-reg-sub000/internal/model"
)

// CouponRepo provides data access to the coupons table.  One row
// exists per (participant, meal slot, family index); the triple is
// covered by a unique key so provisioning is idempotent.  All
// timestamp comparisons are performed in UTC.
//
// The claim is a single conditional UPDATE guarded by the AVAILABLE
// status, so two sessions racing on the same coupon are arbitrated by
// the database: exactly one session flips the row, the other touches
// zero rows and receives ErrCouponNotAvailable.
type CouponRepo struct {
	db *sql.DB
}

// NewCouponRepo returns a new CouponRepo bound to the provided database.
func NewCouponRepo(db *sql.DB) *CouponRepo { return &CouponRepo{db: db} }

// DB exposes the underlying handle so handlers can open transactions
// spanning multiple repositories.
func (r *CouponRepo) DB() *sql.DB { return r.db }

const couponColumns = `id, participant_id, meal_slot_id, family_index, status, claimed_at, expires_at, created_at, updated_at`

// scanCoupon reads one coupon row from a *sql.Row or *sql.Rows scanner.
func scanCoupon(scan func(dest ...interface{}) error) (model.Coupon, error) {
	var (
		c         model.Coupon
		claimedAt sql.NullTime
		expiresAt sql.NullTime
	)
	err := scan(&c.ID, &c.ParticipantID, &c.MealSlotID, &c.FamilyIndex,
		&c.Status, &claimedAt, &expiresAt, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return model.Coupon{}, err
	}
	if claimedAt.Valid {
		t := claimedAt.Time
		c.ClaimedAt = &t
	}
	if expiresAt.Valid {
		t := expiresAt.Time
		c.ExpiresAt = &t
	}
	return c, nil
}

// Provision inserts one AVAILABLE coupon per meal slot and family
// index for a participant.  familySize 1 provisions only the primary
// holder (index 0); N provisions indices 0..N-1.  INSERT IGNORE makes
// the operation idempotent against the unique coupon key, so
// re-provisioning after adding a slot only creates the missing rows.
func (r *CouponRepo) Provision(ctx context.Context, participantID uint64, slotIDs []uint64, familySize uint8) error {
	if len(slotIDs) == 0 || familySize == 0 {
		return nil
	}
	query := `INSERT IGNORE INTO coupons (participant_id, meal_slot_id, family_index, status) VALUES `
	args := make([]interface{}, 0, len(slotIDs)*int(familySize)*4)
	first := true
	for _, slotID := range slotIDs {
		for idx := uint8(0); idx < familySize; idx++ {
			if !first {
				query += ","
			}
			first = false
			query += "(?, ?, ?, ?)"
			args = append(args, participantID, slotID, idx, model.CouponAvailable)
		}
	}
	_, err := r.db.ExecContext(ctx, query, args...)
	return err
}

// GetByKey fetches one coupon by its composite identity.
func (r *CouponRepo) GetByKey(ctx context.Context, participantID, slotID uint64, familyIndex uint8) (model.Coupon, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+couponColumns+` FROM coupons
		 WHERE participant_id = ? AND meal_slot_id = ? AND family_index = ?`,
		participantID, slotID, familyIndex)
	c, err := scanCoupon(row.Scan)
	if err == sql.ErrNoRows {
		return model.Coupon{}, ErrCouponNotFound
	}
	return c, err
}

// GetByID fetches one coupon by primary key.
func (r *CouponRepo) GetByID(ctx context.Context, id uint64) (model.Coupon, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+couponColumns+` FROM coupons WHERE id = ?`, id)
	c, err := scanCoupon(row.Scan)
	if err == sql.ErrNoRows {
		return model.Coupon{}, ErrCouponNotFound
	}
	return c, err
}

// ListByParticipant returns all coupons of one participant ordered by
// slot then family index.  Callers should run ExpireOverdueForParticipant
// first so no overdue ACTIVE row is ever handed out for display.
func (r *CouponRepo) ListByParticipant(ctx context.Context, participantID uint64) ([]model.Coupon, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+couponColumns+` FROM coupons
		 WHERE participant_id = ? ORDER BY meal_slot_id, family_index`,
		participantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	coupons := make([]model.Coupon, 0)
	for rows.Next() {
		c, scanErr := scanCoupon(rows.Scan)
		if scanErr != nil {
			return nil, scanErr
		}
		coupons = append(coupons, c)
	}
	return coupons, rows.Err()
}

// ListBySlot returns all coupons provisioned for a meal slot; used by
// the admin overview.
func (r *CouponRepo) ListBySlot(ctx context.Context, slotID uint64) ([]model.Coupon, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+couponColumns+` FROM coupons
		 WHERE meal_slot_id = ? ORDER BY participant_id, family_index`,
		slotID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	coupons := make([]model.Coupon, 0)
	for rows.Next() {
		c, scanErr := scanCoupon(rows.Scan)
		if scanErr != nil {
			return nil, scanErr
		}
		coupons = append(coupons, c)
	}
	return coupons, rows.Err()
}

// Claim atomically transitions one coupon from AVAILABLE to ACTIVE,
// stamping the claim and expiry timestamps.  Zero affected rows means
// the coupon was not AVAILABLE at the moment of the write; the caller
// receives ErrCouponNotAvailable (or ErrCouponNotFound when the row
// does not exist at all) and must not treat the claim as granted.
func (r *CouponRepo) Claim(ctx context.Context, participantID, slotID uint64, familyIndex uint8, claimedAt, expiresAt time.Time) (model.Coupon, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE coupons SET status = ?, claimed_at = ?, expires_at = ?
		 WHERE participant_id = ? AND meal_slot_id = ? AND family_index = ? AND status = ?`,
		model.CouponActive, claimedAt.UTC(), expiresAt.UTC(),
		participantID, slotID, familyIndex, model.CouponAvailable)
	if err != nil {
		return model.Coupon{}, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return model.Coupon{}, err
	}
	if affected == 0 {
		// Distinguish a missing coupon from a lost race.
		if _, getErr := r.GetByKey(ctx, participantID, slotID, familyIndex); getErr != nil {
			return model.Coupon{}, getErr
		}
		return model.Coupon{}, ErrCouponNotAvailable
	}
	return r.GetByKey(ctx, participantID, slotID, familyIndex)
}

// ExpireOverdueForParticipant demotes this participant's overdue
// ACTIVE coupons to USED.  It is the on-read half of the expiry sweep:
// list handlers call it before fetching so correctness never depends
// on the background ticker running.  Timestamps are kept for audit.
func (r *CouponRepo) ExpireOverdueForParticipant(ctx context.Context, participantID uint64) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE coupons SET status = ?
		 WHERE participant_id = ? AND status = ? AND expires_at <= UTC_TIMESTAMP()`,
		model.CouponUsed, participantID, model.CouponActive)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ListOverdueTx returns all ACTIVE coupons past their expiry inside
// the provided transaction.  The caller then demotes them with
// ExpireByIDsTx and commits; selecting first lets the sweeper publish
// one event per expired coupon.
func (r *CouponRepo) ListOverdueTx(ctx context.Context, tx *sql.Tx) ([]model.Coupon, error) {
	rows, err := tx.QueryContext(ctx,
		`SELECT `+couponColumns+` FROM coupons
		 WHERE status = ? AND expires_at <= UTC_TIMESTAMP()`,
		model.CouponActive)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	coupons := make([]model.Coupon, 0)
	for rows.Next() {
		c, scanErr := scanCoupon(rows.Scan)
		if scanErr != nil {
			return nil, scanErr
		}
		coupons = append(coupons, c)
	}
	return coupons, rows.Err()
}

// ExpireByIDsTx demotes the given ACTIVE coupons to USED within the
// provided transaction.  The status guard keeps the sweep idempotent
// when a concurrent on-read sweep already demoted some of the rows.
func (r *CouponRepo) ExpireByIDsTx(ctx context.Context, tx *sql.Tx, ids []uint64) error {
	if len(ids) == 0 {
		return nil
	}
	query := `UPDATE coupons SET status = ? WHERE status = ? AND id IN (`
	args := make([]interface{}, 0, len(ids)+2)
	args = append(args, model.CouponUsed, model.CouponActive)
	for i, id := range ids {
		if i > 0 {
			query += ","
		}
		query += "?"
		args = append(args, id)
	}
	query += ")"
	_, err := tx.ExecContext(ctx, query, args...)
	return err
}

// Reset unconditionally returns a coupon to AVAILABLE and clears both
// timestamps.  It is the administrative recovery path for stuck or
// expired claims and the only transition out of USED.
func (r *CouponRepo) Reset(ctx context.Context, id uint64) (model.Coupon, error) {
	if _, err := r.GetByID(ctx, id); err != nil {
		return model.Coupon{}, err
	}
	_, err := r.db.ExecContext(ctx,
		`UPDATE coupons SET status = ?, claimed_at = NULL, expires_at = NULL WHERE id = ?`,
		model.CouponAvailable, id)
	if err != nil {
		return model.Coupon{}, err
	}
	return r.GetByID(ctx, id)
}
