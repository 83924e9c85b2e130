package repository

import (
	"context"
	"database/sql"

	"github.com/zidduhhere/isgconf-reg-sub000/internal/model"
)

// MealSlotRepo provides read and admin-write access to the meal slot
// catalog.  Slots are static reference data: configured before the
// conference, immutable afterwards, and treated as read-only by the
// coupon engine.
type MealSlotRepo struct {
	db *sql.DB
}

// NewMealSlotRepo returns a new MealSlotRepo bound to the given database.
func NewMealSlotRepo(db *sql.DB) *MealSlotRepo { return &MealSlotRepo{db: db} }

const mealSlotColumns = `id, name, day, type, event_date, opens_at, closes_at, created_at`

func scanMealSlot(scan func(dest ...interface{}) error) (model.MealSlot, error) {
	var s model.MealSlot
	err := scan(&s.ID, &s.Name, &s.Day, &s.Type, &s.EventDate,
		&s.OpensAt, &s.ClosesAt, &s.CreatedAt)
	return s, err
}

// Create inserts a new meal slot and populates the generated ID.
func (r *MealSlotRepo) Create(ctx context.Context, s *model.MealSlot) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO meal_slots (name, day, type, event_date, opens_at, closes_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		s.Name, s.Day, s.Type, s.EventDate.UTC(), s.OpensAt.UTC(), s.ClosesAt.UTC())
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	s.ID = uint64(id)
	return nil
}

// GetByID fetches one meal slot.
func (r *MealSlotRepo) GetByID(ctx context.Context, id uint64) (model.MealSlot, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+mealSlotColumns+` FROM meal_slots WHERE id = ?`, id)
	s, err := scanMealSlot(row.Scan)
	if err == sql.ErrNoRows {
		return model.MealSlot{}, ErrMealSlotNotFound
	}
	return s, err
}

// List returns the full catalog ordered by day then serving window.
func (r *MealSlotRepo) List(ctx context.Context) ([]model.MealSlot, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+mealSlotColumns+` FROM meal_slots ORDER BY day, opens_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	slots := make([]model.MealSlot, 0)
	for rows.Next() {
		s, scanErr := scanMealSlot(rows.Scan)
		if scanErr != nil {
			return nil, scanErr
		}
		slots = append(slots, s)
	}
	return slots, rows.Err()
}

// ListIDs returns just the slot IDs; provisioning uses it to build the
// coupon rows for a new participant.
func (r *MealSlotRepo) ListIDs(ctx context.Context) ([]uint64, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id FROM meal_slots ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	ids := make([]uint64, 0)
	for rows.Next() {
		var id uint64
		if scanErr := rows.Scan(&id); scanErr != nil {
			return nil, scanErr
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
