package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/zidduhhere/isgconf-reg-sub000/internal/model"
)

// AllocationRepo provides access to exhibitor allocation claims.  A
// claim is one company-level grant per meal slot; the table carries a
// unique key on (company_id, meal_slot_id) so "has this company
// already claimed this slot" is never answered by a read followed by a
// write: the insert itself is the check, and a duplicate-key error
// maps to ErrSlotAlreadyClaimed.
type AllocationRepo struct {
	db *sql.DB
}

// NewAllocationRepo returns a new AllocationRepo bound to the given database.
func NewAllocationRepo(db *sql.DB) *AllocationRepo { return &AllocationRepo{db: db} }

const allocationColumns = `id, company_id, meal_slot_id, meal_type, quantity, employee_id, claimed_at`

func scanAllocation(scan func(dest ...interface{}) error) (model.AllocationClaim, error) {
	var a model.AllocationClaim
	err := scan(&a.ID, &a.CompanyID, &a.MealSlotID, &a.MealType,
		&a.Quantity, &a.EmployeeID, &a.ClaimedAt)
	return a, err
}

// CreateClaim inserts one allocation claim.  The unique slot key
// arbitrates concurrent claims for the same slot atomically: the
// losing insert fails with MySQL error 1062 and is surfaced as
// ErrSlotAlreadyClaimed with no row written.
func (r *AllocationRepo) CreateClaim(ctx context.Context, a *model.AllocationClaim) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO allocation_claims (company_id, meal_slot_id, meal_type, quantity, employee_id)
		 VALUES (?, ?, ?, ?, ?)`,
		a.CompanyID, a.MealSlotID, a.MealType, a.Quantity, a.EmployeeID)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return ErrSlotAlreadyClaimed
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	a.ID = uint64(id)
	return nil
}

// HasClaimed reports whether the company has already consumed the
// given slot.  Used only for display (remaining allocation); the
// authoritative check stays in CreateClaim.
func (r *AllocationRepo) HasClaimed(ctx context.Context, companyID, slotID uint64) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx,
		`SELECT 1 FROM allocation_claims WHERE company_id = ? AND meal_slot_id = ? LIMIT 1`,
		companyID, slotID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// ListByCompany returns the claim history of one company ordered by
// claim time.
func (r *AllocationRepo) ListByCompany(ctx context.Context, companyID uint64) ([]model.AllocationClaim, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+allocationColumns+` FROM allocation_claims
		 WHERE company_id = ? ORDER BY claimed_at`, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	claims := make([]model.AllocationClaim, 0)
	for rows.Next() {
		a, scanErr := scanAllocation(rows.Scan)
		if scanErr != nil {
			return nil, scanErr
		}
		claims = append(claims, a)
	}
	return claims, rows.Err()
}

// ClaimedSlotIDs returns the set of slot IDs a company has consumed.
// The exhibitor dashboard recomputes remaining allocation per slot
// from this set on every view.
func (r *AllocationRepo) ClaimedSlotIDs(ctx context.Context, companyID uint64) (map[uint64]bool, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT meal_slot_id FROM allocation_claims WHERE company_id = ?`, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	claimed := make(map[uint64]bool)
	for rows.Next() {
		var id uint64
		if scanErr := rows.Scan(&id); scanErr != nil {
			return nil, scanErr
		}
		claimed[id] = true
	}
	return claimed, rows.Err()
}

// ListAll returns every allocation claim; used by the admin overview.
func (r *AllocationRepo) ListAll(ctx context.Context) ([]model.AllocationClaim, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+allocationColumns+` FROM allocation_claims ORDER BY claimed_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	claims := make([]model.AllocationClaim, 0)
	for rows.Next() {
		a, scanErr := scanAllocation(rows.Scan)
		if scanErr != nil {
			return nil, scanErr
		}
		claims = append(claims, a)
	}
	return claims, rows.Err()
}
