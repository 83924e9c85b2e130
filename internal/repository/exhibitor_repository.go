package repository

import (
	"context"
	"database/sql"

	"github.com/zidduhhere/isgconf-reg-sub000/internal/model"
)

// ExhibitorRepo provides access to exhibitor companies and their
// employees.  Companies are coupon holders at the company level; the
// employee rows exist so bulk claims always carry the identity of the
// person who performed them.
type ExhibitorRepo struct {
	db *sql.DB
}

// NewExhibitorRepo returns a new ExhibitorRepo bound to the given database.
func NewExhibitorRepo(db *sql.DB) *ExhibitorRepo { return &ExhibitorRepo{db: db} }

// CreateCompany inserts an exhibitor company and populates the
// generated ID.
func (r *ExhibitorRepo) CreateCompany(ctx context.Context, c *model.ExhibitorCompany) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO exhibitor_companies (name, plan) VALUES (?, ?)`,
		c.Name, c.Plan)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	c.ID = uint64(id)
	return nil
}

// GetCompanyByID fetches one company.
func (r *ExhibitorRepo) GetCompanyByID(ctx context.Context, id uint64) (model.ExhibitorCompany, error) {
	var c model.ExhibitorCompany
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, plan, created_at FROM exhibitor_companies WHERE id = ?`, id).
		Scan(&c.ID, &c.Name, &c.Plan, &c.CreatedAt)
	if err == sql.ErrNoRows {
		return model.ExhibitorCompany{}, ErrCompanyNotFound
	}
	return c, err
}

// ListCompanies returns all exhibitor companies ordered by name.
func (r *ExhibitorRepo) ListCompanies(ctx context.Context) ([]model.ExhibitorCompany, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, plan, created_at FROM exhibitor_companies ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	companies := make([]model.ExhibitorCompany, 0)
	for rows.Next() {
		var c model.ExhibitorCompany
		if scanErr := rows.Scan(&c.ID, &c.Name, &c.Plan, &c.CreatedAt); scanErr != nil {
			return nil, scanErr
		}
		companies = append(companies, c)
	}
	return companies, rows.Err()
}

// CreateEmployee inserts an exhibitor employee and populates the
// generated ID.
func (r *ExhibitorRepo) CreateEmployee(ctx context.Context, e *model.ExhibitorEmployee) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO exhibitor_employees (company_id, user_id, full_name) VALUES (?, ?, ?)`,
		e.CompanyID, e.UserID, e.FullName)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	e.ID = uint64(id)
	return nil
}

// GetEmployeeByUserID resolves the employee profile of a login
// account.  Bulk claim handlers use it to establish the employee
// context; a missing row means the claim must be rejected.
func (r *ExhibitorRepo) GetEmployeeByUserID(ctx context.Context, userID uint64) (model.ExhibitorEmployee, error) {
	var e model.ExhibitorEmployee
	err := r.db.QueryRowContext(ctx,
		`SELECT id, company_id, user_id, full_name, created_at
		 FROM exhibitor_employees WHERE user_id = ? LIMIT 1`, userID).
		Scan(&e.ID, &e.CompanyID, &e.UserID, &e.FullName, &e.CreatedAt)
	if err == sql.ErrNoRows {
		return model.ExhibitorEmployee{}, ErrEmployeeNotFound
	}
	return e, err
}
