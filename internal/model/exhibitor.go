package model

import "time"

// ExhibitorPlan is the sponsorship tier of an exhibitor company.  Each
// tier maps to a fixed per-meal-type quantity allocation (see the
// coupon package for the allocation table).
type ExhibitorPlan string

const (
	PlanDiamond  ExhibitorPlan = "DIAMOND"
	PlanPlatinum ExhibitorPlan = "PLATINUM"
	PlanGold     ExhibitorPlan = "GOLD"
	PlanSilver   ExhibitorPlan = "SILVER"
)

// ExhibitorCompany is a company-level coupon holder.  Exhibitor claims
// are company grants carrying a quantity rather than per-person coupon
// rows.
//
// Fields:
//  ID        – primary key identifier.
//  Name      – company display name.
//  Plan      – sponsorship tier controlling meal allocations.
//  CreatedAt – registration timestamp.
type ExhibitorCompany struct {
	ID        uint64        // exhibitor_companies.id
	Name      string        // exhibitor_companies.name
	Plan      ExhibitorPlan // exhibitor_companies.plan
	CreatedAt time.Time     // exhibitor_companies.created_at
}

// ExhibitorEmployee links a login account to an exhibitor company.
// Bulk claims record which employee performed them; a claim without an
// employee context is rejected.
//
// Fields:
//  ID        – primary key identifier.
//  CompanyID – company this employee belongs to.
//  UserID    – login account backing this employee.
//  FullName  – display name.
//  CreatedAt – registration timestamp.
type ExhibitorEmployee struct {
	ID        uint64    // exhibitor_employees.id
	CompanyID uint64    // exhibitor_employees.company_id
	UserID    uint64    // exhibitor_employees.user_id
	FullName  string    // exhibitor_employees.full_name
	CreatedAt time.Time // exhibitor_employees.created_at
}
