package repository

import (
	"context"
	"database/sql"

	"github.com/zidduhhere/isgconf-reg-sub000/internal/model"
)

// ParticipantRepo provides access to participant profiles.  A
// participant is tied to exactly one login account; family
// registrations only differ in the family_size column, the dependent
// coupons themselves live in the coupons table.
type ParticipantRepo struct {
	db *sql.DB
}

// NewParticipantRepo returns a new ParticipantRepo bound to the given database.
func NewParticipantRepo(db *sql.DB) *ParticipantRepo { return &ParticipantRepo{db: db} }

const participantColumns = `id, user_id, full_name, is_family, family_size, created_at`

func scanParticipant(scan func(dest ...interface{}) error) (model.Participant, error) {
	var p model.Participant
	err := scan(&p.ID, &p.UserID, &p.FullName, &p.IsFamily, &p.FamilySize, &p.CreatedAt)
	return p, err
}

// Create inserts a participant profile and populates the generated ID.
// A family_size below 1 is normalised to 1 so the primary holder is
// always provisioned.
func (r *ParticipantRepo) Create(ctx context.Context, p *model.Participant) error {
	if p.FamilySize == 0 {
		p.FamilySize = 1
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO participants (user_id, full_name, is_family, family_size) VALUES (?, ?, ?, ?)`,
		p.UserID, p.FullName, p.IsFamily, p.FamilySize)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = uint64(id)
	return nil
}

// GetByUserID resolves the participant profile of a login account.
func (r *ParticipantRepo) GetByUserID(ctx context.Context, userID uint64) (model.Participant, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+participantColumns+` FROM participants WHERE user_id = ? LIMIT 1`, userID)
	p, err := scanParticipant(row.Scan)
	if err == sql.ErrNoRows {
		return model.Participant{}, ErrParticipantNotFound
	}
	return p, err
}

// GetByID fetches one participant by primary key.
func (r *ParticipantRepo) GetByID(ctx context.Context, id uint64) (model.Participant, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+participantColumns+` FROM participants WHERE id = ?`, id)
	p, err := scanParticipant(row.Scan)
	if err == sql.ErrNoRows {
		return model.Participant{}, ErrParticipantNotFound
	}
	return p, err
}

// List returns all participants; used by the admin overview.
func (r *ParticipantRepo) List(ctx context.Context) ([]model.Participant, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+participantColumns+` FROM participants ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	participants := make([]model.Participant, 0)
	for rows.Next() {
		p, scanErr := scanParticipant(rows.Scan)
		if scanErr != nil {
			return nil, scanErr
		}
		participants = append(participants, p)
	}
	return participants, rows.Err()
}
