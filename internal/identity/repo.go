package identity

import (
	"context"
	"database/sql"
	"errors"
)

// Repository persists identity data in Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// AdminByEmail returns the admin with the given email, or nil when absent.
func (r *Repository) AdminByEmail(ctx context.Context, email string) (*Admin, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, email, password_hash, phone, is_active, created_at
		FROM admins WHERE email = $1
	`, email)
	var a Admin
	if err := row.Scan(&a.ID, &a.Name, &a.Email, &a.PasswordHash, &a.Phone, &a.IsActive, &a.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}

// InsertAdmin writes a new admin account. Used by seeding only; admins are
// not managed over the API.
func (r *Repository) InsertAdmin(ctx context.Context, a *Admin) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO admins (id, name, email, password_hash, phone, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, a.ID, a.Name, a.Email, a.PasswordHash, a.Phone, a.IsActive, a.CreatedAt)
	return err
}

// InsertStudentSession appends one session log row.
func (r *Repository) InsertStudentSession(ctx context.Context, s *StudentSession) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO student_sessions (id, name, branch, google_email, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, s.ID, s.Name, s.Branch, s.GoogleEmail, s.CreatedAt)
	return err
}
