package audit

import (
	"context"
	"database/sql"
)

// Repository persists audit entries in Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Insert appends one entry. Entries are never updated or deleted.
func (r *Repository) Insert(ctx context.Context, e *Entry) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO audit_logs (id, admin_id, action, table_name, record_id, old_data, new_data, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, e.ID, e.AdminID, e.Action, e.TableName, e.RecordID, nullableJSON(e.OldData), nullableJSON(e.NewData), e.CreatedAt)
	return err
}

// List returns the most recent entries, newest first.
func (r *Repository) List(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, admin_id, action, table_name, record_id, old_data, new_data, created_at
		FROM audit_logs
		ORDER BY created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var oldData, newData []byte
		if err := rows.Scan(&e.ID, &e.AdminID, &e.Action, &e.TableName, &e.RecordID, &oldData, &newData, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.OldData = oldData
		e.NewData = newData
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// nullableJSON maps an absent snapshot to SQL NULL rather than the empty string.
func nullableJSON(data []byte) any {
	if len(data) == 0 {
		return nil
	}
	return data
}
