package store

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// DB wraps sql.DB for Postgres using pgx.
type DB struct {
	Client *sql.DB
}

// NewDB creates a Postgres connection with sane defaults and ensures the
// schema exists. A non-nil DB may be returned alongside an error when the
// database is unreachable at startup; queries then fail per request.
func NewDB(connString string) (*DB, error) {
	db, err := sql.Open("pgx", connString)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	if err := db.PingContext(context.Background()); err != nil {
		return &DB{Client: db}, err
	}
	if err := migrate(db); err != nil {
		return &DB{Client: db}, err
	}
	return &DB{Client: db}, nil
}

func migrate(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS admins (
		id             TEXT PRIMARY KEY,
		name           TEXT NOT NULL,
		email          TEXT UNIQUE NOT NULL,
		password_hash  TEXT NOT NULL,
		phone          TEXT,
		is_active      BOOLEAN NOT NULL DEFAULT TRUE,
		created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS student_sessions (
		id            TEXT PRIMARY KEY,
		name          TEXT NOT NULL,
		branch        TEXT NOT NULL,
		google_email  TEXT NOT NULL,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS upcoming_companies (
		id               TEXT PRIMARY KEY,
		name             TEXT NOT NULL,
		tentative_date   TIMESTAMPTZ NOT NULL,
		info             TEXT,
		attachment_name  TEXT,
		attachment_url   TEXT,
		created_by       TEXT NOT NULL REFERENCES admins(id),
		created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS ongoing_drives (
		id              TEXT PRIMARY KEY,
		name            TEXT NOT NULL,
		jd              TEXT NOT NULL,
		status          TEXT NOT NULL,
		current_round   TEXT,
		round_number    INTEGER NOT NULL DEFAULT 0,
		total_rounds    INTEGER NOT NULL DEFAULT 0,
		gform_link      TEXT,
		gform_deadline  TIMESTAMPTZ,
		created_by      TEXT NOT NULL REFERENCES admins(id),
		created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS completed_drives (
		id                  TEXT PRIMARY KEY,
		name                TEXT NOT NULL,
		jd                  TEXT NOT NULL,
		final_list_name     TEXT,
		final_list_url      TEXT,
		selected_list_name  TEXT,
		selected_list_url   TEXT,
		selected_count      INTEGER NOT NULL DEFAULT 0,
		spc_member_name     TEXT NOT NULL,
		spc_member_phone    TEXT,
		spc_member_email    TEXT,
		created_by          TEXT NOT NULL REFERENCES admins(id),
		created_at          TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS audit_logs (
		id          TEXT PRIMARY KEY,
		admin_id    TEXT NOT NULL,
		action      TEXT NOT NULL,
		table_name  TEXT NOT NULL,
		record_id   TEXT NOT NULL,
		old_data    JSONB,
		new_data    JSONB,
		created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_upcoming_date ON upcoming_companies(tentative_date);
	CREATE INDEX IF NOT EXISTS idx_ongoing_created ON ongoing_drives(created_at);
	CREATE INDEX IF NOT EXISTS idx_completed_created ON completed_drives(created_at);
	CREATE INDEX IF NOT EXISTS idx_audit_record ON audit_logs(table_name, record_id);
	`
	_, err := db.Exec(schema)
	return err
}

// Close closes the underlying connection.
func (d *DB) Close() error {
	if d == nil || d.Client == nil {
		return nil
	}
	return d.Client.Close()
}
