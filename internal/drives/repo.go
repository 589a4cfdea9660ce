package drives

import (
	"context"
	"database/sql"
	"errors"
)

// Store is the persistence surface the drives service needs. The Postgres
// Repository implements it; tests use an in-memory fake.
type Store interface {
	ListUpcoming(ctx context.Context) ([]UpcomingCompany, error)
	GetUpcoming(ctx context.Context, id string) (*UpcomingCompany, error)
	InsertUpcoming(ctx context.Context, rec *UpcomingCompany) error
	UpdateUpcoming(ctx context.Context, rec *UpcomingCompany) error
	DeleteUpcoming(ctx context.Context, id string) error

	ListOngoing(ctx context.Context) ([]OngoingDrive, error)
	GetOngoing(ctx context.Context, id string) (*OngoingDrive, error)
	InsertOngoing(ctx context.Context, rec *OngoingDrive) error
	UpdateOngoing(ctx context.Context, rec *OngoingDrive) error
	DeleteOngoing(ctx context.Context, id string) error

	ListCompleted(ctx context.Context) ([]CompletedDrive, error)
	GetCompleted(ctx context.Context, id string) (*CompletedDrive, error)
	InsertCompleted(ctx context.Context, rec *CompletedDrive) error
	UpdateCompleted(ctx context.Context, rec *CompletedDrive) error
	DeleteCompleted(ctx context.Context, id string) error
}

// Repository persists drive records in Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// -------- Upcoming companies --------

// ListUpcoming returns all upcoming companies by tentative date ascending,
// with creator attribution joined on.
func (r *Repository) ListUpcoming(ctx context.Context) ([]UpcomingCompany, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT u.id, u.name, u.tentative_date, u.info, u.attachment_name, u.attachment_url,
		       u.created_by, u.created_at, a.name, a.email
		FROM upcoming_companies u
		LEFT JOIN admins a ON a.id = u.created_by
		ORDER BY u.tentative_date ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []UpcomingCompany
	for rows.Next() {
		var rec UpcomingCompany
		var adminName, adminEmail *string
		if err := rows.Scan(&rec.ID, &rec.Name, &rec.TentativeDate, &rec.Info, &rec.AttachmentName,
			&rec.AttachmentURL, &rec.CreatedBy, &rec.CreatedAt, &adminName, &adminEmail); err != nil {
			return nil, err
		}
		rec.Admin = adminRef(adminName, adminEmail)
		res = append(res, rec)
	}
	return res, rows.Err()
}

// GetUpcoming returns a single record by id, or nil when absent.
func (r *Repository) GetUpcoming(ctx context.Context, id string) (*UpcomingCompany, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, tentative_date, info, attachment_name, attachment_url, created_by, created_at
		FROM upcoming_companies WHERE id = $1
	`, id)
	var rec UpcomingCompany
	if err := row.Scan(&rec.ID, &rec.Name, &rec.TentativeDate, &rec.Info, &rec.AttachmentName,
		&rec.AttachmentURL, &rec.CreatedBy, &rec.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &rec, nil
}

// InsertUpcoming writes a new record.
func (r *Repository) InsertUpcoming(ctx context.Context, rec *UpcomingCompany) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO upcoming_companies (id, name, tentative_date, info, attachment_name, attachment_url, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, rec.ID, rec.Name, rec.TentativeDate, rec.Info, rec.AttachmentName, rec.AttachmentURL, rec.CreatedBy, rec.CreatedAt)
	return err
}

// UpdateUpcoming overwrites the full row. Concurrent updates to the same id
// are last-write-wins.
func (r *Repository) UpdateUpcoming(ctx context.Context, rec *UpcomingCompany) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE upcoming_companies
		SET name = $2, tentative_date = $3, info = $4, attachment_name = $5, attachment_url = $6
		WHERE id = $1
	`, rec.ID, rec.Name, rec.TentativeDate, rec.Info, rec.AttachmentName, rec.AttachmentURL)
	return err
}

// DeleteUpcoming removes a record.
func (r *Repository) DeleteUpcoming(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM upcoming_companies WHERE id = $1`, id)
	return err
}

// -------- Ongoing drives --------

// ListOngoing returns all ongoing drives by creation time descending.
func (r *Repository) ListOngoing(ctx context.Context) ([]OngoingDrive, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT o.id, o.name, o.jd, o.status, o.current_round, o.round_number, o.total_rounds,
		       o.gform_link, o.gform_deadline, o.created_by, o.created_at, a.name, a.email
		FROM ongoing_drives o
		LEFT JOIN admins a ON a.id = o.created_by
		ORDER BY o.created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []OngoingDrive
	for rows.Next() {
		var rec OngoingDrive
		var adminName, adminEmail *string
		if err := rows.Scan(&rec.ID, &rec.Name, &rec.JD, &rec.Status, &rec.CurrentRound, &rec.RoundNumber,
			&rec.TotalRounds, &rec.GformLink, &rec.GformDeadline, &rec.CreatedBy, &rec.CreatedAt,
			&adminName, &adminEmail); err != nil {
			return nil, err
		}
		rec.Admin = adminRef(adminName, adminEmail)
		res = append(res, rec)
	}
	return res, rows.Err()
}

// GetOngoing returns a single record by id, or nil when absent.
func (r *Repository) GetOngoing(ctx context.Context, id string) (*OngoingDrive, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, jd, status, current_round, round_number, total_rounds, gform_link, gform_deadline, created_by, created_at
		FROM ongoing_drives WHERE id = $1
	`, id)
	var rec OngoingDrive
	if err := row.Scan(&rec.ID, &rec.Name, &rec.JD, &rec.Status, &rec.CurrentRound, &rec.RoundNumber,
		&rec.TotalRounds, &rec.GformLink, &rec.GformDeadline, &rec.CreatedBy, &rec.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &rec, nil
}

// InsertOngoing writes a new record.
func (r *Repository) InsertOngoing(ctx context.Context, rec *OngoingDrive) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO ongoing_drives (id, name, jd, status, current_round, round_number, total_rounds, gform_link, gform_deadline, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, rec.ID, rec.Name, rec.JD, rec.Status, rec.CurrentRound, rec.RoundNumber, rec.TotalRounds,
		rec.GformLink, rec.GformDeadline, rec.CreatedBy, rec.CreatedAt)
	return err
}

// UpdateOngoing overwrites the full row.
func (r *Repository) UpdateOngoing(ctx context.Context, rec *OngoingDrive) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE ongoing_drives
		SET name = $2, jd = $3, status = $4, current_round = $5, round_number = $6,
		    total_rounds = $7, gform_link = $8, gform_deadline = $9
		WHERE id = $1
	`, rec.ID, rec.Name, rec.JD, rec.Status, rec.CurrentRound, rec.RoundNumber,
		rec.TotalRounds, rec.GformLink, rec.GformDeadline)
	return err
}

// DeleteOngoing removes a record.
func (r *Repository) DeleteOngoing(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM ongoing_drives WHERE id = $1`, id)
	return err
}

// -------- Completed drives --------

// ListCompleted returns all completed drives by creation time descending.
func (r *Repository) ListCompleted(ctx context.Context) ([]CompletedDrive, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT c.id, c.name, c.jd, c.final_list_name, c.final_list_url, c.selected_list_name,
		       c.selected_list_url, c.selected_count, c.spc_member_name, c.spc_member_phone,
		       c.spc_member_email, c.created_by, c.created_at, a.name, a.email
		FROM completed_drives c
		LEFT JOIN admins a ON a.id = c.created_by
		ORDER BY c.created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []CompletedDrive
	for rows.Next() {
		var rec CompletedDrive
		var adminName, adminEmail *string
		if err := rows.Scan(&rec.ID, &rec.Name, &rec.JD, &rec.FinalListName, &rec.FinalListURL,
			&rec.SelectedListName, &rec.SelectedListURL, &rec.SelectedCount, &rec.SpcMemberName,
			&rec.SpcMemberPhone, &rec.SpcMemberEmail, &rec.CreatedBy, &rec.CreatedAt,
			&adminName, &adminEmail); err != nil {
			return nil, err
		}
		rec.Admin = adminRef(adminName, adminEmail)
		res = append(res, rec)
	}
	return res, rows.Err()
}

// GetCompleted returns a single record by id, or nil when absent.
func (r *Repository) GetCompleted(ctx context.Context, id string) (*CompletedDrive, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, jd, final_list_name, final_list_url, selected_list_name, selected_list_url,
		       selected_count, spc_member_name, spc_member_phone, spc_member_email, created_by, created_at
		FROM completed_drives WHERE id = $1
	`, id)
	var rec CompletedDrive
	if err := row.Scan(&rec.ID, &rec.Name, &rec.JD, &rec.FinalListName, &rec.FinalListURL,
		&rec.SelectedListName, &rec.SelectedListURL, &rec.SelectedCount, &rec.SpcMemberName,
		&rec.SpcMemberPhone, &rec.SpcMemberEmail, &rec.CreatedBy, &rec.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &rec, nil
}

// InsertCompleted writes a new record.
func (r *Repository) InsertCompleted(ctx context.Context, rec *CompletedDrive) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO completed_drives (id, name, jd, final_list_name, final_list_url, selected_list_name,
			selected_list_url, selected_count, spc_member_name, spc_member_phone, spc_member_email, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`, rec.ID, rec.Name, rec.JD, rec.FinalListName, rec.FinalListURL, rec.SelectedListName,
		rec.SelectedListURL, rec.SelectedCount, rec.SpcMemberName, rec.SpcMemberPhone,
		rec.SpcMemberEmail, rec.CreatedBy, rec.CreatedAt)
	return err
}

// UpdateCompleted overwrites the full row.
func (r *Repository) UpdateCompleted(ctx context.Context, rec *CompletedDrive) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE completed_drives
		SET name = $2, jd = $3, final_list_name = $4, final_list_url = $5, selected_list_name = $6,
		    selected_list_url = $7, selected_count = $8, spc_member_name = $9, spc_member_phone = $10,
		    spc_member_email = $11
		WHERE id = $1
	`, rec.ID, rec.Name, rec.JD, rec.FinalListName, rec.FinalListURL, rec.SelectedListName,
		rec.SelectedListURL, rec.SelectedCount, rec.SpcMemberName, rec.SpcMemberPhone, rec.SpcMemberEmail)
	return err
}

// DeleteCompleted removes a record.
func (r *Repository) DeleteCompleted(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM completed_drives WHERE id = $1`, id)
	return err
}

func adminRef(name, email *string) *AdminRef {
	if name == nil && email == nil {
		return nil
	}
	ref := &AdminRef{}
	if name != nil {
		ref.Name = *name
	}
	if email != nil {
		ref.Email = *email
	}
	return ref
}
