package drives

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"placements/internal/audit"
)

// ErrNotFound is returned when an operation targets a nonexistent record id.
var ErrNotFound = errors.New("record not found")

// Service coordinates entity mutations and audit emission. Validation and
// not-found checks run before any mutation, so a failed request never leaves
// a partial write or an orphaned audit entry.
type Service struct {
	store    Store
	recorder *audit.Recorder
}

// NewService creates a service backed by a store. recorder may be nil.
func NewService(store Store, recorder *audit.Recorder) *Service {
	return &Service{store: store, recorder: recorder}
}

// -------- Inputs and patches --------

// UpcomingInput carries create fields for an upcoming company.
type UpcomingInput struct {
	Name           string  `json:"name"`
	TentativeDate  string  `json:"tentativeDate"`
	Info           *string `json:"info"`
	AttachmentName *string `json:"attachmentName"`
	AttachmentURL  *string `json:"attachmentUrl"`
}

// UpcomingPatch carries partial update fields. A nil pointer means the field
// was absent from the request and keeps its stored value; a pointer to the
// zero value applies that zero (clearing optionals, rejecting empty
// mandatories).
type UpcomingPatch struct {
	Name           *string `json:"name"`
	TentativeDate  *string `json:"tentativeDate"`
	Info           *string `json:"info"`
	AttachmentName *string `json:"attachmentName"`
	AttachmentURL  *string `json:"attachmentUrl"`
}

// OngoingInput carries create fields for an ongoing drive.
type OngoingInput struct {
	Name          string  `json:"name"`
	JD            string  `json:"jd"`
	Status        string  `json:"status"`
	CurrentRound  *string `json:"currentRound"`
	RoundNumber   *int    `json:"roundNumber"`
	TotalRounds   *int    `json:"totalRounds"`
	GformLink     *string `json:"gformLink"`
	GformDeadline *string `json:"gformDeadline"`
}

// OngoingPatch carries partial update fields for an ongoing drive.
type OngoingPatch struct {
	Name          *string `json:"name"`
	JD            *string `json:"jd"`
	Status        *string `json:"status"`
	CurrentRound  *string `json:"currentRound"`
	RoundNumber   *int    `json:"roundNumber"`
	TotalRounds   *int    `json:"totalRounds"`
	GformLink     *string `json:"gformLink"`
	GformDeadline *string `json:"gformDeadline"`
}

// CompletedInput carries create fields for a completed drive.
type CompletedInput struct {
	Name             string  `json:"name"`
	JD               string  `json:"jd"`
	FinalListName    *string `json:"finalListName"`
	FinalListURL     *string `json:"finalListUrl"`
	SelectedListName *string `json:"selectedListName"`
	SelectedListURL  *string `json:"selectedListUrl"`
	SelectedCount    *int    `json:"selectedCount"`
	SpcMemberName    string  `json:"spcMemberName"`
	SpcMemberPhone   *string `json:"spcMemberPhone"`
	SpcMemberEmail   *string `json:"spcMemberEmail"`
}

// CompletedPatch carries partial update fields for a completed drive.
type CompletedPatch struct {
	Name             *string `json:"name"`
	JD               *string `json:"jd"`
	FinalListName    *string `json:"finalListName"`
	FinalListURL     *string `json:"finalListUrl"`
	SelectedListName *string `json:"selectedListName"`
	SelectedListURL  *string `json:"selectedListUrl"`
	SelectedCount    *int    `json:"selectedCount"`
	SpcMemberName    *string `json:"spcMemberName"`
	SpcMemberPhone   *string `json:"spcMemberPhone"`
	SpcMemberEmail   *string `json:"spcMemberEmail"`
}

// -------- Upcoming companies --------

// ListUpcoming returns upcoming companies by tentative date ascending.
func (s *Service) ListUpcoming(ctx context.Context) ([]UpcomingCompany, error) {
	return s.store.ListUpcoming(ctx)
}

// CreateUpcoming validates and inserts a new upcoming company.
func (s *Service) CreateUpcoming(ctx context.Context, adminID string, in UpcomingInput) (*UpcomingCompany, error) {
	if strings.TrimSpace(in.Name) == "" || strings.TrimSpace(in.TentativeDate) == "" {
		return nil, validationf("Name and tentative date are required")
	}
	date, err := ParseDate(in.TentativeDate)
	if err != nil {
		return nil, validationf("Invalid tentative date")
	}
	rec := &UpcomingCompany{
		ID:             uuid.NewString(),
		Name:           in.Name,
		TentativeDate:  date,
		Info:           optional(in.Info),
		AttachmentName: optional(in.AttachmentName),
		AttachmentURL:  optional(in.AttachmentURL),
		CreatedBy:      adminID,
		CreatedAt:      time.Now().UTC(),
	}
	if err := s.store.InsertUpcoming(ctx, rec); err != nil {
		return nil, err
	}
	s.recorder.Record(ctx, adminID, audit.ActionCreate, TableUpcoming, rec.ID, nil, rec)
	return rec, nil
}

// UpdateUpcoming merges a partial payload into an existing record.
func (s *Service) UpdateUpcoming(ctx context.Context, adminID, id string, patch UpcomingPatch) (*UpcomingCompany, error) {
	old, err := s.store.GetUpcoming(ctx, id)
	if err != nil {
		return nil, err
	}
	if old == nil {
		return nil, ErrNotFound
	}
	rec := *old
	if patch.Name != nil {
		if strings.TrimSpace(*patch.Name) == "" {
			return nil, validationf("Name cannot be empty")
		}
		rec.Name = *patch.Name
	}
	if patch.TentativeDate != nil {
		if *patch.TentativeDate == "" {
			return nil, validationf("Tentative date cannot be empty")
		}
		date, err := ParseDate(*patch.TentativeDate)
		if err != nil {
			return nil, validationf("Invalid tentative date")
		}
		rec.TentativeDate = date
	}
	if patch.Info != nil {
		rec.Info = optional(patch.Info)
	}
	if patch.AttachmentName != nil {
		rec.AttachmentName = optional(patch.AttachmentName)
	}
	if patch.AttachmentURL != nil {
		rec.AttachmentURL = optional(patch.AttachmentURL)
	}
	if err := s.store.UpdateUpcoming(ctx, &rec); err != nil {
		return nil, err
	}
	s.recorder.Record(ctx, adminID, audit.ActionUpdate, TableUpcoming, id, old, &rec)
	return &rec, nil
}

// DeleteUpcoming removes a record, snapshotting it for the audit trail first.
func (s *Service) DeleteUpcoming(ctx context.Context, adminID, id string) error {
	old, err := s.store.GetUpcoming(ctx, id)
	if err != nil {
		return err
	}
	if old == nil {
		return ErrNotFound
	}
	if err := s.store.DeleteUpcoming(ctx, id); err != nil {
		return err
	}
	s.recorder.Record(ctx, adminID, audit.ActionDelete, TableUpcoming, id, old, nil)
	return nil
}

// -------- Ongoing drives --------

// ListOngoing returns ongoing drives by creation time descending.
func (s *Service) ListOngoing(ctx context.Context) ([]OngoingDrive, error) {
	return s.store.ListOngoing(ctx)
}

// CreateOngoing validates and inserts a new ongoing drive. Fields belonging
// to the inactive status are stored as given; the status tag alone governs
// display semantics.
func (s *Service) CreateOngoing(ctx context.Context, adminID string, in OngoingInput) (*OngoingDrive, error) {
	if strings.TrimSpace(in.Name) == "" || strings.TrimSpace(in.JD) == "" || strings.TrimSpace(in.Status) == "" {
		return nil, validationf("Name, JD, and status are required")
	}
	if in.Status != StatusGform && in.Status != StatusRound {
		return nil, validationf("Status must be %q or %q", StatusGform, StatusRound)
	}
	roundNumber, err := nonNegative("roundNumber", in.RoundNumber)
	if err != nil {
		return nil, err
	}
	totalRounds, err := nonNegative("totalRounds", in.TotalRounds)
	if err != nil {
		return nil, err
	}
	deadline, err := optionalDate(in.GformDeadline)
	if err != nil {
		return nil, validationf("Invalid gform deadline")
	}
	rec := &OngoingDrive{
		ID:            uuid.NewString(),
		Name:          in.Name,
		JD:            in.JD,
		Status:        in.Status,
		CurrentRound:  optional(in.CurrentRound),
		RoundNumber:   roundNumber,
		TotalRounds:   totalRounds,
		GformLink:     optional(in.GformLink),
		GformDeadline: deadline,
		CreatedBy:     adminID,
		CreatedAt:     time.Now().UTC(),
	}
	if err := s.store.InsertOngoing(ctx, rec); err != nil {
		return nil, err
	}
	s.recorder.Record(ctx, adminID, audit.ActionCreate, TableOngoing, rec.ID, nil, rec)
	return rec, nil
}

// UpdateOngoing merges a partial payload into an existing drive. Zero values
// sent explicitly (round counts of 0, empty round label or link) are applied;
// absent fields are left untouched.
func (s *Service) UpdateOngoing(ctx context.Context, adminID, id string, patch OngoingPatch) (*OngoingDrive, error) {
	old, err := s.store.GetOngoing(ctx, id)
	if err != nil {
		return nil, err
	}
	if old == nil {
		return nil, ErrNotFound
	}
	rec := *old
	if patch.Name != nil {
		if strings.TrimSpace(*patch.Name) == "" {
			return nil, validationf("Name cannot be empty")
		}
		rec.Name = *patch.Name
	}
	if patch.JD != nil {
		if strings.TrimSpace(*patch.JD) == "" {
			return nil, validationf("JD cannot be empty")
		}
		rec.JD = *patch.JD
	}
	if patch.Status != nil {
		if *patch.Status != StatusGform && *patch.Status != StatusRound {
			return nil, validationf("Status must be %q or %q", StatusGform, StatusRound)
		}
		rec.Status = *patch.Status
	}
	if patch.RoundNumber != nil {
		n, err := nonNegative("roundNumber", patch.RoundNumber)
		if err != nil {
			return nil, err
		}
		rec.RoundNumber = n
	}
	if patch.TotalRounds != nil {
		n, err := nonNegative("totalRounds", patch.TotalRounds)
		if err != nil {
			return nil, err
		}
		rec.TotalRounds = n
	}
	if patch.CurrentRound != nil {
		rec.CurrentRound = optional(patch.CurrentRound)
	}
	if patch.GformLink != nil {
		rec.GformLink = optional(patch.GformLink)
	}
	if patch.GformDeadline != nil {
		deadline, err := optionalDate(patch.GformDeadline)
		if err != nil {
			return nil, validationf("Invalid gform deadline")
		}
		rec.GformDeadline = deadline
	}
	if err := s.store.UpdateOngoing(ctx, &rec); err != nil {
		return nil, err
	}
	s.recorder.Record(ctx, adminID, audit.ActionUpdate, TableOngoing, id, old, &rec)
	return &rec, nil
}

// DeleteOngoing removes a drive, snapshotting it for the audit trail first.
func (s *Service) DeleteOngoing(ctx context.Context, adminID, id string) error {
	old, err := s.store.GetOngoing(ctx, id)
	if err != nil {
		return err
	}
	if old == nil {
		return ErrNotFound
	}
	if err := s.store.DeleteOngoing(ctx, id); err != nil {
		return err
	}
	s.recorder.Record(ctx, adminID, audit.ActionDelete, TableOngoing, id, old, nil)
	return nil
}

// -------- Completed drives --------

// ListCompleted returns completed drives by creation time descending.
func (s *Service) ListCompleted(ctx context.Context) ([]CompletedDrive, error) {
	return s.store.ListCompleted(ctx)
}

// CreateCompleted validates and inserts a new completed drive.
func (s *Service) CreateCompleted(ctx context.Context, adminID string, in CompletedInput) (*CompletedDrive, error) {
	if strings.TrimSpace(in.Name) == "" || strings.TrimSpace(in.JD) == "" || strings.TrimSpace(in.SpcMemberName) == "" {
		return nil, validationf("Name, JD, and SPC member name are required")
	}
	selectedCount, err := nonNegative("selectedCount", in.SelectedCount)
	if err != nil {
		return nil, err
	}
	rec := &CompletedDrive{
		ID:               uuid.NewString(),
		Name:             in.Name,
		JD:               in.JD,
		FinalListName:    optional(in.FinalListName),
		FinalListURL:     optional(in.FinalListURL),
		SelectedListName: optional(in.SelectedListName),
		SelectedListURL:  optional(in.SelectedListURL),
		SelectedCount:    selectedCount,
		SpcMemberName:    in.SpcMemberName,
		SpcMemberPhone:   optional(in.SpcMemberPhone),
		SpcMemberEmail:   optional(in.SpcMemberEmail),
		CreatedBy:        adminID,
		CreatedAt:        time.Now().UTC(),
	}
	if err := s.store.InsertCompleted(ctx, rec); err != nil {
		return nil, err
	}
	s.recorder.Record(ctx, adminID, audit.ActionCreate, TableCompleted, rec.ID, nil, rec)
	return rec, nil
}

// UpdateCompleted merges a partial payload into an existing drive. An
// explicit selectedCount of 0 is applied, not treated as absent.
func (s *Service) UpdateCompleted(ctx context.Context, adminID, id string, patch CompletedPatch) (*CompletedDrive, error) {
	old, err := s.store.GetCompleted(ctx, id)
	if err != nil {
		return nil, err
	}
	if old == nil {
		return nil, ErrNotFound
	}
	rec := *old
	if patch.Name != nil {
		if strings.TrimSpace(*patch.Name) == "" {
			return nil, validationf("Name cannot be empty")
		}
		rec.Name = *patch.Name
	}
	if patch.JD != nil {
		if strings.TrimSpace(*patch.JD) == "" {
			return nil, validationf("JD cannot be empty")
		}
		rec.JD = *patch.JD
	}
	if patch.SpcMemberName != nil {
		if strings.TrimSpace(*patch.SpcMemberName) == "" {
			return nil, validationf("SPC member name cannot be empty")
		}
		rec.SpcMemberName = *patch.SpcMemberName
	}
	if patch.SelectedCount != nil {
		n, err := nonNegative("selectedCount", patch.SelectedCount)
		if err != nil {
			return nil, err
		}
		rec.SelectedCount = n
	}
	if patch.FinalListName != nil {
		rec.FinalListName = optional(patch.FinalListName)
	}
	if patch.FinalListURL != nil {
		rec.FinalListURL = optional(patch.FinalListURL)
	}
	if patch.SelectedListName != nil {
		rec.SelectedListName = optional(patch.SelectedListName)
	}
	if patch.SelectedListURL != nil {
		rec.SelectedListURL = optional(patch.SelectedListURL)
	}
	if patch.SpcMemberPhone != nil {
		rec.SpcMemberPhone = optional(patch.SpcMemberPhone)
	}
	if patch.SpcMemberEmail != nil {
		rec.SpcMemberEmail = optional(patch.SpcMemberEmail)
	}
	if err := s.store.UpdateCompleted(ctx, &rec); err != nil {
		return nil, err
	}
	s.recorder.Record(ctx, adminID, audit.ActionUpdate, TableCompleted, id, old, &rec)
	return &rec, nil
}

// DeleteCompleted removes a drive, snapshotting it for the audit trail first.
func (s *Service) DeleteCompleted(ctx context.Context, adminID, id string) error {
	old, err := s.store.GetCompleted(ctx, id)
	if err != nil {
		return err
	}
	if old == nil {
		return ErrNotFound
	}
	if err := s.store.DeleteCompleted(ctx, id); err != nil {
		return err
	}
	s.recorder.Record(ctx, adminID, audit.ActionDelete, TableCompleted, id, old, nil)
	return nil
}

// -------- helpers --------

// optional normalizes empty strings to NULL so cleared and never-set fields
// store identically.
func optional(p *string) *string {
	if p == nil || *p == "" {
		return nil
	}
	v := *p
	return &v
}

// optionalDate parses a clearable date field: nil or empty clears to NULL.
func optionalDate(p *string) (*time.Time, error) {
	if p == nil || *p == "" {
		return nil, nil
	}
	t, err := ParseDate(*p)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func nonNegative(field string, p *int) (int, error) {
	if p == nil {
		return 0, nil
	}
	if *p < 0 {
		return 0, validationf("%s cannot be negative", field)
	}
	return *p, nil
}
