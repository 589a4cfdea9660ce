package drives

import (
	"context"
	"encoding/json"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"placements/internal/audit"
)

// fakeStore is an in-memory Store mirroring the repository's ordering
// contracts.
type fakeStore struct {
	upcoming  []UpcomingCompany
	ongoing   []OngoingDrive
	completed []CompletedDrive
}

func (f *fakeStore) ListUpcoming(context.Context) ([]UpcomingCompany, error) {
	out := append([]UpcomingCompany(nil), f.upcoming...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].TentativeDate.Before(out[j].TentativeDate) })
	return out, nil
}

func (f *fakeStore) GetUpcoming(_ context.Context, id string) (*UpcomingCompany, error) {
	for i := range f.upcoming {
		if f.upcoming[i].ID == id {
			rec := f.upcoming[i]
			return &rec, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) InsertUpcoming(_ context.Context, rec *UpcomingCompany) error {
	f.upcoming = append(f.upcoming, *rec)
	return nil
}

func (f *fakeStore) UpdateUpcoming(_ context.Context, rec *UpcomingCompany) error {
	for i := range f.upcoming {
		if f.upcoming[i].ID == rec.ID {
			f.upcoming[i] = *rec
		}
	}
	return nil
}

func (f *fakeStore) DeleteUpcoming(_ context.Context, id string) error {
	for i := range f.upcoming {
		if f.upcoming[i].ID == id {
			f.upcoming = append(f.upcoming[:i], f.upcoming[i+1:]...)
			return nil
		}
	}
	return nil
}

func (f *fakeStore) ListOngoing(context.Context) ([]OngoingDrive, error) {
	out := append([]OngoingDrive(nil), f.ongoing...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeStore) GetOngoing(_ context.Context, id string) (*OngoingDrive, error) {
	for i := range f.ongoing {
		if f.ongoing[i].ID == id {
			rec := f.ongoing[i]
			return &rec, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) InsertOngoing(_ context.Context, rec *OngoingDrive) error {
	f.ongoing = append(f.ongoing, *rec)
	return nil
}

func (f *fakeStore) UpdateOngoing(_ context.Context, rec *OngoingDrive) error {
	for i := range f.ongoing {
		if f.ongoing[i].ID == rec.ID {
			f.ongoing[i] = *rec
		}
	}
	return nil
}

func (f *fakeStore) DeleteOngoing(_ context.Context, id string) error {
	for i := range f.ongoing {
		if f.ongoing[i].ID == id {
			f.ongoing = append(f.ongoing[:i], f.ongoing[i+1:]...)
			return nil
		}
	}
	return nil
}

func (f *fakeStore) ListCompleted(context.Context) ([]CompletedDrive, error) {
	out := append([]CompletedDrive(nil), f.completed...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeStore) GetCompleted(_ context.Context, id string) (*CompletedDrive, error) {
	for i := range f.completed {
		if f.completed[i].ID == id {
			rec := f.completed[i]
			return &rec, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) InsertCompleted(_ context.Context, rec *CompletedDrive) error {
	f.completed = append(f.completed, *rec)
	return nil
}

func (f *fakeStore) UpdateCompleted(_ context.Context, rec *CompletedDrive) error {
	for i := range f.completed {
		if f.completed[i].ID == rec.ID {
			f.completed[i] = *rec
		}
	}
	return nil
}

func (f *fakeStore) DeleteCompleted(_ context.Context, id string) error {
	for i := range f.completed {
		if f.completed[i].ID == id {
			f.completed = append(f.completed[:i], f.completed[i+1:]...)
			return nil
		}
	}
	return nil
}

// fakeAuditStore records entries in memory.
type fakeAuditStore struct {
	entries []audit.Entry
}

func (f *fakeAuditStore) Insert(_ context.Context, e *audit.Entry) error {
	f.entries = append(f.entries, *e)
	return nil
}

func (f *fakeAuditStore) List(_ context.Context, limit int) ([]audit.Entry, error) {
	out := append([]audit.Entry(nil), f.entries...)
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func newTestService() (*Service, *fakeStore, *fakeAuditStore) {
	store := &fakeStore{}
	audits := &fakeAuditStore{}
	return NewService(store, audit.NewRecorder(audits, nil)), store, audits
}

func strptr(s string) *string { return &s }
func intptr(i int) *int       { return &i }

// -------- Upcoming --------

func TestCreateUpcomingValidation(t *testing.T) {
	svc, store, audits := newTestService()
	ctx := context.Background()

	cases := []struct {
		name string
		in   UpcomingInput
	}{
		{"missing name", UpcomingInput{TentativeDate: "2026-03-15"}},
		{"missing date", UpcomingInput{Name: "Google India"}},
		{"unparseable date", UpcomingInput{Name: "Google India", TentativeDate: "soon"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreateUpcoming(ctx, "admin-1", tc.in)
			var verr *ValidationError
			assert.ErrorAs(t, err, &verr)
		})
	}

	// failed creates leave no record and no audit entry
	assert.Empty(t, store.upcoming)
	assert.Empty(t, audits.entries)
}

func TestCreateUpcomingWritesRecordAndAudit(t *testing.T) {
	svc, store, audits := newTestService()

	rec, err := svc.CreateUpcoming(context.Background(), "admin-1", UpcomingInput{
		Name:          "Google India",
		TentativeDate: "2026-03-15",
		Info:          strptr("CS/IT, CGPA >= 7.5"),
	})
	require.NoError(t, err)
	require.Len(t, store.upcoming, 1)

	assert.Equal(t, "Google India", rec.Name)
	assert.Equal(t, "2026-03-15", rec.TentativeDate.Format("2006-01-02"))
	assert.Equal(t, "admin-1", rec.CreatedBy)

	require.Len(t, audits.entries, 1)
	e := audits.entries[0]
	assert.Equal(t, audit.ActionCreate, e.Action)
	assert.Equal(t, TableUpcoming, e.TableName)
	assert.Equal(t, rec.ID, e.RecordID)
	assert.Nil(t, e.OldData)

	want, _ := json.Marshal(rec)
	assert.JSONEq(t, string(want), string(e.NewData))
}

func TestListUpcomingOrdersByTentativeDate(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	_, err := svc.CreateUpcoming(ctx, "admin-1", UpcomingInput{Name: "Infosys", TentativeDate: "2026-03-22"})
	require.NoError(t, err)
	_, err = svc.CreateUpcoming(ctx, "admin-1", UpcomingInput{Name: "Google India", TentativeDate: "2026-03-15"})
	require.NoError(t, err)

	listed, err := svc.ListUpcoming(ctx)
	require.NoError(t, err)
	require.Len(t, listed, 2)
	assert.Equal(t, "Google India", listed[0].Name)
	assert.Equal(t, "Infosys", listed[1].Name)
}

func TestUpdateUpcomingPartialMerge(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	rec, err := svc.CreateUpcoming(ctx, "admin-1", UpcomingInput{
		Name:           "Google India",
		TentativeDate:  "2026-03-15",
		Info:           strptr("CS/IT only"),
		AttachmentName: strptr("eligibility.pdf"),
		AttachmentURL:  strptr("https://example.com/eligibility.pdf"),
	})
	require.NoError(t, err)

	// a payload that only carries the name leaves everything else untouched
	updated, err := svc.UpdateUpcoming(ctx, "admin-1", rec.ID, UpcomingPatch{Name: strptr("Google")})
	require.NoError(t, err)
	assert.Equal(t, "Google", updated.Name)
	require.NotNil(t, updated.Info)
	assert.Equal(t, "CS/IT only", *updated.Info)
	require.NotNil(t, updated.AttachmentURL)

	// an explicitly empty optional clears it
	updated, err = svc.UpdateUpcoming(ctx, "admin-1", rec.ID, UpcomingPatch{
		AttachmentName: strptr(""),
		AttachmentURL:  strptr(""),
	})
	require.NoError(t, err)
	assert.Nil(t, updated.AttachmentName)
	assert.Nil(t, updated.AttachmentURL)
	require.NotNil(t, updated.Info)
}

func TestUpdateUpcomingRejectsEmptyMandatory(t *testing.T) {
	svc, _, audits := newTestService()
	ctx := context.Background()

	rec, err := svc.CreateUpcoming(ctx, "admin-1", UpcomingInput{Name: "Google India", TentativeDate: "2026-03-15"})
	require.NoError(t, err)
	created := len(audits.entries)

	_, err = svc.UpdateUpcoming(ctx, "admin-1", rec.ID, UpcomingPatch{Name: strptr("  ")})
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)

	_, err = svc.UpdateUpcoming(ctx, "admin-1", rec.ID, UpcomingPatch{TentativeDate: strptr("")})
	assert.ErrorAs(t, err, &verr)

	// rejected updates emit no audit entries
	assert.Len(t, audits.entries, created)
}

func TestUpdateUpcomingNotFound(t *testing.T) {
	svc, _, audits := newTestService()

	_, err := svc.UpdateUpcoming(context.Background(), "admin-1", "missing", UpcomingPatch{Name: strptr("X")})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Empty(t, audits.entries)
}

func TestDeleteUpcomingAuditsOldSnapshot(t *testing.T) {
	svc, store, audits := newTestService()
	ctx := context.Background()

	rec, err := svc.CreateUpcoming(ctx, "admin-1", UpcomingInput{Name: "Google India", TentativeDate: "2026-03-15"})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteUpcoming(ctx, "admin-2", rec.ID))
	assert.Empty(t, store.upcoming)

	require.Len(t, audits.entries, 2)
	e := audits.entries[1]
	assert.Equal(t, audit.ActionDelete, e.Action)
	assert.Equal(t, "admin-2", e.AdminID)
	assert.Equal(t, rec.ID, e.RecordID)
	assert.Nil(t, e.NewData)

	want, _ := json.Marshal(rec)
	assert.JSONEq(t, string(want), string(e.OldData))
}

func TestDeleteUpcomingNotFound(t *testing.T) {
	svc, _, audits := newTestService()

	err := svc.DeleteUpcoming(context.Background(), "admin-1", "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Empty(t, audits.entries)
}

// -------- Ongoing --------

func TestCreateOngoingValidation(t *testing.T) {
	svc, _, audits := newTestService()
	ctx := context.Background()

	cases := []struct {
		name string
		in   OngoingInput
	}{
		{"missing jd", OngoingInput{Name: "TCS", Status: StatusGform}},
		{"missing status", OngoingInput{Name: "TCS", JD: "role"}},
		{"bad status", OngoingInput{Name: "TCS", JD: "role", Status: "paused"}},
		{"negative round", OngoingInput{Name: "TCS", JD: "role", Status: StatusRound, RoundNumber: intptr(-1)}},
		{"bad deadline", OngoingInput{Name: "TCS", JD: "role", Status: StatusGform, GformDeadline: strptr("whenever")}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreateOngoing(ctx, "admin-1", tc.in)
			var verr *ValidationError
			assert.ErrorAs(t, err, &verr)
		})
	}
	assert.Empty(t, audits.entries)
}

func TestCreateOngoingGformDefaultsRounds(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	rec, err := svc.CreateOngoing(ctx, "admin-1", OngoingInput{
		Name:      "TCS Digital",
		JD:        "Role: Digital Engineer",
		Status:    StatusGform,
		GformLink: strptr("https://forms.google.com/example-tcs"),
	})
	require.NoError(t, err)

	got, err := svc.store.GetOngoing(ctx, rec.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, StatusGform, got.Status)
	require.NotNil(t, got.GformLink)
	assert.Equal(t, "https://forms.google.com/example-tcs", *got.GformLink)
	assert.Equal(t, 0, got.RoundNumber)
	assert.Equal(t, 0, got.TotalRounds)
}

func TestUpdateOngoingExplicitZeroApplied(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	rec, err := svc.CreateOngoing(ctx, "admin-1", OngoingInput{
		Name:        "Microsoft",
		JD:          "SDE-1",
		Status:      StatusRound,
		RoundNumber: intptr(2),
		TotalRounds: intptr(4),
	})
	require.NoError(t, err)

	// omitting round fields leaves them untouched
	updated, err := svc.UpdateOngoing(ctx, "admin-1", rec.ID, OngoingPatch{Name: strptr("Microsoft IDC")})
	require.NoError(t, err)
	assert.Equal(t, 2, updated.RoundNumber)
	assert.Equal(t, 4, updated.TotalRounds)

	// explicit zeros are applied, not treated as absent
	updated, err = svc.UpdateOngoing(ctx, "admin-1", rec.ID, OngoingPatch{
		RoundNumber: intptr(0),
		TotalRounds: intptr(0),
	})
	require.NoError(t, err)
	assert.Equal(t, 0, updated.RoundNumber)
	assert.Equal(t, 0, updated.TotalRounds)
}

func TestUpdateOngoingClearsDeadline(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	rec, err := svc.CreateOngoing(ctx, "admin-1", OngoingInput{
		Name:          "TCS Digital",
		JD:            "Role: Digital Engineer",
		Status:        StatusGform,
		GformDeadline: strptr("2026-04-01"),
	})
	require.NoError(t, err)
	require.NotNil(t, rec.GformDeadline)

	updated, err := svc.UpdateOngoing(ctx, "admin-1", rec.ID, OngoingPatch{GformDeadline: strptr("")})
	require.NoError(t, err)
	assert.Nil(t, updated.GformDeadline)
}

func TestUpdateOngoingStatusSwitchKeepsInactiveFields(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	rec, err := svc.CreateOngoing(ctx, "admin-1", OngoingInput{
		Name:      "TCS Digital",
		JD:        "Role: Digital Engineer",
		Status:    StatusGform,
		GformLink: strptr("https://forms.google.com/example-tcs"),
	})
	require.NoError(t, err)

	// switching to round leaves the gform fields in storage; the status tag
	// alone decides what a consumer displays
	updated, err := svc.UpdateOngoing(ctx, "admin-1", rec.ID, OngoingPatch{
		Status:       strptr(StatusRound),
		CurrentRound: strptr("Online Assessment"),
		RoundNumber:  intptr(1),
		TotalRounds:  intptr(3),
	})
	require.NoError(t, err)
	assert.Equal(t, StatusRound, updated.Status)
	require.NotNil(t, updated.GformLink)
	assert.Equal(t, "https://forms.google.com/example-tcs", *updated.GformLink)
}

// -------- Completed --------

func TestCreateCompletedDefaultsSelectedCount(t *testing.T) {
	svc, _, _ := newTestService()

	rec, err := svc.CreateCompleted(context.Background(), "admin-1", CompletedInput{
		Name:          "Wipro",
		JD:            "Project Engineer",
		SpcMemberName: "Ahmed Khan",
	})
	require.NoError(t, err)
	assert.Equal(t, 0, rec.SelectedCount)
}

func TestCreateCompletedValidation(t *testing.T) {
	svc, _, audits := newTestService()

	_, err := svc.CreateCompleted(context.Background(), "admin-1", CompletedInput{Name: "Wipro", JD: "PE"})
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
	assert.Empty(t, audits.entries)
}

func TestUpdateCompletedSelectedCountZero(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	rec, err := svc.CreateCompleted(ctx, "admin-1", CompletedInput{
		Name:          "Wipro",
		JD:            "Project Engineer",
		SpcMemberName: "Ahmed Khan",
		SelectedCount: intptr(12),
	})
	require.NoError(t, err)

	updated, err := svc.UpdateCompleted(ctx, "admin-1", rec.ID, CompletedPatch{SelectedCount: intptr(0)})
	require.NoError(t, err)
	assert.Equal(t, 0, updated.SelectedCount)

	// and an omitted count stays put
	updated, err = svc.UpdateCompleted(ctx, "admin-1", rec.ID, CompletedPatch{Name: strptr("Wipro Ltd")})
	require.NoError(t, err)
	assert.Equal(t, 0, updated.SelectedCount)
}

func TestEveryMutationEmitsExactlyOneAuditEntry(t *testing.T) {
	svc, _, audits := newTestService()
	ctx := context.Background()

	rec, err := svc.CreateOngoing(ctx, "admin-1", OngoingInput{Name: "TCS", JD: "role", Status: StatusGform})
	require.NoError(t, err)
	_, err = svc.UpdateOngoing(ctx, "admin-1", rec.ID, OngoingPatch{JD: strptr("new role")})
	require.NoError(t, err)
	require.NoError(t, svc.DeleteOngoing(ctx, "admin-1", rec.ID))

	require.Len(t, audits.entries, 3)
	assert.Equal(t, audit.ActionCreate, audits.entries[0].Action)
	assert.Equal(t, audit.ActionUpdate, audits.entries[1].Action)
	assert.Equal(t, audit.ActionDelete, audits.entries[2].Action)
	for _, e := range audits.entries {
		assert.Equal(t, TableOngoing, e.TableName)
		assert.Equal(t, rec.ID, e.RecordID)
	}

	// update snapshot pair brackets the change
	var oldRec, newRec OngoingDrive
	require.NoError(t, json.Unmarshal(audits.entries[1].OldData, &oldRec))
	require.NoError(t, json.Unmarshal(audits.entries[1].NewData, &newRec))
	assert.Equal(t, "role", oldRec.JD)
	assert.Equal(t, "new role", newRec.JD)
}
