package drives

import (
	"fmt"
	"time"
)

// Audited table names for the three entity stores.
const (
	TableUpcoming  = "upcoming_companies"
	TableOngoing   = "ongoing_drives"
	TableCompleted = "completed_drives"
)

// Ongoing drive status tags. The record can hold both gform and round fields
// at once; the status tag alone governs which set is meaningful.
const (
	StatusGform = "gform"
	StatusRound = "round"
)

// AdminRef is the creator attribution joined onto listed records.
type AdminRef struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// UpcomingCompany is a company expected to visit, not yet recruiting.
type UpcomingCompany struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	TentativeDate  time.Time `json:"tentativeDate"`
	Info           *string   `json:"info"`
	AttachmentName *string   `json:"attachmentName"`
	AttachmentURL  *string   `json:"attachmentUrl"`
	CreatedBy      string    `json:"createdBy"`
	CreatedAt      time.Time `json:"createdAt"`
	Admin          *AdminRef `json:"admin,omitempty"`
}

// OngoingDrive is a recruitment drive in progress.
type OngoingDrive struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	JD            string     `json:"jd"`
	Status        string     `json:"status"`
	CurrentRound  *string    `json:"currentRound"`
	RoundNumber   int        `json:"roundNumber"`
	TotalRounds   int        `json:"totalRounds"`
	GformLink     *string    `json:"gformLink"`
	GformDeadline *time.Time `json:"gformDeadline"`
	CreatedBy     string     `json:"createdBy"`
	CreatedAt     time.Time  `json:"createdAt"`
	Admin         *AdminRef  `json:"admin,omitempty"`
}

// CompletedDrive is a finished drive with its outcome.
type CompletedDrive struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	JD               string    `json:"jd"`
	FinalListName    *string   `json:"finalListName"`
	FinalListURL     *string   `json:"finalListUrl"`
	SelectedListName *string   `json:"selectedListName"`
	SelectedListURL  *string   `json:"selectedListUrl"`
	SelectedCount    int       `json:"selectedCount"`
	SpcMemberName    string    `json:"spcMemberName"`
	SpcMemberPhone   *string   `json:"spcMemberPhone"`
	SpcMemberEmail   *string   `json:"spcMemberEmail"`
	CreatedBy        string    `json:"createdBy"`
	CreatedAt        time.Time `json:"createdAt"`
	Admin            *AdminRef `json:"admin,omitempty"`
}

// ValidationError marks missing or malformed client input.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func validationf(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// dateLayouts accepted for date-like input fields.
var dateLayouts = []string{time.RFC3339, "2006-01-02"}

// ParseDate parses a client-supplied date string.
func ParseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable date %q", s)
}
