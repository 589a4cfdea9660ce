package identity

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Admin is a placement-cell administrator account.
type Admin struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Phone        *string   `json:"phone,omitempty"`
	IsActive     bool      `json:"isActive"`
	CreatedAt    time.Time `json:"createdAt"`
}

// StudentSession is the log row written on every student login. It is not an
// account: no password, no uniqueness, one fresh row per login.
type StudentSession struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Branch      string    `json:"branch"`
	GoogleEmail string    `json:"googleEmail"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Store is the persistence surface the identity service needs.
type Store interface {
	AdminByEmail(ctx context.Context, email string) (*Admin, error)
	InsertStudentSession(ctx context.Context, s *StudentSession) error
}

// ErrInvalidCredentials is returned for unknown email, inactive account and
// password mismatch alike, so responses carry no user-enumeration signal.
var ErrInvalidCredentials = errors.New("invalid email or password")

// dummyHash keeps the bcrypt compare on the unknown-email path so response
// timing does not reveal whether the email exists.
var dummyHash = []byte("$2a$12$R9h/cIPz0gi.URNNX3kh2OPST9/PgBkqquzi.Ss7KIUgO2t0jWMUW")

// Service issues the identity checks behind both login endpoints.
type Service struct {
	store       Store
	emailDomain string
}

// NewService creates an identity service. emailDomain is the suffix for
// synthesized student emails.
func NewService(store Store, emailDomain string) *Service {
	return &Service{store: store, emailDomain: emailDomain}
}

// AuthenticateAdmin verifies admin credentials. It never mutates storage.
func (s *Service) AuthenticateAdmin(ctx context.Context, email, password string) (*Admin, error) {
	admin, err := s.store.AdminByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if admin == nil || !admin.IsActive {
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return admin, nil
}

// StartStudentSession records a new session row for a student login. Every
// call inserts a fresh row, even for repeated identical logins.
func (s *Service) StartStudentSession(ctx context.Context, name, branch, email string) (*StudentSession, error) {
	if email == "" {
		email = SynthesizeEmail(name, s.emailDomain)
	}
	sess := &StudentSession{
		ID:          uuid.NewString(),
		Name:        name,
		Branch:      branch,
		GoogleEmail: email,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.store.InsertStudentSession(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// SynthesizeEmail lower-cases the name, collapses whitespace runs to dots and
// appends the domain.
func SynthesizeEmail(name, domain string) string {
	local := strings.Join(strings.Fields(strings.ToLower(name)), ".")
	return local + "@" + domain
}
