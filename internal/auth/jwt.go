package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Principal roles carried in session tokens.
const (
	RoleAdmin   = "admin"
	RoleStudent = "student"
)

// CookieName is the session cookie mirroring the bearer token.
const CookieName = "token"

// Claims represents the JWT payload for both principal kinds. The token is
// the source of truth for the request's duration; nothing is re-fetched from
// the store on validation.
type Claims struct {
	Name   string `json:"name"`
	Email  string `json:"email,omitempty"`
	Branch string `json:"branch,omitempty"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// NewAdminClaims builds claims for an authenticated admin.
func NewAdminClaims(id, name, email string) Claims {
	return Claims{
		Name:  name,
		Email: email,
		Role:  RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject: id,
		},
	}
}

// NewStudentClaims builds claims for a student session.
func NewStudentClaims(id, name, branch string) Claims {
	return Claims{
		Name:   name,
		Branch: branch,
		Role:   RoleStudent,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject: id,
		},
	}
}

// Issue signs claims with HS256 and the given validity window.
func Issue(claims Claims, issuer, key string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims.Issuer = issuer
	claims.IssuedAt = jwt.NewNumericDate(now)
	claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(key))
}

// Parse validates a token and returns claims.
func Parse(tokenStr, key, issuer string) (Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(key), nil
	})
	if err != nil {
		return Claims{}, err
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return Claims{}, errors.New("invalid token")
	}
	if issuer != "" && claims.Issuer != issuer {
		return Claims{}, errors.New("issuer mismatch")
	}
	return *claims, nil
}
