// Package token issues and verifies the stateless session tokens. A token is
// a signed HS256 JWT carrying the account identity; there is no server-side
// session table, so a token cannot be revoked before its natural expiry.
package token

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const issuer = "persona-fest"

// Expiry classes. Remember-me logins get the long class.
const (
	DefaultTTL  = 24 * time.Hour
	RememberTTL = 30 * 24 * time.Hour
)

var (
	ErrMissingToken = errors.New("missing token")
	ErrInvalidToken = errors.New("invalid or expired token")
)

// Claims are the verified contents of a session token. Subject holds the
// account id.
type Claims struct {
	Email   string `json:"email"`
	IsAdmin bool   `json:"isAdmin"`
	jwt.RegisteredClaims
}

// AccountID returns the account id the token was issued for.
func (c *Claims) AccountID() string {
	return c.Subject
}

type Manager struct {
	secret []byte

	// TimeFunc supplies the current time for issuing and verifying.
	// Overridable in tests; defaults to time.Now.
	TimeFunc func() time.Time
}

func NewManager(secret string) *Manager {
	return &Manager{
		secret:   []byte(secret),
		TimeFunc: time.Now,
	}
}

// Issue signs a token for the account. remember selects the 30-day expiry
// class instead of the 24-hour default.
func (m *Manager) Issue(accountID, email string, isAdmin, remember bool) (string, error) {
	ttl := DefaultTTL
	if remember {
		ttl = RememberTTL
	}

	now := m.TimeFunc()
	claims := &Claims{
		Email:   email,
		IsAdmin: isAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   accountID,
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// Verify parses a token string and returns its claims. Any defect — absence,
// malformed payload, bad signature, wrong issuer, expiry — comes back as
// ErrMissingToken or ErrInvalidToken.
func (m *Manager) Verify(tokenString string) (*Claims, error) {
	if strings.TrimSpace(tokenString) == "" {
		return nil, ErrMissingToken
	}

	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return m.secret, nil
	}, jwt.WithIssuer(issuer), jwt.WithTimeFunc(m.TimeFunc))
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// FromHeader extracts the bearer token from an Authorization header value.
func FromHeader(authHeader string) (string, error) {
	parts := strings.Fields(authHeader)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", ErrMissingToken
	}
	return strings.TrimSpace(parts[1]), nil
}
