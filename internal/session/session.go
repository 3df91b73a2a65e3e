package session

import (
	"net/http"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"go-course-client/internal/pkg/apperror"
)

// TokenSource supplies the bearer credential attached to every mutating
// request. The auth subsystem that mints tokens is outside this module;
// the source only reads whatever the session currently holds.
type TokenSource interface {
	Token() (string, error)
}

var (
	ErrNoToken = apperror.New(
		apperror.CodeUnauthenticated,
		"No session credential available",
		http.StatusUnauthorized,
	)

	ErrTokenExpired = apperror.New(
		apperror.CodeUnauthenticated,
		"Session credential has expired",
		http.StatusUnauthorized,
	)
)

// StaticTokenSource returns a fixed token, typically read from config.
type StaticTokenSource struct {
	token string
}

func NewStaticTokenSource(token string) *StaticTokenSource {
	return &StaticTokenSource{token: token}
}

func (s *StaticTokenSource) Token() (string, error) {
	if s.token == "" {
		return "", ErrNoToken
	}
	return s.token, nil
}

// BearerSource holds a JWT and refuses to hand it out once its exp claim
// has passed. The signature is NOT verified here; only the server can do
// that. The client-side check just avoids issuing requests that are
// guaranteed to come back 401.
type BearerSource struct {
	mu  sync.RWMutex
	raw string
	now func() time.Time
}

func NewBearerSource(raw string) *BearerSource {
	return &BearerSource{raw: raw, now: time.Now}
}

// Set replaces the stored token, e.g. after the auth subsystem refreshes
// the session.
func (s *BearerSource) Set(raw string) {
	s.mu.Lock()
	s.raw = raw
	s.mu.Unlock()
}

func (s *BearerSource) Token() (string, error) {
	s.mu.RLock()
	raw := s.raw
	s.mu.RUnlock()

	if raw == "" {
		return "", ErrNoToken
	}

	claims := jwt.MapClaims{}
	_, _, err := jwt.NewParser().ParseUnverified(raw, claims)
	if err != nil {
		// Opaque (non-JWT) tokens pass through; the server decides.
		return raw, nil
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return raw, nil
	}
	if s.now().After(exp.Time) {
		return "", ErrTokenExpired
	}
	return raw, nil
}
