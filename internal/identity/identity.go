// package identity resolves the acting user of a request
package identity

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// ErrUnauthenticated is returned when a request carries no usable identity
var ErrUnauthenticated = errors.New("unauthenticated")

// Mode names how a Resolver obtains identities
type Mode string

const (
	ModeFixed   Mode = "fixed"
	ModeSession Mode = "session"
)

// Resolver returns the identity acting in a request. It is called afresh for
// every request; nothing is remembered between calls.
type Resolver interface {
	Resolve(r *http.Request) (string, error)
	Mode() Mode
}

// Fixed resolves every request to the same configured identity
type Fixed struct {
	userID string
}

// NewFixed creates a resolver that always returns userID
func NewFixed(userID string) (*Fixed, error) {
	if userID == "" {
		return nil, fmt.Errorf("fixed identity must not be empty")
	}
	return &Fixed{userID: userID}, nil
}

// Resolve implements Resolver
func (f *Fixed) Resolve(r *http.Request) (string, error) {
	return f.userID, nil
}

// Mode implements Resolver
func (f *Fixed) Mode() Mode { return ModeFixed }

// SessionConfig configures token verification for Session
type SessionConfig struct {
	Secret     []byte
	Audience   string
	CookieName string
}

// Session resolves identities from access tokens issued by the hosted auth
// provider. The token is taken from the session cookie, or else from an
// Authorization bearer header.
type Session struct {
	cfg    SessionConfig
	parser *jwt.Parser
}

// NewSession creates a session resolver
func NewSession(cfg SessionConfig) (*Session, error) {
	if len(cfg.Secret) == 0 {
		return nil, fmt.Errorf("session secret must not be empty")
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if cfg.Audience != "" {
		opts = append(opts, jwt.WithAudience(cfg.Audience))
	}

	return &Session{cfg: cfg, parser: jwt.NewParser(opts...)}, nil
}

// Resolve implements Resolver
func (s *Session) Resolve(r *http.Request) (string, error) {
	raw := s.token(r)
	if raw == "" {
		return "", ErrUnauthenticated
	}

	var claims jwt.RegisteredClaims
	_, err := s.parser.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
		return s.cfg.Secret, nil
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	}
	if claims.Subject == "" {
		return "", fmt.Errorf("%w: token has no subject", ErrUnauthenticated)
	}

	return claims.Subject, nil
}

// Mode implements Resolver
func (s *Session) Mode() Mode { return ModeSession }

func (s *Session) token(r *http.Request) string {
	if s.cfg.CookieName != "" {
		if c, err := r.Cookie(s.cfg.CookieName); err == nil && c.Value != "" {
			return c.Value
		}
	}

	header := r.Header.Get("Authorization")
	if scheme, value, ok := strings.Cut(header, " "); ok && strings.EqualFold(scheme, "bearer") {
		return strings.TrimSpace(value)
	}

	return ""
}
