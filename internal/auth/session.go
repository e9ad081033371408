// Package auth resolves who is making a request. Every request carries one
// Session whose Kind is anonymous, demo or authenticated.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Kind selects the session variant.
type Kind string

const (
	KindAnonymous     Kind = "anonymous"
	KindDemo          Kind = "demo"
	KindAuthenticated Kind = "authenticated"
)

var (
	ErrInvalidToken    = errors.New("invalid or expired token")
	ErrUnauthenticated = errors.New("authentication required")
	ErrDemoDisabled    = errors.New("demo sessions are disabled")
)

// Session identifies the caller.
type Session struct {
	Kind      Kind      `json:"kind"`
	UserID    string    `json:"userId,omitempty"`
	Email     string    `json:"email,omitempty"`
	ExpiresAt time.Time `json:"expiresAt,omitzero"`
}

// Anonymous is the session of a caller that presented no credentials.
func Anonymous() Session {
	return Session{Kind: KindAnonymous}
}

// IsAnonymous reports whether the session has no user behind it.
func (s Session) IsAnonymous() bool {
	return s.Kind == KindAnonymous || s.UserID == ""
}

type sessionKey struct{}

// WithSession stores s in ctx.
func WithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

// FromContext returns the session stored in ctx, or an anonymous session.
func FromContext(ctx context.Context) Session {
	if s, ok := ctx.Value(sessionKey{}).(Session); ok {
		return s
	}
	return Anonymous()
}

// Claims is the JWT payload.
type Claims struct {
	Kind  Kind   `json:"kind"`
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

const issuerName = "kaku"

// Issuer signs and verifies HS256 session tokens.
type Issuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewIssuer creates an Issuer. The secret must not be empty.
func NewIssuer(secret string, ttl time.Duration) (*Issuer, error) {
	if secret == "" {
		return nil, fmt.Errorf("jwt secret is required")
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Issuer{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

// Issue signs a token for s. Anonymous sessions cannot be issued.
func (i *Issuer) Issue(s Session) (string, Session, error) {
	if s.Kind == KindAnonymous || s.UserID == "" {
		return "", Session{}, fmt.Errorf("cannot issue a token for an anonymous session")
	}
	now := i.now()
	s.ExpiresAt = now.Add(i.ttl).UTC().Truncate(time.Second)
	claims := Claims{
		Kind:  s.Kind,
		Email: s.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuerName,
			Subject:   s.UserID,
			ExpiresAt: jwt.NewNumericDate(s.ExpiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", Session{}, fmt.Errorf("signing token: %w", err)
	}
	return token, s, nil
}

// Verify parses a token and returns its session.
func (i *Issuer) Verify(token string) (Session, error) {
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuerName),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		return Session{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid || claims.Subject == "" {
		return Session{}, ErrInvalidToken
	}
	if claims.Kind != KindDemo && claims.Kind != KindAuthenticated {
		return Session{}, fmt.Errorf("%w: unknown session kind %q", ErrInvalidToken, claims.Kind)
	}
	s := Session{Kind: claims.Kind, UserID: claims.Subject, Email: claims.Email}
	if claims.ExpiresAt != nil {
		s.ExpiresAt = claims.ExpiresAt.Time.UTC()
	}
	return s, nil
}

// NewDemoSession returns a fresh demo identity.
func NewDemoSession() Session {
	return Session{Kind: KindDemo, UserID: "demo-" + uuid.New().String()}
}

// LocalOwner owns everything stored by the single-user CLI.
const LocalOwner = "local"

// Local is the session of the single user behind the CLI and a server
// started without a JWT secret.
func Local() Session {
	return Session{Kind: KindAuthenticated, UserID: LocalOwner}
}
