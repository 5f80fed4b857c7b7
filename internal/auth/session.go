package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jonboulle/clockwork"
)

// CookieName carries the session token in browsers.
const CookieName = "ecotrack_session"

const issuer = "ecotrack"

// ErrInvalidSession is returned for missing, malformed, forged or expired tokens.
var ErrInvalidSession = errors.New("invalid session")

// Claims identify the signed-in user.
type Claims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
}

// Sessions issues and verifies HS256 session tokens.
type Sessions struct {
	secret []byte
	ttl    time.Duration
	clock  clockwork.Clock
}

// NewSessions creates a token issuer. The secret must not be empty.
func NewSessions(secret string, ttl time.Duration, clock clockwork.Clock) (*Sessions, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, fmt.Errorf("session secret is required")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("session ttl must be positive")
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Sessions{secret: []byte(secret), ttl: ttl, clock: clock}, nil
}

// TTL is how long issued tokens stay valid.
func (s *Sessions) TTL() time.Duration { return s.ttl }

// Issue signs a token for userID.
func (s *Sessions) Issue(userID, email string) (string, error) {
	now := s.clock.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
		Email: email,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign session: %w", err)
	}
	return signed, nil
}

// Verify parses token and returns its claims.
func (s *Sessions) Verify(token string) (Claims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Claims{}, ErrInvalidSession
	}

	var claims Claims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.clock.Now),
	)
	if err != nil {
		return Claims{}, fmt.Errorf("%w: %v", ErrInvalidSession, err)
	}
	if claims.Subject == "" {
		return Claims{}, ErrInvalidSession
	}
	return claims, nil
}
