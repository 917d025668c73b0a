package web

import (
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	uuid "github.com/nu7hatch/gouuid"
	"github.com/pkg/errors"
)

const sessionIssuer = "medchain"

// ErrInvalidSession : token malformed, expired, revoked or signed with another key
var ErrInvalidSession = errors.New("invalid or expired session")

// Claims : session token payload, subject is the username and ID the session id
type Claims struct {
	jwt.RegisteredClaims
}

// Username : Returns the logged in user the session belongs to
func (c *Claims) Username() string {
	return c.Subject
}

// Sessions : Issues HS256 session tokens and tracks logouts
type Sessions struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time

	mu      sync.Mutex
	revoked map[string]time.Time // jti -> expiry
}

// NewSessions : Returns a session issuer signing with secret, tokens living for ttl
func NewSessions(secret []byte, ttl time.Duration) *Sessions {
	return &Sessions{
		secret:  secret,
		ttl:     ttl,
		now:     time.Now,
		revoked: make(map[string]time.Time),
	}
}

// Issue : Signs a new session token for username
func (s *Sessions) Issue(username string) (string, error) {
	id, err := uuid.NewV4()
	if err != nil {
		return "", errors.Wrap(err, "unable to generate session id")
	}

	now := s.now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        id.String(),
			Subject:   username,
			Issuer:    sessionIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", errors.Wrap(err, "unable to sign session token")
	}
	return token, nil
}

// Verify : Parses a token and rejects it if it is malformed, expired or
// revoked
func (s *Sessions) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(sessionIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !token.Valid {
		return nil, ErrInvalidSession
	}

	s.mu.Lock()
	_, revoked := s.revoked[claims.ID]
	s.mu.Unlock()
	if revoked || claims.Subject == "" {
		return nil, ErrInvalidSession
	}
	return claims, nil
}

// Revoke : Ends a session. Entries are kept until the token would have
// expired anyway.
func (s *Sessions) Revoke(claims *Claims) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for id, expiry := range s.revoked {
		if now.After(expiry) {
			delete(s.revoked, id)
		}
	}
	if claims.ExpiresAt != nil {
		s.revoked[claims.ID] = claims.ExpiresAt.Time
	}
}
