// Package auth validates bearer session tokens on socket handshake and
// mints media-room tokens, both as HMAC-signed JWTs.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken = errors.New("invalid or expired session token")
)

// SessionClaims carries (userId, exp) plus the standard registered claims.
type SessionClaims struct {
	UserID uuid.UUID `json:"userId"`
	jwt.RegisteredClaims
}

// SessionMinter signs and validates session bearer tokens with a single
// secret, independent of the media-token secret.
type SessionMinter struct {
	secret []byte
	ttl    time.Duration
}

func NewSessionMinter(secret string, ttl time.Duration) *SessionMinter {
	return &SessionMinter{secret: []byte(secret), ttl: ttl}
}

// Mint issues a session token for userID, expiring after the configured
// TTL (default 7 days).
func (m *SessionMinter) Mint(userID uuid.UUID) (string, error) {
	now := time.Now()
	claims := SessionClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// Validate parses and verifies tok, returning the embedded userId. It
// rejects an invalid signature, an expired token, or one whose signing
// method is not HMAC.
func (m *SessionMinter) Validate(tok string) (uuid.UUID, error) {
	claims := &SessionClaims{}
	parsed, err := jwt.ParseWithClaims(tok, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil || !parsed.Valid {
		return uuid.Nil, ErrInvalidToken
	}
	return claims.UserID, nil
}
