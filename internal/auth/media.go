package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// MediaTokenTTL is how long a minted media-room token remains valid.
const MediaTokenTTL = 2 * time.Hour

// MediaClaims carries the room-access grant a media-room token conveys.
// The server never connects to the media plane itself; it only signs
// these tokens for a client to present to it.
type MediaClaims struct {
	Room         string `json:"room"`
	Identity     string `json:"identity"`
	CanPublish   bool   `json:"canPublish"`
	CanSubscribe bool   `json:"canSubscribe"`
	jwt.RegisteredClaims
}

// MediaMinter signs media-room tokens with a secret shared with the media
// service, separate from the session-signing secret.
type MediaMinter struct {
	secret []byte
}

func NewMediaMinter(secret string) *MediaMinter {
	return &MediaMinter{secret: []byte(secret)}
}

// Mint issues a media-room token for gameID/userID, valid for
// MediaTokenTTL from now.
func (m *MediaMinter) Mint(gameID, userID string, canPublish, canSubscribe bool) (string, error) {
	now := time.Now()
	claims := MediaClaims{
		Room:         fmt.Sprintf("game-%s", gameID),
		Identity:     userID,
		CanPublish:   canPublish,
		CanSubscribe: canSubscribe,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(MediaTokenTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}
