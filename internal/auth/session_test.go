package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionMintAndValidateRoundTrip(t *testing.T) {
	m := NewSessionMinter("test-secret", 7*24*time.Hour)
	userID := uuid.New()

	tok, err := m.Mint(userID)
	require.NoError(t, err)

	got, err := m.Validate(tok)
	require.NoError(t, err)
	assert.Equal(t, userID, got)
}

func TestSessionValidateRejectsExpired(t *testing.T) {
	m := NewSessionMinter("test-secret", -1*time.Hour)
	tok, err := m.Mint(uuid.New())
	require.NoError(t, err)

	_, err = m.Validate(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestSessionValidateRejectsWrongSecret(t *testing.T) {
	a := NewSessionMinter("secret-a", time.Hour)
	b := NewSessionMinter("secret-b", time.Hour)

	tok, err := a.Mint(uuid.New())
	require.NoError(t, err)

	_, err = b.Validate(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	require.NoError(t, err)
	assert.True(t, CheckPassword(hash, "correct horse battery staple"))
	assert.False(t, CheckPassword(hash, "wrong password"))
}

func TestMediaMinterIssuesRoomToken(t *testing.T) {
	m := NewMediaMinter("media-secret")
	tok, err := m.Mint("game-123", "user-1", true, true)
	require.NoError(t, err)
	assert.NotEmpty(t, tok)
}
