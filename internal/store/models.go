// Package store is the Postgres-backed persistence layer for the tables:
// users, friendships, games, game_players, notifications. The hub and
// REST facade both read through this package rather than touching SQL
// directly.
package store

import (
	"time"

	"github.com/google/uuid"
)

// User is a minimal account row resolved by the REST signup/login
// surface; the core also needs to resolve a userId and check
// membership/friendship against it.
type User struct {
	ID           uuid.UUID
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}

// FriendshipStatus is the lifecycle of one directed friendship row.
type FriendshipStatus string

const (
	FriendshipPending  FriendshipStatus = "pending"
	FriendshipAccepted FriendshipStatus = "accepted"
	FriendshipBlocked  FriendshipStatus = "blocked"
)

// Friendship is one directed row; acceptance creates two rows, one in
// each direction, so callers must use a get-many + non-empty predicate
// rather than get-single when checking "are these two users friends".
type Friendship struct {
	UserID    uuid.UUID
	FriendID  uuid.UUID
	Status    FriendshipStatus
	CreatedAt time.Time
}

// GameStatus mirrors game.Status for the persisted row.
type GameStatus string

const (
	GameLobby    GameStatus = "lobby"
	GameActive   GameStatus = "active"
	GameFinished GameStatus = "finished"
)

// GameRow is the games table row.
type GameRow struct {
	ID         uuid.UUID
	Status     GameStatus
	CreatedBy  uuid.UUID
	MaxPlayers int
	CreatedAt  time.Time
	FinishedAt *time.Time
	RNGSeed    int64
}

// GamePlayer is a game_players table row.
type GamePlayer struct {
	GameID   uuid.UUID
	UserID   uuid.UUID
	Seat     int
	JoinedAt time.Time
}

// NotificationStatus tracks whether a user has seen a notification.
type NotificationStatus string

const (
	NotificationUnread NotificationStatus = "unread"
	NotificationRead   NotificationStatus = "read"
)

// Notification is a notifications table row: an out-of-band event
// delivered to a userId regardless of which game (if any) they are
// currently viewing.
type Notification struct {
	ID         uuid.UUID
	UserID     uuid.UUID
	Type       string
	FromUserID *uuid.UUID
	GameID     *uuid.UUID
	CreatedAt  time.Time
	Status     NotificationStatus
}
