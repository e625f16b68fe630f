package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// GameRepository is the core's view of the games/game_players tables:
// membership checks, creation, and the invite/leave/list surface the hub
// and REST facade both rely on.
type GameRepository struct {
	pool *pgxpool.Pool
}

func NewGameRepository(pool *pgxpool.Pool) *GameRepository {
	return &GameRepository{pool: pool}
}

// Create inserts a new Lobby game hosted by createdBy, seating the host at
// seat 0.
func (r *GameRepository) Create(ctx context.Context, createdBy uuid.UUID, maxPlayers int, rngSeed int64) (GameRow, error) {
	row := GameRow{
		ID:         uuid.New(),
		Status:     GameLobby,
		CreatedBy:  createdBy,
		MaxPlayers: maxPlayers,
		CreatedAt:  time.Now().UTC(),
		RNGSeed:    rngSeed,
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return GameRow{}, err
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO games (id, status, created_by, max_players, created_at, rng_seed)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, row.ID, row.Status, row.CreatedBy, row.MaxPlayers, row.CreatedAt, row.RNGSeed)
	if err != nil {
		return GameRow{}, err
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO game_players (game_id, user_id, seat, joined_at)
		VALUES ($1, $2, 0, $3)
	`, row.ID, createdBy, row.CreatedAt)
	if err != nil {
		return GameRow{}, err
	}

	return row, tx.Commit(ctx)
}

// Get fetches a single game by id.
func (r *GameRepository) Get(ctx context.Context, gameID uuid.UUID) (GameRow, error) {
	var row GameRow
	err := r.pool.QueryRow(ctx, `
		SELECT id, status, created_by, max_players, created_at, finished_at, rng_seed
		FROM games WHERE id = $1
	`, gameID).Scan(&row.ID, &row.Status, &row.CreatedBy, &row.MaxPlayers, &row.CreatedAt, &row.FinishedAt, &row.RNGSeed)
	return row, err
}

// ListForUser lists every game a user is a member of.
func (r *GameRepository) ListForUser(ctx context.Context, userID uuid.UUID) ([]GameRow, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT g.id, g.status, g.created_by, g.max_players, g.created_at, g.finished_at, g.rng_seed
		FROM games g
		JOIN game_players gp ON gp.game_id = g.id
		WHERE gp.user_id = $1
		ORDER BY g.created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []GameRow
	for rows.Next() {
		var row GameRow
		if err := rows.Scan(&row.ID, &row.Status, &row.CreatedBy, &row.MaxPlayers, &row.CreatedAt, &row.FinishedAt, &row.RNGSeed); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// IsMember reports whether userID has a game_players row for gameID.
func (r *GameRepository) IsMember(ctx context.Context, gameID, userID uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM game_players WHERE game_id = $1 AND user_id = $2)
	`, gameID, userID).Scan(&exists)
	return exists, err
}

// Members lists every player's seat assignment for gameID, ordered by
// seat, which is also the order GameState rehydration expects.
func (r *GameRepository) Members(ctx context.Context, gameID uuid.UUID) ([]GamePlayer, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT game_id, user_id, seat, joined_at
		FROM game_players WHERE game_id = $1 ORDER BY seat ASC
	`, gameID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []GamePlayer
	for rows.Next() {
		var gp GamePlayer
		if err := rows.Scan(&gp.GameID, &gp.UserID, &gp.Seat, &gp.JoinedAt); err != nil {
			return nil, err
		}
		out = append(out, gp)
	}
	return out, rows.Err()
}

// AddMember seats userID at the next available seat. Callers must already
// have checked invitation rules: friendship, capacity, Lobby status.
func (r *GameRepository) AddMember(ctx context.Context, gameID, userID uuid.UUID) error {
	var nextSeat int
	err := r.pool.QueryRow(ctx, `
		SELECT COALESCE(MAX(seat), -1) + 1 FROM game_players WHERE game_id = $1
	`, gameID).Scan(&nextSeat)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx, `
		INSERT INTO game_players (game_id, user_id, seat, joined_at)
		VALUES ($1, $2, $3, $4)
	`, gameID, userID, nextSeat, time.Now().UTC())
	return err
}

// RemoveMember deletes userID's game_players row for gameID. It does not
// check the game's status or whether userID is the host.
func (r *GameRepository) RemoveMember(ctx context.Context, gameID, userID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM game_players WHERE game_id = $1 AND user_id = $2`, gameID, userID)
	return err
}

// Delete removes a Lobby game entirely: deletable by host while in
// Lobby.
func (r *GameRepository) Delete(ctx context.Context, gameID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM games WHERE id = $1 AND status = $2`, gameID, GameLobby)
	return err
}

// SetStatus transitions a game's persisted status, stamping finishedAt
// when moving to Finished.
func (r *GameRepository) SetStatus(ctx context.Context, gameID uuid.UUID, status GameStatus) error {
	if status == GameFinished {
		_, err := r.pool.Exec(ctx, `UPDATE games SET status = $1, finished_at = $2 WHERE id = $3`, status, time.Now().UTC(), gameID)
		return err
	}
	_, err := r.pool.Exec(ctx, `UPDATE games SET status = $1 WHERE id = $2`, status, gameID)
	return err
}
