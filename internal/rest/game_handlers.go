package rest

import (
	"crypto/rand"
	"encoding/binary"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/fivecrowns/server/internal/game"
	"github.com/fivecrowns/server/internal/store"
	"github.com/fivecrowns/server/internal/wire"
)

type createGameRequest struct {
	MaxPlayers int `json:"maxPlayers"`
}

// handleCreateGame creates a Lobby game hosted by the caller, seated at
// seat 0.
func (d *Deps) handleCreateGame(w http.ResponseWriter, r *http.Request) {
	userID, _ := userIDFrom(r)

	var req createGameRequest
	_ = json.NewDecoder(r.Body).Decode(&req)
	if req.MaxPlayers == 0 {
		req.MaxPlayers = game.MaxSeats
	}
	if req.MaxPlayers < game.MinSeats || req.MaxPlayers > game.MaxSeats {
		writeError(w, http.StatusBadRequest, "validation", "maxPlayers out of range")
		return
	}

	seed, err := randomSeed()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error", "failed to generate game seed")
		return
	}

	row, err := d.Games.Create(r.Context(), userID, req.MaxPlayers, seed)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error", "failed to create game")
		return
	}
	writeJSON(w, http.StatusCreated, row)
}

// handleListGames lists every game the caller is a member of.
func (d *Deps) handleListGames(w http.ResponseWriter, r *http.Request) {
	userID, _ := userIDFrom(r)
	rows, err := d.Games.ListForUser(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error", "failed to list games")
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

func gameIDFromPath(r *http.Request) (uuid.UUID, error) {
	return uuid.Parse(mux.Vars(r)["id"])
}

// handleGetGame returns one game's row, after checking membership.
func (d *Deps) handleGetGame(w http.ResponseWriter, r *http.Request) {
	userID, _ := userIDFrom(r)
	gameID, err := gameIDFromPath(r)
	if err != nil {
		writeError(w, http.StatusNotFound, "not_found", "invalid game id")
		return
	}

	isMember, err := d.Games.IsMember(r.Context(), gameID, userID)
	if err != nil || !isMember {
		writeError(w, http.StatusForbidden, "forbidden", "not a member of this game")
		return
	}

	row, err := d.Games.Get(r.Context(), gameID)
	if err != nil {
		writeError(w, http.StatusNotFound, "not_found", "game not found")
		return
	}
	writeJSON(w, http.StatusOK, row)
}

// handleDeleteGame deletes a Lobby game if the caller is the host. Active
// games cannot be deleted.
func (d *Deps) handleDeleteGame(w http.ResponseWriter, r *http.Request) {
	userID, _ := userIDFrom(r)
	gameID, err := gameIDFromPath(r)
	if err != nil {
		writeError(w, http.StatusNotFound, "not_found", "invalid game id")
		return
	}

	row, err := d.Games.Get(r.Context(), gameID)
	if err != nil {
		writeError(w, http.StatusNotFound, "not_found", "game not found")
		return
	}
	if row.CreatedBy != userID {
		writeError(w, http.StatusForbidden, "forbidden", "only the host may delete this game")
		return
	}
	if row.Status != store.GameLobby {
		writeError(w, http.StatusConflict, "conflict", "only Lobby games may be deleted")
		return
	}

	if err := d.Games.Delete(r.Context(), gameID); err != nil {
		writeError(w, http.StatusInternalServerError, "server_error", "failed to delete game")
		return
	}
	d.Hub.NotifyGameDeleted(gameID)
	w.WriteHeader(http.StatusNoContent)
}

type inviteRequest struct {
	TargetUserID string `json:"targetUserId"`
}

// handleInvite seats target as a new guest, after verifying friendship,
// capacity, and Lobby status.
func (d *Deps) handleInvite(w http.ResponseWriter, r *http.Request) {
	userID, _ := userIDFrom(r)
	gameID, err := gameIDFromPath(r)
	if err != nil {
		writeError(w, http.StatusNotFound, "not_found", "invalid game id")
		return
	}

	var req inviteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "validation", "malformed body")
		return
	}
	targetID, err := uuid.Parse(req.TargetUserID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation", "invalid targetUserId")
		return
	}

	row, err := d.Games.Get(r.Context(), gameID)
	if err != nil {
		writeError(w, http.StatusNotFound, "not_found", "game not found")
		return
	}
	if row.Status != store.GameLobby {
		writeError(w, http.StatusConflict, "conflict", "game is not in Lobby")
		return
	}

	accepted, err := d.Friends.IsAccepted(r.Context(), userID, targetID)
	if err != nil || !accepted {
		writeError(w, http.StatusForbidden, "forbidden", "target is not an accepted friend")
		return
	}

	alreadyMember, err := d.Games.IsMember(r.Context(), gameID, targetID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error", "failed to check membership")
		return
	}
	if alreadyMember {
		writeError(w, http.StatusConflict, "conflict", "target is already a member")
		return
	}

	members, err := d.Games.Members(r.Context(), gameID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error", "failed to list members")
		return
	}
	if len(members) >= row.MaxPlayers {
		writeError(w, http.StatusConflict, "conflict", "game is full")
		return
	}

	if err := d.Games.AddMember(r.Context(), gameID, targetID); err != nil {
		writeError(w, http.StatusInternalServerError, "server_error", "failed to add member")
		return
	}

	_ = d.Hub.Notify(r.Context(), targetID, wire.NotifyGameInvitation, &userID, &gameID)
	w.WriteHeader(http.StatusNoContent)
}

// handleLeaveGame removes the caller from a Lobby game. Active games
// cannot be left.
func (d *Deps) handleLeaveGame(w http.ResponseWriter, r *http.Request) {
	userID, _ := userIDFrom(r)
	gameID, err := gameIDFromPath(r)
	if err != nil {
		writeError(w, http.StatusNotFound, "not_found", "invalid game id")
		return
	}

	row, err := d.Games.Get(r.Context(), gameID)
	if err != nil {
		writeError(w, http.StatusNotFound, "not_found", "game not found")
		return
	}
	if row.Status != store.GameLobby {
		writeError(w, http.StatusConflict, "conflict", "cannot leave an active game")
		return
	}

	if err := d.Games.RemoveMember(r.Context(), gameID, userID); err != nil {
		writeError(w, http.StatusInternalServerError, "server_error", "failed to leave game")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleNudgeHost implements the lobby-nudge variant: guest -> host,
// allowed only while status=Lobby and sender != host.
func (d *Deps) handleNudgeHost(w http.ResponseWriter, r *http.Request) {
	userID, _ := userIDFrom(r)
	gameID, err := gameIDFromPath(r)
	if err != nil {
		writeError(w, http.StatusNotFound, "not_found", "invalid game id")
		return
	}

	row, err := d.Games.Get(r.Context(), gameID)
	if err != nil {
		writeError(w, http.StatusNotFound, "not_found", "game not found")
		return
	}
	if row.Status != store.GameLobby || userID == row.CreatedBy {
		writeError(w, http.StatusConflict, "conflict", "lobby nudge requires a non-host sender and a Lobby game")
		return
	}

	if err := d.Hub.Nudge(r.Context(), row, userID, row.CreatedBy); err != nil {
		writeError(w, http.StatusInternalServerError, "server_error", "failed to deliver nudge")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type nudgePlayerRequest struct {
	TargetUserID string `json:"targetUserId"`
}

// handleNudgePlayer implements the turn-nudge variant: any member -> the
// current turn holder, allowed only while status=Active and sender is not
// the current player. The target is not trusted from the request body
// except as a confirmation; the actual turn holder is read from the
// owning gameActor's authoritative turnIndex.
func (d *Deps) handleNudgePlayer(w http.ResponseWriter, r *http.Request) {
	userID, _ := userIDFrom(r)
	gameID, err := gameIDFromPath(r)
	if err != nil {
		writeError(w, http.StatusNotFound, "not_found", "invalid game id")
		return
	}

	var req nudgePlayerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "validation", "malformed body")
		return
	}
	targetID, err := uuid.Parse(req.TargetUserID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation", "invalid targetUserId")
		return
	}

	row, err := d.Games.Get(r.Context(), gameID)
	if err != nil {
		writeError(w, http.StatusNotFound, "not_found", "game not found")
		return
	}
	if row.Status != store.GameActive {
		writeError(w, http.StatusConflict, "conflict", "turn nudge requires an Active game")
		return
	}

	current, err := d.Hub.CurrentTurnUserID(r.Context(), gameID, userID)
	if err != nil {
		writeError(w, http.StatusForbidden, "forbidden", "not a member of this game")
		return
	}
	if userID == current {
		writeError(w, http.StatusConflict, "conflict", "the current player cannot nudge themselves")
		return
	}
	if targetID != current {
		writeError(w, http.StatusConflict, "conflict", "target is not the current turn holder")
		return
	}

	if err := d.Hub.Nudge(r.Context(), row, userID, targetID); err != nil {
		writeError(w, http.StatusInternalServerError, "server_error", "failed to deliver nudge")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleMediaToken mints a media-room token for a game the caller is a
// member of. The server never connects to the media plane itself.
func (d *Deps) handleMediaToken(w http.ResponseWriter, r *http.Request) {
	userID, _ := userIDFrom(r)
	gameID, err := gameIDFromPath(r)
	if err != nil {
		writeError(w, http.StatusNotFound, "not_found", "invalid game id")
		return
	}

	isMember, err := d.Games.IsMember(r.Context(), gameID, userID)
	if err != nil || !isMember {
		writeError(w, http.StatusForbidden, "forbidden", "not a member of this game")
		return
	}

	token, err := d.Media.Mint(gameID.String(), userID.String(), true, true)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error", "failed to mint media token")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

func randomSeed() (int64, error) {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return 0, err
	}
	return int64(binary.LittleEndian.Uint64(buf[:])), nil
}
