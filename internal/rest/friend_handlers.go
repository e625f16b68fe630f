package rest

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/fivecrowns/server/internal/wire"
)

type friendRequestBody struct {
	TargetUserID string `json:"targetUserId"`
}

// handleListFriends lists every friendship row the caller owns, pending
// and accepted.
func (d *Deps) handleListFriends(w http.ResponseWriter, r *http.Request) {
	userID, _ := userIDFrom(r)
	rows, err := d.Friends.ListFor(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error", "failed to list friends")
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

// handleRequestFriend inserts a pending friendship row (insert-if-absent
// semantics) and notifies the target.
func (d *Deps) handleRequestFriend(w http.ResponseWriter, r *http.Request) {
	userID, _ := userIDFrom(r)

	var req friendRequestBody
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "validation", "malformed body")
		return
	}
	targetID, err := uuid.Parse(req.TargetUserID)
	if err != nil || targetID == userID {
		writeError(w, http.StatusBadRequest, "validation", "invalid targetUserId")
		return
	}

	if err := d.Friends.RequestFriendship(r.Context(), userID, targetID); err != nil {
		writeError(w, http.StatusInternalServerError, "server_error", "failed to request friendship")
		return
	}

	_ = d.Hub.Notify(r.Context(), targetID, wire.NotifyFriendRequest, &userID, nil)
	w.WriteHeader(http.StatusNoContent)
}
