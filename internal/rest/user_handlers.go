package rest

import (
	"net/http"

	"github.com/fivecrowns/server/internal/store"
)

// handleMe returns the caller's own account row.
func (d *Deps) handleMe(w http.ResponseWriter, r *http.Request) {
	userID, _ := userIDFrom(r)
	user, err := d.Users.Get(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusNotFound, "not_found", "user not found")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// handleSearchUsers finds usernames by prefix for the add-friend/invite
// flows.
func (d *Deps) handleSearchUsers(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		writeJSON(w, http.StatusOK, []store.User{})
		return
	}
	users, err := d.Users.Search(r.Context(), query, 20)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error", "failed to search users")
		return
	}
	writeJSON(w, http.StatusOK, users)
}

type userStats struct {
	GamesPlayed   int `json:"gamesPlayed"`
	GamesFinished int `json:"gamesFinished"`
}

// handleMyStats summarizes the caller's game history. Per-round scoring
// breakdowns live in each game's event log, not a separate stats table,
// so this aggregates over ListForUser.
func (d *Deps) handleMyStats(w http.ResponseWriter, r *http.Request) {
	userID, _ := userIDFrom(r)
	rows, err := d.Games.ListForUser(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error", "failed to compute stats")
		return
	}

	stats := userStats{GamesPlayed: len(rows)}
	for _, row := range rows {
		if row.Status == store.GameFinished {
			stats.GamesFinished++
		}
	}
	writeJSON(w, http.StatusOK, stats)
}
