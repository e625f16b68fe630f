package rest

import (
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/fivecrowns/server/internal/auth"
	"github.com/fivecrowns/server/internal/hub"
	"github.com/fivecrowns/server/internal/store"
)

// Deps wires the facade to its collaborators. Handlers hold a pointer to
// this rather than each repository individually, matching the single
// injected-config pattern the rest of the server follows.
type Deps struct {
	Users         *store.UserRepository
	Friends       *store.FriendshipRepository
	Games         *store.GameRepository
	Notifications *store.NotificationRepository

	Sessions *auth.SessionMinter
	Media    *auth.MediaMinter
	Hub      *hub.Hub

	Log *logrus.Logger
}

// NewRouter builds the full mux.Router: public /auth routes plus the
// bearer-authenticated games/friends/notifications/users surface.
func NewRouter(d *Deps) *mux.Router {
	r := mux.NewRouter()

	authRoutes := r.PathPrefix("/auth").Subrouter()
	authRoutes.HandleFunc("/signup", d.handleSignup).Methods("POST")
	authRoutes.HandleFunc("/login", d.handleLogin).Methods("POST")
	authRoutes.HandleFunc("/verify", d.handleVerify).Methods("POST")
	authRoutes.HandleFunc("/refresh", d.handleRefresh).Methods("POST")
	authRoutes.HandleFunc("/password-reset", d.handlePasswordReset).Methods("POST")

	r.HandleFunc("/ws", d.Hub.ServeWS)

	protected := r.NewRoute().Subrouter()
	protected.Use(requireAuth(d.Sessions))

	protected.HandleFunc("/games", d.handleListGames).Methods("GET")
	protected.HandleFunc("/games", d.handleCreateGame).Methods("POST")
	protected.HandleFunc("/games/{id}", d.handleGetGame).Methods("GET")
	protected.HandleFunc("/games/{id}", d.handleDeleteGame).Methods("DELETE")
	protected.HandleFunc("/games/{id}/invite", d.handleInvite).Methods("POST")
	protected.HandleFunc("/games/{id}/leave", d.handleLeaveGame).Methods("POST")
	protected.HandleFunc("/games/{id}/nudge", d.handleNudgeHost).Methods("POST")
	protected.HandleFunc("/games/{id}/nudge-player", d.handleNudgePlayer).Methods("POST")
	protected.HandleFunc("/games/{id}/livekit-token", d.handleMediaToken).Methods("POST")

	protected.HandleFunc("/friends", d.handleListFriends).Methods("GET")
	protected.HandleFunc("/friends", d.handleRequestFriend).Methods("POST")

	protected.HandleFunc("/notifications", d.handleListNotifications).Methods("GET")
	protected.HandleFunc("/notifications/{id}/read", d.handleMarkNotificationRead).Methods("POST")

	protected.HandleFunc("/users/me", d.handleMe).Methods("GET")
	protected.HandleFunc("/users/search", d.handleSearchUsers).Methods("GET")
	protected.HandleFunc("/users/me/stats", d.handleMyStats).Methods("GET")

	return r
}
