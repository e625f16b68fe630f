package rest

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/fivecrowns/server/internal/store"
)

type notificationListResponse struct {
	Notifications []store.Notification `json:"notifications"`
	UnreadCount   int                   `json:"unreadCount"`
}

// handleListNotifications returns the caller's notification history,
// newest first, alongside an unread badge count.
func (d *Deps) handleListNotifications(w http.ResponseWriter, r *http.Request) {
	userID, _ := userIDFrom(r)
	rows, err := d.Notifications.ListForUser(r.Context(), userID, 100)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error", "failed to list notifications")
		return
	}
	unread, err := d.Notifications.CountUnread(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error", "failed to count unread notifications")
		return
	}
	writeJSON(w, http.StatusOK, notificationListResponse{Notifications: rows, UnreadCount: unread})
}

// handleMarkNotificationRead transitions one of the caller's own
// notifications to read.
func (d *Deps) handleMarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	userID, _ := userIDFrom(r)
	notificationID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, http.StatusNotFound, "not_found", "invalid notification id")
		return
	}

	if err := d.Notifications.MarkRead(r.Context(), userID, notificationID); err != nil {
		writeError(w, http.StatusInternalServerError, "server_error", "failed to mark notification read")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
