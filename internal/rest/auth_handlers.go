package rest

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/fivecrowns/server/internal/auth"
)

type signupRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type sessionResponse struct {
	Token  string `json:"token"`
	UserID string `json:"userId"`
}

// handleSignup creates a new account and returns a session token. Email
// verification is handled by an external collaborator, not this server;
// the account is usable immediately.
func (d *Deps) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "validation", "malformed body")
		return
	}
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || len(req.Password) < 8 {
		writeError(w, http.StatusBadRequest, "validation", "username required and password must be at least 8 characters")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error", "failed to hash password")
		return
	}

	user, err := d.Users.Create(r.Context(), req.Username, hash)
	if err != nil {
		writeError(w, http.StatusConflict, "conflict", "username already taken")
		return
	}

	token, err := d.Sessions.Mint(user.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error", "failed to mint session")
		return
	}
	writeJSON(w, http.StatusCreated, sessionResponse{Token: token, UserID: user.ID.String()})
}

// handleLogin verifies credentials and mints a session token.
func (d *Deps) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "validation", "malformed body")
		return
	}

	user, err := d.Users.GetByUsername(r.Context(), req.Username)
	if err != nil {
		if err == pgx.ErrNoRows {
			writeError(w, http.StatusUnauthorized, "unauthenticated", "invalid credentials")
			return
		}
		writeError(w, http.StatusInternalServerError, "server_error", "failed to look up user")
		return
	}
	if !auth.CheckPassword(user.PasswordHash, req.Password) {
		writeError(w, http.StatusUnauthorized, "unauthenticated", "invalid credentials")
		return
	}

	token, err := d.Sessions.Mint(user.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error", "failed to mint session")
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{Token: token, UserID: user.ID.String()})
}

// handleVerify is a placeholder for email verification, which is handled
// by an external collaborator. It always reports success so clients built
// against the full auth surface do not break.
func (d *Deps) handleVerify(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"verified": true})
}

// handleRefresh re-mints a session token for the caller's still-valid
// bearer token, extending its TTL.
func (d *Deps) handleRefresh(w http.ResponseWriter, r *http.Request) {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		writeError(w, http.StatusUnauthorized, "unauthenticated", "missing bearer token")
		return
	}
	userID, err := d.Sessions.Validate(strings.TrimPrefix(header, "Bearer "))
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthenticated", "invalid or expired token")
		return
	}
	token, err := d.Sessions.Mint(userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error", "failed to mint session")
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{Token: token, UserID: userID.String()})
}

// handlePasswordReset accepts a reset request. Email delivery happens
// elsewhere; the handler only acknowledges.
func (d *Deps) handlePasswordReset(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusAccepted, map[string]bool{"accepted": true})
}
