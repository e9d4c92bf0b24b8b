package handler

import (
	"crypto/subtle"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/desslyhub/platform/internal/api/request"
	"github.com/desslyhub/platform/internal/api/response"
	"github.com/desslyhub/platform/internal/auth"
	"github.com/desslyhub/platform/internal/vault"
)

// Session handles operator login.
type Session struct {
	vault    *vault.Vault
	username string
	password string
	ttl      time.Duration
	logger   zerolog.Logger
}

// NewSession creates a new Session handler bound to the configured
// operator credentials.
func NewSession(v *vault.Vault, username, password string, ttl time.Duration, logger zerolog.Logger) *Session {
	return &Session{vault: v, username: username, password: password, ttl: ttl, logger: logger}
}

// Login exchanges operator credentials for a signed session token, set both
// as a cookie and in the response body.
func (h *Session) Login(w http.ResponseWriter, r *http.Request) {
	var req request.Login
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	userOK := subtle.ConstantTimeCompare([]byte(req.Username), []byte(h.username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(req.Password), []byte(h.password)) == 1
	if !userOK || !passOK {
		h.logger.Warn().Str("username", req.Username).Msg("failed operator login")
		response.WriteError(w, http.StatusUnauthorized, "incorrect username or password")
		return
	}

	token, err := h.vault.SignSession(req.Username)
	if err != nil {
		response.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.ttl.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	response.WriteJSON(w, http.StatusOK, map[string]any{
		"access_token": token,
		"token_type":   "bearer",
	})
}

// Logout clears the session cookie.
func (h *Session) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	w.WriteHeader(http.StatusNoContent)
}
