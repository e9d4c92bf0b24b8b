package handler

import (
	"net/http"

	mw "github.com/desslyhub/platform/internal/api/middleware"
	"github.com/desslyhub/platform/internal/api/response"
	"github.com/desslyhub/platform/internal/auth"
	"github.com/desslyhub/platform/internal/core"
	"github.com/desslyhub/platform/internal/model"
)

// Auth handles credential introspection endpoints.
type Auth struct {
	users *core.UserService
}

// NewAuth creates a new Auth handler.
func NewAuth(users *core.UserService) *Auth {
	return &Auth{users: users}
}

// Check describes the presented API token. Sessions are rejected; the
// endpoint exists so token holders can verify what they are holding.
func (h *Auth) Check(w http.ResponseWriter, r *http.Request) {
	result := mw.GetResult(r.Context())
	if result == nil || result.Kind == auth.KindSession {
		response.WriteError(w, http.StatusBadRequest, "use an API token for this endpoint")
		return
	}

	tok := result.Token
	user, err := h.users.GetByID(r.Context(), tok.UserID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, map[string]any{
		"username":     user.Username,
		"token_name":   tok.Name,
		"access_level": tok.AccessLevel,
		"description":  tok.Description,
	})
}

// Me describes the caller, whichever way they authenticated.
func (h *Auth) Me(w http.ResponseWriter, r *http.Request) {
	result := mw.GetResult(r.Context())
	if result == nil {
		response.WriteError(w, http.StatusUnauthorized, "API token required")
		return
	}

	if result.Kind == auth.KindSession {
		response.WriteJSON(w, http.StatusOK, map[string]any{
			"kind":         "session",
			"username":     result.Username,
			"access_level": model.AccessLevelFull,
		})
		return
	}

	tok := result.Token
	user, err := h.users.GetByID(r.Context(), tok.UserID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, map[string]any{
		"kind":         "api_token",
		"username":     user.Username,
		"token_name":   tok.Name,
		"access_level": tok.AccessLevel,
	})
}

// Levels lists the defined access levels.
func (h *Auth) Levels(w http.ResponseWriter, r *http.Request) {
	response.WriteJSON(w, http.StatusOK, []map[string]any{
		{"level": model.AccessLevelReadOnly, "name": "read-only"},
		{"level": model.AccessLevelManage, "name": "manage"},
		{"level": model.AccessLevelFull, "name": "full"},
	})
}
