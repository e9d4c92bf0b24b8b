package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	mw "github.com/desslyhub/platform/internal/api/middleware"
	"github.com/desslyhub/platform/internal/api/request"
	"github.com/desslyhub/platform/internal/api/response"
	"github.com/desslyhub/platform/internal/core"
	"github.com/desslyhub/platform/internal/model"
)

// User handles user registry endpoints.
type User struct {
	users  *core.UserService
	tokens *core.APITokenService
}

// NewUser creates a new User handler.
func NewUser(users *core.UserService, tokens *core.APITokenService) *User {
	return &User{users: users, tokens: tokens}
}

// Register creates a new registry user.
func (h *User) Register(w http.ResponseWriter, r *http.Request) {
	var req request.RegisterUser
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.users.Create(r.Context(), req.Username)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.WriteJSON(w, http.StatusCreated, user)
}

// List returns users with offset pagination.
func (h *User) List(w http.ResponseWriter, r *http.Request) {
	pg := request.ParsePagination(r)

	users, err := h.users.List(r.Context(), pg.Offset, pg.Limit)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if users == nil {
		users = []model.User{}
	}

	response.WriteJSON(w, http.StatusOK, users)
}

// Search matches the query against usernames, UUIDs, and aliases.
func (h *User) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")

	users, err := h.users.Search(r.Context(), q, 50)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if users == nil {
		users = []model.User{}
	}

	response.WriteJSON(w, http.StatusOK, users)
}

// Get returns one user together with their tokens. Level-1 callers see only
// the user's read-only tokens.
func (h *User) Get(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "uuid"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.users.GetByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	tokens, err := h.tokens.ListForUser(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	result := mw.GetResult(r.Context())
	if result.Tier() < model.AccessLevelFull {
		visible := make([]model.APIToken, 0, len(tokens))
		for _, tok := range tokens {
			if tok.AccessLevel == model.AccessLevelReadOnly {
				visible = append(visible, tok)
			}
		}
		tokens = visible
	}
	if tokens == nil {
		tokens = []model.APIToken{}
	}

	response.WriteJSON(w, http.StatusOK, map[string]any{
		"uuid":       user.ID,
		"username":   user.Username,
		"alias":      user.Alias,
		"created_at": user.CreatedAt,
		"api_tokens": tokens,
	})
}

// Update changes a user's handle.
func (h *User) Update(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "uuid"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req request.UpdateUser
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.users.UpdateUsername(r.Context(), id, req.Username)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, user)
}
