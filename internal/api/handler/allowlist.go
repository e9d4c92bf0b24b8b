package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	mw "github.com/desslyhub/platform/internal/api/middleware"
	"github.com/desslyhub/platform/internal/api/request"
	"github.com/desslyhub/platform/internal/api/response"
	"github.com/desslyhub/platform/internal/auth"
	"github.com/desslyhub/platform/internal/core"
	"github.com/desslyhub/platform/internal/model"
)

// Whitelist handles origin allow-list endpoints.
type Whitelist struct {
	allowlist *core.AllowlistService
}

// NewWhitelist creates a new Whitelist handler.
func NewWhitelist(allowlist *core.AllowlistService) *Whitelist {
	return &Whitelist{allowlist: allowlist}
}

// List returns the caller's own entries. Operator sessions see the whole
// list.
func (h *Whitelist) List(w http.ResponseWriter, r *http.Request) {
	result := mw.GetResult(r.Context())

	var entries []model.WhitelistEntry
	var err error
	if result.Kind == auth.KindSession {
		entries, err = h.allowlist.ListAll(r.Context())
	} else {
		entries, err = h.allowlist.ListForUser(r.Context(), result.Token.UserID)
	}
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if entries == nil {
		entries = []model.WhitelistEntry{}
	}

	response.WriteJSON(w, http.StatusOK, entries)
}

// Add registers a new origin, owned by the user behind the presented token.
func (h *Whitelist) Add(w http.ResponseWriter, r *http.Request) {
	var req request.AddWhitelistEntry
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	userID := requesterUserID(mw.GetResult(r.Context()))
	if userID == "" {
		response.WriteError(w, http.StatusBadRequest, "use an API token for this endpoint")
		return
	}

	entry, err := h.allowlist.Add(r.Context(), req.Value, userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.WriteJSON(w, http.StatusCreated, entry)
}

// Remove deletes an entry by ID.
func (h *Whitelist) Remove(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.allowlist.Remove(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
