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

// Token handles API token lifecycle endpoints.
type Token struct {
	tokens *core.APITokenService
}

// NewToken creates a new Token handler.
func NewToken(tokens *core.APITokenService) *Token {
	return &Token{tokens: tokens}
}

// Create issues a token for a user. The raw secret is returned once in the
// response and never again. Level-1 callers may only issue read-only tokens.
func (h *Token) Create(w http.ResponseWriter, r *http.Request) {
	userID, err := request.RequireID(chi.URLParam(r, "uuid"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req request.CreateToken
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	result := mw.GetResult(r.Context())
	if result.Tier() < model.AccessLevelFull && req.AccessLevel != model.AccessLevelReadOnly {
		response.WriteError(w, http.StatusForbidden, "only full-access callers may issue elevated tokens")
		return
	}

	tok, rawSecret, err := h.tokens.Issue(r.Context(), req.Name, userID, req.AccessLevel, req.Description, creatorID(result))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	// The raw secret is included exactly once.
	response.WriteJSON(w, http.StatusCreated, map[string]any{
		"uuid":         tok.ID,
		"name":         tok.Name,
		"token":        rawSecret,
		"access_level": tok.AccessLevel,
		"description":  tok.Description,
		"created_at":   tok.CreatedAt,
	})
}

// Get retrieves a token's metadata by UUID. Level-1 callers cannot inspect
// elevated tokens.
func (h *Token) Get(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "uuid"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	tok, err := h.tokens.GetByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	result := mw.GetResult(r.Context())
	if result.Tier() < model.AccessLevelFull && tok.AccessLevel > model.AccessLevelReadOnly {
		response.WriteError(w, http.StatusForbidden, "insufficient access level to view this token")
		return
	}

	response.WriteJSON(w, http.StatusOK, tok)
}

// Update edits a token's metadata or access level.
func (h *Token) Update(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "uuid"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req request.UpdateToken
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	tok, err := h.tokens.Update(r.Context(), id, core.UpdateToken{
		Name:        req.Name,
		Description: req.Description,
		AccessLevel: req.AccessLevel,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, tok)
}

// Delete revokes a token by UUID. Level-1 callers cannot delete elevated
// tokens.
func (h *Token) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "uuid"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	tok, err := h.tokens.GetByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	result := mw.GetResult(r.Context())
	if result.Tier() < model.AccessLevelFull && tok.AccessLevel > model.AccessLevelReadOnly {
		response.WriteError(w, http.StatusForbidden, "insufficient access level to delete this token")
		return
	}

	if err := h.tokens.Delete(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
