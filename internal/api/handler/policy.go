package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/desslyhub/platform/internal/api/request"
	"github.com/desslyhub/platform/internal/api/response"
	"github.com/desslyhub/platform/internal/policy"
)

// Policy handles dynamic policy endpoints.
type Policy struct {
	store *policy.Store
}

// NewPolicy creates a new Policy handler.
func NewPolicy(store *policy.Store) *Policy {
	return &Policy{store: store}
}

// Get returns the current policy document.
func (h *Policy) Get(w http.ResponseWriter, r *http.Request) {
	response.WriteJSON(w, http.StatusOK, h.store.Snapshot())
}

// Set writes one policy key. The change is durable and takes effect
// immediately.
func (h *Policy) Set(w http.ResponseWriter, r *http.Request) {
	key, err := request.RequireID(chi.URLParam(r, "key"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req request.SetPolicy
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.store.Set(key, req.Value); err != nil {
		response.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	response.WriteJSON(w, http.StatusOK, map[string]any{
		"key":   key,
		"value": req.Value,
	})
}
