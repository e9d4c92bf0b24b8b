package handler

import (
	"errors"
	"net/http"

	"github.com/desslyhub/platform/internal/api/response"
	"github.com/desslyhub/platform/internal/auth"
	"github.com/desslyhub/platform/internal/core"
)

// writeServiceError maps service-layer sentinel errors onto HTTP statuses.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, core.ErrNotFound):
		response.WriteError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, core.ErrConflict):
		response.WriteError(w, http.StatusConflict, err.Error())
	default:
		response.WriteError(w, http.StatusInternalServerError, err.Error())
	}
}

// requesterUserID returns the user owning the presented credential, or ""
// for operator sessions, which act on their own authority.
func requesterUserID(result *auth.Result) string {
	if result == nil || result.Token == nil {
		return ""
	}
	return result.Token.UserID
}

// creatorID identifies the actor for provenance fields: the operator
// username for sessions, the credential UUID for tokens.
func creatorID(result *auth.Result) string {
	if result.Kind == auth.KindSession {
		return result.Username
	}
	return result.Token.ID
}
