package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/desslyhub/platform/internal/api/response"
	"github.com/desslyhub/platform/internal/auth"
)

type contextKey string

const authResultKey contextKey = "auth_result"

// Authorizer is the decision-engine surface the middleware needs.
type Authorizer interface {
	Authorize(r *http.Request) (*auth.Result, error)
}

// Authorize returns a middleware that runs every request through the
// decision engine and injects the granted result into the context.
func Authorize(engine Authorizer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			result, err := engine.Authorize(r)
			if err != nil {
				WriteAuthError(w, err)
				return
			}

			ctx := context.WithValue(r.Context(), authResultKey, result)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetResult extracts the granted authorization result from the context.
func GetResult(ctx context.Context) *auth.Result {
	result, _ := ctx.Value(authResultKey).(*auth.Result)
	return result
}

// WithResult injects a result into a request context. Test helper for
// handlers that run without the full middleware chain.
func WithResult(r *http.Request, result *auth.Result) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), authResultKey, result))
}

// RequireTier returns a middleware that enforces a minimum access level on
// the granted result.
func RequireTier(minLevel int) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			result := GetResult(r.Context())
			if result == nil {
				response.WriteError(w, http.StatusUnauthorized, "API token required")
				return
			}
			if err := auth.RequireTier(result, minLevel); err != nil {
				WriteAuthError(w, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// WriteAuthError maps a decision-engine failure onto the HTTP response.
func WriteAuthError(w http.ResponseWriter, err error) {
	var authErr *auth.Error
	if errors.As(err, &authErr) {
		status := http.StatusUnauthorized
		if authErr.Kind == auth.KindForbidden {
			status = http.StatusForbidden
		}
		response.WriteError(w, status, authErr.Detail)
		return
	}
	response.WriteError(w, http.StatusInternalServerError, "internal error")
}
