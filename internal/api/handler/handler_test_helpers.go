package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"

	mw "github.com/desslyhub/platform/internal/api/middleware"
	"github.com/desslyhub/platform/internal/auth"
	"github.com/desslyhub/platform/internal/model"
	"github.com/go-chi/chi/v5"
)

// newRequest creates a new HTTP request with an optional JSON body.
func newRequest(method, target string, body any) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	r := httptest.NewRequest(method, target, &buf)
	r.Header.Set("Content-Type", "application/json")
	return r
}

// newRequestRaw creates a new HTTP request with a raw string body.
func newRequestRaw(method, target, body string) *http.Request {
	r := httptest.NewRequest(method, target, bytes.NewBufferString(body))
	r.Header.Set("Content-Type", "application/json")
	return r
}

// withChiURLParam adds a chi URL parameter to the request context.
func withChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// decodeErrorResponse parses the JSON error response body into a map.
func decodeErrorResponse(rec *httptest.ResponseRecorder) map[string]string {
	var body map[string]string
	json.Unmarshal(rec.Body.Bytes(), &body)
	return body
}

// withSessionResult injects an operator session into the request context.
func withSessionResult(r *http.Request) *http.Request {
	return mw.WithResult(r, &auth.Result{Kind: auth.KindSession, Username: "admin"})
}

// withTokenResult injects a credential of the given access level into the
// request context.
func withTokenResult(r *http.Request, level int) *http.Request {
	return mw.WithResult(r, &auth.Result{
		Kind: auth.KindCredential,
		Token: &model.APIToken{
			ID:          "tok-1",
			Name:        "test-token",
			UserID:      validID,
			AccessLevel: level,
		},
	})
}

const validID = "6f1c2b8e-1111-4222-8333-444455556666"
const validID2 = "6f1c2b8e-7777-4888-8999-000011112222"
