package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/desslyhub/platform/internal/core"
	"github.com/desslyhub/platform/internal/model"
)

func newAuthHandler(db *handlerMockDB) *Auth {
	return NewAuth(core.NewUserService(db))
}

func TestCheck_Session_BadRequest(t *testing.T) {
	h := newAuthHandler(&handlerMockDB{})
	rec := httptest.NewRecorder()
	r := withSessionResult(newRequest(http.MethodGet, "/auth/check", nil))

	h.Check(rec, r)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeErrorResponse(rec)
	assert.Equal(t, "use an API token for this endpoint", body["error"])
}

func TestCheck_Token_OK(t *testing.T) {
	db := &handlerMockDB{}
	db.On("QueryRow", mock.Anything, mock.Anything, mock.Anything).Return(&handlerMockRow{
		scanFunc: func(dest ...any) error {
			*(dest[0].(*string)) = validID
			*(dest[1].(*string)) = "alice"
			return nil
		},
	})

	h := newAuthHandler(db)
	rec := httptest.NewRecorder()
	r := withTokenResult(newRequest(http.MethodGet, "/auth/check", nil), model.AccessLevelReadOnly)

	h.Check(rec, r)

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "alice", body["username"])
	assert.Equal(t, "test-token", body["token_name"])
	assert.Equal(t, float64(model.AccessLevelReadOnly), body["access_level"])
}

func TestMe_Session(t *testing.T) {
	h := newAuthHandler(&handlerMockDB{})
	rec := httptest.NewRecorder()
	r := withSessionResult(newRequest(http.MethodGet, "/auth/me", nil))

	h.Me(rec, r)

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "session", body["kind"])
	assert.Equal(t, "admin", body["username"])
	assert.Equal(t, float64(model.AccessLevelFull), body["access_level"])
}

func TestLevels(t *testing.T) {
	h := newAuthHandler(&handlerMockDB{})
	rec := httptest.NewRecorder()

	h.Levels(rec, newRequest(http.MethodGet, "/auth/levels", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Len(t, body, 3)
}
