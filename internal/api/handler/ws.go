package handler

import (
	"errors"
	"net/http"

	"github.com/coder/websocket"
	"github.com/rs/zerolog"

	mw "github.com/desslyhub/platform/internal/api/middleware"
	"github.com/desslyhub/platform/internal/auth"
	"github.com/desslyhub/platform/internal/ws"
)

// WS handles the persistent connection endpoint.
type WS struct {
	engine     mw.Authorizer
	manager    *ws.Manager
	dispatcher *ws.Dispatcher
	logger     zerolog.Logger
}

// NewWS creates a new WS handler.
func NewWS(engine mw.Authorizer, manager *ws.Manager, dispatcher *ws.Dispatcher, logger zerolog.Logger) *WS {
	return &WS{engine: engine, manager: manager, dispatcher: dispatcher, logger: logger}
}

// Serve authorizes the request, upgrades it, and runs the receive loop
// until the peer disconnects. An unauthorized request is still upgraded so
// the refusal can be delivered as a policy-violation close frame.
func (h *WS) Serve(w http.ResponseWriter, r *http.Request) {
	result, err := h.engine.Authorize(r)
	if err != nil {
		sock, acceptErr := websocket.Accept(w, r, &websocket.AcceptOptions{InsecureSkipVerify: true})
		if acceptErr != nil {
			return
		}
		reason := "unauthorized"
		var authErr *auth.Error
		if errors.As(err, &authErr) {
			reason = authErr.Detail
		}
		sock.Close(websocket.StatusPolicyViolation, reason)
		return
	}

	conn, err := h.manager.Connect(w, r)
	if err != nil {
		h.logger.Warn().Err(err).Msg("ws accept failed")
		return
	}
	defer conn.CloseNow()

	h.logger.Info().
		Int("access_level", result.Tier()).
		Str("ip", conn.ClientIP()).
		Msg("ws session authorized")

	ws.Serve(r.Context(), h.manager, h.dispatcher, conn, h.logger)
}
