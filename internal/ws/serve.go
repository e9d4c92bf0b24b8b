package ws

import (
	"context"

	"github.com/coder/websocket"
	"github.com/rs/zerolog"
)

// Serve runs the receive loop for one connection until the transport
// fails or the peer disconnects. Frames are dispatched strictly in arrival
// order. Non-binary and malformed frames get a structured error reply; the
// connection stays open.
func Serve(ctx context.Context, m *Manager, d *Dispatcher, conn *Conn, logger zerolog.Logger) {
	defer m.Disconnect(conn)

	for {
		typ, data, err := conn.Read(ctx)
		if err != nil {
			logger.Debug().Err(err).Msg("ws receive ended")
			return
		}

		if typ != websocket.MessageBinary {
			if err := conn.SendError(ctx, "Only binary CBOR frames are supported"); err != nil {
				return
			}
			continue
		}

		var msg Frame
		if err := Unmarshal(data, &msg); err != nil || msg == nil {
			if err := conn.SendError(ctx, "Malformed frame: expected a CBOR map"); err != nil {
				return
			}
			continue
		}

		d.Dispatch(ctx, conn, msg)
	}
}
