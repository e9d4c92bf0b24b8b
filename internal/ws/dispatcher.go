package ws

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
)

// HandlerFunc processes one inbound frame on a connection.
type HandlerFunc func(ctx context.Context, conn *Conn, msg Frame) error

// Dispatcher routes decoded frames to handlers by type tag. The table is
// built once at startup and never mutated afterwards.
type Dispatcher struct {
	handlers map[string]HandlerFunc
	logger   zerolog.Logger
}

func NewDispatcher(logger zerolog.Logger, handlers map[string]HandlerFunc) *Dispatcher {
	table := make(map[string]HandlerFunc, len(handlers))
	for tag, h := range handlers {
		table[tag] = h
	}
	return &Dispatcher{handlers: table, logger: logger}
}

// Dispatch routes msg to its handler. Unknown types and handler failures
// are reported to the peer as error frames; the connection stays open
// either way.
func (d *Dispatcher) Dispatch(ctx context.Context, conn *Conn, msg Frame) {
	tag := msg.Type()
	handler, ok := d.handlers[tag]
	if !ok {
		if err := conn.SendError(ctx, fmt.Sprintf("Unknown WS type: %s", tag)); err != nil {
			d.logger.Debug().Err(err).Msg("failed to send unknown-type reply")
		}
		return
	}

	if err := handler(ctx, conn, msg); err != nil {
		d.logger.Error().Err(err).Str("type", tag).Msg("ws handler failed")
		if err := conn.SendError(ctx, fmt.Sprintf("handler for %q failed", tag)); err != nil {
			d.logger.Debug().Err(err).Msg("failed to send handler-error reply")
		}
	}
}
