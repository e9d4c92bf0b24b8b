package ws

import (
	"context"

	"github.com/desslyhub/platform/internal/policy"
)

// HandlePing answers a liveness probe.
func HandlePing(ctx context.Context, conn *Conn, _ Frame) error {
	return conn.Send(ctx, Frame{"type": "pong"})
}

// PolicyGetHandler returns a handler that reports the current allow-list
// enforcement flag.
func PolicyGetHandler(pol *policy.Store) HandlerFunc {
	return func(ctx context.Context, conn *Conn, _ Frame) error {
		return conn.Send(ctx, Frame{
			"type":              "policy/get",
			"enforce_whitelist": pol.GetBool(policy.KeyEnforceWhitelist, true),
		})
	}
}
