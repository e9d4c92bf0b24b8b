package ws

import (
	"context"
	"fmt"
	"time"

	"github.com/coder/websocket"
)

// writeTimeout bounds a single frame send so one stuck peer cannot hold a
// broadcast.
const writeTimeout = 10 * time.Second

// socket is the slice of *websocket.Conn the connection layer uses.
type socket interface {
	Write(ctx context.Context, typ websocket.MessageType, p []byte) error
	Close(code websocket.StatusCode, reason string) error
}

// Conn is one live persistent connection. It exists from accept to
// disconnect and is never persisted.
type Conn struct {
	sock     socket
	raw      *websocket.Conn
	clientIP string
}

func newConn(sock socket, clientIP string) *Conn {
	return &Conn{sock: sock, clientIP: clientIP}
}

// Read blocks for the next inbound frame.
func (c *Conn) Read(ctx context.Context) (websocket.MessageType, []byte, error) {
	return c.raw.Read(ctx)
}

// CloseNow tears the connection down without a close handshake.
func (c *Conn) CloseNow() {
	if c.raw != nil {
		c.raw.CloseNow()
	}
}

// ClientIP returns the peer's network address as seen at accept time.
func (c *Conn) ClientIP() string {
	return c.clientIP
}

// Send encodes v as a binary CBOR frame and writes it.
func (c *Conn) Send(ctx context.Context, v any) error {
	data, err := Marshal(v)
	if err != nil {
		return fmt.Errorf("encode frame: %w", err)
	}
	return c.write(ctx, data)
}

// SendError reports a protocol-level failure to the peer without closing
// the connection.
func (c *Conn) SendError(ctx context.Context, message string) error {
	return c.Send(ctx, Frame{"type": "error", "message": message})
}

func (c *Conn) write(ctx context.Context, data []byte) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	return c.sock.Write(ctx, websocket.MessageBinary, data)
}
