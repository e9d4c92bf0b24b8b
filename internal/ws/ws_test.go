package ws

import (
	"context"
	"errors"
	"testing"

	"github.com/coder/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSocket records written frames in place of a real websocket.
type fakeSocket struct {
	frames   [][]byte
	writeErr error
	closed   bool
}

func (f *fakeSocket) Write(_ context.Context, _ websocket.MessageType, p []byte) error {
	if f.writeErr != nil {
		return f.writeErr
	}
	buf := make([]byte, len(p))
	copy(buf, p)
	f.frames = append(f.frames, buf)
	return nil
}

func (f *fakeSocket) Close(websocket.StatusCode, string) error {
	f.closed = true
	return nil
}

func (f *fakeSocket) lastFrame(t *testing.T) Frame {
	t.Helper()
	require.NotEmpty(t, f.frames, "no frames written")
	var msg Frame
	require.NoError(t, Unmarshal(f.frames[len(f.frames)-1], &msg))
	return msg
}

func testConn(sock *fakeSocket) *Conn {
	return newConn(sock, "198.51.100.7:4242")
}

// ---------- Codec ----------

func TestCodec_RoundTrip(t *testing.T) {
	in := Frame{"type": "ping", "seq": uint64(7), "nested": map[string]any{"k": "v"}}

	data, err := Marshal(in)
	require.NoError(t, err)

	var out Frame
	require.NoError(t, Unmarshal(data, &out))
	assert.Equal(t, "ping", out.Type())
	assert.Equal(t, uint64(7), out["seq"])
	assert.Equal(t, map[string]any{"k": "v"}, out["nested"])
}

func TestCodec_Deterministic(t *testing.T) {
	msg := Frame{"b": 2, "a": 1, "type": "x"}

	first, err := Marshal(msg)
	require.NoError(t, err)
	second, err := Marshal(msg)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestFrame_Type(t *testing.T) {
	assert.Equal(t, "ping", Frame{"type": "ping"}.Type())
	assert.Equal(t, "", Frame{}.Type())
	assert.Equal(t, "", Frame{"type": 42}.Type())
}

// ---------- Manager ----------

func TestManager_DisconnectIdempotent(t *testing.T) {
	m := NewManager(zerolog.Nop())

	conn := testConn(&fakeSocket{})
	m.mu.Lock()
	m.conns[conn] = struct{}{}
	m.mu.Unlock()
	require.Equal(t, 1, m.Count())

	m.Disconnect(conn)
	assert.Equal(t, 0, m.Count())

	// Second disconnect is a no-op, not an error.
	m.Disconnect(conn)
	assert.Equal(t, 0, m.Count())
}

func TestManager_BroadcastDropsFailedConns(t *testing.T) {
	m := NewManager(zerolog.Nop())

	healthy := &fakeSocket{}
	broken := &fakeSocket{writeErr: errors.New("peer gone")}

	h := testConn(healthy)
	b := testConn(broken)
	m.mu.Lock()
	m.conns[h] = struct{}{}
	m.conns[b] = struct{}{}
	m.mu.Unlock()

	m.Broadcast(context.Background(), Frame{"type": "announcement", "message": "hello"})

	// The broken peer is dropped; the healthy one received the frame.
	assert.Equal(t, 1, m.Count())
	msg := healthy.lastFrame(t)
	assert.Equal(t, "announcement", msg.Type())
	assert.Equal(t, "hello", msg["message"])
}

// ---------- Dispatcher ----------

func TestDispatcher_UnknownType(t *testing.T) {
	d := NewDispatcher(zerolog.Nop(), nil)
	sock := &fakeSocket{}
	conn := testConn(sock)

	d.Dispatch(context.Background(), conn, Frame{"type": "bogus"})

	msg := sock.lastFrame(t)
	assert.Equal(t, Frame{"type": "error", "message": "Unknown WS type: bogus"}, msg)
	assert.False(t, sock.closed, "connection must stay open")
}

func TestDispatcher_RoutesByType(t *testing.T) {
	var got Frame
	d := NewDispatcher(zerolog.Nop(), map[string]HandlerFunc{
		"ping": func(ctx context.Context, conn *Conn, msg Frame) error {
			got = msg
			return conn.Send(ctx, Frame{"type": "pong"})
		},
	})
	sock := &fakeSocket{}
	conn := testConn(sock)

	d.Dispatch(context.Background(), conn, Frame{"type": "ping", "seq": uint64(1)})

	require.NotNil(t, got)
	assert.Equal(t, uint64(1), got["seq"])
	assert.Equal(t, "pong", sock.lastFrame(t).Type())
}

func TestDispatcher_HandlerErrorContained(t *testing.T) {
	d := NewDispatcher(zerolog.Nop(), map[string]HandlerFunc{
		"broken": func(context.Context, *Conn, Frame) error {
			return errors.New("downstream API failed")
		},
	})
	sock := &fakeSocket{}
	conn := testConn(sock)

	d.Dispatch(context.Background(), conn, Frame{"type": "broken"})

	msg := sock.lastFrame(t)
	assert.Equal(t, "error", msg.Type())
	assert.Contains(t, msg["message"], "broken")
	assert.False(t, sock.closed, "handler failure must not close the connection")
}

// ---------- Handlers ----------

func TestHandlePing(t *testing.T) {
	sock := &fakeSocket{}
	conn := testConn(sock)

	require.NoError(t, HandlePing(context.Background(), conn, Frame{"type": "ping"}))
	assert.Equal(t, "pong", sock.lastFrame(t).Type())
}
