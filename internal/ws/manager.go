package ws

import (
	"context"
	"net/http"
	"sync"

	"github.com/coder/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

var liveConnections = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "ws_live_connections",
	Help: "Number of live websocket connections",
})

// Manager tracks the set of live connections. The set is the only shared
// mutable state and is always touched under the lock; sends happen against
// a snapshot so a peer disappearing mid-broadcast cannot abort the rest.
type Manager struct {
	logger zerolog.Logger

	mu    sync.Mutex
	conns map[*Conn]struct{}
}

func NewManager(logger zerolog.Logger) *Manager {
	return &Manager{
		logger: logger,
		conns:  make(map[*Conn]struct{}),
	}
}

// Connect performs the websocket accept handshake and adds the connection
// to the live set.
func (m *Manager) Connect(w http.ResponseWriter, r *http.Request) (*Conn, error) {
	sock, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		// Origin enforcement happens in the authorization layer, where
		// the declared origin is checked against the allow-list.
		InsecureSkipVerify: true,
	})
	if err != nil {
		return nil, err
	}

	conn := newConn(sock, r.RemoteAddr)
	conn.raw = sock

	m.mu.Lock()
	m.conns[conn] = struct{}{}
	count := len(m.conns)
	m.mu.Unlock()

	liveConnections.Set(float64(count))
	m.logger.Info().Int("live", count).Msg("ws connected")
	return conn, nil
}

// Disconnect removes the connection from the live set. Safe to call more
// than once; the second call is a no-op.
func (m *Manager) Disconnect(conn *Conn) {
	m.mu.Lock()
	_, present := m.conns[conn]
	delete(m.conns, conn)
	count := len(m.conns)
	m.mu.Unlock()

	if present {
		liveConnections.Set(float64(count))
		m.logger.Info().Int("live", count).Msg("ws disconnected")
	}
}

// Count returns the number of live connections.
func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.conns)
}

// Broadcast serializes the message once and best-effort sends it to every
// live connection. Connections whose send fails are dropped from the set.
func (m *Manager) Broadcast(ctx context.Context, message Frame) {
	data, err := Marshal(message)
	if err != nil {
		m.logger.Error().Err(err).Msg("failed to encode broadcast frame")
		return
	}

	m.mu.Lock()
	snapshot := make([]*Conn, 0, len(m.conns))
	for conn := range m.conns {
		snapshot = append(snapshot, conn)
	}
	m.mu.Unlock()

	for _, conn := range snapshot {
		if err := conn.write(ctx, data); err != nil {
			m.Disconnect(conn)
		}
	}
}
