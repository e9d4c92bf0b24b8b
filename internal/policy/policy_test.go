package policy

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestStore(t *testing.T, content string) (*Store, string, *fakeClock) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "policy.yaml")
	if content != "" {
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	clock := &fakeClock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	return New(path, zerolog.Nop(), WithClock(clock.Now)), path, clock
}

func TestStore_MissingFile(t *testing.T) {
	s, _, _ := newTestStore(t, "")
	assert.True(t, s.GetBool(KeyEnforceWhitelist, true))
	assert.Equal(t, "fallback", s.Get("absent", "fallback"))
}

func TestStore_MalformedFile(t *testing.T) {
	s, _, _ := newTestStore(t, "{{{ not yaml")
	assert.True(t, s.GetBool(KeyEnforceWhitelist, true))
}

func TestStore_ReadsDocument(t *testing.T) {
	s, _, _ := newTestStore(t, "enforce_whitelist: false\nmax_conns: 10\n")
	assert.False(t, s.GetBool(KeyEnforceWhitelist, true))
	assert.Equal(t, 10, s.Get("max_conns", 0))
}

func TestStore_GetBool_NonBool(t *testing.T) {
	s, _, _ := newTestStore(t, "enforce_whitelist: sometimes\n")
	assert.True(t, s.GetBool(KeyEnforceWhitelist, true))
}

func TestStore_LazyReload(t *testing.T) {
	s, path, clock := newTestStore(t, "enforce_whitelist: true\n")
	require.True(t, s.GetBool(KeyEnforceWhitelist, true))

	// Change the file on disk; within the TTL the cache still serves the
	// old value.
	require.NoError(t, os.WriteFile(path, []byte("enforce_whitelist: false\n"), 0o644))
	clock.Advance(30 * time.Second)
	assert.True(t, s.GetBool(KeyEnforceWhitelist, true))

	// Once the TTL elapses the next read picks up the new document.
	clock.Advance(31 * time.Second)
	assert.False(t, s.GetBool(KeyEnforceWhitelist, true))
}

func TestStore_SetForcesImmediateReload(t *testing.T) {
	s, path, _ := newTestStore(t, "enforce_whitelist: true\n")
	require.True(t, s.GetBool(KeyEnforceWhitelist, true))

	// Set must be visible immediately, not after the TTL.
	require.NoError(t, s.Set(KeyEnforceWhitelist, false))
	assert.False(t, s.GetBool(KeyEnforceWhitelist, true))

	// And it must be durable.
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "enforce_whitelist: false")
}

func TestStore_SetPreservesOtherKeys(t *testing.T) {
	s, _, _ := newTestStore(t, "other_key: keep\n")
	require.NoError(t, s.Set(KeyEnforceWhitelist, false))
	assert.Equal(t, "keep", s.Get("other_key", ""))
	assert.False(t, s.GetBool(KeyEnforceWhitelist, true))
}
