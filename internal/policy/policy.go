// Package policy provides the hot-reloadable key/value policy store backed
// by a flat YAML document on disk.
package policy

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// KeyEnforceWhitelist controls whether the origin allow-list gate applies to
// level-0 tokens. Default true when unset.
const KeyEnforceWhitelist = "enforce_whitelist"

// DefaultTTL bounds how stale the cache may get before a read re-checks the
// document.
const DefaultTTL = 60 * time.Second

// Store caches the policy document and lazily re-reads it once the TTL has
// elapsed. A missing or malformed document means "no overrides", never an
// error for the reading request. Writes rewrite the whole document and
// reload the cache immediately, without waiting out the TTL.
type Store struct {
	path   string
	ttl    time.Duration
	now    func() time.Time
	logger zerolog.Logger

	mu       sync.Mutex
	cache    map[string]any
	loadedAt time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithTTL overrides the reload interval.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) { s.ttl = ttl }
}

// WithClock injects a clock for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func New(path string, logger zerolog.Logger, opts ...Option) *Store {
	s := &Store{
		path:   path,
		ttl:    DefaultTTL,
		now:    time.Now,
		logger: logger,
		cache:  map[string]any{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get returns the value for key, or def when unset.
func (s *Store) Get(key string, def any) any {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refreshLocked()

	if v, ok := s.cache[key]; ok {
		return v
	}
	return def
}

// GetBool returns the boolean value for key, or def when the key is unset
// or not a boolean.
func (s *Store) GetBool(key string, def bool) bool {
	if v, ok := s.Get(key, def).(bool); ok {
		return v
	}
	return def
}

// Snapshot returns a copy of the current policy document.
func (s *Store) Snapshot() map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refreshLocked()

	out := make(map[string]any, len(s.cache))
	for k, v := range s.cache {
		out[k] = v
	}
	return out
}

// Set writes key=value through to the document and reloads the cache so the
// change is visible to the next read.
func (s *Store) Set(key string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.readDocument()
	doc[key] = value

	data, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode policy document: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("write policy document: %w", err)
	}

	s.cache = doc
	s.loadedAt = s.now()
	return nil
}

// refreshLocked re-reads the document if the TTL has elapsed. Callers hold
// s.mu.
func (s *Store) refreshLocked() {
	now := s.now()
	if !s.loadedAt.IsZero() && now.Sub(s.loadedAt) < s.ttl {
		return
	}
	s.cache = s.readDocument()
	s.loadedAt = now
}

// readDocument loads the whole document, treating a missing or malformed
// file as an empty policy.
func (s *Store) readDocument() map[string]any {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn().Err(err).Str("path", s.path).Msg("failed to read policy document")
		}
		return map[string]any{}
	}

	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		s.logger.Warn().Err(err).Str("path", s.path).Msg("malformed policy document, treating as empty")
		return map[string]any{}
	}
	if doc == nil {
		doc = map[string]any{}
	}
	return doc
}
