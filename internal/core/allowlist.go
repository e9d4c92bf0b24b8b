package core

import (
	"context"
	"fmt"
	"net/netip"
	"regexp"
	"strings"

	"github.com/desslyhub/platform/internal/model"
	"github.com/desslyhub/platform/internal/platform"
)

var domainLabelRegex = regexp.MustCompile(`^[a-zA-Z0-9-]{1,63}$`)
var tldRegex = regexp.MustCompile(`[a-zA-Z]{2,}$`)

// isValidDomain checks domain syntax: labels of 1-63 chars from
// [A-Za-z0-9-], no leading or trailing hyphen, an alphabetic TLD of at
// least two characters, and a total length of at most 253.
func isValidDomain(domain string) bool {
	if len(domain) > 253 {
		return false
	}
	labels := strings.Split(domain, ".")
	for _, label := range labels {
		if !domainLabelRegex.MatchString(label) {
			return false
		}
		if strings.HasPrefix(label, "-") || strings.HasSuffix(label, "-") {
			return false
		}
	}
	return tldRegex.MatchString(labels[len(labels)-1])
}

// ValidateOrigin reports whether value is an IP literal (v4 or v6) or a
// syntactically valid domain name.
func ValidateOrigin(value string) bool {
	value = strings.TrimSpace(value)
	if value == "" {
		return false
	}
	if _, err := netip.ParseAddr(value); err == nil {
		return true
	}
	return isValidDomain(value)
}

// AllowlistService manages approved network origins. Entries are owned by
// users, but the gate check treats the list as one global set.
type AllowlistService struct {
	db DB
}

func NewAllowlistService(db DB) *AllowlistService {
	return &AllowlistService{db: db}
}

// IsAllowed reports whether either the client IP or the declared origin
// domain exists in the allow-list, regardless of owner.
func (s *AllowlistService) IsAllowed(ctx context.Context, ip, domain string) (bool, error) {
	var allowed bool
	err := s.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM whitelist_entries WHERE value = $1 OR ($2 != '' AND value = $2))`,
		ip, domain,
	).Scan(&allowed)
	if err != nil {
		return false, fmt.Errorf("check allowlist: %w", err)
	}
	return allowed, nil
}

// Add inserts a new origin. Values are unique across the whole list, not
// per owner.
func (s *AllowlistService) Add(ctx context.Context, value, userID string) (*model.WhitelistEntry, error) {
	e := &model.WhitelistEntry{
		ID:     platform.NewID(),
		Value:  value,
		UserID: userID,
	}

	err := s.db.QueryRow(ctx,
		`INSERT INTO whitelist_entries (id, value, user_id) VALUES ($1, $2, $3) RETURNING created_at`,
		e.ID, e.Value, e.UserID,
	).Scan(&e.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("allowlist value %q: %w", value, ErrConflict)
		}
		return nil, fmt.Errorf("insert allowlist entry: %w", err)
	}
	return e, nil
}

// ListAll returns every entry regardless of owner.
func (s *AllowlistService) ListAll(ctx context.Context) ([]model.WhitelistEntry, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, value, user_id, created_at FROM whitelist_entries ORDER BY created_at`,
	)
	if err != nil {
		return nil, fmt.Errorf("list allowlist entries: %w", err)
	}
	defer rows.Close()

	var entries []model.WhitelistEntry
	for rows.Next() {
		var e model.WhitelistEntry
		if err := rows.Scan(&e.ID, &e.Value, &e.UserID, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan allowlist entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate allowlist entries: %w", err)
	}
	return entries, nil
}

// ListForUser returns the entries registered by a user.
func (s *AllowlistService) ListForUser(ctx context.Context, userID string) ([]model.WhitelistEntry, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, value, user_id, created_at FROM whitelist_entries WHERE user_id = $1 ORDER BY created_at`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list allowlist entries: %w", err)
	}
	defer rows.Close()

	var entries []model.WhitelistEntry
	for rows.Next() {
		var e model.WhitelistEntry
		if err := rows.Scan(&e.ID, &e.Value, &e.UserID, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan allowlist entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate allowlist entries: %w", err)
	}
	return entries, nil
}

// Remove deletes an entry by ID.
func (s *AllowlistService) Remove(ctx context.Context, id string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM whitelist_entries WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete allowlist entry %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
