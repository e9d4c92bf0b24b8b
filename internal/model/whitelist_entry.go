package model

import "time"

// WhitelistEntry is an approved network origin: an IP literal or a domain.
// Entries are owned per-user for management, but the allow-list gate treats
// the set as global.
type WhitelistEntry struct {
	ID        string    `json:"id" db:"id"`
	Value     string    `json:"value" db:"value"`
	UserID    string    `json:"user_uuid" db:"user_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
