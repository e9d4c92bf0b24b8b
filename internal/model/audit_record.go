package model

import "time"

// AuditRecord is one append-only row per granted token-authenticated call.
type AuditRecord struct {
	ID         int64     `json:"id" db:"id"`
	Path       string    `json:"path" db:"path"`
	Method     string    `json:"method" db:"method"`
	ClientIP   string    `json:"client_ip" db:"client_ip"`
	APITokenID *string   `json:"api_token_id,omitempty" db:"api_token_id"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}
