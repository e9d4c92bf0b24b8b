package model

import "time"

// Access levels for API tokens. Level 2 is the highest; there is no level
// above it.
const (
	AccessLevelReadOnly = 0
	AccessLevelManage   = 1
	AccessLevelFull     = 2
)

// APIToken is an opaque access credential. The secret itself is stored
// encrypted and is never carried on the model; it is returned to the caller
// exactly once at issue time.
type APIToken struct {
	ID          string    `json:"uuid" db:"id"`
	Name        string    `json:"name" db:"name"`
	UserID      string    `json:"user_uuid" db:"user_id"`
	AccessLevel int       `json:"access_level" db:"access_level"`
	Description *string   `json:"description,omitempty" db:"description"`
	CreatedBy   *string   `json:"created_by,omitempty" db:"created_by"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}
