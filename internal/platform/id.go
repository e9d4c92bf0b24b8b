package platform

import "github.com/google/uuid"

// NewID generates a UUID for use as a primary identifier.
func NewID() string {
	return uuid.New().String()
}
