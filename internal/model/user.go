package model

import "time"

type User struct {
	ID        string    `json:"uuid" db:"id"`
	Username  string    `json:"username" db:"username"`
	Alias     *string   `json:"alias,omitempty" db:"alias"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
