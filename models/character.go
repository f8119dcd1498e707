package models

import "time"

// Character is the minimal identity record the claims engine needs.
// Full character sheets live in the campaign manager, not here.
type Character struct {
	ID        int       `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
