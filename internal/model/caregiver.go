package model

import "time"

// Caregiver is a member of the care team using a shared device. The optional
// PIN gates destructive actions; only the bcrypt hash is stored.
type Caregiver struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	AvatarEmoji string    `json:"avatar_emoji"`
	HasPIN      bool      `json:"has_pin"`
	SortOrder   int       `json:"sort_order"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
