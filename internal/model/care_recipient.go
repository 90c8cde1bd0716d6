package model

import (
	"strings"
	"time"
)

type CareRecipient struct {
	ID          int64     `json:"id"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	DateOfBirth string    `json:"date_of_birth,omitempty"`
	SortOrder   int       `json:"sort_order"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// DisplayName joins first and last name, tolerating either being empty.
func (r CareRecipient) DisplayName() string {
	return strings.TrimSpace(r.FirstName + " " + r.LastName)
}
