package model

import "time"

type CareNote struct {
	ID              int64     `json:"id"`
	CareRecipientID *int64    `json:"care_recipient_id"`
	AuthorID        *int64    `json:"author_id"`
	Title           string    `json:"title"`
	Body            string    `json:"body"`
	Category        string    `json:"category,omitempty"`
	Pinned          bool      `json:"pinned"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}
