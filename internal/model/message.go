package model

import "time"

// Message is a post on the care-team message board.
type Message struct {
	ID              int64     `json:"id"`
	AuthorID        *int64    `json:"author_id"`
	CareRecipientID *int64    `json:"care_recipient_id"`
	Body            string    `json:"body"`
	CreatedAt       time.Time `json:"created_at"`
}
