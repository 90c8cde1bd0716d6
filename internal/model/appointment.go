package model

import "time"

const (
	AppointmentScheduled = "scheduled"
	AppointmentCompleted = "completed"
	AppointmentCancelled = "cancelled"
)

// Appointment scheduling fields are stored as strings: StartTime holds an
// RFC3339 or zoneless ISO timestamp, while Date/TimeOfDay carry the legacy
// split form still present in imported data. New writes always set StartTime.
type Appointment struct {
	ID              int64     `json:"id"`
	CareRecipientID int64     `json:"care_recipient_id"`
	Title           string    `json:"title"`
	Location        string    `json:"location,omitempty"`
	StartTime       string    `json:"start_time,omitempty"`
	Date            string    `json:"date,omitempty"`
	TimeOfDay       string    `json:"time,omitempty"`
	Status          string    `json:"status"`
	ReminderMinutes *int      `json:"reminder_minutes,omitempty"`
	Notes           string    `json:"notes,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}
