package model

import "time"

const (
	DoseTaken   = "taken"
	DoseSkipped = "skipped"
	DoseMissed  = "missed"
)

// Medication is a prescription on a care recipient's regimen. ScheduleRule is
// an RRULE string ("FREQ=DAILY;BYHOUR=8,20") expanded into expected dose times.
type Medication struct {
	ID              int64     `json:"id"`
	CareRecipientID int64     `json:"care_recipient_id"`
	Name            string    `json:"name"`
	Dosage          string    `json:"dosage,omitempty"`
	Instructions    string    `json:"instructions,omitempty"`
	ScheduleRule    string    `json:"schedule_rule,omitempty"`
	Active          bool      `json:"active"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// MedicationLog records one administration (or skip/miss) of a medication.
// ScheduledTime holds a timestamp when the dose came from a schedule;
// DateTaken/TimeTaken carry the legacy split form for ad-hoc entries.
// MedicationName is joined from the medications table and may be empty when
// the medication row has been deleted.
type MedicationLog struct {
	ID              int64     `json:"id"`
	MedicationID    *int64    `json:"medication_id"`
	CareRecipientID int64     `json:"care_recipient_id"`
	MedicationName  string    `json:"medication_name,omitempty"`
	ScheduledTime   string    `json:"scheduled_time,omitempty"`
	DateTaken       string    `json:"date_taken,omitempty"`
	TimeTaken       string    `json:"time_taken,omitempty"`
	Status          string    `json:"status"`
	Notes           string    `json:"notes,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}
