package model

import "time"

const (
	TaskPending    = "pending"
	TaskInProgress = "in_progress"
	TaskCompleted  = "completed"
	TaskCancelled  = "cancelled"
)

const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
	PriorityUrgent = "urgent"
)

type Task struct {
	ID              int64     `json:"id"`
	CareRecipientID *int64    `json:"care_recipient_id"`
	AssignedTo      *int64    `json:"assigned_to"`
	Title           string    `json:"title"`
	Description     string    `json:"description,omitempty"`
	DueDate         string    `json:"due_date,omitempty"`
	Status          string    `json:"status"`
	Priority        string    `json:"priority"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}
