package store

import (
	"context"
	"testing"

	"github.com/mklatt/careport/internal/database"
	"github.com/mklatt/careport/internal/model"
)

func setupAppointmentTestDB(t *testing.T) (*AppointmentStore, int64) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		t.Fatalf("enable foreign keys: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	recipient, err := NewCareRecipientStore(db).Create("Margaret", "Ellis", "1941-06-02")
	if err != nil {
		t.Fatalf("create recipient: %v", err)
	}
	return NewAppointmentStore(db), recipient.ID
}

func TestAppointmentCRUD(t *testing.T) {
	as, recipientID := setupAppointmentTestDB(t)

	reminder := 60
	appt, err := as.Create(recipientID, "Cardiology follow-up", "St. Luke's", "2026-03-10T14:30:00", model.AppointmentScheduled, &reminder, "bring med list")
	if err != nil {
		t.Fatalf("create appointment: %v", err)
	}
	if appt.Title != "Cardiology follow-up" {
		t.Errorf("title = %q, want %q", appt.Title, "Cardiology follow-up")
	}
	if appt.ReminderMinutes == nil || *appt.ReminderMinutes != 60 {
		t.Errorf("reminder_minutes = %v, want 60", appt.ReminderMinutes)
	}

	got, err := as.GetByID(appt.ID)
	if err != nil {
		t.Fatalf("get appointment: %v", err)
	}
	if got.StartTime != "2026-03-10T14:30:00" {
		t.Errorf("start_time = %q, want %q", got.StartTime, "2026-03-10T14:30:00")
	}

	updated, err := as.Update(appt.ID, recipientID, "Cardiology follow-up", "St. Luke's annex", "2026-03-11T09:00:00", model.AppointmentScheduled, nil, "")
	if err != nil {
		t.Fatalf("update appointment: %v", err)
	}
	if updated.Location != "St. Luke's annex" {
		t.Errorf("location = %q, want %q", updated.Location, "St. Luke's annex")
	}
	if updated.ReminderMinutes != nil {
		t.Errorf("reminder_minutes = %v, want nil", updated.ReminderMinutes)
	}

	if err := as.SetStatus(appt.ID, model.AppointmentCompleted); err != nil {
		t.Fatalf("set status: %v", err)
	}
	got, _ = as.GetByID(appt.ID)
	if got.Status != model.AppointmentCompleted {
		t.Errorf("status = %q, want %q", got.Status, model.AppointmentCompleted)
	}

	if err := as.Delete(appt.ID); err != nil {
		t.Fatalf("delete appointment: %v", err)
	}
	got, err = as.GetByID(appt.ID)
	if err != nil {
		t.Fatalf("get after delete: %v", err)
	}
	if got != nil {
		t.Error("expected nil after delete")
	}
}

func TestAppointmentReschedule(t *testing.T) {
	as, recipientID := setupAppointmentTestDB(t)

	appt, err := as.Create(recipientID, "Physical therapy", "", "2026-03-10T14:30:00", model.AppointmentScheduled, nil, "")
	if err != nil {
		t.Fatalf("create appointment: %v", err)
	}

	if err := as.Reschedule(context.Background(), appt.ID, "2026-03-17", "14:30:00"); err != nil {
		t.Fatalf("reschedule: %v", err)
	}
	got, _ := as.GetByID(appt.ID)
	if got.StartTime != "2026-03-17T14:30:00" {
		t.Errorf("start_time = %q, want %q", got.StartTime, "2026-03-17T14:30:00")
	}

	if err := as.Reschedule(context.Background(), 9999, "2026-03-17", "14:30:00"); err == nil {
		t.Error("expected error rescheduling missing appointment")
	}
}

func TestAppointmentListByDayRange(t *testing.T) {
	as, recipientID := setupAppointmentTestDB(t)

	inRange, err := as.Create(recipientID, "Dentist", "", "2026-03-10T09:00:00", model.AppointmentScheduled, nil, "")
	if err != nil {
		t.Fatalf("create appointment: %v", err)
	}
	if _, err := as.Create(recipientID, "Eye exam", "", "2026-04-01T09:00:00", model.AppointmentScheduled, nil, ""); err != nil {
		t.Fatalf("create appointment: %v", err)
	}

	// Legacy row: empty start_time, split date/time columns
	if _, err := as.db.Exec(
		`INSERT INTO appointments (care_recipient_id, title, start_time, date, time, status)
		 VALUES (?, 'Imported visit', '', '2026-03-12', '10:00', ?)`,
		recipientID, model.AppointmentScheduled,
	); err != nil {
		t.Fatalf("insert legacy row: %v", err)
	}

	appts, err := as.ListByDayRange("2026-03-09", "2026-03-15")
	if err != nil {
		t.Fatalf("list by day range: %v", err)
	}
	if len(appts) != 2 {
		t.Fatalf("expected 2 appointments in range, got %d", len(appts))
	}
	if appts[0].ID != inRange.ID {
		t.Errorf("first id = %d, want %d", appts[0].ID, inRange.ID)
	}
	if appts[1].Title != "Imported visit" {
		t.Errorf("second title = %q, want %q", appts[1].Title, "Imported visit")
	}
}

func TestAppointmentListScheduledWithReminders(t *testing.T) {
	as, recipientID := setupAppointmentTestDB(t)

	reminder := 30
	withReminder, err := as.Create(recipientID, "Bloodwork", "", "2026-03-10T08:00:00", model.AppointmentScheduled, &reminder, "")
	if err != nil {
		t.Fatalf("create appointment: %v", err)
	}
	if _, err := as.Create(recipientID, "No reminder", "", "2026-03-10T09:00:00", model.AppointmentScheduled, nil, ""); err != nil {
		t.Fatalf("create appointment: %v", err)
	}
	cancelled, err := as.Create(recipientID, "Cancelled", "", "2026-03-10T10:00:00", model.AppointmentScheduled, &reminder, "")
	if err != nil {
		t.Fatalf("create appointment: %v", err)
	}
	if err := as.SetStatus(cancelled.ID, model.AppointmentCancelled); err != nil {
		t.Fatalf("set status: %v", err)
	}

	appts, err := as.ListScheduledWithReminders()
	if err != nil {
		t.Fatalf("list with reminders: %v", err)
	}
	if len(appts) != 1 {
		t.Fatalf("expected 1 appointment, got %d", len(appts))
	}
	if appts[0].ID != withReminder.ID {
		t.Errorf("id = %d, want %d", appts[0].ID, withReminder.ID)
	}
}
