package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mklatt/careport/internal/model"
)

type AppointmentStore struct {
	db *sql.DB
}

func NewAppointmentStore(db *sql.DB) *AppointmentStore {
	return &AppointmentStore{db: db}
}

const appointmentCols = `id, care_recipient_id, title, location, start_time, date, time, status, reminder_minutes, notes, created_at, updated_at`

func scanAppointment(scanner interface{ Scan(...any) error }) (*model.Appointment, error) {
	var a model.Appointment
	var reminder sql.NullInt64
	err := scanner.Scan(
		&a.ID, &a.CareRecipientID, &a.Title, &a.Location, &a.StartTime, &a.Date, &a.TimeOfDay,
		&a.Status, &reminder, &a.Notes, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if reminder.Valid {
		m := int(reminder.Int64)
		a.ReminderMinutes = &m
	}
	return &a, nil
}

func (s *AppointmentStore) Create(recipientID int64, title, location, startTime, status string, reminderMinutes *int, notes string) (*model.Appointment, error) {
	var reminder sql.NullInt64
	if reminderMinutes != nil {
		reminder = sql.NullInt64{Int64: int64(*reminderMinutes), Valid: true}
	}

	result, err := s.db.Exec(
		`INSERT INTO appointments (care_recipient_id, title, location, start_time, status, reminder_minutes, notes)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		recipientID, title, location, startTime, status, reminder, notes,
	)
	if err != nil {
		return nil, fmt.Errorf("insert appointment: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *AppointmentStore) GetByID(id int64) (*model.Appointment, error) {
	a, err := scanAppointment(s.db.QueryRow(
		`SELECT `+appointmentCols+` FROM appointments WHERE id = ?`, id,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query appointment: %w", err)
	}
	return a, nil
}

// List returns every appointment in stored order. Day bucketing and filtering
// happen in the calendar collector, which also tolerates the legacy date/time
// rows this query surfaces unchanged.
func (s *AppointmentStore) List() ([]model.Appointment, error) {
	rows, err := s.db.Query(`SELECT ` + appointmentCols + ` FROM appointments ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}
	defer rows.Close()
	return collectAppointments(rows)
}

// ListByDayRange returns appointments whose calendar day falls within
// [startKey, endKey], matching on either the structured timestamp or the
// legacy date column. Keys are YYYY-MM-DD strings, so string comparison is
// date comparison.
func (s *AppointmentStore) ListByDayRange(startKey, endKey string) ([]model.Appointment, error) {
	rows, err := s.db.Query(
		`SELECT `+appointmentCols+` FROM appointments
		 WHERE (start_time != '' AND substr(start_time, 1, 10) BETWEEN ? AND ?)
		    OR (start_time = '' AND date BETWEEN ? AND ?)
		 ORDER BY id`,
		startKey, endKey, startKey, endKey,
	)
	if err != nil {
		return nil, fmt.Errorf("list appointments by day range: %w", err)
	}
	defer rows.Close()
	return collectAppointments(rows)
}

// ListScheduledWithReminders returns scheduled appointments that carry a
// reminder lead time. The caller filters by actual start instant, since start
// times are stored as strings in mixed layouts.
func (s *AppointmentStore) ListScheduledWithReminders() ([]model.Appointment, error) {
	rows, err := s.db.Query(
		`SELECT `+appointmentCols+` FROM appointments
		 WHERE reminder_minutes IS NOT NULL AND status = ? ORDER BY id`,
		model.AppointmentScheduled,
	)
	if err != nil {
		return nil, fmt.Errorf("list appointments with reminders: %w", err)
	}
	defer rows.Close()
	return collectAppointments(rows)
}

func collectAppointments(rows *sql.Rows) ([]model.Appointment, error) {
	var appointments []model.Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan appointment: %w", err)
		}
		appointments = append(appointments, *a)
	}
	return appointments, rows.Err()
}

func (s *AppointmentStore) Update(id int64, recipientID int64, title, location, startTime, status string, reminderMinutes *int, notes string) (*model.Appointment, error) {
	var reminder sql.NullInt64
	if reminderMinutes != nil {
		reminder = sql.NullInt64{Int64: int64(*reminderMinutes), Valid: true}
	}

	_, err := s.db.Exec(
		`UPDATE appointments
		 SET care_recipient_id = ?, title = ?, location = ?, start_time = ?, date = '', time = '',
		     status = ?, reminder_minutes = ?, notes = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		recipientID, title, location, startTime, status, reminder, notes, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update appointment: %w", err)
	}
	return s.GetByID(id)
}

// Reschedule moves an appointment to a new calendar day, keeping the given
// time-of-day. The write normalizes legacy rows onto start_time. Satisfies
// the calendar drag handler's store port.
func (s *AppointmentStore) Reschedule(ctx context.Context, id int64, date, timeOfDay string) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE appointments
		 SET start_time = ?, date = '', time = '', updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		date+"T"+timeOfDay, id,
	)
	if err != nil {
		return fmt.Errorf("reschedule appointment: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("appointment %d not found", id)
	}
	return nil
}

func (s *AppointmentStore) SetStatus(id int64, status string) error {
	_, err := s.db.Exec(
		`UPDATE appointments SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`, status, id,
	)
	if err != nil {
		return fmt.Errorf("set appointment status: %w", err)
	}
	return nil
}

func (s *AppointmentStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM appointments WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete appointment: %w", err)
	}
	return nil
}
