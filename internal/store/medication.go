package store

import (
	"database/sql"
	"fmt"

	"github.com/mklatt/careport/internal/model"
)

type MedicationStore struct {
	db *sql.DB
}

func NewMedicationStore(db *sql.DB) *MedicationStore {
	return &MedicationStore{db: db}
}

const medicationCols = `id, care_recipient_id, name, dosage, instructions, schedule_rule, active, created_at, updated_at`

func scanMedication(scanner interface{ Scan(...any) error }) (*model.Medication, error) {
	var m model.Medication
	var active int
	err := scanner.Scan(
		&m.ID, &m.CareRecipientID, &m.Name, &m.Dosage, &m.Instructions,
		&m.ScheduleRule, &active, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	m.Active = active != 0
	return &m, nil
}

func (s *MedicationStore) Create(recipientID int64, name, dosage, instructions, scheduleRule string) (*model.Medication, error) {
	result, err := s.db.Exec(
		`INSERT INTO medications (care_recipient_id, name, dosage, instructions, schedule_rule)
		 VALUES (?, ?, ?, ?, ?)`,
		recipientID, name, dosage, instructions, scheduleRule,
	)
	if err != nil {
		return nil, fmt.Errorf("insert medication: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *MedicationStore) GetByID(id int64) (*model.Medication, error) {
	m, err := scanMedication(s.db.QueryRow(`SELECT `+medicationCols+` FROM medications WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query medication: %w", err)
	}
	return m, nil
}

func (s *MedicationStore) List() ([]model.Medication, error) {
	rows, err := s.db.Query(`SELECT ` + medicationCols + ` FROM medications ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list medications: %w", err)
	}
	defer rows.Close()
	return collectMedications(rows)
}

// ListActive returns medications with a schedule still in effect; the dose
// reminder scheduler expands these.
func (s *MedicationStore) ListActive() ([]model.Medication, error) {
	rows, err := s.db.Query(`SELECT ` + medicationCols + ` FROM medications WHERE active = 1 ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list active medications: %w", err)
	}
	defer rows.Close()
	return collectMedications(rows)
}

func collectMedications(rows *sql.Rows) ([]model.Medication, error) {
	var meds []model.Medication
	for rows.Next() {
		m, err := scanMedication(rows)
		if err != nil {
			return nil, fmt.Errorf("scan medication: %w", err)
		}
		meds = append(meds, *m)
	}
	return meds, rows.Err()
}

func (s *MedicationStore) Update(id, recipientID int64, name, dosage, instructions, scheduleRule string, active bool) (*model.Medication, error) {
	var activeInt int
	if active {
		activeInt = 1
	}
	_, err := s.db.Exec(
		`UPDATE medications
		 SET care_recipient_id = ?, name = ?, dosage = ?, instructions = ?, schedule_rule = ?,
		     active = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		recipientID, name, dosage, instructions, scheduleRule, activeInt, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update medication: %w", err)
	}
	return s.GetByID(id)
}

func (s *MedicationStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM medications WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete medication: %w", err)
	}
	return nil
}

const medicationLogCols = `l.id, l.medication_id, l.care_recipient_id, COALESCE(m.name, ''), l.scheduled_time, l.date_taken, l.time_taken, l.status, l.notes, l.created_at`

func scanMedicationLog(scanner interface{ Scan(...any) error }) (*model.MedicationLog, error) {
	var l model.MedicationLog
	var medID sql.NullInt64
	err := scanner.Scan(
		&l.ID, &medID, &l.CareRecipientID, &l.MedicationName, &l.ScheduledTime,
		&l.DateTaken, &l.TimeTaken, &l.Status, &l.Notes, &l.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if medID.Valid {
		l.MedicationID = &medID.Int64
	}
	return &l, nil
}

func (s *MedicationStore) CreateLog(medicationID *int64, recipientID int64, scheduledTime, dateTaken, timeTaken, status, notes string) (*model.MedicationLog, error) {
	result, err := s.db.Exec(
		`INSERT INTO medication_logs (medication_id, care_recipient_id, scheduled_time, date_taken, time_taken, status, notes)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		nullID(medicationID), recipientID, scheduledTime, dateTaken, timeTaken, status, notes,
	)
	if err != nil {
		return nil, fmt.Errorf("insert medication log: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetLogByID(id)
}

func (s *MedicationStore) GetLogByID(id int64) (*model.MedicationLog, error) {
	l, err := scanMedicationLog(s.db.QueryRow(
		`SELECT `+medicationLogCols+` FROM medication_logs l
		 LEFT JOIN medications m ON m.id = l.medication_id
		 WHERE l.id = ?`, id,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query medication log: %w", err)
	}
	return l, nil
}

// ListLogs returns every log with its medication name joined in, in stored
// order, for the calendar collector.
func (s *MedicationStore) ListLogs() ([]model.MedicationLog, error) {
	rows, err := s.db.Query(
		`SELECT ` + medicationLogCols + ` FROM medication_logs l
		 LEFT JOIN medications m ON m.id = l.medication_id
		 ORDER BY l.id`,
	)
	if err != nil {
		return nil, fmt.Errorf("list medication logs: %w", err)
	}
	defer rows.Close()

	var logs []model.MedicationLog
	for rows.Next() {
		l, err := scanMedicationLog(rows)
		if err != nil {
			return nil, fmt.Errorf("scan medication log: %w", err)
		}
		logs = append(logs, *l)
	}
	return logs, rows.Err()
}

func (s *MedicationStore) UpdateLogStatus(id int64, status string) error {
	_, err := s.db.Exec(`UPDATE medication_logs SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		return fmt.Errorf("update medication log status: %w", err)
	}
	return nil
}

func (s *MedicationStore) DeleteLog(id int64) error {
	_, err := s.db.Exec(`DELETE FROM medication_logs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete medication log: %w", err)
	}
	return nil
}
