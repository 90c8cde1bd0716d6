package store

import (
	"database/sql"
	"fmt"

	"github.com/mklatt/careport/internal/model"
)

type CareRecipientStore struct {
	db *sql.DB
}

func NewCareRecipientStore(db *sql.DB) *CareRecipientStore {
	return &CareRecipientStore{db: db}
}

const careRecipientCols = `id, first_name, last_name, date_of_birth, sort_order, created_at, updated_at`

func scanCareRecipient(scanner interface{ Scan(...any) error }) (*model.CareRecipient, error) {
	var r model.CareRecipient
	err := scanner.Scan(&r.ID, &r.FirstName, &r.LastName, &r.DateOfBirth, &r.SortOrder, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *CareRecipientStore) Create(firstName, lastName, dateOfBirth string) (*model.CareRecipient, error) {
	result, err := s.db.Exec(
		`INSERT INTO care_recipients (first_name, last_name, date_of_birth, sort_order)
		 VALUES (?, ?, ?, (SELECT COALESCE(MAX(sort_order), -1) + 1 FROM care_recipients))`,
		firstName, lastName, dateOfBirth,
	)
	if err != nil {
		return nil, fmt.Errorf("insert care recipient: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *CareRecipientStore) GetByID(id int64) (*model.CareRecipient, error) {
	r, err := scanCareRecipient(s.db.QueryRow(
		`SELECT `+careRecipientCols+` FROM care_recipients WHERE id = ?`, id,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query care recipient: %w", err)
	}
	return r, nil
}

// List returns recipients in display order. This order also determines each
// recipient's calendar color.
func (s *CareRecipientStore) List() ([]model.CareRecipient, error) {
	rows, err := s.db.Query(
		`SELECT ` + careRecipientCols + ` FROM care_recipients ORDER BY sort_order, id`,
	)
	if err != nil {
		return nil, fmt.Errorf("list care recipients: %w", err)
	}
	defer rows.Close()

	var recipients []model.CareRecipient
	for rows.Next() {
		r, err := scanCareRecipient(rows)
		if err != nil {
			return nil, fmt.Errorf("scan care recipient: %w", err)
		}
		recipients = append(recipients, *r)
	}
	return recipients, rows.Err()
}

func (s *CareRecipientStore) Update(id int64, firstName, lastName, dateOfBirth string) (*model.CareRecipient, error) {
	_, err := s.db.Exec(
		`UPDATE care_recipients
		 SET first_name = ?, last_name = ?, date_of_birth = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		firstName, lastName, dateOfBirth, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update care recipient: %w", err)
	}
	return s.GetByID(id)
}

func (s *CareRecipientStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM care_recipients WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete care recipient: %w", err)
	}
	return nil
}

// UpdateSortOrder reorders recipients to match the given id sequence.
// Callers should know this reassigns calendar colors.
func (s *CareRecipientStore) UpdateSortOrder(ids []int64) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	for i, id := range ids {
		if _, err := tx.Exec(
			`UPDATE care_recipients SET sort_order = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`, i, id,
		); err != nil {
			return fmt.Errorf("update sort order: %w", err)
		}
	}
	return tx.Commit()
}
