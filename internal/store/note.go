package store

import (
	"database/sql"
	"fmt"

	"github.com/mklatt/careport/internal/model"
)

type NoteStore struct {
	db *sql.DB
}

func NewNoteStore(db *sql.DB) *NoteStore {
	return &NoteStore{db: db}
}

const noteCols = `id, care_recipient_id, author_id, title, body, category, pinned, created_at, updated_at`

func scanNote(scanner interface{ Scan(...any) error }) (*model.CareNote, error) {
	var n model.CareNote
	var recipientID, authorID sql.NullInt64
	var pinned int
	err := scanner.Scan(
		&n.ID, &recipientID, &authorID, &n.Title, &n.Body, &n.Category,
		&pinned, &n.CreatedAt, &n.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	n.Pinned = pinned != 0
	if recipientID.Valid {
		n.CareRecipientID = &recipientID.Int64
	}
	if authorID.Valid {
		n.AuthorID = &authorID.Int64
	}
	return &n, nil
}

func (s *NoteStore) Create(recipientID, authorID *int64, title, body, category string) (*model.CareNote, error) {
	result, err := s.db.Exec(
		`INSERT INTO care_notes (care_recipient_id, author_id, title, body, category)
		 VALUES (?, ?, ?, ?, ?)`,
		nullID(recipientID), nullID(authorID), title, body, category,
	)
	if err != nil {
		return nil, fmt.Errorf("insert care note: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *NoteStore) GetByID(id int64) (*model.CareNote, error) {
	n, err := scanNote(s.db.QueryRow(`SELECT `+noteCols+` FROM care_notes WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query care note: %w", err)
	}
	return n, nil
}

// List returns pinned notes first, newest first within each group.
func (s *NoteStore) List() ([]model.CareNote, error) {
	rows, err := s.db.Query(
		`SELECT ` + noteCols + ` FROM care_notes ORDER BY pinned DESC, created_at DESC, id DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list care notes: %w", err)
	}
	defer rows.Close()

	var notes []model.CareNote
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, fmt.Errorf("scan care note: %w", err)
		}
		notes = append(notes, *n)
	}
	return notes, rows.Err()
}

func (s *NoteStore) Update(id int64, recipientID, authorID *int64, title, body, category string) (*model.CareNote, error) {
	_, err := s.db.Exec(
		`UPDATE care_notes
		 SET care_recipient_id = ?, author_id = ?, title = ?, body = ?, category = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		nullID(recipientID), nullID(authorID), title, body, category, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update care note: %w", err)
	}
	return s.GetByID(id)
}

func (s *NoteStore) TogglePinned(id int64) (*model.CareNote, error) {
	_, err := s.db.Exec(
		`UPDATE care_notes SET pinned = 1 - pinned, updated_at = CURRENT_TIMESTAMP WHERE id = ?`, id,
	)
	if err != nil {
		return nil, fmt.Errorf("toggle note pin: %w", err)
	}
	return s.GetByID(id)
}

func (s *NoteStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM care_notes WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete care note: %w", err)
	}
	return nil
}
