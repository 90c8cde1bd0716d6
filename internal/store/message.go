package store

import (
	"database/sql"
	"fmt"

	"github.com/mklatt/careport/internal/model"
)

type MessageStore struct {
	db *sql.DB
}

func NewMessageStore(db *sql.DB) *MessageStore {
	return &MessageStore{db: db}
}

const messageCols = `id, author_id, care_recipient_id, body, created_at`

func scanMessage(scanner interface{ Scan(...any) error }) (*model.Message, error) {
	var m model.Message
	var authorID, recipientID sql.NullInt64
	err := scanner.Scan(&m.ID, &authorID, &recipientID, &m.Body, &m.CreatedAt)
	if err != nil {
		return nil, err
	}
	if authorID.Valid {
		m.AuthorID = &authorID.Int64
	}
	if recipientID.Valid {
		m.CareRecipientID = &recipientID.Int64
	}
	return &m, nil
}

func (s *MessageStore) Create(authorID, recipientID *int64, body string) (*model.Message, error) {
	result, err := s.db.Exec(
		`INSERT INTO messages (author_id, care_recipient_id, body) VALUES (?, ?, ?)`,
		nullID(authorID), nullID(recipientID), body,
	)
	if err != nil {
		return nil, fmt.Errorf("insert message: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *MessageStore) GetByID(id int64) (*model.Message, error) {
	m, err := scanMessage(s.db.QueryRow(`SELECT `+messageCols+` FROM messages WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query message: %w", err)
	}
	return m, nil
}

// List returns the most recent messages, oldest first so the board reads
// top-down. A limit of 0 returns everything.
func (s *MessageStore) List(limit int) ([]model.Message, error) {
	var rows *sql.Rows
	var err error
	if limit > 0 {
		rows, err = s.db.Query(
			`SELECT `+messageCols+` FROM (
				SELECT `+messageCols+` FROM messages ORDER BY id DESC LIMIT ?
			 ) ORDER BY id`, limit,
		)
	} else {
		rows, err = s.db.Query(`SELECT ` + messageCols + ` FROM messages ORDER BY id`)
	}
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	var messages []model.Message
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		messages = append(messages, *m)
	}
	return messages, rows.Err()
}

func (s *MessageStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM messages WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete message: %w", err)
	}
	return nil
}
