package store

import (
	"database/sql"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/mklatt/careport/internal/model"
)

type CaregiverStore struct {
	db *sql.DB
}

func NewCaregiverStore(db *sql.DB) *CaregiverStore {
	return &CaregiverStore{db: db}
}

const caregiverCols = `id, name, avatar_emoji, pin_hash, sort_order, created_at, updated_at`

func scanCaregiver(scanner interface{ Scan(...any) error }) (*model.Caregiver, error) {
	var c model.Caregiver
	var pinHash string
	err := scanner.Scan(
		&c.ID, &c.Name, &c.AvatarEmoji, &pinHash, &c.SortOrder, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	c.HasPIN = pinHash != ""
	return &c, nil
}

func (s *CaregiverStore) Create(name, avatarEmoji string) (*model.Caregiver, error) {
	result, err := s.db.Exec(
		`INSERT INTO caregivers (name, avatar_emoji, sort_order)
		 VALUES (?, ?, (SELECT COALESCE(MAX(sort_order), -1) + 1 FROM caregivers))`,
		name, avatarEmoji,
	)
	if err != nil {
		return nil, fmt.Errorf("insert caregiver: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *CaregiverStore) GetByID(id int64) (*model.Caregiver, error) {
	c, err := scanCaregiver(s.db.QueryRow(`SELECT `+caregiverCols+` FROM caregivers WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query caregiver: %w", err)
	}
	return c, nil
}

func (s *CaregiverStore) List() ([]model.Caregiver, error) {
	rows, err := s.db.Query(`SELECT ` + caregiverCols + ` FROM caregivers ORDER BY sort_order, id`)
	if err != nil {
		return nil, fmt.Errorf("list caregivers: %w", err)
	}
	defer rows.Close()

	var caregivers []model.Caregiver
	for rows.Next() {
		c, err := scanCaregiver(rows)
		if err != nil {
			return nil, fmt.Errorf("scan caregiver: %w", err)
		}
		caregivers = append(caregivers, *c)
	}
	return caregivers, rows.Err()
}

func (s *CaregiverStore) Update(id int64, name, avatarEmoji string) (*model.Caregiver, error) {
	_, err := s.db.Exec(
		`UPDATE caregivers SET name = ?, avatar_emoji = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		name, avatarEmoji, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update caregiver: %w", err)
	}
	return s.GetByID(id)
}

// SetPIN hashes and stores the caregiver's PIN. An empty PIN clears it.
func (s *CaregiverStore) SetPIN(id int64, pin string) error {
	hash := ""
	if pin != "" {
		h, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("hash pin: %w", err)
		}
		hash = string(h)
	}
	_, err := s.db.Exec(
		`UPDATE caregivers SET pin_hash = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`, hash, id,
	)
	if err != nil {
		return fmt.Errorf("set caregiver pin: %w", err)
	}
	return nil
}

// VerifyPIN reports whether the PIN matches the stored hash. A caregiver
// without a PIN never verifies.
func (s *CaregiverStore) VerifyPIN(id int64, pin string) (bool, error) {
	var hash string
	err := s.db.QueryRow(`SELECT pin_hash FROM caregivers WHERE id = ?`, id).Scan(&hash)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("query caregiver pin: %w", err)
	}
	if hash == "" {
		return false, nil
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pin)) == nil, nil
}

func (s *CaregiverStore) UpdateSortOrder(ids []int64) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	for i, id := range ids {
		_, err := tx.Exec(
			`UPDATE caregivers SET sort_order = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`, i, id,
		)
		if err != nil {
			return fmt.Errorf("update caregiver sort order: %w", err)
		}
	}
	return tx.Commit()
}

func (s *CaregiverStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM caregivers WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete caregiver: %w", err)
	}
	return nil
}
