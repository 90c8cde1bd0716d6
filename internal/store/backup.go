package store

import (
	"database/sql"
	"fmt"
	"time"
)

type BackupRecord struct {
	ID        int64     `json:"id"`
	ObjectKey string    `json:"object_key"`
	SizeBytes int64     `json:"size_bytes"`
	CreatedAt time.Time `json:"created_at"`
}

type BackupStore struct {
	db *sql.DB
}

func NewBackupStore(db *sql.DB) *BackupStore {
	return &BackupStore{db: db}
}

func (s *BackupStore) Record(objectKey string, sizeBytes int64) error {
	_, err := s.db.Exec(
		`INSERT INTO backups (object_key, size_bytes) VALUES (?, ?)`, objectKey, sizeBytes,
	)
	if err != nil {
		return fmt.Errorf("record backup: %w", err)
	}
	return nil
}

func (s *BackupStore) List(limit int) ([]BackupRecord, error) {
	rows, err := s.db.Query(
		`SELECT id, object_key, size_bytes, created_at FROM backups ORDER BY id DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list backups: %w", err)
	}
	defer rows.Close()

	var records []BackupRecord
	for rows.Next() {
		var r BackupRecord
		if err := rows.Scan(&r.ID, &r.ObjectKey, &r.SizeBytes, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan backup: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

func (s *BackupStore) GetByID(id int64) (*BackupRecord, error) {
	var r BackupRecord
	err := s.db.QueryRow(
		`SELECT id, object_key, size_bytes, created_at FROM backups WHERE id = ?`, id,
	).Scan(&r.ID, &r.ObjectKey, &r.SizeBytes, &r.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query backup: %w", err)
	}
	return &r, nil
}

// DeleteOlderThan removes backup records created before the cutoff and returns
// their object keys so the caller can delete the stored objects too.
func (s *BackupStore) DeleteOlderThan(before time.Time) ([]string, error) {
	rows, err := s.db.Query(`SELECT object_key FROM backups WHERE created_at < ?`, before)
	if err != nil {
		return nil, fmt.Errorf("list old backups: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("scan backup key: %w", err)
		}
		keys = append(keys, key)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if _, err := s.db.Exec(`DELETE FROM backups WHERE created_at < ?`, before); err != nil {
		return nil, fmt.Errorf("delete old backups: %w", err)
	}
	return keys, nil
}

// Latest returns the most recent backup, or nil if none have run.
func (s *BackupStore) Latest() (*BackupRecord, error) {
	var r BackupRecord
	err := s.db.QueryRow(
		`SELECT id, object_key, size_bytes, created_at FROM backups ORDER BY id DESC LIMIT 1`,
	).Scan(&r.ID, &r.ObjectKey, &r.SizeBytes, &r.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query latest backup: %w", err)
	}
	return &r, nil
}
