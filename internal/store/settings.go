package store

import (
	"database/sql"
	"fmt"
)

// Settings keys with server-side defaults.
const (
	SettingTimeFormat      = "time_format" // "12h" or "24h"
	SettingWeekStart       = "week_start"  // "monday" or "sunday"
	SettingBackupEnabled   = "backup_enabled"
	SettingBackupHour      = "backup_hour" // UTC hour for the nightly backup
	SettingBackupRetention = "backup_retention_days"
)

var settingDefaults = map[string]string{
	SettingTimeFormat:      "12h",
	SettingWeekStart:       "monday",
	SettingBackupEnabled:   "false",
	SettingBackupHour:      "3",
	SettingBackupRetention: "30",
}

type SettingsStore struct {
	db *sql.DB
}

func NewSettingsStore(db *sql.DB) *SettingsStore {
	return &SettingsStore{db: db}
}

// Get returns the stored value, or the default for known keys, or "".
func (s *SettingsStore) Get(key string) (string, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return settingDefaults[key], nil
	}
	if err != nil {
		return "", fmt.Errorf("query setting: %w", err)
	}
	return value, nil
}

// GetAll returns every stored setting merged over the defaults.
func (s *SettingsStore) GetAll() (map[string]string, error) {
	settings := make(map[string]string, len(settingDefaults))
	for k, v := range settingDefaults {
		settings[k] = v
	}

	rows, err := s.db.Query(`SELECT key, value FROM settings`)
	if err != nil {
		return nil, fmt.Errorf("list settings: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, fmt.Errorf("scan setting: %w", err)
		}
		settings[k] = v
	}
	return settings, rows.Err()
}

func (s *SettingsStore) Set(key, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO settings (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("set setting: %w", err)
	}
	return nil
}
