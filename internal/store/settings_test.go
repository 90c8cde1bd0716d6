package store

import (
	"testing"

	"github.com/mklatt/careport/internal/database"
)

func setupSettingsTestDB(t *testing.T) *SettingsStore {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewSettingsStore(db)
}

func TestSettingsDefaults(t *testing.T) {
	ss := setupSettingsTestDB(t)

	got, err := ss.Get(SettingTimeFormat)
	if err != nil {
		t.Fatalf("get time format: %v", err)
	}
	if got != "12h" {
		t.Errorf("time_format default = %q, want %q", got, "12h")
	}

	got, err = ss.Get(SettingWeekStart)
	if err != nil {
		t.Fatalf("get week start: %v", err)
	}
	if got != "monday" {
		t.Errorf("week_start default = %q, want %q", got, "monday")
	}

	all, err := ss.GetAll()
	if err != nil {
		t.Fatalf("get all: %v", err)
	}
	if all[SettingBackupEnabled] != "false" {
		t.Errorf("backup_enabled default = %q, want %q", all[SettingBackupEnabled], "false")
	}
}

func TestSettingsSetAndOverride(t *testing.T) {
	ss := setupSettingsTestDB(t)

	if err := ss.Set(SettingTimeFormat, "24h"); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, err := ss.Get(SettingTimeFormat)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != "24h" {
		t.Errorf("time_format = %q, want %q", got, "24h")
	}

	// Upsert overwrites
	if err := ss.Set(SettingTimeFormat, "12h"); err != nil {
		t.Fatalf("set again: %v", err)
	}
	got, _ = ss.Get(SettingTimeFormat)
	if got != "12h" {
		t.Errorf("time_format = %q, want %q", got, "12h")
	}

	// Stored values win over defaults in GetAll
	if err := ss.Set(SettingBackupHour, "5"); err != nil {
		t.Fatalf("set backup hour: %v", err)
	}
	all, err := ss.GetAll()
	if err != nil {
		t.Fatalf("get all: %v", err)
	}
	if all[SettingBackupHour] != "5" {
		t.Errorf("backup_hour = %q, want %q", all[SettingBackupHour], "5")
	}
	if all[SettingWeekStart] != "monday" {
		t.Errorf("week_start = %q, want default %q", all[SettingWeekStart], "monday")
	}
}
