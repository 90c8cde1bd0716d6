package store

import (
	"testing"

	"github.com/mklatt/careport/internal/database"
)

func setupCaregiverTestDB(t *testing.T) *CaregiverStore {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		t.Fatalf("enable foreign keys: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewCaregiverStore(db)
}

func TestCaregiverCRUD(t *testing.T) {
	cs := setupCaregiverTestDB(t)

	cg, err := cs.Create("Dana", "🦉")
	if err != nil {
		t.Fatalf("create caregiver: %v", err)
	}
	if cg.Name != "Dana" {
		t.Errorf("name = %q, want %q", cg.Name, "Dana")
	}
	if cg.HasPIN {
		t.Error("new caregiver should have no PIN")
	}

	updated, err := cs.Update(cg.ID, "Dana R.", "🦊")
	if err != nil {
		t.Fatalf("update caregiver: %v", err)
	}
	if updated.AvatarEmoji != "🦊" {
		t.Errorf("avatar = %q, want %q", updated.AvatarEmoji, "🦊")
	}

	if err := cs.Delete(cg.ID); err != nil {
		t.Fatalf("delete caregiver: %v", err)
	}
	got, err := cs.GetByID(cg.ID)
	if err != nil {
		t.Fatalf("get after delete: %v", err)
	}
	if got != nil {
		t.Error("expected nil after delete")
	}
}

func TestCaregiverPIN(t *testing.T) {
	cs := setupCaregiverTestDB(t)

	cg, err := cs.Create("Dana", "")
	if err != nil {
		t.Fatalf("create caregiver: %v", err)
	}

	// No PIN set: verification fails without error
	ok, err := cs.VerifyPIN(cg.ID, "1234")
	if err != nil {
		t.Fatalf("verify pin: %v", err)
	}
	if ok {
		t.Error("verification should fail with no PIN set")
	}

	if err := cs.SetPIN(cg.ID, "4812"); err != nil {
		t.Fatalf("set pin: %v", err)
	}
	got, _ := cs.GetByID(cg.ID)
	if !got.HasPIN {
		t.Error("expected HasPIN after set")
	}

	ok, err = cs.VerifyPIN(cg.ID, "4812")
	if err != nil {
		t.Fatalf("verify pin: %v", err)
	}
	if !ok {
		t.Error("correct PIN should verify")
	}

	ok, err = cs.VerifyPIN(cg.ID, "0000")
	if err != nil {
		t.Fatalf("verify wrong pin: %v", err)
	}
	if ok {
		t.Error("wrong PIN should not verify")
	}

	// Missing caregiver
	ok, err = cs.VerifyPIN(9999, "4812")
	if err != nil {
		t.Fatalf("verify missing caregiver: %v", err)
	}
	if ok {
		t.Error("missing caregiver should not verify")
	}

	// Clear
	if err := cs.SetPIN(cg.ID, ""); err != nil {
		t.Fatalf("clear pin: %v", err)
	}
	got, _ = cs.GetByID(cg.ID)
	if got.HasPIN {
		t.Error("expected HasPIN cleared")
	}
}

func TestCaregiverSortOrder(t *testing.T) {
	cs := setupCaregiverTestDB(t)

	a, _ := cs.Create("Avery", "")
	b, _ := cs.Create("Blake", "")

	if err := cs.UpdateSortOrder([]int64{b.ID, a.ID}); err != nil {
		t.Fatalf("update sort order: %v", err)
	}

	list, err := cs.List()
	if err != nil {
		t.Fatalf("list caregivers: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 caregivers, got %d", len(list))
	}
	if list[0].ID != b.ID || list[1].ID != a.ID {
		t.Errorf("order = [%d %d], want [%d %d]", list[0].ID, list[1].ID, b.ID, a.ID)
	}
}
