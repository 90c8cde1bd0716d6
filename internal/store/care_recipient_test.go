package store

import (
	"testing"

	"github.com/mklatt/careport/internal/database"
)

func setupCareRecipientTestDB(t *testing.T) *CareRecipientStore {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		t.Fatalf("enable foreign keys: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewCareRecipientStore(db)
}

func TestCareRecipientCRUD(t *testing.T) {
	rs := setupCareRecipientTestDB(t)

	// Create
	r, err := rs.Create("Margaret", "Ellis", "1941-06-02")
	if err != nil {
		t.Fatalf("create recipient: %v", err)
	}
	if r.FirstName != "Margaret" {
		t.Errorf("first_name = %q, want %q", r.FirstName, "Margaret")
	}
	if r.DateOfBirth != "1941-06-02" {
		t.Errorf("date_of_birth = %q, want %q", r.DateOfBirth, "1941-06-02")
	}

	// Get
	got, err := rs.GetByID(r.ID)
	if err != nil {
		t.Fatalf("get recipient: %v", err)
	}
	if got.LastName != "Ellis" {
		t.Errorf("last_name = %q, want %q", got.LastName, "Ellis")
	}

	// Update
	updated, err := rs.Update(r.ID, "Margaret", "Ellis-Ward", "1941-06-02")
	if err != nil {
		t.Fatalf("update recipient: %v", err)
	}
	if updated.LastName != "Ellis-Ward" {
		t.Errorf("updated last_name = %q, want %q", updated.LastName, "Ellis-Ward")
	}

	// Delete
	if err := rs.Delete(r.ID); err != nil {
		t.Fatalf("delete recipient: %v", err)
	}
	got, err = rs.GetByID(r.ID)
	if err != nil {
		t.Fatalf("get after delete: %v", err)
	}
	if got != nil {
		t.Error("expected nil after delete")
	}
}

func TestCareRecipientSortOrder(t *testing.T) {
	rs := setupCareRecipientTestDB(t)

	a, _ := rs.Create("Arthur", "Finch", "")
	b, _ := rs.Create("Beatrice", "Finch", "")
	c, _ := rs.Create("Clara", "Finch", "")

	// Create assigns ascending sort order
	list, err := rs.List()
	if err != nil {
		t.Fatalf("list recipients: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("expected 3 recipients, got %d", len(list))
	}
	for i, r := range list {
		if r.SortOrder != i {
			t.Errorf("list[%d].SortOrder = %d, want %d", i, r.SortOrder, i)
		}
	}

	// Reorder: list follows the new sequence
	if err := rs.UpdateSortOrder([]int64{c.ID, a.ID, b.ID}); err != nil {
		t.Fatalf("update sort order: %v", err)
	}
	list, err = rs.List()
	if err != nil {
		t.Fatalf("list after reorder: %v", err)
	}
	wantIDs := []int64{c.ID, a.ID, b.ID}
	for i, r := range list {
		if r.ID != wantIDs[i] {
			t.Errorf("list[%d].ID = %d, want %d", i, r.ID, wantIDs[i])
		}
	}
}
