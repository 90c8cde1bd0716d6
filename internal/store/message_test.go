package store

import (
	"fmt"
	"testing"

	"github.com/mklatt/careport/internal/database"
)

func setupMessageTestDB(t *testing.T) *MessageStore {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		t.Fatalf("enable foreign keys: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewMessageStore(db)
}

func TestMessageCreateDelete(t *testing.T) {
	ms := setupMessageTestDB(t)

	msg, err := ms.Create(nil, nil, "Mom had a good morning, ate a full breakfast.")
	if err != nil {
		t.Fatalf("create message: %v", err)
	}
	if msg.Body == "" {
		t.Error("expected body")
	}
	if msg.AuthorID != nil {
		t.Errorf("author_id = %v, want nil", msg.AuthorID)
	}

	if err := ms.Delete(msg.ID); err != nil {
		t.Fatalf("delete message: %v", err)
	}
	got, err := ms.GetByID(msg.ID)
	if err != nil {
		t.Fatalf("get after delete: %v", err)
	}
	if got != nil {
		t.Error("expected nil after delete")
	}
}

func TestMessageListLimit(t *testing.T) {
	ms := setupMessageTestDB(t)

	for i := 1; i <= 5; i++ {
		if _, err := ms.Create(nil, nil, fmt.Sprintf("update %d", i)); err != nil {
			t.Fatalf("create message: %v", err)
		}
	}

	// Limit keeps the newest messages but returns them oldest first
	msgs, err := ms.List(3)
	if err != nil {
		t.Fatalf("list messages: %v", err)
	}
	if len(msgs) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(msgs))
	}
	want := []string{"update 3", "update 4", "update 5"}
	for i, m := range msgs {
		if m.Body != want[i] {
			t.Errorf("msgs[%d].Body = %q, want %q", i, m.Body, want[i])
		}
	}

	// Zero limit returns everything
	all, err := ms.List(0)
	if err != nil {
		t.Fatalf("list all messages: %v", err)
	}
	if len(all) != 5 {
		t.Fatalf("expected 5 messages, got %d", len(all))
	}
	if all[0].Body != "update 1" {
		t.Errorf("all[0].Body = %q, want %q", all[0].Body, "update 1")
	}
}
