package store

import (
	"testing"

	"github.com/mklatt/careport/internal/database"
	"github.com/mklatt/careport/internal/model"
)

func setupPushTestDB(t *testing.T) (*PushStore, *CaregiverStore) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		t.Fatalf("enable foreign keys: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewPushStore(db), NewCaregiverStore(db)
}

func TestPushSubscribeUpsert(t *testing.T) {
	ps, cs := setupPushTestDB(t)

	cg, err := cs.Create("Dana", "")
	if err != nil {
		t.Fatalf("create caregiver: %v", err)
	}

	sub, err := ps.Subscribe(&cg.ID, "https://push.example/ep1", "p256dh-key", "auth-key", "Dana's phone")
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	if sub.CaregiverID == nil || *sub.CaregiverID != cg.ID {
		t.Errorf("caregiver_id = %v, want %d", sub.CaregiverID, cg.ID)
	}

	// Same endpoint again replaces keys instead of duplicating
	again, err := ps.Subscribe(&cg.ID, "https://push.example/ep1", "p256dh-new", "auth-new", "Dana's phone")
	if err != nil {
		t.Fatalf("resubscribe: %v", err)
	}
	if again.P256dhKey != "p256dh-new" {
		t.Errorf("p256dh = %q, want %q", again.P256dhKey, "p256dh-new")
	}

	subs, err := ps.ListSubscriptions()
	if err != nil {
		t.Fatalf("list subscriptions: %v", err)
	}
	if len(subs) != 1 {
		t.Fatalf("expected 1 subscription, got %d", len(subs))
	}

	if err := ps.DeleteByEndpoint("https://push.example/ep1"); err != nil {
		t.Fatalf("delete by endpoint: %v", err)
	}
	subs, _ = ps.ListSubscriptions()
	if len(subs) != 0 {
		t.Fatalf("expected 0 subscriptions, got %d", len(subs))
	}
}

func TestPushPreferences(t *testing.T) {
	ps, cs := setupPushTestDB(t)

	cg, err := cs.Create("Dana", "")
	if err != nil {
		t.Fatalf("create caregiver: %v", err)
	}

	// Everything defaults on
	prefs, err := ps.GetPreferences(cg.ID)
	if err != nil {
		t.Fatalf("get preferences: %v", err)
	}
	for _, nt := range []string{model.NotifTypeAppointmentReminder, model.NotifTypeDoseDue, model.NotifTypeMessagePosted} {
		if !prefs[nt] {
			t.Errorf("preference %q = false, want default true", nt)
		}
	}

	if err := ps.SetPreference(cg.ID, model.NotifTypeDoseDue, false); err != nil {
		t.Fatalf("set preference: %v", err)
	}
	prefs, _ = ps.GetPreferences(cg.ID)
	if prefs[model.NotifTypeDoseDue] {
		t.Error("dose_due should be disabled")
	}
	if !prefs[model.NotifTypeMessagePosted] {
		t.Error("message_posted should stay enabled")
	}
}

func TestPushSentLog(t *testing.T) {
	ps, _ := setupPushTestDB(t)

	sent, err := ps.WasSent(model.NotifTypeAppointmentReminder, "appointment-7", 60)
	if err != nil {
		t.Fatalf("was sent: %v", err)
	}
	if sent {
		t.Error("nothing recorded yet")
	}

	if err := ps.RecordSent(model.NotifTypeAppointmentReminder, "appointment-7", 60); err != nil {
		t.Fatalf("record sent: %v", err)
	}
	// Recording the same reminder twice is a no-op
	if err := ps.RecordSent(model.NotifTypeAppointmentReminder, "appointment-7", 60); err != nil {
		t.Fatalf("record sent again: %v", err)
	}

	sent, err = ps.WasSent(model.NotifTypeAppointmentReminder, "appointment-7", 60)
	if err != nil {
		t.Fatalf("was sent: %v", err)
	}
	if !sent {
		t.Error("expected sent after record")
	}

	// A different lead window is a distinct reminder
	sent, err = ps.WasSent(model.NotifTypeAppointmentReminder, "appointment-7", 15)
	if err != nil {
		t.Fatalf("was sent: %v", err)
	}
	if sent {
		t.Error("different lead should not match")
	}
}
