package store

import (
	"testing"

	"github.com/mklatt/careport/internal/database"
	"github.com/mklatt/careport/internal/model"
)

func setupTaskTestDB(t *testing.T) (*TaskStore, *CareRecipientStore, *CaregiverStore) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		t.Fatalf("enable foreign keys: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewTaskStore(db), NewCareRecipientStore(db), NewCaregiverStore(db)
}

func TestTaskCRUD(t *testing.T) {
	ts, rs, cs := setupTaskTestDB(t)

	recipient, err := rs.Create("Margaret", "Ellis", "")
	if err != nil {
		t.Fatalf("create recipient: %v", err)
	}
	caregiver, err := cs.Create("Dana", "🦉")
	if err != nil {
		t.Fatalf("create caregiver: %v", err)
	}

	task, err := ts.Create(&recipient.ID, &caregiver.ID, "Pick up prescription", "refill at the pharmacy", "2026-03-10", model.PriorityHigh)
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	if task.Status != model.TaskPending {
		t.Errorf("status = %q, want %q", task.Status, model.TaskPending)
	}
	if task.AssignedTo == nil || *task.AssignedTo != caregiver.ID {
		t.Errorf("assigned_to = %v, want %d", task.AssignedTo, caregiver.ID)
	}

	// Unassigned, no recipient
	loose, err := ts.Create(nil, nil, "Call insurance", "", "", model.PriorityLow)
	if err != nil {
		t.Fatalf("create unassigned task: %v", err)
	}
	if loose.CareRecipientID != nil || loose.AssignedTo != nil {
		t.Error("expected nil foreign keys on unassigned task")
	}

	updated, err := ts.Update(task.ID, &recipient.ID, nil, "Pick up prescription", "", "2026-03-11", model.TaskInProgress, model.PriorityUrgent)
	if err != nil {
		t.Fatalf("update task: %v", err)
	}
	if updated.Priority != model.PriorityUrgent {
		t.Errorf("priority = %q, want %q", updated.Priority, model.PriorityUrgent)
	}
	if updated.AssignedTo != nil {
		t.Errorf("assigned_to = %v, want nil", updated.AssignedTo)
	}

	if err := ts.Delete(loose.ID); err != nil {
		t.Fatalf("delete task: %v", err)
	}
	got, err := ts.GetByID(loose.ID)
	if err != nil {
		t.Fatalf("get after delete: %v", err)
	}
	if got != nil {
		t.Error("expected nil after delete")
	}
}

func TestTaskListOpen(t *testing.T) {
	ts, _, _ := setupTaskTestDB(t)

	open, err := ts.Create(nil, nil, "Open task", "", "2026-03-10", model.PriorityMedium)
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	done, err := ts.Create(nil, nil, "Done task", "", "2026-03-10", model.PriorityMedium)
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	dropped, err := ts.Create(nil, nil, "Dropped task", "", "2026-03-10", model.PriorityMedium)
	if err != nil {
		t.Fatalf("create task: %v", err)
	}

	if err := ts.SetStatus(done.ID, model.TaskCompleted); err != nil {
		t.Fatalf("set status: %v", err)
	}
	if err := ts.SetStatus(dropped.ID, model.TaskCancelled); err != nil {
		t.Fatalf("set status: %v", err)
	}

	tasks, err := ts.ListOpen()
	if err != nil {
		t.Fatalf("list open: %v", err)
	}
	if len(tasks) != 1 {
		t.Fatalf("expected 1 open task, got %d", len(tasks))
	}
	if tasks[0].ID != open.ID {
		t.Errorf("id = %d, want %d", tasks[0].ID, open.ID)
	}
}
