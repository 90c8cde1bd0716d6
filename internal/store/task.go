package store

import (
	"database/sql"
	"fmt"

	"github.com/mklatt/careport/internal/model"
)

type TaskStore struct {
	db *sql.DB
}

func NewTaskStore(db *sql.DB) *TaskStore {
	return &TaskStore{db: db}
}

const taskCols = `id, care_recipient_id, assigned_to, title, description, due_date, status, priority, created_at, updated_at`

func scanTask(scanner interface{ Scan(...any) error }) (*model.Task, error) {
	var t model.Task
	var recipientID, assignedTo sql.NullInt64
	err := scanner.Scan(
		&t.ID, &recipientID, &assignedTo, &t.Title, &t.Description, &t.DueDate,
		&t.Status, &t.Priority, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if recipientID.Valid {
		t.CareRecipientID = &recipientID.Int64
	}
	if assignedTo.Valid {
		t.AssignedTo = &assignedTo.Int64
	}
	return &t, nil
}

func (s *TaskStore) Create(recipientID, assignedTo *int64, title, description, dueDate, priority string) (*model.Task, error) {
	result, err := s.db.Exec(
		`INSERT INTO tasks (care_recipient_id, assigned_to, title, description, due_date, status, priority)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		nullID(recipientID), nullID(assignedTo), title, description, dueDate, model.TaskPending, priority,
	)
	if err != nil {
		return nil, fmt.Errorf("insert task: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *TaskStore) GetByID(id int64) (*model.Task, error) {
	t, err := scanTask(s.db.QueryRow(`SELECT `+taskCols+` FROM tasks WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query task: %w", err)
	}
	return t, nil
}

func (s *TaskStore) List() ([]model.Task, error) {
	rows, err := s.db.Query(`SELECT ` + taskCols + ` FROM tasks ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()
	return collectTasks(rows)
}

// ListOpen returns tasks that still occupy a calendar slot.
func (s *TaskStore) ListOpen() ([]model.Task, error) {
	rows, err := s.db.Query(
		`SELECT `+taskCols+` FROM tasks WHERE status NOT IN (?, ?) ORDER BY id`,
		model.TaskCompleted, model.TaskCancelled,
	)
	if err != nil {
		return nil, fmt.Errorf("list open tasks: %w", err)
	}
	defer rows.Close()
	return collectTasks(rows)
}

func collectTasks(rows *sql.Rows) ([]model.Task, error) {
	var tasks []model.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, *t)
	}
	return tasks, rows.Err()
}

func (s *TaskStore) Update(id int64, recipientID, assignedTo *int64, title, description, dueDate, status, priority string) (*model.Task, error) {
	_, err := s.db.Exec(
		`UPDATE tasks
		 SET care_recipient_id = ?, assigned_to = ?, title = ?, description = ?, due_date = ?,
		     status = ?, priority = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		nullID(recipientID), nullID(assignedTo), title, description, dueDate, status, priority, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}
	return s.GetByID(id)
}

func (s *TaskStore) SetStatus(id int64, status string) error {
	_, err := s.db.Exec(
		`UPDATE tasks SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`, status, id,
	)
	if err != nil {
		return fmt.Errorf("set task status: %w", err)
	}
	return nil
}

func (s *TaskStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	return nil
}

func nullID(id *int64) sql.NullInt64 {
	if id == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *id, Valid: true}
}
