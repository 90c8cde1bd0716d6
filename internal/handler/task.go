package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/mklatt/careport/internal/model"
	"github.com/mklatt/careport/internal/store"
	"github.com/mklatt/careport/internal/websocket"
)

type TaskHandler struct {
	tasks      *store.TaskStore
	recipients *store.CareRecipientStore
	caregivers *store.CaregiverStore
	hub        *websocket.Hub
	logger     *slog.Logger
}

func NewTaskHandler(ts *store.TaskStore, rs *store.CareRecipientStore, cs *store.CaregiverStore, hub *websocket.Hub, logger *slog.Logger) *TaskHandler {
	return &TaskHandler{
		tasks:      ts,
		recipients: rs,
		caregivers: cs,
		hub:        hub,
		logger:     logger.With("component", "task_handler"),
	}
}

func (h *TaskHandler) broadcast(msg websocket.Message) {
	if h.hub != nil {
		h.hub.Broadcast(msg)
	}
}

var validTaskStatuses = map[string]bool{
	model.TaskPending:    true,
	model.TaskInProgress: true,
	model.TaskCompleted:  true,
	model.TaskCancelled:  true,
}

var validTaskPriorities = map[string]bool{
	model.PriorityUrgent: true,
	model.PriorityHigh:   true,
	model.PriorityMedium: true,
	model.PriorityLow:    true,
}

type taskRequest struct {
	CareRecipientID *int64 `json:"care_recipient_id"`
	AssignedTo      *int64 `json:"assigned_to"`
	Title           string `json:"title"`
	Description     string `json:"description"`
	DueDate         string `json:"due_date"`
	Status          string `json:"status"`
	Priority        string `json:"priority"`
}

func (h *TaskHandler) validate(w http.ResponseWriter, r *http.Request) (*taskRequest, bool) {
	var req taskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return nil, false
	}

	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "title is required"})
		return nil, false
	}
	if req.DueDate != "" {
		if _, err := parseDayParam(req.DueDate); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "due_date must be YYYY-MM-DD"})
			return nil, false
		}
	}
	if req.Priority == "" {
		req.Priority = model.PriorityMedium
	}
	if !validTaskPriorities[req.Priority] {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "priority must be urgent, high, medium, or low"})
		return nil, false
	}
	if req.Status == "" {
		req.Status = model.TaskPending
	}
	if !validTaskStatuses[req.Status] {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid status"})
		return nil, false
	}

	if req.CareRecipientID != nil {
		recipient, err := h.recipients.GetByID(*req.CareRecipientID)
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to check care recipient"})
			return nil, false
		}
		if recipient == nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "care recipient not found"})
			return nil, false
		}
	}
	if req.AssignedTo != nil {
		caregiver, err := h.caregivers.GetByID(*req.AssignedTo)
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to check caregiver"})
			return nil, false
		}
		if caregiver == nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "caregiver not found"})
			return nil, false
		}
	}

	return &req, true
}

func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	req, ok := h.validate(w, r)
	if !ok {
		return
	}

	task, err := h.tasks.Create(req.CareRecipientID, req.AssignedTo, req.Title, req.Description, req.DueDate, req.Priority)
	if err != nil {
		h.logger.Error("create task", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to create task"})
		return
	}

	h.broadcast(websocket.NewMessage("task", "created", task.ID, nil))
	writeJSON(w, http.StatusCreated, task)
}

func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	var tasks []model.Task
	var err error

	if r.URL.Query().Get("open") == "true" {
		tasks, err = h.tasks.ListOpen()
	} else {
		tasks, err = h.tasks.List()
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list tasks"})
		return
	}
	if tasks == nil {
		tasks = []model.Task{}
	}
	writeJSON(w, http.StatusOK, tasks)
}

func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	task, err := h.tasks.GetByID(id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get task"})
		return
	}
	if task == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "task not found"})
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	existing, err := h.tasks.GetByID(id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get task"})
		return
	}
	if existing == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "task not found"})
		return
	}

	req, ok := h.validate(w, r)
	if !ok {
		return
	}

	task, err := h.tasks.Update(id, req.CareRecipientID, req.AssignedTo, req.Title, req.Description, req.DueDate, req.Status, req.Priority)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to update task"})
		return
	}

	h.broadcast(websocket.NewMessage("task", "updated", id, nil))
	writeJSON(w, http.StatusOK, task)
}

func (h *TaskHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	if !validTaskStatuses[req.Status] {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid status"})
		return
	}

	if err := h.tasks.SetStatus(id, req.Status); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to update status"})
		return
	}

	h.broadcast(websocket.NewMessage("task", "updated", id, nil))
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	if err := h.tasks.Delete(id); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to delete task"})
		return
	}

	h.broadcast(websocket.NewMessage("task", "deleted", id, nil))
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
