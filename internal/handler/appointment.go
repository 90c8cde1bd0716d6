package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mklatt/careport/internal/calendar"
	"github.com/mklatt/careport/internal/model"
	"github.com/mklatt/careport/internal/store"
	"github.com/mklatt/careport/internal/websocket"
)

type AppointmentHandler struct {
	appointments *store.AppointmentStore
	recipients   *store.CareRecipientStore
	hub          *websocket.Hub
	logger       *slog.Logger
}

func NewAppointmentHandler(as *store.AppointmentStore, rs *store.CareRecipientStore, hub *websocket.Hub, logger *slog.Logger) *AppointmentHandler {
	return &AppointmentHandler{
		appointments: as,
		recipients:   rs,
		hub:          hub,
		logger:       logger.With("component", "appointment_handler"),
	}
}

func (h *AppointmentHandler) broadcast(msg websocket.Message) {
	if h.hub != nil {
		h.hub.Broadcast(msg)
	}
}

var validAppointmentStatuses = map[string]bool{
	model.AppointmentScheduled: true,
	model.AppointmentCompleted: true,
	model.AppointmentCancelled: true,
}

type appointmentRequest struct {
	CareRecipientID int64  `json:"care_recipient_id"`
	Title           string `json:"title"`
	Location        string `json:"location"`
	StartTime       string `json:"start_time"`
	Status          string `json:"status"`
	ReminderMinutes *int   `json:"reminder_minutes"`
	Notes           string `json:"notes"`
}

var startTimeLayouts = []string{time.RFC3339, "2006-01-02T15:04:05"}

func validStartTime(s string) bool {
	for _, layout := range startTimeLayouts {
		if _, err := time.Parse(layout, s); err == nil {
			return true
		}
	}
	return false
}

func (h *AppointmentHandler) validate(w http.ResponseWriter, r *http.Request) (*appointmentRequest, bool) {
	var req appointmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return nil, false
	}

	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "title is required"})
		return nil, false
	}
	if !validStartTime(req.StartTime) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "start_time must be an ISO timestamp"})
		return nil, false
	}
	if req.Status == "" {
		req.Status = model.AppointmentScheduled
	}
	if !validAppointmentStatuses[req.Status] {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "status must be scheduled, completed, or cancelled"})
		return nil, false
	}
	if req.ReminderMinutes != nil && *req.ReminderMinutes <= 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "reminder_minutes must be positive"})
		return nil, false
	}

	recipient, err := h.recipients.GetByID(req.CareRecipientID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to check care recipient"})
		return nil, false
	}
	if recipient == nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "care recipient not found"})
		return nil, false
	}

	return &req, true
}

func (h *AppointmentHandler) Create(w http.ResponseWriter, r *http.Request) {
	req, ok := h.validate(w, r)
	if !ok {
		return
	}

	appt, err := h.appointments.Create(req.CareRecipientID, req.Title, req.Location, req.StartTime, req.Status, req.ReminderMinutes, req.Notes)
	if err != nil {
		h.logger.Error("create appointment", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to create appointment"})
		return
	}

	h.broadcast(websocket.NewMessage("appointment", "created", appt.ID, nil))
	writeJSON(w, http.StatusCreated, appt)
}

func (h *AppointmentHandler) List(w http.ResponseWriter, r *http.Request) {
	var appointments []model.Appointment
	var err error

	startStr := r.URL.Query().Get("start")
	endStr := r.URL.Query().Get("end")
	if startStr != "" || endStr != "" {
		if _, perr := parseDayParam(startStr); perr != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "start must be YYYY-MM-DD"})
			return
		}
		if _, perr := parseDayParam(endStr); perr != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "end must be YYYY-MM-DD"})
			return
		}
		appointments, err = h.appointments.ListByDayRange(startStr, endStr)
	} else {
		appointments, err = h.appointments.List()
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list appointments"})
		return
	}
	if appointments == nil {
		appointments = []model.Appointment{}
	}
	writeJSON(w, http.StatusOK, appointments)
}

func (h *AppointmentHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	appt, err := h.appointments.GetByID(id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get appointment"})
		return
	}
	if appt == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "appointment not found"})
		return
	}
	writeJSON(w, http.StatusOK, appt)
}

func (h *AppointmentHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	existing, err := h.appointments.GetByID(id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get appointment"})
		return
	}
	if existing == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "appointment not found"})
		return
	}

	req, ok := h.validate(w, r)
	if !ok {
		return
	}

	appt, err := h.appointments.Update(id, req.CareRecipientID, req.Title, req.Location, req.StartTime, req.Status, req.ReminderMinutes, req.Notes)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to update appointment"})
		return
	}

	h.broadcast(websocket.NewMessage("appointment", "updated", id, nil))
	writeJSON(w, http.StatusOK, appt)
}

func (h *AppointmentHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
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
	if !validAppointmentStatuses[req.Status] {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "status must be scheduled, completed, or cancelled"})
		return
	}

	if err := h.appointments.SetStatus(id, req.Status); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to update status"})
		return
	}

	h.broadcast(websocket.NewMessage("appointment", "updated", id, nil))
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Reschedule moves an appointment to another calendar day via the drag state
// machine, preserving its time of day. The response carries the toast messages
// the gesture produced.
func (h *AppointmentHandler) Reschedule(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	var req struct {
		Date string `json:"date"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	target, err := parseDayParam(req.Date)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "date must be YYYY-MM-DD"})
		return
	}

	appt, err := h.appointments.GetByID(id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get appointment"})
		return
	}
	if appt == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "appointment not found"})
		return
	}

	toast := &toastRecorder{}
	drag := calendar.NewDrag(h.appointments, toast)
	drag.Start(calendar.Event{
		Type:      calendar.TypeAppointment,
		Title:     appt.Title,
		Draggable: true,
		Data:      appt,
	})
	if err := drag.Drop(r.Context(), target); err != nil {
		h.logger.Error("reschedule appointment", "id", id, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error":   "failed to reschedule appointment",
			"message": strings.Join(toast.errors, "; "),
		})
		return
	}

	updated, err := h.appointments.GetByID(id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get appointment"})
		return
	}

	h.broadcast(websocket.NewMessage("appointment", "rescheduled", id, map[string]any{"date": req.Date}))
	writeJSON(w, http.StatusOK, map[string]any{
		"appointment": updated,
		"message":     strings.Join(toast.successes, "; "),
	})
}

func (h *AppointmentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	if err := h.appointments.Delete(id); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to delete appointment"})
		return
	}

	h.broadcast(websocket.NewMessage("appointment", "deleted", id, nil))
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// toastRecorder collects gesture outcome messages for the JSON response.
type toastRecorder struct {
	successes []string
	errors    []string
}

func (t *toastRecorder) Success(msg string) { t.successes = append(t.successes, msg) }
func (t *toastRecorder) Error(msg string)   { t.errors = append(t.errors, msg) }
