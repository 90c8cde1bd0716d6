package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mklatt/careport/internal/model"
	"github.com/mklatt/careport/internal/schedule"
	"github.com/mklatt/careport/internal/store"
	"github.com/mklatt/careport/internal/websocket"
)

type MedicationHandler struct {
	medications *store.MedicationStore
	recipients  *store.CareRecipientStore
	hub         *websocket.Hub
	logger      *slog.Logger
}

func NewMedicationHandler(ms *store.MedicationStore, rs *store.CareRecipientStore, hub *websocket.Hub, logger *slog.Logger) *MedicationHandler {
	return &MedicationHandler{
		medications: ms,
		recipients:  rs,
		hub:         hub,
		logger:      logger.With("component", "medication_handler"),
	}
}

func (h *MedicationHandler) broadcast(msg websocket.Message) {
	if h.hub != nil {
		h.hub.Broadcast(msg)
	}
}

var validDoseStatuses = map[string]bool{
	model.DoseTaken:   true,
	model.DoseSkipped: true,
	model.DoseMissed:  true,
}

type medicationRequest struct {
	CareRecipientID int64  `json:"care_recipient_id"`
	Name            string `json:"name"`
	Dosage          string `json:"dosage"`
	Instructions    string `json:"instructions"`
	ScheduleRule    string `json:"schedule_rule"`
	Active          *bool  `json:"active"`
}

func (h *MedicationHandler) validate(w http.ResponseWriter, r *http.Request) (*medicationRequest, bool) {
	var req medicationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return nil, false
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return nil, false
	}
	if req.ScheduleRule != "" {
		if _, err := schedule.Parse(req.ScheduleRule); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "schedule_rule must be a valid RRULE"})
			return nil, false
		}
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

func (h *MedicationHandler) Create(w http.ResponseWriter, r *http.Request) {
	req, ok := h.validate(w, r)
	if !ok {
		return
	}

	med, err := h.medications.Create(req.CareRecipientID, req.Name, req.Dosage, req.Instructions, req.ScheduleRule)
	if err != nil {
		h.logger.Error("create medication", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to create medication"})
		return
	}

	h.broadcast(websocket.NewMessage("medication", "created", med.ID, nil))
	writeJSON(w, http.StatusCreated, med)
}

func (h *MedicationHandler) List(w http.ResponseWriter, r *http.Request) {
	var meds []model.Medication
	var err error

	if r.URL.Query().Get("active") == "true" {
		meds, err = h.medications.ListActive()
	} else {
		meds, err = h.medications.List()
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list medications"})
		return
	}
	if meds == nil {
		meds = []model.Medication{}
	}
	writeJSON(w, http.StatusOK, meds)
}

func (h *MedicationHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	med, err := h.medications.GetByID(id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get medication"})
		return
	}
	if med == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "medication not found"})
		return
	}
	writeJSON(w, http.StatusOK, med)
}

func (h *MedicationHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	existing, err := h.medications.GetByID(id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get medication"})
		return
	}
	if existing == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "medication not found"})
		return
	}

	req, ok := h.validate(w, r)
	if !ok {
		return
	}

	active := existing.Active
	if req.Active != nil {
		active = *req.Active
	}

	med, err := h.medications.Update(id, req.CareRecipientID, req.Name, req.Dosage, req.Instructions, req.ScheduleRule, active)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to update medication"})
		return
	}

	h.broadcast(websocket.NewMessage("medication", "updated", id, nil))
	writeJSON(w, http.StatusOK, med)
}

func (h *MedicationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	if err := h.medications.Delete(id); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to delete medication"})
		return
	}

	h.broadcast(websocket.NewMessage("medication", "deleted", id, nil))
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// Doses expands a medication's schedule over a date range so the UI can show
// expected administrations next to logged ones.
func (h *MedicationHandler) Doses(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	med, err := h.medications.GetByID(id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get medication"})
		return
	}
	if med == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "medication not found"})
		return
	}

	start, err := parseDayParam(r.URL.Query().Get("start"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "start must be YYYY-MM-DD"})
		return
	}
	end, err := parseDayParam(r.URL.Query().Get("end"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "end must be YYYY-MM-DD"})
		return
	}

	doses, err := schedule.Expand(*med, start, end.AddDate(0, 0, 1).Add(-time.Second))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid schedule rule"})
		return
	}

	times := make([]string, 0, len(doses))
	for _, d := range doses {
		times = append(times, d.Time.Format(time.RFC3339))
	}
	writeJSON(w, http.StatusOK, map[string]any{"medication_id": id, "doses": times})
}

type medicationLogRequest struct {
	MedicationID    *int64 `json:"medication_id"`
	CareRecipientID int64  `json:"care_recipient_id"`
	ScheduledTime   string `json:"scheduled_time"`
	DateTaken       string `json:"date_taken"`
	TimeTaken       string `json:"time_taken"`
	Status          string `json:"status"`
	Notes           string `json:"notes"`
}

func (h *MedicationHandler) CreateLog(w http.ResponseWriter, r *http.Request) {
	var req medicationLogRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	if req.Status == "" {
		req.Status = model.DoseTaken
	}
	if !validDoseStatuses[req.Status] {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "status must be taken, skipped, or missed"})
		return
	}
	if req.ScheduledTime == "" && req.DateTaken == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "scheduled_time or date_taken is required"})
		return
	}
	if req.ScheduledTime != "" && !validStartTime(req.ScheduledTime) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "scheduled_time must be an ISO timestamp"})
		return
	}

	recipient, err := h.recipients.GetByID(req.CareRecipientID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to check care recipient"})
		return
	}
	if recipient == nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "care recipient not found"})
		return
	}

	logEntry, err := h.medications.CreateLog(req.MedicationID, req.CareRecipientID, req.ScheduledTime, req.DateTaken, req.TimeTaken, req.Status, req.Notes)
	if err != nil {
		h.logger.Error("create medication log", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to create medication log"})
		return
	}

	h.broadcast(websocket.NewMessage("medication_log", "created", logEntry.ID, nil))
	writeJSON(w, http.StatusCreated, logEntry)
}

func (h *MedicationHandler) ListLogs(w http.ResponseWriter, r *http.Request) {
	logs, err := h.medications.ListLogs()
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list medication logs"})
		return
	}
	if logs == nil {
		logs = []model.MedicationLog{}
	}
	writeJSON(w, http.StatusOK, logs)
}

func (h *MedicationHandler) SetLogStatus(w http.ResponseWriter, r *http.Request) {
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
	if !validDoseStatuses[req.Status] {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "status must be taken, skipped, or missed"})
		return
	}

	if err := h.medications.UpdateLogStatus(id, req.Status); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to update log status"})
		return
	}

	h.broadcast(websocket.NewMessage("medication_log", "updated", id, nil))
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *MedicationHandler) DeleteLog(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	if err := h.medications.DeleteLog(id); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to delete medication log"})
		return
	}

	h.broadcast(websocket.NewMessage("medication_log", "deleted", id, nil))
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
