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

type CaregiverHandler struct {
	caregivers *store.CaregiverStore
	hub        *websocket.Hub
	logger     *slog.Logger
}

func NewCaregiverHandler(cs *store.CaregiverStore, hub *websocket.Hub, logger *slog.Logger) *CaregiverHandler {
	return &CaregiverHandler{caregivers: cs, hub: hub, logger: logger.With("component", "caregiver_handler")}
}

func (h *CaregiverHandler) broadcast(msg websocket.Message) {
	if h.hub != nil {
		h.hub.Broadcast(msg)
	}
}

type caregiverRequest struct {
	Name        string `json:"name"`
	AvatarEmoji string `json:"avatar_emoji"`
}

func (h *CaregiverHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req caregiverRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}

	caregiver, err := h.caregivers.Create(req.Name, req.AvatarEmoji)
	if err != nil {
		h.logger.Error("create caregiver", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to create caregiver"})
		return
	}

	h.broadcast(websocket.NewMessage("caregiver", "created", caregiver.ID, nil))
	writeJSON(w, http.StatusCreated, caregiver)
}

func (h *CaregiverHandler) List(w http.ResponseWriter, r *http.Request) {
	caregivers, err := h.caregivers.List()
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list caregivers"})
		return
	}
	if caregivers == nil {
		caregivers = []model.Caregiver{}
	}
	writeJSON(w, http.StatusOK, caregivers)
}

func (h *CaregiverHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	caregiver, err := h.caregivers.GetByID(id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get caregiver"})
		return
	}
	if caregiver == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "caregiver not found"})
		return
	}
	writeJSON(w, http.StatusOK, caregiver)
}

func (h *CaregiverHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	existing, err := h.caregivers.GetByID(id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get caregiver"})
		return
	}
	if existing == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "caregiver not found"})
		return
	}

	var req caregiverRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}

	caregiver, err := h.caregivers.Update(id, req.Name, req.AvatarEmoji)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to update caregiver"})
		return
	}

	h.broadcast(websocket.NewMessage("caregiver", "updated", id, nil))
	writeJSON(w, http.StatusOK, caregiver)
}

// SetPIN sets or clears a caregiver's PIN. PINs are 4 to 8 digits.
func (h *CaregiverHandler) SetPIN(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	var req struct {
		PIN string `json:"pin"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	if req.PIN != "" {
		if len(req.PIN) < 4 || len(req.PIN) > 8 || !isDigits(req.PIN) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "pin must be 4-8 digits"})
			return
		}
	}

	existing, err := h.caregivers.GetByID(id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get caregiver"})
		return
	}
	if existing == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "caregiver not found"})
		return
	}

	if err := h.caregivers.SetPIN(id, req.PIN); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to set PIN"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *CaregiverHandler) ClearPIN(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	if err := h.caregivers.SetPIN(id, ""); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to clear PIN"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// VerifyPIN checks a caregiver's PIN. Mounted behind the rate limiter.
func (h *CaregiverHandler) VerifyPIN(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	var req struct {
		PIN string `json:"pin"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	ok, err := h.caregivers.VerifyPIN(id, req.PIN)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to verify PIN"})
		return
	}
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "incorrect PIN"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "verified"})
}

func (h *CaregiverHandler) Reorder(w http.ResponseWriter, r *http.Request) {
	var req struct {
		IDs []int64 `json:"ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	if len(req.IDs) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "ids is required"})
		return
	}

	if err := h.caregivers.UpdateSortOrder(req.IDs); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to reorder caregivers"})
		return
	}

	h.broadcast(websocket.NewMessage("caregiver", "reordered", 0, nil))
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *CaregiverHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	if err := h.caregivers.Delete(id); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to delete caregiver"})
		return
	}

	h.broadcast(websocket.NewMessage("caregiver", "deleted", id, nil))
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func isDigits(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
