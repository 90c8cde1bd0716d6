package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/mklatt/careport/internal/model"
	"github.com/mklatt/careport/internal/push"
	"github.com/mklatt/careport/internal/store"
)

type PushHandler struct {
	service    *push.Service
	pushStore  *store.PushStore
	caregivers *store.CaregiverStore
	logger     *slog.Logger
}

func NewPushHandler(svc *push.Service, ps *store.PushStore, cs *store.CaregiverStore, logger *slog.Logger) *PushHandler {
	return &PushHandler{
		service:    svc,
		pushStore:  ps,
		caregivers: cs,
		logger:     logger.With("component", "push_handler"),
	}
}

func (h *PushHandler) VAPIDPublicKey(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"public_key": h.service.VAPIDPublicKey()})
}

func (h *PushHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CaregiverID *int64 `json:"caregiver_id"`
		Endpoint    string `json:"endpoint"`
		Keys        struct {
			P256dh string `json:"p256dh"`
			Auth   string `json:"auth"`
		} `json:"keys"`
		DeviceName string `json:"device_name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	req.Endpoint = strings.TrimSpace(req.Endpoint)
	if req.Endpoint == "" || req.Keys.P256dh == "" || req.Keys.Auth == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "endpoint and keys are required"})
		return
	}

	if req.CaregiverID != nil {
		caregiver, err := h.caregivers.GetByID(*req.CaregiverID)
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to check caregiver"})
			return
		}
		if caregiver == nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "caregiver not found"})
			return
		}
	}

	sub, err := h.pushStore.Subscribe(req.CaregiverID, req.Endpoint, req.Keys.P256dh, req.Keys.Auth, req.DeviceName)
	if err != nil {
		h.logger.Error("subscribe push", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to subscribe"})
		return
	}

	writeJSON(w, http.StatusCreated, sub)
}

func (h *PushHandler) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Endpoint string `json:"endpoint"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	if req.Endpoint == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "endpoint is required"})
		return
	}

	if err := h.pushStore.DeleteByEndpoint(req.Endpoint); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to unsubscribe"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "unsubscribed"})
}

func (h *PushHandler) GetPreferences(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	prefs, err := h.pushStore.GetPreferences(id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load preferences"})
		return
	}
	writeJSON(w, http.StatusOK, prefs)
}

var validNotifTypes = map[string]bool{
	model.NotifTypeAppointmentReminder: true,
	model.NotifTypeDoseDue:             true,
	model.NotifTypeMessagePosted:       true,
}

func (h *PushHandler) SetPreference(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	var req struct {
		NotificationType string `json:"notification_type"`
		Enabled          bool   `json:"enabled"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	if !validNotifTypes[req.NotificationType] {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid notification_type"})
		return
	}

	caregiver, err := h.caregivers.GetByID(id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to check caregiver"})
		return
	}
	if caregiver == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "caregiver not found"})
		return
	}

	if err := h.pushStore.SetPreference(id, req.NotificationType, req.Enabled); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to save preference"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
