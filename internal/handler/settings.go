package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/mklatt/careport/internal/store"
	"github.com/mklatt/careport/internal/websocket"
)

type SettingsHandler struct {
	settings *store.SettingsStore
	hub      *websocket.Hub
	logger   *slog.Logger
}

func NewSettingsHandler(ss *store.SettingsStore, hub *websocket.Hub, logger *slog.Logger) *SettingsHandler {
	return &SettingsHandler{settings: ss, hub: hub, logger: logger.With("component", "settings_handler")}
}

var settingValidators = map[string]map[string]bool{
	store.SettingTimeFormat:    {"12h": true, "24h": true},
	store.SettingWeekStart:     {"monday": true, "sunday": true},
	store.SettingBackupEnabled: {"true": true, "false": true},
}

func (h *SettingsHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	settings, err := h.settings.GetAll()
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load settings"})
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

func (h *SettingsHandler) Set(w http.ResponseWriter, r *http.Request) {
	var req map[string]string
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	if len(req) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "no settings provided"})
		return
	}

	for key, value := range req {
		if allowed, ok := settingValidators[key]; ok && !allowed[value] {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid value for " + key})
			return
		}
	}

	for key, value := range req {
		if err := h.settings.Set(key, value); err != nil {
			h.logger.Error("set setting", "key", key, "error", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to save settings"})
			return
		}
	}

	if h.hub != nil {
		h.hub.Broadcast(websocket.NewMessage("settings", "updated", 0, nil))
	}

	settings, err := h.settings.GetAll()
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load settings"})
		return
	}
	writeJSON(w, http.StatusOK, settings)
}
