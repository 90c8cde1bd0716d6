package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/mklatt/careport/internal/calendar"
	"github.com/mklatt/careport/internal/model"
	"github.com/mklatt/careport/internal/store"
	"github.com/mklatt/careport/internal/websocket"
)

type CareRecipientHandler struct {
	store  *store.CareRecipientStore
	hub    *websocket.Hub
	logger *slog.Logger
}

func NewCareRecipientHandler(s *store.CareRecipientStore, hub *websocket.Hub, logger *slog.Logger) *CareRecipientHandler {
	return &CareRecipientHandler{store: s, hub: hub, logger: logger.With("component", "care_recipient_handler")}
}

func (h *CareRecipientHandler) broadcast(msg websocket.Message) {
	if h.hub != nil {
		h.hub.Broadcast(msg)
	}
}

type careRecipientRequest struct {
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	DateOfBirth string `json:"date_of_birth"`
}

func (h *CareRecipientHandler) validate(w http.ResponseWriter, r *http.Request) (*careRecipientRequest, bool) {
	var req careRecipientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return nil, false
	}

	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)
	if req.FirstName == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "first_name is required"})
		return nil, false
	}
	if req.DateOfBirth != "" {
		if _, err := parseDayParam(req.DateOfBirth); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "date_of_birth must be YYYY-MM-DD"})
			return nil, false
		}
	}
	return &req, true
}

func (h *CareRecipientHandler) Create(w http.ResponseWriter, r *http.Request) {
	req, ok := h.validate(w, r)
	if !ok {
		return
	}

	recipient, err := h.store.Create(req.FirstName, req.LastName, req.DateOfBirth)
	if err != nil {
		h.logger.Error("create care recipient", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to create care recipient"})
		return
	}

	h.broadcast(websocket.NewMessage("care_recipient", "created", recipient.ID, nil))
	writeJSON(w, http.StatusCreated, recipient)
}

// List returns recipients in sort order, with the calendar color each one
// resolves to at its current position.
func (h *CareRecipientHandler) List(w http.ResponseWriter, r *http.Request) {
	recipients, err := h.store.List()
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list care recipients"})
		return
	}

	type recipientWithColor struct {
		model.CareRecipient
		Color string `json:"color"`
	}

	out := make([]recipientWithColor, 0, len(recipients))
	for i, rec := range recipients {
		out = append(out, recipientWithColor{
			CareRecipient: rec,
			Color:         calendar.Palette[i%len(calendar.Palette)],
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *CareRecipientHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	recipient, err := h.store.GetByID(id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get care recipient"})
		return
	}
	if recipient == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "care recipient not found"})
		return
	}
	writeJSON(w, http.StatusOK, recipient)
}

func (h *CareRecipientHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	existing, err := h.store.GetByID(id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get care recipient"})
		return
	}
	if existing == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "care recipient not found"})
		return
	}

	req, ok := h.validate(w, r)
	if !ok {
		return
	}

	recipient, err := h.store.Update(id, req.FirstName, req.LastName, req.DateOfBirth)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to update care recipient"})
		return
	}

	h.broadcast(websocket.NewMessage("care_recipient", "updated", id, nil))
	writeJSON(w, http.StatusOK, recipient)
}

// Reorder rewrites the recipient sort order, which also reassigns their
// calendar colors since color follows list position.
func (h *CareRecipientHandler) Reorder(w http.ResponseWriter, r *http.Request) {
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

	if err := h.store.UpdateSortOrder(req.IDs); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to reorder care recipients"})
		return
	}

	h.broadcast(websocket.NewMessage("care_recipient", "reordered", 0, nil))
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *CareRecipientHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	if err := h.store.Delete(id); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to delete care recipient"})
		return
	}

	h.broadcast(websocket.NewMessage("care_recipient", "deleted", id, nil))
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
