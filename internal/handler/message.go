package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/mklatt/careport/internal/model"
	"github.com/mklatt/careport/internal/push"
	"github.com/mklatt/careport/internal/store"
	"github.com/mklatt/careport/internal/websocket"
)

type MessageHandler struct {
	messages   *store.MessageStore
	caregivers *store.CaregiverStore
	hub        *websocket.Hub
	scheduler  *push.Scheduler
	logger     *slog.Logger
}

func NewMessageHandler(ms *store.MessageStore, cs *store.CaregiverStore, hub *websocket.Hub, scheduler *push.Scheduler, logger *slog.Logger) *MessageHandler {
	return &MessageHandler{
		messages:   ms,
		caregivers: cs,
		hub:        hub,
		scheduler:  scheduler,
		logger:     logger.With("component", "message_handler"),
	}
}

func (h *MessageHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AuthorID        *int64 `json:"author_id"`
		CareRecipientID *int64 `json:"care_recipient_id"`
		Body            string `json:"body"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	req.Body = strings.TrimSpace(req.Body)
	if req.Body == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "body is required"})
		return
	}

	msg, err := h.messages.Create(req.AuthorID, req.CareRecipientID, req.Body)
	if err != nil {
		h.logger.Error("create message", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to create message"})
		return
	}

	if h.hub != nil {
		h.hub.Broadcast(websocket.NewMessage("message", "created", msg.ID, nil))
	}
	if h.scheduler != nil {
		authorName := "Someone"
		if req.AuthorID != nil {
			if caregiver, err := h.caregivers.GetByID(*req.AuthorID); err == nil && caregiver != nil {
				authorName = caregiver.Name
			}
		}
		go h.scheduler.SendMessageNotification(req.AuthorID, authorName, req.Body)
	}

	writeJSON(w, http.StatusCreated, msg)
}

func (h *MessageHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "limit must be a non-negative integer"})
			return
		}
		limit = n
	}

	messages, err := h.messages.List(limit)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list messages"})
		return
	}
	if messages == nil {
		messages = []model.Message{}
	}
	writeJSON(w, http.StatusOK, messages)
}

func (h *MessageHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	if err := h.messages.Delete(id); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to delete message"})
		return
	}

	if h.hub != nil {
		h.hub.Broadcast(websocket.NewMessage("message", "deleted", id, nil))
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
