package websocket

import (
	"encoding/json"
	"log/slog"
	"sync"
)

// Message is one care-plan sync event. Entity names the record kind
// ("appointment", "task", "medication_log", "note", "message", "caregiver",
// "settings", "backup") and Action what happened to it ("created", "updated",
// "rescheduled", "deleted"). Every connected device applies the event so
// shared tablets and caregiver phones show the same plan.
type Message struct {
	Type   string         `json:"type"`
	Entity string         `json:"entity"`
	Action string         `json:"action"`
	ID     int64          `json:"id,omitempty"`
	Extra  map[string]any `json:"extra,omitempty"`
}

// NewMessage builds a sync event; Type is the "entity_action" pair clients
// switch on.
func NewMessage(entity, action string, id int64, extra map[string]any) Message {
	return Message{
		Type:   entity + "_" + action,
		Entity: entity,
		Action: action,
		ID:     id,
		Extra:  extra,
	}
}

// Hub fans care-plan sync events out to every connected device.
type Hub struct {
	mu     sync.RWMutex
	conns  map[*Client]struct{}
	logger *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		conns:  make(map[*Client]struct{}),
		logger: logger,
	}
}

// Register adds a device connection to the hub.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	h.conns[c] = struct{}{}
	h.mu.Unlock()
}

// Unregister drops a connection and closes its outbox so the write pump exits.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	if _, ok := h.conns[c]; ok {
		delete(h.conns, c)
		close(c.outbox)
	}
	h.mu.Unlock()
}

// Broadcast queues a sync event on every connection. A device that cannot
// keep up loses the event rather than stalling the rest; it resyncs on its
// next full fetch.
func (h *Hub) Broadcast(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("marshal sync event", "type", msg.Type, "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	dropped := 0
	for c := range h.conns {
		select {
		case c.outbox <- data:
		default:
			dropped++
		}
	}
	if dropped > 0 {
		h.logger.Debug("dropped sync event for slow clients", "type", msg.Type, "clients", dropped)
	}
}

// ClientCount returns the number of connected devices.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}
