package websocket

import (
	"encoding/json"
	"log/slog"
	"sync"
	"testing"
	"time"
)

// mockClient builds a Client with an outbox but no real connection.
func mockClient(hub *Hub) *Client {
	return &Client{
		hub:    hub,
		conn:   nil,
		outbox: make(chan []byte, outboxSize),
	}
}

func TestRegisterUnregister(t *testing.T) {
	hub := NewHub(slog.Default())

	c1 := mockClient(hub)
	c2 := mockClient(hub)

	hub.Register(c1)
	hub.Register(c2)

	if got := hub.ClientCount(); got != 2 {
		t.Fatalf("expected 2 clients, got %d", got)
	}

	hub.Unregister(c1)

	if got := hub.ClientCount(); got != 1 {
		t.Fatalf("expected 1 client after unregister, got %d", got)
	}

	hub.Unregister(c2)

	if got := hub.ClientCount(); got != 0 {
		t.Fatalf("expected 0 clients, got %d", got)
	}
}

func TestDoubleUnregister(t *testing.T) {
	hub := NewHub(slog.Default())
	c := mockClient(hub)
	hub.Register(c)
	hub.Unregister(c)
	// Should not panic
	hub.Unregister(c)

	if got := hub.ClientCount(); got != 0 {
		t.Fatalf("expected 0 clients, got %d", got)
	}
}

func TestBroadcast(t *testing.T) {
	hub := NewHub(slog.Default())

	c1 := mockClient(hub)
	c2 := mockClient(hub)
	hub.Register(c1)
	hub.Register(c2)

	msg := NewMessage("appointment", "created", 42, map[string]any{"day": "2024-03-05"})
	hub.Broadcast(msg)

	// Both devices receive the event
	for _, c := range []*Client{c1, c2} {
		select {
		case data := <-c.outbox:
			var got Message
			if err := json.Unmarshal(data, &got); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if got.Type != "appointment_created" {
				t.Errorf("expected type appointment_created, got %s", got.Type)
			}
			if got.Entity != "appointment" {
				t.Errorf("expected entity appointment, got %s", got.Entity)
			}
			if got.ID != 42 {
				t.Errorf("expected id 42, got %d", got.ID)
			}
		case <-time.After(100 * time.Millisecond):
			t.Fatal("timeout waiting for message")
		}
	}

	hub.Unregister(c1)
	hub.Unregister(c2)
}

func TestBroadcastEmptyHub(t *testing.T) {
	hub := NewHub(slog.Default())
	// Should not panic
	msg := NewMessage("task", "completed", 1, nil)
	hub.Broadcast(msg)
}

func TestBroadcastFullOutbox(t *testing.T) {
	hub := NewHub(slog.Default())

	c := mockClient(hub)
	hub.Register(c)

	// Fill the outbox
	for i := 0; i < outboxSize; i++ {
		hub.Broadcast(NewMessage("note", "updated", int64(i), nil))
	}

	// The next event is dropped for this client, not blocked on
	hub.Broadcast(NewMessage("note", "updated", 999, nil))

	// Drain to verify the buffer was full
	count := 0
	for {
		select {
		case <-c.outbox:
			count++
		default:
			goto done
		}
	}
done:
	if count != outboxSize {
		t.Errorf("expected %d messages, got %d", outboxSize, count)
	}

	hub.Unregister(c)
}

func TestNewMessage(t *testing.T) {
	msg := NewMessage("medication_log", "updated", 5, nil)
	if msg.Type != "medication_log_updated" {
		t.Errorf("expected type medication_log_updated, got %s", msg.Type)
	}
	if msg.Entity != "medication_log" {
		t.Errorf("expected entity medication_log, got %s", msg.Entity)
	}
	if msg.Action != "updated" {
		t.Errorf("expected action updated, got %s", msg.Action)
	}
	if msg.ID != 5 {
		t.Errorf("expected id 5, got %d", msg.ID)
	}
}

func TestConcurrentAccess(t *testing.T) {
	hub := NewHub(slog.Default())
	var wg sync.WaitGroup

	// Register, broadcast, and unregister concurrently
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c := mockClient(hub)
			hub.Register(c)
			hub.Broadcast(NewMessage("message", "created", 0, nil))
			// Drain any events
			for {
				select {
				case <-c.outbox:
				default:
					hub.Unregister(c)
					return
				}
			}
		}()
	}

	wg.Wait()

	if got := hub.ClientCount(); got != 0 {
		t.Errorf("expected 0 clients after concurrent test, got %d", got)
	}
}
