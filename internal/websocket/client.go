package websocket

import (
	"context"
	"time"

	ws "github.com/coder/websocket"
)

// outboxSize is sized for bursts like a reorder broadcast touching every
// entity; anything beyond it is dropped for that client.
const outboxSize = 16

// keepAliveInterval detects tablets that sleep without closing the socket.
const keepAliveInterval = 30 * time.Second

// Client is one connected device (a wall tablet or a caregiver's phone).
type Client struct {
	hub    *Hub
	conn   *ws.Conn
	outbox chan []byte
}

func NewClient(hub *Hub, conn *ws.Conn) *Client {
	return &Client{
		hub:    hub,
		conn:   conn,
		outbox: make(chan []byte, outboxSize),
	}
}

// Run registers the client and pumps sync events until the connection drops,
// then unregisters. The read side only consumes; devices never send care-plan
// changes over the socket, they use the HTTP API.
func (c *Client) Run(ctx context.Context) {
	c.hub.Register(c)
	defer c.hub.Unregister(c)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go c.writeLoop(ctx)
	c.readLoop(ctx)
}

// readLoop discards inbound frames and returns on the first read error, which
// is how a closed or dead connection surfaces.
func (c *Client) readLoop(ctx context.Context) {
	for {
		if _, _, err := c.conn.Read(ctx); err != nil {
			return
		}
	}
}

// writeLoop delivers queued sync events and pings idle connections.
func (c *Client) writeLoop(ctx context.Context) {
	keepAlive := time.NewTicker(keepAliveInterval)
	defer keepAlive.Stop()

	for {
		select {
		case data, open := <-c.outbox:
			if !open {
				// Unregistered by the hub
				return
			}
			if err := c.conn.Write(ctx, ws.MessageText, data); err != nil {
				return
			}
		case <-keepAlive.C:
			if err := c.conn.Ping(ctx); err != nil {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}
