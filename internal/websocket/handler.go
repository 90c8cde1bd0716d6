package websocket

import (
	"log/slog"
	"net/http"

	ws "github.com/coder/websocket"
)

// HandleWebSocket upgrades a request to a WebSocket and runs it as a hub
// client until it disconnects.
func HandleWebSocket(hub *Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := ws.Accept(w, r, &ws.AcceptOptions{
			// The care team's devices reach the server under whatever
			// host serves the UI, so origin checking is disabled.
			InsecureSkipVerify: true,
		})
		if err != nil {
			slog.Warn("websocket accept", "remote", r.RemoteAddr, "error", err)
			return
		}

		NewClient(hub, conn).Run(r.Context())
	}
}
