package site

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/barelyfunctional/site/internal/metrics"
)

const writeWait = 5 * time.Second

// reloadMessage is sent to every client when content changes.
type reloadMessage struct {
	Type string `json:"type"`
}

// LiveReload tracks browser tabs connected to /livereload.
type LiveReload struct {
	logger   *slog.Logger
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[string]*websocket.Conn
}

// NewLiveReload creates an empty hub.
func NewLiveReload(logger *slog.Logger) *LiveReload {
	return &LiveReload{
		logger: logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		clients: make(map[string]*websocket.Conn),
	}
}

// ServeHTTP upgrades the request and holds the connection until the
// client goes away. Clients never send anything meaningful; reads only
// detect the close.
func (h *LiveReload) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("livereload: websocket upgrade", "error", err)
		return
	}

	id := uuid.NewString()
	h.mu.Lock()
	h.clients[id] = conn
	h.mu.Unlock()
	metrics.LiveReloadClients.Inc()
	h.logger.Debug("livereload: client connected", "id", id)

	defer h.remove(id)

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Debug("livereload: websocket read", "id", id, "error", err)
			}
			return
		}
	}
}

func (h *LiveReload) remove(id string) {
	h.mu.Lock()
	conn, ok := h.clients[id]
	delete(h.clients, id)
	h.mu.Unlock()
	if ok {
		conn.Close()
		metrics.LiveReloadClients.Dec()
	}
}

// Broadcast tells every connected client to reload and returns how many
// were reached. Clients that cannot be written to are dropped.
func (h *LiveReload) Broadcast() int {
	h.mu.Lock()
	defer h.mu.Unlock()

	sent := 0
	for id, conn := range h.clients {
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(reloadMessage{Type: "reload"}); err != nil {
			h.logger.Debug("livereload: dropping client", "id", id, "error", err)
			delete(h.clients, id)
			conn.Close()
			metrics.LiveReloadClients.Dec()
			continue
		}
		sent++
	}
	return sent
}

// Clients returns the number of connected clients.
func (h *LiveReload) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}
