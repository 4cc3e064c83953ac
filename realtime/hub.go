// Package realtime pushes catalog events to connected WebSocket clients.
package realtime

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"storefront/models"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBufferSize = 256
)

// SnapshotFunc calls deliver with the current catalog. Implementations must
// keep catalog mutations out until deliver returns, which makes registering a
// client and queueing its snapshot atomic; db.CatalogStore.WithSnapshot does.
type SnapshotFunc func(deliver func(products []models.Product))

// Hub tracks connected clients and broadcasts events to all of them.
// Delivery is fire-and-forget: a client that cannot keep up is dropped.
type Hub struct {
	upgrader websocket.Upgrader
	snapshot SnapshotFunc

	mu      sync.RWMutex
	clients map[string]*client
	closed  bool
}

type client struct {
	id   string
	conn *websocket.Conn
	send chan []byte
}

// NewHub creates a hub. allowedOrigins restricts the Origin header of the
// upgrade request; an empty list or "*" allows any origin.
func NewHub(snapshot SnapshotFunc, allowedOrigins []string) *Hub {
	if snapshot == nil {
		snapshot = func(deliver func([]models.Product)) { deliver(nil) }
	}
	h := &Hub{
		snapshot: snapshot,
		clients:  make(map[string]*client),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     originChecker(allowedOrigins),
	}
	return h
}

func originChecker(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		if len(allowed) == 0 {
			return true
		}
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, a := range allowed {
			if a == "*" || a == origin {
				return true
			}
		}
		return false
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Notify broadcasts event to every connected client.
func (h *Hub) Notify(event models.Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		log.WithError(err).WithField("event", event.Name).Error("Failed to encode event")
		return
	}

	var slow []string
	h.mu.RLock()
	for id, c := range h.clients {
		select {
		case c.send <- payload:
		default:
			slow = append(slow, id)
		}
	}
	recipients := len(h.clients)
	h.mu.RUnlock()

	for _, id := range slow {
		log.WithField("client_id", id).Warn("Client send buffer full, dropping connection")
		h.unregister(id)
	}
	log.WithFields(log.Fields{"event": event.Name, "clients": recipients}).Debug("Broadcast event")
}

// ServeHTTP upgrades the request, then registers the connection and queues
// its snapshot inside the snapshot callback, so every event committed after
// the snapshot reaches the client after it.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the HTTP error response.
		log.WithError(err).Warn("WebSocket upgrade failed")
		return
	}

	c := &client{
		id:   uuid.NewString(),
		conn: conn,
		send: make(chan []byte, sendBufferSize),
	}

	registered := false
	h.snapshot(func(products []models.Product) {
		payload, err := json.Marshal(models.ProductsUpdated(products))
		if err != nil {
			log.WithError(err).Error("Failed to encode snapshot")
			return
		}
		h.mu.Lock()
		defer h.mu.Unlock()
		if h.closed {
			return
		}
		// The channel is new and buffered, so this never blocks.
		c.send <- payload
		h.clients[c.id] = c
		registered = true
	})
	if !registered {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
			time.Now().Add(writeWait))
		conn.Close()
		return
	}

	log.WithFields(log.Fields{"client_id": c.id, "remote": r.RemoteAddr}).Info("Client connected")

	go c.writePump()
	go h.readPump(c)
}

// unregister removes the client and closes its send channel, which makes the
// write pump close the connection.
func (h *Hub) unregister(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if c, ok := h.clients[id]; ok {
		delete(h.clients, id)
		close(c.send)
	}
}

// Close disconnects every client and refuses new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for id, c := range h.clients {
		delete(h.clients, id)
		close(c.send)
	}
	log.Info("Real-time hub closed")
}

// readPump drains the connection so control frames are processed. Clients
// have nothing to say to the server; any data frame is ignored.
func (h *Hub) readPump(c *client) {
	defer func() {
		h.unregister(c.id)
		c.conn.Close()
		log.WithField("client_id", c.id).Info("Client disconnected")
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.WithError(err).WithField("client_id", c.id).Debug("Unexpected close")
			}
			return
		}
	}
}

// writePump is the only writer on the connection, which keeps per-client
// delivery in order.
func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
