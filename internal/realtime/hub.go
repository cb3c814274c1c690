// Package realtime pushes entity store changes to websocket clients.
package realtime

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/example/hacktown-ops/internal/application"
)

const (
	sendBuffer   = 256
	writeWait    = 10 * time.Second
	pongWait     = 60 * time.Second
	pingInterval = 30 * time.Second
	readLimit    = 64 * 1024
)

// ClientObserver is told the client count after every change.
type ClientObserver interface {
	SetClients(n int)
}

// Message is the JSON frame sent for every installed snapshot.
type Message struct {
	Type     string `json:"type"`
	Seq      uint64 `json:"seq"`
	Reason   string `json:"reason"`
	LoadedAt string `json:"loadedAt,omitempty"`
}

// MessageStoreChanged tags store change frames.
const MessageStoreChanged = "store.changed"

type client struct {
	send chan []byte
}

// Hub tracks connected clients and fans out store changes. It implements
// application.Notifier and http.Handler.
type Hub struct {
	clients    map[*client]struct{}
	broadcast  chan []byte
	register   chan *client
	unregister chan *client
	done       chan struct{}

	mu       sync.RWMutex
	count    int
	last     []byte
	observer ClientObserver

	upgrader websocket.Upgrader
	logger   *slog.Logger
}

type Option func(*Hub)

// WithObserver reports the client count, typically to a metrics gauge.
func WithObserver(observer ClientObserver) Option {
	return func(h *Hub) {
		h.observer = observer
	}
}

// WithOriginCheck replaces the default origin check, which accepts every
// origin because /ws sits behind the session middleware.
func WithOriginCheck(check func(r *http.Request) bool) Option {
	return func(h *Hub) {
		if check != nil {
			h.upgrader.CheckOrigin = check
		}
	}
}

func NewHub(logger *slog.Logger, opts ...Option) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	h := &Hub{
		clients:    make(map[*client]struct{}),
		broadcast:  make(chan []byte, sendBuffer),
		register:   make(chan *client),
		unregister: make(chan *client),
		done:       make(chan struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		logger: logger.With("component", "realtime"),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Run owns the client set until ctx ends, then closes every connection.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for c := range h.clients {
				h.drop(c)
			}
			return

		case c := <-h.register:
			h.clients[c] = struct{}{}
			h.mu.RLock()
			last := h.last
			h.mu.RUnlock()
			if last != nil {
				c.send <- last
			}
			h.setCount()
			h.logger.Debug("websocket client connected", "clients", len(h.clients))

		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				h.drop(c)
				h.setCount()
			}
			h.logger.Debug("websocket client disconnected", "clients", len(h.clients))

		case message := <-h.broadcast:
			dropped := 0
			for c := range h.clients {
				select {
				case c.send <- message:
				default:
					h.drop(c)
					dropped++
				}
			}
			if dropped > 0 {
				h.setCount()
				h.logger.Warn("dropped slow websocket clients", "dropped", dropped)
			}
		}
	}
}

func (h *Hub) drop(c *client) {
	delete(h.clients, c)
	close(c.send)
}

// setCount notifies the observer before ClientCount changes.
func (h *Hub) setCount() {
	if h.observer != nil {
		h.observer.SetClients(len(h.clients))
	}
	h.mu.Lock()
	h.count = len(h.clients)
	h.mu.Unlock()
}

// Publish broadcasts a store change. It never blocks the store; when the
// broadcast queue is full the change is dropped and the next one supersedes it.
func (h *Hub) Publish(change application.StoreChange) {
	msg := Message{Type: MessageStoreChanged, Seq: change.Seq, Reason: change.Reason}
	if !change.LoadedAt.IsZero() {
		msg.LoadedAt = change.LoadedAt.UTC().Format(time.RFC3339Nano)
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("failed to encode store change", "error", err)
		return
	}

	h.mu.Lock()
	h.last = payload
	h.mu.Unlock()

	select {
	case h.broadcast <- payload:
	default:
		h.logger.Warn("broadcast queue full, dropping store change", "seq", change.Seq)
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.count
}

// ServeHTTP upgrades the request and attaches the connection to the hub.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WarnContext(r.Context(), "websocket upgrade failed", "error", err)
		return
	}

	c := &client{send: make(chan []byte, sendBuffer)}
	select {
	case h.register <- c:
	case <-h.done:
		_ = conn.Close()
		return
	}

	go h.writePump(conn, c)
	go h.readPump(conn, c)
}

func (h *Hub) writePump(conn *websocket.Conn, c *client) {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		_ = conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump discards client frames; it exists to process pongs and notice
// closed connections.
func (h *Hub) readPump(conn *websocket.Conn, c *client) {
	defer func() {
		select {
		case h.unregister <- c:
		case <-h.done:
		}
		_ = conn.Close()
	}()

	conn.SetReadLimit(readLimit)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				h.logger.Warn("websocket read failed", "error", err)
			}
			return
		}
	}
}
