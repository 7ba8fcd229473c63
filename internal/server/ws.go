package server

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/emoticon-ai/emoticon/internal/session"
)

// writeWait bounds how long a slow client can stall a broadcast.
const writeWait = 5 * time.Second

var upgrader = websocket.Upgrader{
	// The dashboard is served from the same local process.
	CheckOrigin: func(*http.Request) bool { return true },
}

// EventsHandler fans live session events out to websocket clients.
type EventsHandler struct {
	mu      sync.RWMutex
	clients map[*websocket.Conn]struct{}
}

// NewEventsHandler creates an EventsHandler consuming the given event
// stream. The pump goroutine exits when the channel closes.
func NewEventsHandler(events <-chan session.Event) *EventsHandler {
	h := &EventsHandler{clients: make(map[*websocket.Conn]struct{})}
	go h.pump(events)
	return h
}

// ServeHTTP handles websocket upgrade requests.
func (h *EventsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade error: %v", err)
		return
	}

	h.register(conn)
	defer h.unregister(conn)

	// Hold the connection open until the client goes away. Inbound
	// messages are ignored.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *EventsHandler) register(conn *websocket.Conn) {
	h.mu.Lock()
	h.clients[conn] = struct{}{}
	h.mu.Unlock()
}

func (h *EventsHandler) unregister(conn *websocket.Conn) {
	h.mu.Lock()
	delete(h.clients, conn)
	h.mu.Unlock()
	conn.Close()
}

// pump forwards session events to every connected client. A client
// whose write fails is dropped on its read loop.
func (h *EventsHandler) pump(events <-chan session.Event) {
	for ev := range events {
		msg, err := json.Marshal(ev)
		if err != nil {
			continue
		}
		h.broadcast(msg)
	}
}

func (h *EventsHandler) broadcast(msg []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for conn := range h.clients {
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		conn.WriteMessage(websocket.TextMessage, msg)
	}
}
