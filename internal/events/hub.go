package events

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"
)

// Event types broadcast to connected clients.
const (
	TypeBookCreated   = "book_created"
	TypeBookDeleted   = "book_deleted"
	TypeReviewCreated = "review_created"
	TypeReviewUpdated = "review_updated"
	TypeReviewDeleted = "review_deleted"
)

type BookEvent struct {
	Type   string `json:"type"`
	BookID string `json:"book_id"`
}

type ReviewEvent struct {
	Type     string `json:"type"`
	ReviewID int64  `json:"review_id"`
	BookID   string `json:"book_id"`
}

// Hub fans mutation events out to every connected WebSocket client.
// Broadcasting is best-effort: a client that fails a write is dropped.
type Hub struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[*websocket.Conn]struct{}),
	}
}

func (h *Hub) Add(ws *websocket.Conn) {
	h.mu.Lock()
	h.clients[ws] = struct{}{}
	h.mu.Unlock()
}

func (h *Hub) Remove(ws *websocket.Conn) {
	h.mu.Lock()
	delete(h.clients, ws)
	h.mu.Unlock()
	_ = ws.Close()
}

func (h *Hub) BroadcastJSON(v any) {
	b, err := json.Marshal(v)
	if err != nil {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for ws := range h.clients {
		if err := ws.WriteMessage(websocket.TextMessage, b); err != nil {
			_ = ws.Close()
			delete(h.clients, ws)
		}
	}
}

func (h *Hub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}
