package realtime

import (
	"encoding/json"
	"sync"
)

// Client represents a single websocket client connection.
// We keep it minimal here; the actual network conn is managed in the ws handler.
type Client interface {
	Send(message []byte) bool
	Close()
}

// Event is a change notification pushed to connected dashboards.
type Event struct {
	Type   string `json:"type"`
	Entity string `json:"entity"`
	ID     string `json:"id"`
	UserID string `json:"userId,omitempty"`
}

// Hub maintains active user connections and broadcasts events to them.
type Hub struct {
	mu      sync.RWMutex
	byUser  map[string]map[Client]struct{}
	clients map[Client]string
}

var hubInstance *Hub
var once sync.Once

// GetHub returns a singleton hub instance.
func GetHub() *Hub {
	once.Do(func() {
		hubInstance = &Hub{
			byUser:  make(map[string]map[Client]struct{}),
			clients: make(map[Client]string),
		}
	})
	return hubInstance
}

// Register adds a client under a user ID.
func (h *Hub) Register(userID string, client Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.byUser[userID]; !ok {
		h.byUser[userID] = make(map[Client]struct{})
	}
	h.byUser[userID][client] = struct{}{}
	h.clients[client] = userID
}

// Unregister removes a client; if user has no more clients, cleans up map.
func (h *Hub) Unregister(userID string, client Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if clients, ok := h.byUser[userID]; ok {
		delete(clients, client)
		if len(clients) == 0 {
			delete(h.byUser, userID)
		}
	}
	delete(h.clients, client)
}

// Notify marshals an event and sends it to all clients of a user.
func (h *Hub) Notify(userID string, evt Event) {
	payload, err := json.Marshal(evt)
	if err != nil {
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.byUser[userID] {
		if ok := c.Send(payload); !ok {
			// client write failed; let the handler clean it up on its side
		}
	}
}

// NotifyAll sends an event to every connected client, regardless of user.
// Used for CRM-wide changes that supervisor dashboards watch.
func (h *Hub) NotifyAll(evt Event) {
	payload, err := json.Marshal(evt)
	if err != nil {
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		_ = c.Send(payload)
	}
}
