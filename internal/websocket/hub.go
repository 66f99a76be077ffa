package websocket

import (
	"encoding/json"
	"log"
	"sync"
	"time"
)

// EventHandler receives client events after wire decoding. The hub holds
// it as an interface so transport stays decoupled from chat semantics.
type EventHandler interface {
	HandleJoin(c *Client, target Target)
	HandleSend(c *Client, target Target, content string)
}

// Hub owns the connection registry, the derived online set and the room
// subscriptions. Constructed once and injected into handlers; nothing here
// survives a restart.
type Hub struct {
	mu sync.RWMutex

	// clients maps a user to all of their live connections
	clients map[string]map[string]*Client

	// rooms maps a room id to its subscribed connections
	rooms map[string]map[*Client]struct{}

	// joined tracks each connection's rooms for cleanup on close
	joined map[*Client]map[string]struct{}

	online map[string]struct{}

	handler EventHandler

	// OnOffline, when set, runs after a user's last connection closes
	OnOffline func(userID string)
}

// NewHub creates a new WebSocket hub
func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]map[string]*Client),
		rooms:   make(map[string]map[*Client]struct{}),
		joined:  make(map[*Client]map[string]struct{}),
		online:  make(map[string]struct{}),
	}
}

// SetHandler installs the event handler. Must be called before clients
// connect.
func (h *Hub) SetHandler(handler EventHandler) {
	h.mu.Lock()
	h.handler = handler
	h.mu.Unlock()
}

func (h *Hub) Handler() EventHandler {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.handler
}

// AddClient registers a connection. Adding the same connection twice is a
// no-op. The online broadcast fires only on the empty→non-empty edge of
// the user's connection set, so a second device never re-announces.
func (h *Hub) AddClient(client *Client) {
	h.mu.Lock()

	conns, ok := h.clients[client.UserID]
	if !ok {
		conns = make(map[string]*Client)
		h.clients[client.UserID] = conns
	}
	if _, dup := conns[client.ID]; dup {
		h.mu.Unlock()
		return
	}

	first := len(conns) == 0
	conns[client.ID] = client
	if first {
		h.online[client.UserID] = struct{}{}
	}
	h.mu.Unlock()

	if first {
		h.broadcastStatus(client.UserID, StatusOnline)
	}

	log.Printf("Client connected: %s (%s)", client.Username, client.ID)
}

// RemoveClient deregisters a connection and unsubscribes it from all of
// its rooms. The offline broadcast fires only when the user's last
// connection closes.
func (h *Hub) RemoveClient(client *Client) {
	h.mu.Lock()

	conns, ok := h.clients[client.UserID]
	if !ok {
		h.mu.Unlock()
		return
	}
	if _, ok := conns[client.ID]; !ok {
		h.mu.Unlock()
		return
	}

	delete(conns, client.ID)
	for roomID := range h.joined[client] {
		delete(h.rooms[roomID], client)
		if len(h.rooms[roomID]) == 0 {
			delete(h.rooms, roomID)
		}
	}
	delete(h.joined, client)
	close(client.Send)

	last := len(conns) == 0
	if last {
		delete(h.clients, client.UserID)
		delete(h.online, client.UserID)
	}
	h.mu.Unlock()

	if last {
		h.broadcastStatus(client.UserID, StatusOffline)
		if h.OnOffline != nil {
			h.OnOffline(client.UserID)
		}
	}

	log.Printf("Client disconnected: %s (%s)", client.Username, client.ID)
}

// JoinRoom subscribes a connection to a room
func (h *Hub) JoinRoom(client *Client, roomID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	// Ignore connections that already closed
	if _, ok := h.clients[client.UserID][client.ID]; !ok {
		return
	}

	if h.rooms[roomID] == nil {
		h.rooms[roomID] = make(map[*Client]struct{})
	}
	h.rooms[roomID][client] = struct{}{}

	if h.joined[client] == nil {
		h.joined[client] = make(map[string]struct{})
	}
	h.joined[client][roomID] = struct{}{}
}

// SendToRoom delivers an event to every connection subscribed to a room,
// regardless of which user owns them
func (h *Hub) SendToRoom(roomID string, message WSMessage) {
	data, err := json.Marshal(message)
	if err != nil {
		log.Printf("Failed to marshal message: %v", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.rooms[roomID] {
		h.push(client, data)
	}
}

// SendToUser delivers an event to every live connection of one user
func (h *Hub) SendToUser(userID string, message WSMessage) {
	data, err := json.Marshal(message)
	if err != nil {
		log.Printf("Failed to marshal message: %v", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, client := range h.clients[userID] {
		h.push(client, data)
	}
}

// broadcastStatus announces a presence transition to every connection
func (h *Hub) broadcastStatus(userID, status string) {
	message := WSMessage{
		Type:      EventUserStatusChange,
		Payload:   StatusPayload{UserID: userID, Status: status},
		Timestamp: time.Now(),
	}

	data, err := json.Marshal(message)
	if err != nil {
		log.Printf("Failed to marshal presence message: %v", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, conns := range h.clients {
		for _, client := range conns {
			h.push(client, data)
		}
	}
}

// push writes to a client's send buffer without blocking the hub
func (h *Hub) push(client *Client, data []byte) {
	select {
	case client.Send <- data:
	default:
		log.Printf("Send buffer full, dropping event for connection %s", client.ID)
	}
}

// ConnectionsOf returns the connection ids currently open for a user; the
// empty set for an unknown user
func (h *Hub) ConnectionsOf(userID string) []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	ids := make([]string, 0, len(h.clients[userID]))
	for id := range h.clients[userID] {
		ids = append(ids, id)
	}
	return ids
}

// IsUserOnline checks if a user has at least one live connection
func (h *Hub) IsUserOnline(userID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()

	_, ok := h.online[userID]
	return ok
}

// OnlineUsers returns a list of currently online user IDs
func (h *Hub) OnlineUsers() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	userIDs := make([]string, 0, len(h.online))
	for userID := range h.online {
		userIDs = append(userIDs, userID)
	}
	return userIDs
}

// OnlineCount returns the number of currently online users
func (h *Hub) OnlineCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.online)
}
