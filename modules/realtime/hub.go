package realtime

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	nanoid "github.com/jaevor/go-nanoid"
)

// connIDLength is the length of generated connection identifiers.
const connIDLength = 16

// Conn is the subset of a websocket connection the hub needs. Narrowing the
// dependency keeps fan-out logic testable without live sockets.
type Conn interface {
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// textMessage mirrors websocket.TextMessage without importing the transport
// package here.
const textMessage = 1

// Client is one live connection. A connection belongs to at most one user at
// a time; UserID is empty until the connection authenticates.
type Client struct {
	ID     string
	UserID string
	conn   Conn

	// writeMu serializes data frames; the transport allows only one
	// concurrent writer per connection.
	writeMu sync.Mutex
}

// Send writes a raw text frame to the connection.
func (c *Client) Send(data []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteMessage(textMessage, data)
}

// Envelope is the wire format for server-pushed messages.
type Envelope struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// Hub is the connection registry: user id -> set of live connection ids.
// It is created at process start, injected into the modules that need it,
// and torn down at shutdown; it holds no durable state.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client         // connection id -> client
	users   map[string]map[string]bool // user id -> set of connection ids
	newID   func() string
	logger  *slog.Logger
}

// NewHub creates an empty hub.
func NewHub() (*Hub, error) {
	gen, err := nanoid.Standard(connIDLength)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection id generator: %w", err)
	}
	return &Hub{
		clients: make(map[string]*Client),
		users:   make(map[string]map[string]bool),
		newID:   gen,
		logger:  slog.Default(),
	}, nil
}

// Connect registers a new connection with no user association.
func (h *Hub) Connect(conn Conn) *Client {
	client := &Client{
		ID:   h.newID(),
		conn: conn,
	}

	h.mu.Lock()
	h.clients[client.ID] = client
	h.mu.Unlock()

	h.logger.Info("connection registered", "connID", client.ID)
	return client
}

// Authenticate associates a connection with a user, replacing any previous
// association.
func (h *Hub) Authenticate(connID, userID string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	client, ok := h.clients[connID]
	if !ok {
		return false
	}

	if client.UserID != "" && client.UserID != userID {
		h.removeFromUser(client.UserID, connID)
	}

	client.UserID = userID
	if h.users[userID] == nil {
		h.users[userID] = make(map[string]bool)
	}
	h.users[userID][connID] = true

	h.logger.Info("connection authenticated", "connID", connID, "userID", userID)
	return true
}

// Disconnect removes a connection from the registry.
func (h *Hub) Disconnect(connID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	client, ok := h.clients[connID]
	if !ok {
		return
	}
	delete(h.clients, connID)
	if client.UserID != "" {
		h.removeFromUser(client.UserID, connID)
	}

	h.logger.Info("connection unregistered", "connID", connID)
}

// removeFromUser must be called with the lock held.
func (h *Hub) removeFromUser(userID, connID string) {
	if set, ok := h.users[userID]; ok {
		delete(set, connID)
		if len(set) == 0 {
			delete(h.users, userID)
		}
	}
}

// EmitToUser sends an event to every connection owned by userID.
// Returns the number of connections written to.
func (h *Hub) EmitToUser(userID, event string, data any) int {
	payload, err := json.Marshal(Envelope{Event: event, Data: data})
	if err != nil {
		h.logger.Error("failed to marshal event", "event", event, "error", err)
		return 0
	}

	h.mu.RLock()
	var targets []*Client
	for connID := range h.users[userID] {
		if client, ok := h.clients[connID]; ok {
			targets = append(targets, client)
		}
	}
	h.mu.RUnlock()

	return h.send(targets, event, payload)
}

// EmitAll sends an event to every live connection regardless of owner.
func (h *Hub) EmitAll(event string, data any) int {
	payload, err := json.Marshal(Envelope{Event: event, Data: data})
	if err != nil {
		h.logger.Error("failed to marshal event", "event", event, "error", err)
		return 0
	}

	h.mu.RLock()
	targets := make([]*Client, 0, len(h.clients))
	for _, client := range h.clients {
		targets = append(targets, client)
	}
	h.mu.RUnlock()

	return h.send(targets, event, payload)
}

// SendTo sends an event to a single connection.
func (h *Hub) SendTo(connID, event string, data any) error {
	h.mu.RLock()
	client, ok := h.clients[connID]
	h.mu.RUnlock()
	if !ok {
		return fmt.Errorf("connection not found: %s", connID)
	}

	payload, err := json.Marshal(Envelope{Event: event, Data: data})
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	return client.Send(payload)
}

func (h *Hub) send(targets []*Client, event string, payload []byte) int {
	sent := 0
	for _, client := range targets {
		if err := client.Send(payload); err != nil {
			h.logger.Warn("failed to send event", "connID", client.ID, "event", event, "error", err)
			continue
		}
		sent++
	}
	return sent
}

// ClientCount returns the total number of live connections.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// UserConnectionCount returns the number of live connections for a user.
func (h *Hub) UserConnectionCount(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.users[userID])
}

// Close disconnects every client and empties the registry.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, client := range h.clients {
		_ = client.conn.Close()
	}
	h.clients = make(map[string]*Client)
	h.users = make(map[string]map[string]bool)
}
