package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/gofiber/contrib/websocket"

	"github.com/example/taskboard/modules/auth"
	"github.com/example/taskboard/modules/realtime"
)

// writeWait bounds how long a control frame write may block.
const writeWait = 10 * time.Second

// ClientMessage is the envelope for messages received from clients.
type ClientMessage struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// AuthenticatePayload is the data for the authenticate client message.
type AuthenticatePayload struct {
	Token string `json:"token"`
}

// WSHandler owns the realtime websocket endpoint. Connections start
// unauthenticated and receive no task events until a token is presented,
// either as a query parameter at upgrade time or in an authenticate message.
type WSHandler struct {
	hub          *realtime.Hub
	authAdapter  auth.AuthPort
	pingInterval time.Duration
	readTimeout  time.Duration
	logger       *slog.Logger
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(hub *realtime.Hub, authAdapter auth.AuthPort, pingInterval, readTimeout time.Duration) *WSHandler {
	return &WSHandler{
		hub:          hub,
		authAdapter:  authAdapter,
		pingInterval: pingInterval,
		readTimeout:  readTimeout,
		logger:       slog.Default(),
	}
}

// Handle runs the connection lifecycle: register with the hub, optional
// eager authentication, heartbeat, then the read loop until the peer goes
// away.
func (w *WSHandler) Handle(c *websocket.Conn) {
	client := w.hub.Connect(c)
	defer w.hub.Disconnect(client.ID)

	if token := c.Query("token"); token != "" {
		w.authenticate(client.ID, token)
	}

	_ = c.SetReadDeadline(time.Now().Add(w.readTimeout))
	c.SetPongHandler(func(string) error {
		return c.SetReadDeadline(time.Now().Add(w.readTimeout))
	})

	done := make(chan struct{})
	defer close(done)
	go w.heartbeat(c, client.ID, done)

	for {
		_, msgBytes, err := c.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				w.logger.Error("websocket read error", "connID", client.ID, "error", err)
			}
			return
		}

		var msg ClientMessage
		if err := json.Unmarshal(msgBytes, &msg); err != nil {
			w.sendError(client.ID, "Invalid message format")
			continue
		}

		switch msg.Event {
		case "authenticate":
			var payload AuthenticatePayload
			if err := json.Unmarshal(msg.Data, &payload); err != nil || payload.Token == "" {
				w.sendError(client.ID, "authenticate requires a token")
				continue
			}
			w.authenticate(client.ID, payload.Token)
		default:
			w.sendError(client.ID, "Unknown event: "+msg.Event)
		}
	}
}

// authenticate validates the token and binds the connection to its user. A
// failed attempt leaves the connection open but unauthenticated; the client
// may retry with a fresh token.
func (w *WSHandler) authenticate(connID, token string) {
	claims, err := w.authAdapter.ValidateToken(context.Background(), token)
	if err != nil {
		w.logger.Warn("websocket authentication failed", "connID", connID, "error", err)
		_ = w.hub.SendTo(connID, realtime.EventAuthenticated, realtime.AuthenticatedPayload{
			Success: false,
			Error:   "invalid or expired token",
		})
		return
	}

	w.hub.Authenticate(connID, claims.UserID)
	_ = w.hub.SendTo(connID, realtime.EventAuthenticated, realtime.AuthenticatedPayload{
		Success: true,
		UserID:  claims.UserID,
	})
}

// heartbeat pings the peer until the connection closes. Control frames may
// be written concurrently with data frames, so no coordination with the hub
// is needed.
func (w *WSHandler) heartbeat(c *websocket.Conn, connID string, done <-chan struct{}) {
	ticker := time.NewTicker(w.pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if err := c.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				w.logger.Warn("websocket ping failed", "connID", connID, "error", err)
				return
			}
		}
	}
}

func (w *WSHandler) sendError(connID, message string) {
	if err := w.hub.SendTo(connID, "error", map[string]string{"message": message}); err != nil {
		w.logger.Warn("failed to send websocket error", "connID", connID, "error", err)
	}
}
