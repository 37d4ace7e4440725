package syncclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/fasthttp/websocket"
	"golang.org/x/sync/errgroup"

	domain "github.com/example/taskboard/domain/task"
	"github.com/example/taskboard/pkg/syncstore"
)

const (
	defaultReconnectDelay = 2 * time.Second
	defaultMaxAttempts    = 10
	defaultResyncInterval = 5 * time.Minute
	readTimeout           = 90 * time.Second
)

// ErrAuthFailed means the server rejected the token on the realtime
// channel. Reconnecting will not help until a fresh token is installed.
var ErrAuthFailed = errors.New("realtime authentication failed")

// serverMessage is the envelope for messages pushed by the server.
type serverMessage struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// taskEventPayload mirrors the server's task event payload.
type taskEventPayload struct {
	TaskID    string            `json:"taskId"`
	UserID    string            `json:"userId"`
	Action    string            `json:"action"`
	Task      *domain.Task      `json:"task,omitempty"`
	OldStatus domain.TaskStatus `json:"oldStatus,omitempty"`
	NewStatus domain.TaskStatus `json:"newStatus,omitempty"`
}

type authenticatedPayload struct {
	Success bool   `json:"success"`
	UserID  string `json:"userId,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Syncer keeps a collection converged with the server: a websocket
// subscription applies pushes as they arrive, a full refetch runs after
// every reconnect, and a slow periodic resync covers anything missed in
// between.
type Syncer struct {
	client     *Client
	collection Collection
	wsURL      string
	dialer     *websocket.Dialer

	ReconnectDelay time.Duration
	MaxAttempts    int
	ResyncInterval time.Duration

	logger *slog.Logger
}

// Collection is the part of the local store the syncer drives.
type Collection interface {
	Apply(task domain.Task) bool
	Remove(id string) bool
	Sync(snapshot []domain.Task)
	Get(id string) (domain.Task, bool)
}

// NewSyncer creates a syncer for the client's server. The websocket URL is
// derived from the client's base URL.
func NewSyncer(client *Client, collection Collection) *Syncer {
	wsURL := client.baseURL + "/ws/tasks"
	wsURL = strings.Replace(wsURL, "https://", "wss://", 1)
	wsURL = strings.Replace(wsURL, "http://", "ws://", 1)

	return &Syncer{
		client:         client,
		collection:     collection,
		wsURL:          wsURL,
		dialer:         websocket.DefaultDialer,
		ReconnectDelay: defaultReconnectDelay,
		MaxAttempts:    defaultMaxAttempts,
		ResyncInterval: defaultResyncInterval,
		logger:         slog.Default(),
	}
}

// Run blocks until ctx is canceled, the token is rejected, or the server
// stays unreachable past the reconnect budget. The collection is fully
// fetched before the subscription starts so there is no empty-board window.
func (s *Syncer) Run(ctx context.Context) error {
	if err := s.refetch(ctx); err != nil {
		return fmt.Errorf("initial fetch failed: %w", err)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return s.subscribe(ctx) })
	g.Go(func() error { return s.resyncLoop(ctx) })
	return g.Wait()
}

// MoveTask changes a task's column optimistically: the local collection
// moves first, and moves back if the server rejects the update.
func (s *Syncer) MoveTask(ctx context.Context, id string, status domain.TaskStatus) error {
	prev, ok := s.collection.Get(id)
	if !ok {
		return fmt.Errorf("unknown task: %s", id)
	}

	optimistic := prev
	optimistic.Status = status
	s.collection.Apply(optimistic)

	updated, err := s.client.UpdateTask(ctx, id, UpdateTaskParams{Status: &status})
	if err != nil {
		s.collection.Apply(prev)
		return err
	}

	s.collection.Apply(*updated)
	return nil
}

// subscribe maintains the websocket session, reconnecting with a refetch
// after every drop.
func (s *Syncer) subscribe(ctx context.Context) error {
	attempts := 0
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		conn, err := s.dial(ctx)
		if err != nil {
			attempts++
			if attempts >= s.MaxAttempts {
				return fmt.Errorf("gave up after %d connection attempts: %w", attempts, err)
			}
			s.logger.Warn("realtime connect failed, retrying", "attempt", attempts, "error", err)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(s.ReconnectDelay):
			}
			continue
		}
		attempts = 0

		err = s.readLoop(ctx, conn)
		conn.Close()
		if errors.Is(err, ErrAuthFailed) || ctx.Err() != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}
		s.logger.Warn("realtime connection dropped", "error", err)

		// Pushes may have been missed while disconnected.
		if err := s.refetch(ctx); err != nil {
			s.logger.Warn("post-reconnect refetch failed", "error", err)
		}
	}
}

func (s *Syncer) dial(ctx context.Context) (*websocket.Conn, error) {
	u := s.wsURL + "?token=" + url.QueryEscape(s.client.Token())
	conn, _, err := s.dialer.DialContext(ctx, u, nil)
	if err != nil {
		return nil, err
	}

	_ = conn.SetReadDeadline(time.Now().Add(readTimeout))
	conn.SetPingHandler(func(appData string) error {
		_ = conn.SetReadDeadline(time.Now().Add(readTimeout))
		return conn.WriteControl(websocket.PongMessage, []byte(appData), time.Now().Add(time.Second))
	})
	return conn, nil
}

func (s *Syncer) readLoop(ctx context.Context, conn *websocket.Conn) error {
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		_, data, err := conn.ReadMessage()
		if err != nil {
			return err
		}

		var msg serverMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			s.logger.Warn("unparseable server message", "error", err)
			continue
		}

		if err := s.handleMessage(msg); err != nil {
			return err
		}
	}
}

func (s *Syncer) handleMessage(msg serverMessage) error {
	switch msg.Event {
	case "authenticated":
		var payload authenticatedPayload
		if err := json.Unmarshal(msg.Data, &payload); err != nil {
			return fmt.Errorf("bad authenticated payload: %w", err)
		}
		if !payload.Success {
			return fmt.Errorf("%w: %s", ErrAuthFailed, payload.Error)
		}
		s.logger.Info("realtime channel authenticated", "userID", payload.UserID)

	case "taskCreated", "taskUpdated", "taskStatusChanged":
		var payload taskEventPayload
		if err := json.Unmarshal(msg.Data, &payload); err != nil {
			s.logger.Warn("bad task event payload", "event", msg.Event, "error", err)
			return nil
		}
		if payload.Task != nil {
			s.collection.Apply(*payload.Task)
		}

	case "taskDeleted":
		var payload taskEventPayload
		if err := json.Unmarshal(msg.Data, &payload); err != nil {
			s.logger.Warn("bad task event payload", "event", msg.Event, "error", err)
			return nil
		}
		s.collection.Remove(payload.TaskID)

	case "error":
		s.logger.Warn("server reported error", "data", string(msg.Data))

	default:
		s.logger.Debug("ignoring unknown event", "event", msg.Event)
	}
	return nil
}

// refetch reconciles the collection against a full server listing.
func (s *Syncer) refetch(ctx context.Context) error {
	tasks, err := s.client.ListTasks(ctx, syncstore.Filter{})
	if err != nil {
		return err
	}
	s.collection.Sync(tasks)
	return nil
}

func (s *Syncer) resyncLoop(ctx context.Context) error {
	if s.ResyncInterval <= 0 {
		<-ctx.Done()
		return ctx.Err()
	}

	ticker := time.NewTicker(s.ResyncInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := s.refetch(ctx); err != nil {
				s.logger.Warn("periodic resync failed", "error", err)
			}
		}
	}
}
