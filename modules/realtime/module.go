package realtime

import (
	"context"
	"fmt"
	"log"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"

	"github.com/example/taskboard/config"
	domain "github.com/example/taskboard/domain/task"
	"github.com/example/taskboard/events"
)

// Server-pushed event names on the realtime channel.
const (
	EventTaskCreated       = "taskCreated"
	EventTaskUpdated       = "taskUpdated"
	EventTaskDeleted       = "taskDeleted"
	EventTaskStatusChanged = "taskStatusChanged"
	EventAuthenticated     = "authenticated"
)

// TaskEventPayload is the payload pushed to clients for every task event.
type TaskEventPayload struct {
	TaskID    string            `json:"taskId"`
	UserID    string            `json:"userId"`
	Action    string            `json:"action"`
	Task      *domain.Task      `json:"task,omitempty"`
	OldStatus domain.TaskStatus `json:"oldStatus,omitempty"`
	NewStatus domain.TaskStatus `json:"newStatus,omitempty"`
}

// AuthenticatedPayload acknowledges an authenticate request.
type AuthenticatedPayload struct {
	Success bool   `json:"success"`
	UserID  string `json:"userId,omitempty"`
	Error   string `json:"error,omitempty"`
}

// RealtimeModule is the gateway between the event bus and live websocket
// connections: it consumes task events and fans each one out to the owning
// user's connections. Delivery is best-effort, at most once per socket.
type RealtimeModule struct {
	hub   *Hub
	scope config.BroadcastScope
}

// Compile-time interface checks.
var _ mono.Module = (*RealtimeModule)(nil)
var _ mono.EventConsumerModule = (*RealtimeModule)(nil)
var _ mono.HealthCheckableModule = (*RealtimeModule)(nil)

// NewModule creates a new RealtimeModule. scope controls whether events are
// delivered only to the owner's connections (the default) or to every
// connection.
func NewModule(scope config.BroadcastScope) (*RealtimeModule, error) {
	hub, err := NewHub()
	if err != nil {
		return nil, err
	}
	return &RealtimeModule{hub: hub, scope: scope}, nil
}

// Name returns the module name.
func (m *RealtimeModule) Name() string {
	return "realtime"
}

// Start initializes the module.
func (m *RealtimeModule) Start(_ context.Context) error {
	log.Printf("[realtime] Module started (broadcast scope: %s)", m.scope)
	return nil
}

// Stop disconnects all clients.
func (m *RealtimeModule) Stop(_ context.Context) error {
	count := m.hub.ClientCount()
	m.hub.Close()
	log.Printf("[realtime] Module stopped - %d clients were connected", count)
	return nil
}

// Health returns the health status.
func (m *RealtimeModule) Health(_ context.Context) mono.HealthStatus {
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"connected_clients": m.hub.ClientCount(),
			"broadcast_scope":   string(m.scope),
		},
	}
}

// GetHub returns the connection registry for the API module's websocket
// endpoint.
func (m *RealtimeModule) GetHub() *Hub {
	return m.hub
}

// RegisterEventConsumers subscribes to the task domain events.
func (m *RealtimeModule) RegisterEventConsumers(registry mono.EventRegistry) error {
	if err := helper.RegisterTypedEventConsumer(
		registry, events.TaskCreatedV1, m.handleTaskCreated, m,
	); err != nil {
		return fmt.Errorf("failed to register TaskCreated consumer: %w", err)
	}

	if err := helper.RegisterTypedEventConsumer(
		registry, events.TaskUpdatedV1, m.handleTaskUpdated, m,
	); err != nil {
		return fmt.Errorf("failed to register TaskUpdated consumer: %w", err)
	}

	if err := helper.RegisterTypedEventConsumer(
		registry, events.TaskDeletedV1, m.handleTaskDeleted, m,
	); err != nil {
		return fmt.Errorf("failed to register TaskDeleted consumer: %w", err)
	}

	if err := helper.RegisterTypedEventConsumer(
		registry, events.TaskStatusChangedV1, m.handleTaskStatusChanged, m,
	); err != nil {
		return fmt.Errorf("failed to register TaskStatusChanged consumer: %w", err)
	}

	log.Println("[realtime] Registered event consumers: TaskCreated, TaskUpdated, TaskDeleted, TaskStatusChanged")
	return nil
}

func (m *RealtimeModule) handleTaskCreated(_ context.Context, event events.TaskCreatedEvent, _ *mono.Msg) error {
	task := event.Task
	m.emit(event.UserID, EventTaskCreated, TaskEventPayload{
		TaskID: event.TaskID,
		UserID: event.UserID,
		Action: events.ActionCreated,
		Task:   &task,
	})
	return nil
}

func (m *RealtimeModule) handleTaskUpdated(_ context.Context, event events.TaskUpdatedEvent, _ *mono.Msg) error {
	task := event.Task
	m.emit(event.UserID, EventTaskUpdated, TaskEventPayload{
		TaskID: event.TaskID,
		UserID: event.UserID,
		Action: events.ActionUpdated,
		Task:   &task,
	})
	return nil
}

func (m *RealtimeModule) handleTaskDeleted(_ context.Context, event events.TaskDeletedEvent, _ *mono.Msg) error {
	m.emit(event.UserID, EventTaskDeleted, TaskEventPayload{
		TaskID: event.TaskID,
		UserID: event.UserID,
		Action: events.ActionDeleted,
	})
	return nil
}

func (m *RealtimeModule) handleTaskStatusChanged(_ context.Context, event events.TaskStatusChangedEvent, _ *mono.Msg) error {
	task := event.Task
	m.emit(event.UserID, EventTaskStatusChanged, TaskEventPayload{
		TaskID:    event.TaskID,
		UserID:    event.UserID,
		Action:    events.ActionStatusChanged,
		Task:      &task,
		OldStatus: event.OldStatus,
		NewStatus: event.NewStatus,
	})
	return nil
}

// emit delivers the payload to the owning user's connections. Global scope
// additionally reaches every connection; it exists for shared-board
// experiments and must stay off for single-owner deployments because it
// crosses account boundaries.
func (m *RealtimeModule) emit(ownerID, event string, payload TaskEventPayload) {
	if m.scope == config.ScopeGlobal {
		m.hub.EmitAll(event, payload)
		return
	}
	m.hub.EmitToUser(ownerID, event, payload)
}
