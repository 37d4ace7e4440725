package events

import (
	"time"

	"github.com/go-monolith/mono/pkg/helper"

	domain "github.com/example/taskboard/domain/task"
)

// Action values carried in realtime payloads derived from these events.
const (
	ActionCreated       = "created"
	ActionUpdated       = "updated"
	ActionDeleted       = "deleted"
	ActionStatusChanged = "status_changed"
)

// TaskCreatedEvent is emitted after a task has been persisted.
type TaskCreatedEvent struct {
	TaskID    string      `json:"task_id"`
	UserID    string      `json:"user_id"`
	Task      domain.Task `json:"task"`
	Timestamp time.Time   `json:"timestamp"`
}

// TaskUpdatedEvent is emitted after any successful task mutation.
// Task carries the full post-mutation snapshot.
type TaskUpdatedEvent struct {
	TaskID    string      `json:"task_id"`
	UserID    string      `json:"user_id"`
	Task      domain.Task `json:"task"`
	Timestamp time.Time   `json:"timestamp"`
}

// TaskDeletedEvent is emitted after a task has been removed.
type TaskDeletedEvent struct {
	TaskID    string    `json:"task_id"`
	UserID    string    `json:"user_id"`
	Timestamp time.Time `json:"timestamp"`
}

// TaskStatusChangedEvent is emitted in addition to TaskUpdatedEvent when an
// update moved the task to a different status column.
type TaskStatusChangedEvent struct {
	TaskID    string            `json:"task_id"`
	UserID    string            `json:"user_id"`
	Task      domain.Task       `json:"task"`
	OldStatus domain.TaskStatus `json:"old_status"`
	NewStatus domain.TaskStatus `json:"new_status"`
	Timestamp time.Time         `json:"timestamp"`
}

// Typed event definitions for the task domain.
var (
	TaskCreatedV1 = helper.EventDefinition[TaskCreatedEvent](
		"task", "TaskCreated", "v1",
	)

	TaskUpdatedV1 = helper.EventDefinition[TaskUpdatedEvent](
		"task", "TaskUpdated", "v1",
	)

	TaskDeletedV1 = helper.EventDefinition[TaskDeletedEvent](
		"task", "TaskDeleted", "v1",
	)

	TaskStatusChangedV1 = helper.EventDefinition[TaskStatusChangedEvent](
		"task", "TaskStatusChanged", "v1",
	)
)
