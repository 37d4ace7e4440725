package task

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"

	domain "github.com/example/taskboard/domain/task"
)

// taskAdapter wraps the ServiceContainer for type-safe cross-module calls.
type taskAdapter struct {
	container mono.ServiceContainer
}

// NewTaskAdapter creates a new adapter implementing TaskPort.
// container is the task module's ServiceContainer received via
// SetDependencyServiceContainer.
func NewTaskAdapter(container mono.ServiceContainer) TaskPort {
	if container == nil {
		panic("task adapter requires non-nil ServiceContainer")
	}
	return &taskAdapter{container: container}
}

// Create creates a new task via the create-task service.
func (a *taskAdapter) Create(ctx context.Context, req *CreateTaskRequest) (*domain.Task, error) {
	var resp TaskResponse
	if err := helper.CallRequestReplyService(
		ctx, a.container, "create-task", json.Marshal, json.Unmarshal, req, &resp,
	); err != nil {
		return nil, fmt.Errorf("create-task service call failed: %w", err)
	}
	return &resp.Task, nil
}

// List lists the owner's tasks via the list-tasks service.
func (a *taskAdapter) List(ctx context.Context, req *ListTasksRequest) ([]domain.Task, error) {
	var resp ListTasksResponse
	if err := helper.CallRequestReplyService(
		ctx, a.container, "list-tasks", json.Marshal, json.Unmarshal, req, &resp,
	); err != nil {
		return nil, fmt.Errorf("list-tasks service call failed: %w", err)
	}
	return resp.Tasks, nil
}

// GroupedByStatus fetches the by-status partition via the tasks-by-status service.
func (a *taskAdapter) GroupedByStatus(ctx context.Context, userID string) (*GroupedTasksResponse, error) {
	req := GroupedTasksRequest{UserID: userID}
	var resp GroupedTasksResponse
	if err := helper.CallRequestReplyService(
		ctx, a.container, "tasks-by-status", json.Marshal, json.Unmarshal, &req, &resp,
	); err != nil {
		return nil, fmt.Errorf("tasks-by-status service call failed: %w", err)
	}
	return &resp, nil
}

// Get retrieves a single owned task via the get-task service.
func (a *taskAdapter) Get(ctx context.Context, taskID, userID string) (*domain.Task, error) {
	req := GetTaskRequest{TaskID: taskID, UserID: userID}
	var resp TaskResponse
	if err := helper.CallRequestReplyService(
		ctx, a.container, "get-task", json.Marshal, json.Unmarshal, &req, &resp,
	); err != nil {
		return nil, fmt.Errorf("get-task service call failed: %w", err)
	}
	return &resp.Task, nil
}

// Update applies a partial update via the update-task service.
func (a *taskAdapter) Update(ctx context.Context, req *UpdateTaskRequest) (*domain.Task, error) {
	var resp TaskResponse
	if err := helper.CallRequestReplyService(
		ctx, a.container, "update-task", json.Marshal, json.Unmarshal, req, &resp,
	); err != nil {
		return nil, fmt.Errorf("update-task service call failed: %w", err)
	}
	return &resp.Task, nil
}

// Delete removes an owned task via the delete-task service.
func (a *taskAdapter) Delete(ctx context.Context, taskID, userID string) error {
	req := DeleteTaskRequest{TaskID: taskID, UserID: userID}
	var resp DeleteTaskResponse
	if err := helper.CallRequestReplyService(
		ctx, a.container, "delete-task", json.Marshal, json.Unmarshal, &req, &resp,
	); err != nil {
		return fmt.Errorf("delete-task service call failed: %w", err)
	}
	if !resp.Deleted {
		return fmt.Errorf("task not deleted: %s", taskID)
	}
	return nil
}
