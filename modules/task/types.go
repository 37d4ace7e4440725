package task

import (
	"context"
	"time"

	domain "github.com/example/taskboard/domain/task"
)

// CreateTaskRequest is the request for the create-task service.
type CreateTaskRequest struct {
	UserID      string              `json:"user_id"`
	Title       string              `json:"title"`
	Description string              `json:"description,omitempty"`
	Status      domain.TaskStatus   `json:"status,omitempty"`
	Priority    domain.TaskPriority `json:"priority,omitempty"`
	DueDate     *time.Time          `json:"due_date,omitempty"`
}

// GetTaskRequest is the request for the get-task service.
type GetTaskRequest struct {
	TaskID string `json:"task_id"`
	UserID string `json:"user_id"`
}

// UpdateTaskRequest is the request for the update-task service. Nil fields
// are left unchanged.
type UpdateTaskRequest struct {
	TaskID      string               `json:"task_id"`
	UserID      string               `json:"user_id"`
	Title       *string              `json:"title,omitempty"`
	Description *string              `json:"description,omitempty"`
	Status      *domain.TaskStatus   `json:"status,omitempty"`
	Priority    *domain.TaskPriority `json:"priority,omitempty"`
	DueDate     *time.Time           `json:"due_date,omitempty"`
}

// DeleteTaskRequest is the request for the delete-task service.
type DeleteTaskRequest struct {
	TaskID string `json:"task_id"`
	UserID string `json:"user_id"`
}

// DeleteTaskResponse is the response for the delete-task service.
type DeleteTaskResponse struct {
	Deleted bool `json:"deleted"`
}

// ListTasksRequest is the request for the list-tasks service.
type ListTasksRequest struct {
	UserID   string              `json:"user_id"`
	Status   domain.TaskStatus   `json:"status,omitempty"`
	Priority domain.TaskPriority `json:"priority,omitempty"`
	Search   string              `json:"search,omitempty"`
	DateFrom *time.Time          `json:"date_from,omitempty"`
	DateTo   *time.Time          `json:"date_to,omitempty"`
}

// ListTasksResponse is the response for the list-tasks service.
type ListTasksResponse struct {
	Tasks []domain.Task `json:"tasks"`
	Total int           `json:"total"`
}

// GroupedTasksRequest is the request for the tasks-by-status service.
type GroupedTasksRequest struct {
	UserID string `json:"user_id"`
}

// GroupedTasksResponse is the response for the tasks-by-status service.
type GroupedTasksResponse struct {
	Todo       []domain.Task `json:"todo"`
	InProgress []domain.Task `json:"in_progress"`
	Done       []domain.Task `json:"done"`
}

// TaskResponse is the response carrying a single task.
type TaskResponse struct {
	Task domain.Task `json:"task"`
}

// TaskPort defines the interface driving adapters use to reach the task
// domain. Every operation is scoped to the authenticated owner.
type TaskPort interface {
	Create(ctx context.Context, req *CreateTaskRequest) (*domain.Task, error)
	List(ctx context.Context, req *ListTasksRequest) ([]domain.Task, error)
	GroupedByStatus(ctx context.Context, userID string) (*GroupedTasksResponse, error)
	Get(ctx context.Context, taskID, userID string) (*domain.Task, error)
	Update(ctx context.Context, req *UpdateTaskRequest) (*domain.Task, error)
	Delete(ctx context.Context, taskID, userID string) error
}
