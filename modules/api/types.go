package api

import (
	"time"

	domain "github.com/example/taskboard/domain/task"
)

// ErrorResponse is the standard error body returned by the API.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// SignUpBody is the request body for POST /api/v1/auth/signup.
type SignUpBody struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// SignInBody is the request body for POST /api/v1/auth/signin.
type SignInBody struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// CreateTaskBody is the request body for POST /api/v1/tasks.
type CreateTaskBody struct {
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Status      domain.TaskStatus   `json:"status"`
	Priority    domain.TaskPriority `json:"priority"`
	DueDate     *time.Time          `json:"dueDate"`
}

// UpdateTaskBody is the request body for PATCH /api/v1/tasks/:id.
// Absent fields are left unchanged.
type UpdateTaskBody struct {
	Title       *string              `json:"title"`
	Description *string              `json:"description"`
	Status      *domain.TaskStatus   `json:"status"`
	Priority    *domain.TaskPriority `json:"priority"`
	DueDate     *time.Time           `json:"dueDate"`
}

// TaskListResponse is the response body for GET /api/v1/tasks.
type TaskListResponse struct {
	Tasks []domain.Task `json:"tasks"`
	Total int           `json:"total"`
}

// GroupedTasksResponse is the response body for GET /api/v1/tasks/by-status.
type GroupedTasksResponse struct {
	Todo       []domain.Task `json:"todo"`
	InProgress []domain.Task `json:"in_progress"`
	Done       []domain.Task `json:"done"`
}
