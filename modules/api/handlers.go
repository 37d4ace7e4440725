package api

import (
	"encoding/json"
	"log"
	"strings"
	"time"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"github.com/gofiber/fiber/v2"

	domaintask "github.com/example/taskboard/domain/task"
	domainuser "github.com/example/taskboard/domain/user"
	"github.com/example/taskboard/modules/auth"
	"github.com/example/taskboard/modules/task"
)

// Handlers contains HTTP handlers for the API.
type Handlers struct {
	authContainer mono.ServiceContainer
	authAdapter   auth.AuthPort
	taskPort      task.TaskPort
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(authContainer mono.ServiceContainer, authAdapter auth.AuthPort, taskPort task.TaskPort) *Handlers {
	return &Handlers{
		authContainer: authContainer,
		authAdapter:   authAdapter,
		taskPort:      taskPort,
	}
}

// SignUp handles user registration.
func (h *Handlers) SignUp(c *fiber.Ctx) error {
	var req SignUpBody
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error:   "bad_request",
			Message: "Invalid request body",
		})
	}

	if req.Email == "" || req.Password == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error:   "bad_request",
			Message: "Email and password are required",
		})
	}

	authReq := auth.SignUpRequest{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	}
	var resp auth.AuthResponse

	if err := helper.CallRequestReplyService(
		c.UserContext(),
		h.authContainer,
		"signup",
		json.Marshal,
		json.Unmarshal,
		&authReq,
		&resp,
	); err != nil {
		return h.handleAuthError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(resp)
}

// SignIn handles user login.
func (h *Handlers) SignIn(c *fiber.Ctx) error {
	var req SignInBody
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error:   "bad_request",
			Message: "Invalid request body",
		})
	}

	if req.Email == "" || req.Password == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error:   "bad_request",
			Message: "Email and password are required",
		})
	}

	authReq := auth.SignInRequest{
		Email:    req.Email,
		Password: req.Password,
	}
	var resp auth.AuthResponse

	if err := helper.CallRequestReplyService(
		c.UserContext(),
		h.authContainer,
		"signin",
		json.Marshal,
		json.Unmarshal,
		&authReq,
		&resp,
	); err != nil {
		return h.handleAuthError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(resp)
}

// Profile returns the authenticated user's account details.
func (h *Handlers) Profile(c *fiber.Ctx) error {
	claims, ok := currentUser(c)
	if !ok {
		return unauthenticated(c)
	}

	user, err := h.authAdapter.GetUser(c.UserContext(), claims.UserID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to retrieve user profile",
		})
	}

	return c.Status(fiber.StatusOK).JSON(user)
}

// CreateTask handles task creation.
func (h *Handlers) CreateTask(c *fiber.Ctx) error {
	claims, ok := currentUser(c)
	if !ok {
		return unauthenticated(c)
	}

	var req CreateTaskBody
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error:   "bad_request",
			Message: "Invalid request body",
		})
	}

	created, err := h.taskPort.Create(c.UserContext(), &task.CreateTaskRequest{
		UserID:      claims.UserID,
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		DueDate:     req.DueDate,
	})
	if err != nil {
		return h.handleTaskError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(created)
}

// ListTasks handles filtered task listing.
func (h *Handlers) ListTasks(c *fiber.Ctx) error {
	claims, ok := currentUser(c)
	if !ok {
		return unauthenticated(c)
	}

	req := task.ListTasksRequest{
		UserID:   claims.UserID,
		Status:   domaintask.TaskStatus(c.Query("status")),
		Priority: domaintask.TaskPriority(c.Query("priority")),
		Search:   c.Query("search"),
	}

	dateFrom, err := parseQueryTime(c, "dateFrom")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error:   "bad_request",
			Message: "dateFrom must be an RFC 3339 timestamp",
		})
	}
	req.DateFrom = dateFrom

	dateTo, err := parseQueryTime(c, "dateTo")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error:   "bad_request",
			Message: "dateTo must be an RFC 3339 timestamp",
		})
	}
	req.DateTo = dateTo

	tasks, err := h.taskPort.List(c.UserContext(), &req)
	if err != nil {
		return h.handleTaskError(c, err)
	}

	return c.JSON(TaskListResponse{Tasks: tasks, Total: len(tasks)})
}

// GroupedTasks handles the by-status board view.
func (h *Handlers) GroupedTasks(c *fiber.Ctx) error {
	claims, ok := currentUser(c)
	if !ok {
		return unauthenticated(c)
	}

	grouped, err := h.taskPort.GroupedByStatus(c.UserContext(), claims.UserID)
	if err != nil {
		return h.handleTaskError(c, err)
	}

	return c.JSON(GroupedTasksResponse{
		Todo:       grouped.Todo,
		InProgress: grouped.InProgress,
		Done:       grouped.Done,
	})
}

// GetTask handles single task retrieval.
func (h *Handlers) GetTask(c *fiber.Ctx) error {
	claims, ok := currentUser(c)
	if !ok {
		return unauthenticated(c)
	}

	found, err := h.taskPort.Get(c.UserContext(), c.Params("id"), claims.UserID)
	if err != nil {
		return h.handleTaskError(c, err)
	}

	return c.JSON(found)
}

// UpdateTask handles partial task updates.
func (h *Handlers) UpdateTask(c *fiber.Ctx) error {
	claims, ok := currentUser(c)
	if !ok {
		return unauthenticated(c)
	}

	var req UpdateTaskBody
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error:   "bad_request",
			Message: "Invalid request body",
		})
	}

	updated, err := h.taskPort.Update(c.UserContext(), &task.UpdateTaskRequest{
		TaskID:      c.Params("id"),
		UserID:      claims.UserID,
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		DueDate:     req.DueDate,
	})
	if err != nil {
		return h.handleTaskError(c, err)
	}

	return c.JSON(updated)
}

// DeleteTask handles task deletion.
func (h *Handlers) DeleteTask(c *fiber.Ctx) error {
	claims, ok := currentUser(c)
	if !ok {
		return unauthenticated(c)
	}

	if err := h.taskPort.Delete(c.UserContext(), c.Params("id"), claims.UserID); err != nil {
		return h.handleTaskError(c, err)
	}

	return c.SendStatus(fiber.StatusOK)
}

// currentUser extracts the claims stored by AuthMiddleware.
func currentUser(c *fiber.Ctx) (*domainuser.Claims, bool) {
	claims, ok := c.Locals(UserContextKey).(*domainuser.Claims)
	return claims, ok
}

func unauthenticated(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
		Error:   "unauthorized",
		Message: "User not authenticated",
	})
}

// parseQueryTime parses an optional RFC 3339 query parameter.
func parseQueryTime(c *fiber.Ctx, key string) (*time.Time, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// handleAuthError maps auth service errors to HTTP responses. Errors cross
// the request-reply boundary as strings, so matching is by message.
func (h *Handlers) handleAuthError(c *fiber.Ctx, err error) error {
	errStr := err.Error()

	switch {
	case strings.Contains(errStr, "invalid email or password"):
		return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
			Error:   "unauthorized",
			Message: "Invalid email or password",
		})
	case strings.Contains(errStr, "user with this email already exists"):
		return c.Status(fiber.StatusConflict).JSON(ErrorResponse{
			Error:   "conflict",
			Message: "User with this email already exists",
		})
	case strings.Contains(errStr, "invalid email format"):
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error:   "bad_request",
			Message: "Invalid email format",
		})
	case strings.Contains(errStr, "password must be at least"):
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error:   "bad_request",
			Message: "Password must be at least 8 characters",
		})
	case strings.Contains(errStr, "password must be at most"):
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error:   "bad_request",
			Message: "Password must be at most 72 characters",
		})
	default:
		// Log the actual error but don't expose it to the client
		log.Printf("[api] Internal error: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Error:   "internal_error",
			Message: "An internal error occurred",
		})
	}
}

// handleTaskError maps task service errors to HTTP responses.
func (h *Handlers) handleTaskError(c *fiber.Ctx, err error) error {
	errStr := err.Error()

	switch {
	case strings.Contains(errStr, "task not found"):
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{
			Error:   "not_found",
			Message: "Task not found",
		})
	case strings.Contains(errStr, "task title is required"):
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error:   "bad_request",
			Message: "Task title is required",
		})
	case strings.Contains(errStr, "invalid task status"):
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error:   "bad_request",
			Message: "Status must be one of: todo, in_progress, done",
		})
	case strings.Contains(errStr, "invalid task priority"):
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error:   "bad_request",
			Message: "Priority must be one of: low, medium, high",
		})
	default:
		log.Printf("[api] Internal error: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Error:   "internal_error",
			Message: "An internal error occurred",
		})
	}
}
