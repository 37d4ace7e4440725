// Package syncclient is the Go client for the taskboard API: a REST client
// for mutations and a websocket listener that keeps a syncstore.Collection
// in step with server pushes.
package syncclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	domain "github.com/example/taskboard/domain/task"
	"github.com/example/taskboard/pkg/syncstore"
)

const defaultHTTPTimeout = 10 * time.Second

// APIError is a non-2xx response from the server.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d (%s): %s", e.StatusCode, e.Code, e.Message)
}

// User is the account representation returned by the auth endpoints.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	CreatedAt time.Time `json:"createdAt"`
}

// Session is the result of signing in or up.
type Session struct {
	User      User   `json:"user"`
	Token     string `json:"token"`
	ExpiresIn int64  `json:"expires_in"`
}

// CreateTaskParams are the fields for creating a task.
type CreateTaskParams struct {
	Title       string              `json:"title"`
	Description string              `json:"description,omitempty"`
	Status      domain.TaskStatus   `json:"status,omitempty"`
	Priority    domain.TaskPriority `json:"priority,omitempty"`
	DueDate     *time.Time          `json:"dueDate,omitempty"`
}

// UpdateTaskParams are the fields for a partial update. Nil fields are left
// unchanged.
type UpdateTaskParams struct {
	Title       *string              `json:"title,omitempty"`
	Description *string              `json:"description,omitempty"`
	Status      *domain.TaskStatus   `json:"status,omitempty"`
	Priority    *domain.TaskPriority `json:"priority,omitempty"`
	DueDate     *time.Time           `json:"dueDate,omitempty"`
}

// Client talks to the taskboard REST API. It is safe for concurrent use.
type Client struct {
	baseURL string
	httpc   *http.Client

	mu    sync.RWMutex
	token string
}

// NewClient creates a client for the given base URL, e.g.
// "http://localhost:8000".
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc:   &http.Client{Timeout: defaultHTTPTimeout},
	}
}

// Token returns the bearer token from the last sign-in.
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// SetToken installs a token obtained elsewhere.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// SignUp registers an account and stores the returned token.
func (c *Client) SignUp(ctx context.Context, email, password, firstName, lastName string) (*Session, error) {
	body := map[string]string{
		"email":     email,
		"password":  password,
		"firstName": firstName,
		"lastName":  lastName,
	}
	var session Session
	if err := c.do(ctx, http.MethodPost, "/api/v1/auth/signup", body, &session); err != nil {
		return nil, err
	}
	c.SetToken(session.Token)
	return &session, nil
}

// SignIn authenticates and stores the returned token.
func (c *Client) SignIn(ctx context.Context, email, password string) (*Session, error) {
	body := map[string]string{
		"email":    email,
		"password": password,
	}
	var session Session
	if err := c.do(ctx, http.MethodPost, "/api/v1/auth/signin", body, &session); err != nil {
		return nil, err
	}
	c.SetToken(session.Token)
	return &session, nil
}

// CreateTask creates a task.
func (c *Client) CreateTask(ctx context.Context, params CreateTaskParams) (*domain.Task, error) {
	var task domain.Task
	if err := c.do(ctx, http.MethodPost, "/api/v1/tasks", params, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// ListTasks fetches the caller's tasks, optionally filtered.
func (c *Client) ListTasks(ctx context.Context, filter syncstore.Filter) ([]domain.Task, error) {
	q := url.Values{}
	if filter.Status != "" {
		q.Set("status", string(filter.Status))
	}
	if filter.Priority != "" {
		q.Set("priority", string(filter.Priority))
	}
	if filter.Search != "" {
		q.Set("search", filter.Search)
	}
	if filter.DateFrom != nil {
		q.Set("dateFrom", filter.DateFrom.Format(time.RFC3339))
	}
	if filter.DateTo != nil {
		q.Set("dateTo", filter.DateTo.Format(time.RFC3339))
	}

	path := "/api/v1/tasks"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var resp struct {
		Tasks []domain.Task `json:"tasks"`
		Total int           `json:"total"`
	}
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Tasks, nil
}

// GroupedTasks fetches the board view.
func (c *Client) GroupedTasks(ctx context.Context) (*syncstore.GroupedView, error) {
	var view syncstore.GroupedView
	if err := c.do(ctx, http.MethodGet, "/api/v1/tasks/by-status", nil, &view); err != nil {
		return nil, err
	}
	return &view, nil
}

// GetTask fetches a single task.
func (c *Client) GetTask(ctx context.Context, id string) (*domain.Task, error) {
	var task domain.Task
	if err := c.do(ctx, http.MethodGet, "/api/v1/tasks/"+id, nil, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// UpdateTask applies a partial update.
func (c *Client) UpdateTask(ctx context.Context, id string, params UpdateTaskParams) (*domain.Task, error) {
	var task domain.Task
	if err := c.do(ctx, http.MethodPatch, "/api/v1/tasks/"+id, params, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// DeleteTask deletes a task.
func (c *Client) DeleteTask(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/v1/tasks/"+id, nil, nil)
}

// do runs one request against the API, attaching the bearer token and
// decoding either the success body into out or the error body into an
// APIError.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var errBody struct {
			Error   string `json:"error"`
			Message string `json:"message"`
		}
		if decodeErr := json.NewDecoder(resp.Body).Decode(&errBody); decodeErr == nil {
			apiErr.Code = errBody.Error
			apiErr.Message = errBody.Message
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
