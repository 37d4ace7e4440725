package task

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/go-monolith/mono"
	"github.com/google/uuid"

	domain "github.com/example/taskboard/domain/task"
	"github.com/example/taskboard/events"
)

// CreateInput are the caller-supplied fields for a new task.
type CreateInput struct {
	Title       string
	Description string
	Status      domain.TaskStatus
	Priority    domain.TaskPriority
	DueDate     *time.Time
}

// UpdateInput is a partial update; nil fields are left unchanged.
type UpdateInput struct {
	Title       *string
	Description *string
	Status      *domain.TaskStatus
	Priority    *domain.TaskPriority
	DueDate     *time.Time
}

// GroupedTasks partitions a user's tasks into the three status columns,
// each preserving the created-at descending list order.
type GroupedTasks struct {
	Todo       []domain.Task `json:"todo"`
	InProgress []domain.Task `json:"in_progress"`
	Done       []domain.Task `json:"done"`
}

// Service implements the ownership-scoped task operations and publishes a
// domain event for every successful mutation.
type Service struct {
	repo     *Repository
	eventBus mono.EventBus
	logger   *slog.Logger
}

// NewService creates a new task service. The event bus may be nil, in which
// case mutations succeed without event publication.
func NewService(repo *Repository, eventBus mono.EventBus) *Service {
	return &Service{
		repo:     repo,
		eventBus: eventBus,
		logger:   slog.Default(),
	}
}

// SetEventBus wires the event bus after construction.
func (s *Service) SetEventBus(bus mono.EventBus) {
	s.eventBus = bus
}

// Create validates and persists a new task owned by ownerID, then publishes
// TaskCreated.
func (s *Service) Create(_ context.Context, ownerID string, input CreateInput) (*domain.Task, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, ErrTitleRequired
	}

	status := input.Status
	if status == "" {
		status = domain.StatusTodo
	} else if !status.Valid() {
		return nil, ErrInvalidStatus
	}

	priority := input.Priority
	if priority == "" {
		priority = domain.PriorityMedium
	} else if !priority.Valid() {
		return nil, ErrInvalidPriority
	}

	now := time.Now()
	task := &domain.Task{
		ID:          uuid.New().String(),
		Title:       input.Title,
		Description: input.Description,
		Status:      status,
		Priority:    priority,
		DueDate:     input.DueDate,
		UserID:      ownerID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(task); err != nil {
		return nil, err
	}

	s.publishCreated(task)
	s.logger.Info("task created", "taskID", task.ID, "userID", ownerID)
	return task, nil
}

// List returns ownerID's tasks matching the filter, newest first.
func (s *Service) List(_ context.Context, ownerID string, filter Filter) ([]domain.Task, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, ErrInvalidStatus
	}
	if filter.Priority != "" && !filter.Priority.Valid() {
		return nil, ErrInvalidPriority
	}
	return s.repo.FindByOwner(ownerID, filter)
}

// GroupedByStatus returns ownerID's full task list partitioned by status.
func (s *Service) GroupedByStatus(ctx context.Context, ownerID string) (*GroupedTasks, error) {
	tasks, err := s.List(ctx, ownerID, Filter{})
	if err != nil {
		return nil, err
	}

	grouped := &GroupedTasks{
		Todo:       make([]domain.Task, 0),
		InProgress: make([]domain.Task, 0),
		Done:       make([]domain.Task, 0),
	}
	for _, t := range tasks {
		switch t.Status {
		case domain.StatusInProgress:
			grouped.InProgress = append(grouped.InProgress, t)
		case domain.StatusDone:
			grouped.Done = append(grouped.Done, t)
		default:
			grouped.Todo = append(grouped.Todo, t)
		}
	}
	return grouped, nil
}

// Get returns the task if it is owned by ownerID, ErrTaskNotFound otherwise.
func (s *Service) Get(_ context.Context, id, ownerID string) (*domain.Task, error) {
	return s.repo.FindByIDAndOwner(id, ownerID)
}

// Update applies a partial update to an owned task, bumps updatedAt, and
// publishes TaskUpdated plus TaskStatusChanged when the status column moved.
func (s *Service) Update(ctx context.Context, id, ownerID string, input UpdateInput) (*domain.Task, error) {
	task, err := s.Get(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}

	oldStatus := task.Status

	if input.Title != nil {
		if strings.TrimSpace(*input.Title) == "" {
			return nil, ErrTitleRequired
		}
		task.Title = *input.Title
	}
	if input.Description != nil {
		task.Description = *input.Description
	}
	if input.Status != nil {
		if !input.Status.Valid() {
			return nil, ErrInvalidStatus
		}
		task.Status = *input.Status
	}
	if input.Priority != nil {
		if !input.Priority.Valid() {
			return nil, ErrInvalidPriority
		}
		task.Priority = *input.Priority
	}
	if input.DueDate != nil {
		task.DueDate = input.DueDate
	}

	// updatedAt must strictly increase even when the clock hasn't advanced
	// past the previous write.
	now := time.Now()
	if !now.After(task.UpdatedAt) {
		now = task.UpdatedAt.Add(time.Millisecond)
	}
	task.UpdatedAt = now

	if err := s.repo.Update(task); err != nil {
		return nil, err
	}

	s.publishUpdated(task)
	if task.Status != oldStatus {
		s.publishStatusChanged(task, oldStatus)
	}
	s.logger.Info("task updated", "taskID", task.ID, "userID", ownerID)
	return task, nil
}

// Remove deletes an owned task and publishes TaskDeleted.
func (s *Service) Remove(ctx context.Context, id, ownerID string) error {
	if _, err := s.Get(ctx, id, ownerID); err != nil {
		return err
	}
	if err := s.repo.DeleteByIDAndOwner(id, ownerID); err != nil {
		return err
	}

	s.publishDeleted(id, ownerID)
	s.logger.Info("task deleted", "taskID", id, "userID", ownerID)
	return nil
}

// Event publication is best-effort: the store mutation already succeeded, so
// failures are logged and swallowed.

func (s *Service) publishCreated(task *domain.Task) {
	if s.eventBus == nil {
		return
	}
	event := events.TaskCreatedEvent{
		TaskID:    task.ID,
		UserID:    task.UserID,
		Task:      *task,
		Timestamp: time.Now(),
	}
	if err := events.TaskCreatedV1.Publish(s.eventBus, event, nil); err != nil {
		s.logger.Warn("failed to publish TaskCreated event", "taskID", task.ID, "error", err)
	}
}

func (s *Service) publishUpdated(task *domain.Task) {
	if s.eventBus == nil {
		return
	}
	event := events.TaskUpdatedEvent{
		TaskID:    task.ID,
		UserID:    task.UserID,
		Task:      *task,
		Timestamp: time.Now(),
	}
	if err := events.TaskUpdatedV1.Publish(s.eventBus, event, nil); err != nil {
		s.logger.Warn("failed to publish TaskUpdated event", "taskID", task.ID, "error", err)
	}
}

func (s *Service) publishStatusChanged(task *domain.Task, oldStatus domain.TaskStatus) {
	if s.eventBus == nil {
		return
	}
	event := events.TaskStatusChangedEvent{
		TaskID:    task.ID,
		UserID:    task.UserID,
		Task:      *task,
		OldStatus: oldStatus,
		NewStatus: task.Status,
		Timestamp: time.Now(),
	}
	if err := events.TaskStatusChangedV1.Publish(s.eventBus, event, nil); err != nil {
		s.logger.Warn("failed to publish TaskStatusChanged event", "taskID", task.ID, "error", err)
	}
}

func (s *Service) publishDeleted(taskID, ownerID string) {
	if s.eventBus == nil {
		return
	}
	event := events.TaskDeletedEvent{
		TaskID:    taskID,
		UserID:    ownerID,
		Timestamp: time.Now(),
	}
	if err := events.TaskDeletedV1.Publish(s.eventBus, event, nil); err != nil {
		s.logger.Warn("failed to publish TaskDeleted event", "taskID", taskID, "error", err)
	}
}
