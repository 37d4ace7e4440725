package task

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	domain "github.com/example/taskboard/domain/task"
)

// Filter is a conjunction of optional predicates applied to a user's tasks.
// Zero-valued fields are not applied.
type Filter struct {
	Status   domain.TaskStatus
	Priority domain.TaskPriority
	Search   string
	DateFrom *time.Time
	DateTo   *time.Time
}

// IsZero reports whether no predicate is set.
func (f Filter) IsZero() bool {
	return f.Status == "" && f.Priority == "" && f.Search == "" &&
		f.DateFrom == nil && f.DateTo == nil
}

// Repository provides owner-scoped access to task storage.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new task repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new task.
func (r *Repository) Create(task *domain.Task) error {
	if err := r.db.Create(task).Error; err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}
	return nil
}

// FindByIDAndOwner returns the task with the given id if it is owned by
// ownerID, ErrTaskNotFound otherwise.
func (r *Repository) FindByIDAndOwner(id, ownerID string) (*domain.Task, error) {
	var task domain.Task
	err := r.db.First(&task, "id = ? AND user_id = ?", id, ownerID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	return &task, nil
}

// FindByOwner returns all of ownerID's tasks matching the filter, ordered by
// creation time descending.
func (r *Repository) FindByOwner(ownerID string, filter Filter) ([]domain.Task, error) {
	query := r.db.Where("user_id = ?", ownerID)

	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Priority != "" {
		query = query.Where("priority = ?", filter.Priority)
	}
	if filter.Search != "" {
		pattern := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ?", pattern, pattern)
	}
	if filter.DateFrom != nil {
		query = query.Where("created_at >= ?", *filter.DateFrom)
	}
	if filter.DateTo != nil {
		query = query.Where("created_at <= ?", *filter.DateTo)
	}

	var tasks []domain.Task
	if err := query.Order("created_at DESC").Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, nil
}

// Update writes the full task record in a single statement. Whole-record
// last-write-wins: concurrent updates to the same row serialize at the
// store's update-by-id granularity, so a torn write mixing two request
// bodies cannot occur. UpdateColumns skips GORM's automatic update-time
// tracking; the stored updatedAt must be the caller's stamp, since that is
// what the response and the published events carry.
func (r *Repository) Update(task *domain.Task) error {
	result := r.db.Model(&domain.Task{}).
		Where("id = ? AND user_id = ?", task.ID, task.UserID).
		Select("*").
		Omit("id", "user_id", "created_at").
		UpdateColumns(task)
	if result.Error != nil {
		return fmt.Errorf("failed to update task: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrTaskNotFound
	}
	return nil
}

// DeleteByIDAndOwner removes the task if it is owned by ownerID.
func (r *Repository) DeleteByIDAndOwner(id, ownerID string) error {
	result := r.db.Delete(&domain.Task{}, "id = ? AND user_id = ?", id, ownerID)
	if result.Error != nil {
		return fmt.Errorf("failed to delete task: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrTaskNotFound
	}
	return nil
}
