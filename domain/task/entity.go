package task

import (
	"time"
)

// TaskStatus represents the board column a task belongs to.
type TaskStatus string

const (
	StatusTodo       TaskStatus = "todo"
	StatusInProgress TaskStatus = "in_progress"
	StatusDone       TaskStatus = "done"
)

// Valid reports whether s is one of the enumerated statuses.
func (s TaskStatus) Valid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusDone:
		return true
	}
	return false
}

// TaskPriority represents the urgency of a task.
type TaskPriority string

const (
	PriorityLow    TaskPriority = "low"
	PriorityMedium TaskPriority = "medium"
	PriorityHigh   TaskPriority = "high"
)

// Valid reports whether p is one of the enumerated priorities.
func (p TaskPriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Task is the core domain entity representing a board item.
// A task belongs to exactly one user; the owner is set at creation and
// never reassigned.
type Task struct {
	ID          string       `gorm:"primaryKey;size:36" json:"id"`
	Title       string       `gorm:"size:255;not null" json:"title"`
	Description string       `gorm:"size:2000" json:"description,omitempty"`
	Status      TaskStatus   `gorm:"size:20;not null;default:todo" json:"status"`
	Priority    TaskPriority `gorm:"size:20;not null;default:medium" json:"priority"`
	DueDate     *time.Time   `json:"dueDate,omitempty"`
	UserID      string       `gorm:"size:36;not null;index" json:"userId"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

// TableName returns the table name for the Task entity.
func (Task) TableName() string {
	return "tasks"
}
