package syncstore

import (
	"strings"
	"time"

	domain "github.com/example/taskboard/domain/task"
)

// Filter selects tasks from a local view without touching the server. The
// zero value matches everything.
type Filter struct {
	Status   domain.TaskStatus
	Priority domain.TaskPriority
	Search   string
	DateFrom *time.Time
	DateTo   *time.Time
}

// Match reports whether the task passes every set criterion. Search is a
// case-insensitive substring match over title or description.
func (f Filter) Match(task domain.Task) bool {
	if f.Status != "" && task.Status != f.Status {
		return false
	}
	if f.Priority != "" && task.Priority != f.Priority {
		return false
	}
	if f.Search != "" {
		needle := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(task.Title), needle) &&
			!strings.Contains(strings.ToLower(task.Description), needle) {
			return false
		}
	}
	if f.DateFrom != nil && task.CreatedAt.Before(*f.DateFrom) {
		return false
	}
	if f.DateTo != nil && task.CreatedAt.After(*f.DateTo) {
		return false
	}
	return true
}

// Apply returns the tasks passing the filter, preserving input order.
func (f Filter) Apply(tasks []domain.Task) []domain.Task {
	out := make([]domain.Task, 0, len(tasks))
	for _, task := range tasks {
		if f.Match(task) {
			out = append(out, task)
		}
	}
	return out
}

// Grouped filters each column of a board view.
func (f Filter) Grouped(view GroupedView) GroupedView {
	return GroupedView{
		Todo:       f.Apply(view.Todo),
		InProgress: f.Apply(view.InProgress),
		Done:       f.Apply(view.Done),
	}
}
