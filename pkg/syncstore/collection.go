// Package syncstore keeps a client-side mirror of one user's tasks,
// reconciling server pushes and refetched snapshots into a board view.
// Merges are last-writer-wins on the task's updatedAt, so replayed or
// out-of-order events converge to the same state.
package syncstore

import (
	"fmt"
	"sync"

	domain "github.com/example/taskboard/domain/task"
)

// GroupedView is a point-in-time board snapshot, one column per status.
type GroupedView struct {
	Todo       []domain.Task `json:"todo"`
	InProgress []domain.Task `json:"in_progress"`
	Done       []domain.Task `json:"done"`
}

// Collection is the task mirror. The map of tasks keyed by id is the source
// of truth; the per-status id slices only carry column ordering, so a task
// can never appear in two columns.
type Collection struct {
	mu    sync.RWMutex
	tasks map[string]domain.Task
	order map[domain.TaskStatus][]string
}

// NewCollection creates an empty collection.
func NewCollection() *Collection {
	return &Collection{
		tasks: make(map[string]domain.Task),
		order: map[domain.TaskStatus][]string{
			domain.StatusTodo:       {},
			domain.StatusInProgress: {},
			domain.StatusDone:       {},
		},
	}
}

// Apply merges one task into the collection. A task older than the local
// copy is rejected; applying the same task twice is a no-op. New tasks and
// tasks changing column go to the top of their column, matching the
// newest-first ordering the server lists with. Returns false only when the
// incoming task is rejected as stale.
func (c *Collection) Apply(task domain.Task) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	existing, ok := c.tasks[task.ID]
	if ok && existing.UpdatedAt.After(task.UpdatedAt) {
		return false
	}

	if ok && existing.Status == task.Status {
		// Same column, keep position.
		c.tasks[task.ID] = task
		return true
	}

	if ok {
		c.removeFromOrder(existing.Status, task.ID)
	}
	c.tasks[task.ID] = task
	c.order[task.Status] = append([]string{task.ID}, c.order[task.Status]...)
	return true
}

// Remove deletes a task regardless of timestamps. Deletes are not
// timestamped on the wire, so a delete always wins.
func (c *Collection) Remove(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	task, ok := c.tasks[id]
	if !ok {
		return false
	}
	delete(c.tasks, id)
	c.removeFromOrder(task.Status, id)
	return true
}

// Sync reconciles a full server snapshot: every snapshot task is merged and
// local tasks absent from the snapshot are dropped. Used after reconnect,
// when pushes may have been missed.
func (c *Collection) Sync(snapshot []domain.Task) {
	seen := make(map[string]bool, len(snapshot))
	for _, task := range snapshot {
		seen[task.ID] = true
		c.Apply(task)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for id, task := range c.tasks {
		if !seen[id] {
			delete(c.tasks, id)
			c.removeFromOrder(task.Status, id)
		}
	}
}

// Reorder replaces the ordering of one column. ids must be a permutation of
// the column's current contents.
func (c *Collection) Reorder(status domain.TaskStatus, ids []string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	current := c.order[status]
	if len(ids) != len(current) {
		return fmt.Errorf("reorder expects %d ids for column %s, got %d", len(current), status, len(ids))
	}
	members := make(map[string]bool, len(current))
	for _, id := range current {
		members[id] = true
	}
	for _, id := range ids {
		if !members[id] {
			return fmt.Errorf("task %s is not in column %s", id, status)
		}
		delete(members, id)
	}

	c.order[status] = append([]string(nil), ids...)
	return nil
}

// Get returns a task by id.
func (c *Collection) Get(id string) (domain.Task, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	task, ok := c.tasks[id]
	return task, ok
}

// Len returns the number of tasks held.
func (c *Collection) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.tasks)
}

// Grouped returns the board view in column order.
func (c *Collection) Grouped() GroupedView {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return GroupedView{
		Todo:       c.column(domain.StatusTodo),
		InProgress: c.column(domain.StatusInProgress),
		Done:       c.column(domain.StatusDone),
	}
}

// Column returns one column's tasks in order.
func (c *Collection) Column(status domain.TaskStatus) []domain.Task {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.column(status)
}

// column must be called with the lock held.
func (c *Collection) column(status domain.TaskStatus) []domain.Task {
	ids := c.order[status]
	tasks := make([]domain.Task, 0, len(ids))
	for _, id := range ids {
		if task, ok := c.tasks[id]; ok {
			tasks = append(tasks, task)
		}
	}
	return tasks
}

// removeFromOrder must be called with the lock held.
func (c *Collection) removeFromOrder(status domain.TaskStatus, id string) {
	ids := c.order[status]
	for i, existing := range ids {
		if existing == id {
			c.order[status] = append(ids[:i], ids[i+1:]...)
			return
		}
	}
}
