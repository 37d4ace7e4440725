package task

import "errors"

// Sentinel errors for task operations.
var (
	// ErrTaskNotFound is returned when no task with the given id is owned by
	// the caller. A task owned by someone else is deliberately
	// indistinguishable from a missing one.
	ErrTaskNotFound = errors.New("task not found")

	// ErrTitleRequired is returned when a task is created without a title.
	ErrTitleRequired = errors.New("task title is required")

	// ErrInvalidStatus is returned when the status is not one of todo,
	// in_progress, done.
	ErrInvalidStatus = errors.New("invalid task status")

	// ErrInvalidPriority is returned when the priority is not one of low,
	// medium, high.
	ErrInvalidPriority = errors.New("invalid task priority")
)
