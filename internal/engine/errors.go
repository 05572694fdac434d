package engine

import "errors"

var (
	// ErrNotFound is returned when the task does not exist
	ErrNotFound = errors.New("task not found")
	// ErrForbidden is returned when the task belongs to another user
	ErrForbidden = errors.New("task belongs to another user")
	// ErrNotRunning is returned when stopping a task whose timer is idle
	ErrNotRunning = errors.New("timer is not running")
	// ErrInvalidTransition is reserved for restricted status transitions.
	// Every transition is currently allowed.
	ErrInvalidTransition = errors.New("invalid status transition")
	// ErrTitleRequired is returned when creating a task without a title
	ErrTitleRequired = errors.New("title is required")
	// ErrProjectNotFound is returned when a task names a project the user
	// does not own
	ErrProjectNotFound = errors.New("project not found")
	// ErrInvalidRange is returned when a range ends before it starts
	ErrInvalidRange = errors.New("invalid time range")
)
