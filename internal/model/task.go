package model

import (
	"errors"
	"fmt"
	"time"
)

// Status is the Kanban column a task belongs to
type Status string

const (
	StatusTodo       Status = "todo"
	StatusInProgress Status = "inProgress"
	StatusDone       Status = "done"
)

// Statuses lists the columns in board order
var Statuses = []Status{StatusTodo, StatusInProgress, StatusDone}

// ErrInvalidStatus is returned when a string is not a known status
var ErrInvalidStatus = errors.New("invalid status")

// ParseStatus converts a wire value to a Status
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusTodo, StatusInProgress, StatusDone:
		return Status(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
}

// Valid reports whether s is one of the known statuses
func (s Status) Valid() bool {
	_, err := ParseStatus(string(s))
	return err == nil
}

// Index returns the board column index, or -1 for an unknown status
func (s Status) Index() int {
	for i, st := range Statuses {
		if st == s {
			return i
		}
	}
	return -1
}

// Label returns a human readable column title
func (s Status) Label() string {
	switch s {
	case StatusTodo:
		return "To do"
	case StatusInProgress:
		return "In progress"
	case StatusDone:
		return "Done"
	default:
		return string(s)
	}
}

// Priority levels for tasks
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Priorities lists priorities from highest to lowest
var Priorities = []Priority{PriorityHigh, PriorityMedium, PriorityLow}

// ErrInvalidPriority is returned when a string is not a known priority
var ErrInvalidPriority = errors.New("invalid priority")

// ParsePriority converts a wire value to a Priority; empty means medium
func ParsePriority(s string) (Priority, error) {
	switch Priority(s) {
	case "":
		return PriorityMedium, nil
	case PriorityLow, PriorityMedium, PriorityHigh:
		return Priority(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidPriority, s)
}

// Task is a unit of work on the board. Status, Position, TimeSpent,
// IsRunning, TimerStartedAt and CompletedAt are written only by the engine.
type Task struct {
	ID             string     `json:"id"`
	UserID         string     `json:"user_id"`
	ProjectID      *string    `json:"project_id,omitempty"`
	Title          string     `json:"title"`
	Description    string     `json:"description,omitempty"`
	Status         Status     `json:"status"`
	Priority       Priority   `json:"priority"`
	Position       int        `json:"position"`
	TimeSpent      int64      `json:"time_spent"`
	IsRunning      bool       `json:"is_running"`
	TimerStartedAt *time.Time `json:"timer_started_at"`
	DueDate        *time.Time `json:"due_date,omitempty"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// NewTask creates a new task with defaults
func NewTask(id, userID, title string, now time.Time) Task {
	return Task{
		ID:        id,
		UserID:    userID,
		Title:     title,
		Status:    StatusTodo,
		Priority:  PriorityMedium,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// LiveSeconds returns completed time plus the open interval of a running timer.
// TimeSpent alone only counts stopped intervals.
func (t *Task) LiveSeconds(now time.Time) int64 {
	total := t.TimeSpent
	if t.IsRunning && t.TimerStartedAt != nil {
		if d := int64(now.Sub(*t.TimerStartedAt) / time.Second); d > 0 {
			total += d
		}
	}
	return total
}

// IsDue returns true if the task is due before the end of now's day
func (t *Task) IsDue(now time.Time) bool {
	if t.DueDate == nil {
		return false
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return t.DueDate.Before(today.Add(24 * time.Hour))
}

// IsOverdue returns true if an unfinished task is past its due date
func (t *Task) IsOverdue(now time.Time) bool {
	if t.DueDate == nil || t.Status == StatusDone {
		return false
	}
	return t.DueDate.Before(now)
}
