package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/existflow/ironclock/internal/model"
	"github.com/existflow/ironclock/internal/store"
)

// RunningTask returns the user's running task, or nil when no timer runs
func (e *Engine) RunningTask(ctx context.Context, userID string) (*model.Task, error) {
	tasks, err := e.db.ListRunningTasks(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(tasks) == 0 {
		return nil, nil
	}
	return &tasks[0], nil
}

// TotalSecondsToday sums the user's ledger for the current date. The open
// interval of a running timer is not included.
func (e *Engine) TotalSecondsToday(ctx context.Context, userID string) (int64, error) {
	return e.db.SumForDate(ctx, userID, model.EntryDate(e.clock.Now(), e.loc))
}

// TotalSecondsForDate sums the user's ledger for a YYYY-MM-DD date
func (e *Engine) TotalSecondsForDate(ctx context.Context, userID, date string) (int64, error) {
	if _, err := time.Parse(model.DateLayout, date); err != nil {
		return 0, fmt.Errorf("invalid date %q: %w", date, err)
	}
	return e.db.SumForDate(ctx, userID, date)
}

// TotalSecondsForTask returns the accumulated time of a task
func (e *Engine) TotalSecondsForTask(ctx context.Context, userID, taskID string) (int64, error) {
	task, err := e.Task(ctx, userID, taskID)
	if err != nil {
		return 0, err
	}
	return task.TimeSpent, nil
}

// EntriesInRange returns the entries that started in [start, end), newest first
func (e *Engine) EntriesInRange(ctx context.Context, userID string, start, end time.Time) ([]model.TimeEntry, error) {
	if end.Before(start) {
		return nil, ErrInvalidRange
	}
	return e.db.ListEntries(ctx, store.EntryFilter{UserID: userID, From: &start, To: &end})
}

// Task returns one of the user's tasks
func (e *Engine) Task(ctx context.Context, userID, taskID string) (model.Task, error) {
	task, err := e.db.GetTask(ctx, taskID)
	if errors.Is(err, store.ErrNotFound) {
		return model.Task{}, ErrNotFound
	}
	if err != nil {
		return model.Task{}, err
	}
	if task.UserID != userID {
		return model.Task{}, ErrForbidden
	}
	return task, nil
}

// Board returns the user's tasks ordered by status, position and id
func (e *Engine) Board(ctx context.Context, userID string) ([]model.Task, error) {
	return e.db.ListTasks(ctx, userID)
}
