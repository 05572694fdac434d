package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/existflow/ironclock/internal/logger"
	"github.com/existflow/ironclock/internal/model"
	"github.com/existflow/ironclock/internal/store"
)

// MoveResult is the outcome of MoveTask. Stopped is set when moving to done
// stopped a running timer.
type MoveResult struct {
	Task    model.Task   `json:"task"`
	From    model.Status `json:"from"`
	Stopped *StopResult  `json:"stopped,omitempty"`
}

// ValidateTransition checks a status change. Any known status may follow any
// other.
func ValidateTransition(from, to model.Status) error {
	if !from.Valid() {
		return fmt.Errorf("%w: %q", model.ErrInvalidStatus, from)
	}
	if !to.Valid() {
		return fmt.Errorf("%w: %q", model.ErrInvalidStatus, to)
	}
	return nil
}

// MoveTask sets a task's status column and position. Positions are stored as
// given; siblings are not renumbered. Moving a running task to done stops its
// timer. Entering done sets CompletedAt and leaving done clears it.
func (e *Engine) MoveTask(ctx context.Context, userID, taskID string, status model.Status, position int) (MoveResult, error) {
	if !status.Valid() {
		return MoveResult{}, fmt.Errorf("%w: %q", model.ErrInvalidStatus, status)
	}

	var res MoveResult

	err := e.mutate(ctx, userID, func(ctx context.Context, q *store.Queries, now time.Time) error {
		task, err := ownedTask(ctx, q, userID, taskID)
		if err != nil {
			return err
		}
		if err := ValidateTransition(task.Status, status); err != nil {
			return err
		}
		res.From = task.Status

		if status == model.StatusDone && task.IsRunning {
			stopped, err := e.stop(ctx, q, task, now)
			if err != nil {
				return err
			}
			res.Stopped = &stopped
			task = stopped.Task
		}

		task.Status = status
		task.Position = position
		if status == model.StatusDone {
			if task.CompletedAt == nil {
				completed := now
				task.CompletedAt = &completed
			}
		} else {
			task.CompletedAt = nil
		}
		task.UpdatedAt = now

		if err := q.UpdateEngineFields(ctx, task); err != nil {
			return fmt.Errorf("failed to move task: %w", err)
		}
		res.Task = task
		return nil
	})
	if err != nil {
		return MoveResult{}, err
	}

	if res.Stopped != nil {
		logStopped(*res.Stopped)
	}
	logger.Info("task moved",
		logger.F("user_id", userID),
		logger.F("task_id", taskID),
		logger.F("from", string(res.From)),
		logger.F("to", string(status)),
		logger.F("position", position),
	)
	return res, nil
}

// ReleaseTask stops the task's timer if it is running. It is the hook to call
// before a task goes away; the returned result is nil when the timer was idle.
func (e *Engine) ReleaseTask(ctx context.Context, userID, taskID string) (*StopResult, error) {
	var res *StopResult

	err := e.mutate(ctx, userID, func(ctx context.Context, q *store.Queries, now time.Time) error {
		var err error
		res, err = e.release(ctx, q, userID, taskID, now)
		return err
	})
	if err != nil {
		return nil, err
	}

	if res != nil {
		logStopped(*res)
	}
	return res, nil
}

// DeleteTask releases a task and deletes it in one step. Its ledger entries
// remain with no task reference.
func (e *Engine) DeleteTask(ctx context.Context, userID, taskID string) (*StopResult, error) {
	var res *StopResult

	err := e.mutate(ctx, userID, func(ctx context.Context, q *store.Queries, now time.Time) error {
		var err error
		if res, err = e.release(ctx, q, userID, taskID, now); err != nil {
			return err
		}
		if err := q.DeleteTask(ctx, userID, taskID); err != nil {
			return fmt.Errorf("failed to delete task: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if res != nil {
		logStopped(*res)
	}
	logger.Info("task deleted", logger.F("user_id", userID), logger.F("task_id", taskID))
	return res, nil
}

func (e *Engine) release(ctx context.Context, q *store.Queries, userID, taskID string, now time.Time) (*StopResult, error) {
	task, err := ownedTask(ctx, q, userID, taskID)
	if err != nil {
		return nil, err
	}
	if !task.IsRunning {
		return nil, nil
	}
	stopped, err := e.stop(ctx, q, task, now)
	if err != nil {
		return nil, err
	}
	return &stopped, nil
}
