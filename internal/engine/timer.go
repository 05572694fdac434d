package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/existflow/ironclock/internal/logger"
	"github.com/existflow/ironclock/internal/model"
	"github.com/existflow/ironclock/internal/store"
)

// StartResult is the outcome of StartTimer. Stopped holds the user's other
// timers that were stopped to make room for the new one.
type StartResult struct {
	Task    model.Task   `json:"task"`
	Stopped []StopResult `json:"stopped"`
}

// StopResult is the outcome of stopping a timer
type StopResult struct {
	Task  model.Task      `json:"task"`
	Entry model.TimeEntry `json:"entry"`
	// ClockRegression is set when the clock read earlier than the start of
	// the interval; the entry was recorded with zero duration.
	ClockRegression bool `json:"clock_regression,omitempty"`
}

// StartTimer starts the timer of a task. Any other running timer of the user
// is stopped first and recorded in the ledger. Starting a task that is
// already running restarts its interval without recording the discarded one.
func (e *Engine) StartTimer(ctx context.Context, userID, taskID string) (StartResult, error) {
	var res StartResult

	err := e.mutate(ctx, userID, func(ctx context.Context, q *store.Queries, now time.Time) error {
		task, err := ownedTask(ctx, q, userID, taskID)
		if err != nil {
			return err
		}

		running, err := q.ListRunningTasks(ctx, userID)
		if err != nil {
			return err
		}
		for _, other := range running {
			if other.ID == task.ID {
				continue
			}
			stopped, err := e.stop(ctx, q, other, now)
			if err != nil {
				return err
			}
			res.Stopped = append(res.Stopped, stopped)
		}

		started := now
		task.IsRunning = true
		task.TimerStartedAt = &started
		task.UpdatedAt = now
		if err := q.UpdateEngineFields(ctx, task); err != nil {
			return fmt.Errorf("failed to start timer: %w", err)
		}

		res.Task = task
		return nil
	})
	if err != nil {
		return StartResult{}, err
	}

	for _, stopped := range res.Stopped {
		logStopped(stopped)
	}
	logger.Info("timer started",
		logger.F("user_id", userID),
		logger.F("task_id", taskID),
		logger.F("stopped", len(res.Stopped)),
	)
	return res, nil
}

// StopTimer stops a running timer, appends its interval to the ledger and
// adds the elapsed seconds to the task
func (e *Engine) StopTimer(ctx context.Context, userID, taskID string) (StopResult, error) {
	var res StopResult

	err := e.mutate(ctx, userID, func(ctx context.Context, q *store.Queries, now time.Time) error {
		task, err := ownedTask(ctx, q, userID, taskID)
		if err != nil {
			return err
		}
		if !task.IsRunning || task.TimerStartedAt == nil {
			return ErrNotRunning
		}

		res, err = e.stop(ctx, q, task, now)
		return err
	})
	if err != nil {
		return StopResult{}, err
	}

	logStopped(res)
	return res, nil
}

// stop closes the running interval of task. The caller holds the user lock
// and task is known to be running. Nothing is logged here; callers log the
// result once the transaction has committed.
func (e *Engine) stop(ctx context.Context, q *store.Queries, task model.Task, now time.Time) (StopResult, error) {
	started := *task.TimerStartedAt
	regression := false

	elapsed := now.Sub(started)
	if elapsed < 0 {
		elapsed = 0
		regression = true
	}
	seconds := int64(elapsed / time.Second)

	taskID := task.ID
	entry := model.TimeEntry{
		ID:              e.newID(),
		UserID:          task.UserID,
		TaskID:          &taskID,
		ProjectID:       task.ProjectID,
		Description:     model.EntryDescription(task.Title),
		StartedAt:       started,
		EndedAt:         now,
		DurationSeconds: seconds,
		Date:            model.EntryDate(started, e.loc),
		CreatedAt:       now,
	}
	if err := q.InsertEntry(ctx, entry); err != nil {
		return StopResult{}, err
	}

	task.TimeSpent += seconds
	task.IsRunning = false
	task.TimerStartedAt = nil
	task.UpdatedAt = now
	if err := q.UpdateEngineFields(ctx, task); err != nil {
		return StopResult{}, fmt.Errorf("failed to stop timer: %w", err)
	}

	return StopResult{Task: task, Entry: entry, ClockRegression: regression}, nil
}

// logStopped reports a committed stop
func logStopped(res StopResult) {
	if res.ClockRegression {
		logger.Warn("clock regression, recording zero duration",
			logger.F("user_id", res.Task.UserID),
			logger.F("task_id", res.Task.ID),
			logger.F("started_at", res.Entry.StartedAt.Format(time.RFC3339Nano)),
			logger.F("now", res.Entry.EndedAt.Format(time.RFC3339Nano)),
			logger.F("clock_regression", true),
		)
	}
	logger.Info("timer stopped",
		logger.F("user_id", res.Task.UserID),
		logger.F("task_id", res.Task.ID),
		logger.F("duration", res.Entry.DurationSeconds),
	)
}
