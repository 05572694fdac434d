package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/existflow/ironclock/internal/model"
)

const taskColumns = `id, user_id, project_id, title, description, status, priority, position,
	time_spent, is_running, timer_started_at, due_date, completed_at, created_at, updated_at`

// boardOrder sorts by column, then position, then id for stable ties
const boardOrder = `ORDER BY CASE status WHEN 'todo' THEN 0 WHEN 'inProgress' THEN 1 ELSE 2 END, position, id`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (model.Task, error) {
	var (
		t                                     model.Task
		projectID                             sql.NullString
		status, priority                      string
		timerStarted, due, completed, created timeScanner
		updated                               timeScanner
	)

	err := row.Scan(&t.ID, &t.UserID, &projectID, &t.Title, &t.Description, &status, &priority,
		&t.Position, &t.TimeSpent, &t.IsRunning, &timerStarted, &due, &completed, &created, &updated)
	if err != nil {
		return model.Task{}, err
	}

	t.ProjectID = stringPtr(projectID)
	t.Status = model.Status(status)
	t.Priority = model.Priority(priority)
	t.TimerStartedAt = timerStarted.ptr()
	t.DueDate = due.ptr()
	t.CompletedAt = completed.ptr()
	t.CreatedAt = created.Time
	t.UpdatedAt = updated.Time
	return t, nil
}

// CreateTask inserts a task as the CRUD collaborator would
func (q *Queries) CreateTask(ctx context.Context, t model.Task) error {
	_, err := q.exec(ctx, `
		INSERT INTO tasks (`+taskColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.UserID, nullString(t.ProjectID), t.Title, t.Description, string(t.Status), string(t.Priority),
		t.Position, t.TimeSpent, t.IsRunning, q.nullTS(t.TimerStartedAt), q.nullTS(t.DueDate),
		q.nullTS(t.CompletedAt), q.ts(t.CreatedAt), q.ts(t.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}
	return nil
}

// GetTask returns a task by id regardless of owner
func (q *Queries) GetTask(ctx context.Context, id string) (model.Task, error) {
	t, err := scanTask(q.queryRow(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Task{}, ErrNotFound
	}
	if err != nil {
		return model.Task{}, fmt.Errorf("failed to get task: %w", err)
	}
	return t, nil
}

// LockTask reads a task and, on PostgreSQL, locks its row until the transaction ends
func (q *Queries) LockTask(ctx context.Context, id string) (model.Task, error) {
	t, err := scanTask(q.queryRow(ctx, q.forUpdate(`SELECT `+taskColumns+` FROM tasks WHERE id = ?`), id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Task{}, ErrNotFound
	}
	if err != nil {
		return model.Task{}, fmt.Errorf("failed to lock task: %w", err)
	}
	return t, nil
}

// ListTasks returns a user's board
func (q *Queries) ListTasks(ctx context.Context, userID string) ([]model.Task, error) {
	return q.listTasks(ctx, `SELECT `+taskColumns+` FROM tasks WHERE user_id = ? `+boardOrder, userID)
}

// ListRunningTasks returns the user's tasks with a running timer
func (q *Queries) ListRunningTasks(ctx context.Context, userID string) ([]model.Task, error) {
	return q.listTasks(ctx, `SELECT `+taskColumns+` FROM tasks WHERE user_id = ? AND is_running = ? ORDER BY id`, userID, true)
}

func (q *Queries) listTasks(ctx context.Context, query string, args ...any) ([]model.Task, error) {
	rows, err := q.query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	tasks := []model.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// UpdateEngineFields writes the fields owned by the engine: status, position,
// timer state, accumulated time and completion time
func (q *Queries) UpdateEngineFields(ctx context.Context, t model.Task) error {
	res, err := q.exec(ctx, `
		UPDATE tasks SET status = ?, position = ?, time_spent = ?, is_running = ?,
			timer_started_at = ?, completed_at = ?, updated_at = ?
		WHERE id = ? AND user_id = ?`,
		string(t.Status), t.Position, t.TimeSpent, t.IsRunning,
		q.nullTS(t.TimerStartedAt), q.nullTS(t.CompletedAt), q.ts(t.UpdatedAt),
		t.ID, t.UserID,
	)
	if err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteTask removes a task; its ledger entries keep a NULL task id
func (q *Queries) DeleteTask(ctx context.Context, userID, id string) error {
	res, err := q.exec(ctx, `DELETE FROM tasks WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}
