package engine

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/existflow/ironclock/internal/logger"
	"github.com/existflow/ironclock/internal/model"
	"github.com/existflow/ironclock/internal/store"
)

// NewTask holds the caller-owned fields of a task being created
type NewTask struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	ProjectID   *string    `json:"project_id"`
	Priority    string     `json:"priority"`
	DueDate     *time.Time `json:"due_date"`
}

// CreateTask adds an idle task at the end of the user's todo column
func (e *Engine) CreateTask(ctx context.Context, userID string, in NewTask) (model.Task, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return model.Task{}, ErrTitleRequired
	}
	priority, err := model.ParsePriority(in.Priority)
	if err != nil {
		return model.Task{}, err
	}

	var task model.Task
	err = e.mutate(ctx, userID, func(ctx context.Context, q *store.Queries, now time.Time) error {
		if in.ProjectID != nil {
			p, err := q.GetProject(ctx, *in.ProjectID)
			if errors.Is(err, store.ErrNotFound) || (err == nil && p.UserID != userID) {
				return ErrProjectNotFound
			}
			if err != nil {
				return err
			}
		}

		tasks, err := q.ListTasks(ctx, userID)
		if err != nil {
			return err
		}

		task = model.NewTask(e.newID(), userID, title, now)
		task.Description = in.Description
		task.ProjectID = in.ProjectID
		task.Priority = priority
		task.DueDate = in.DueDate
		for _, t := range tasks {
			if t.Status == model.StatusTodo && t.Position >= task.Position {
				task.Position = t.Position + 1
			}
		}

		return q.CreateTask(ctx, task)
	})
	if err != nil {
		return model.Task{}, err
	}

	logger.Info("task created", logger.F("user_id", userID), logger.F("task_id", task.ID))
	return task, nil
}
