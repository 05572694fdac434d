package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/existflow/ironclock/internal/client"
	"github.com/existflow/ironclock/internal/config"
	"github.com/existflow/ironclock/internal/engine"
	"github.com/existflow/ironclock/internal/model"
	"github.com/existflow/ironclock/internal/reminder"
	"github.com/existflow/ironclock/internal/report"
	"github.com/existflow/ironclock/internal/store"
	"github.com/google/uuid"
)

// localUser owns everything in the local database
const localUser = "local"

// Tracker is what the commands and the board need from the engine, locally
// or through a server
type Tracker interface {
	Board(ctx context.Context) ([]model.Task, error)
	CreateTask(ctx context.Context, in engine.NewTask) (model.Task, error)
	StartTimer(ctx context.Context, taskID string) (engine.StartResult, error)
	StopTimer(ctx context.Context, taskID string) (engine.StopResult, error)
	MoveTask(ctx context.Context, taskID string, status model.Status, position int) (engine.MoveResult, error)
	DeleteTask(ctx context.Context, taskID string) (*engine.StopResult, error)
	RunningTask(ctx context.Context) (*model.Task, error)
	TotalSecondsToday(ctx context.Context) (int64, error)
	EntriesInRange(ctx context.Context, start, end time.Time) ([]model.TimeEntry, error)
	Dashboard(ctx context.Context) (report.Dashboard, error)
	Report(ctx context.Context, start, end time.Time, groupBy report.GroupBy) (report.Report, error)
	Reminders(ctx context.Context) ([]reminder.Reminder, error)
	Projects(ctx context.Context) ([]model.Project, error)
	CreateProject(ctx context.Context, name, color string) (model.Project, error)
	Now() time.Time
	Close() error
}

var _ Tracker = (*client.Client)(nil)
var _ Tracker = (*localTracker)(nil)

// localTracker runs the engine on the local SQLite database
type localTracker struct {
	db        *store.DB
	engine    *engine.Engine
	reports   *report.Service
	reminders reminder.Options
}

func newLocalTracker(db *store.DB, loc *time.Location, reminders reminder.Options) *localTracker {
	eng := engine.New(db, engine.Options{Location: loc})
	return &localTracker{
		db:        db,
		engine:    eng,
		reports:   report.New(db, eng),
		reminders: reminders,
	}
}

func (t *localTracker) Board(ctx context.Context) ([]model.Task, error) {
	return t.engine.Board(ctx, localUser)
}

func (t *localTracker) CreateTask(ctx context.Context, in engine.NewTask) (model.Task, error) {
	return t.engine.CreateTask(ctx, localUser, in)
}

func (t *localTracker) StartTimer(ctx context.Context, taskID string) (engine.StartResult, error) {
	return t.engine.StartTimer(ctx, localUser, taskID)
}

func (t *localTracker) StopTimer(ctx context.Context, taskID string) (engine.StopResult, error) {
	return t.engine.StopTimer(ctx, localUser, taskID)
}

func (t *localTracker) MoveTask(ctx context.Context, taskID string, status model.Status, position int) (engine.MoveResult, error) {
	return t.engine.MoveTask(ctx, localUser, taskID, status, position)
}

func (t *localTracker) DeleteTask(ctx context.Context, taskID string) (*engine.StopResult, error) {
	return t.engine.DeleteTask(ctx, localUser, taskID)
}

func (t *localTracker) RunningTask(ctx context.Context) (*model.Task, error) {
	return t.engine.RunningTask(ctx, localUser)
}

func (t *localTracker) TotalSecondsToday(ctx context.Context) (int64, error) {
	return t.engine.TotalSecondsToday(ctx, localUser)
}

func (t *localTracker) EntriesInRange(ctx context.Context, start, end time.Time) ([]model.TimeEntry, error) {
	return t.engine.EntriesInRange(ctx, localUser, start, end)
}

func (t *localTracker) Dashboard(ctx context.Context) (report.Dashboard, error) {
	return t.reports.Dashboard(ctx, localUser)
}

func (t *localTracker) Report(ctx context.Context, start, end time.Time, groupBy report.GroupBy) (report.Report, error) {
	return t.reports.Report(ctx, localUser, start, end, groupBy)
}

func (t *localTracker) Reminders(ctx context.Context) ([]reminder.Reminder, error) {
	tasks, err := t.engine.Board(ctx, localUser)
	if err != nil {
		return nil, err
	}
	return reminder.Compute(tasks, t.engine.Now(), t.reminders), nil
}

func (t *localTracker) Projects(ctx context.Context) ([]model.Project, error) {
	return t.db.ListProjects(ctx, localUser)
}

func (t *localTracker) CreateProject(ctx context.Context, name, color string) (model.Project, error) {
	p := model.Project{
		ID:        uuid.NewString(),
		UserID:    localUser,
		Name:      name,
		Color:     color,
		CreatedAt: t.engine.Now(),
	}
	if p.Color == "" {
		p.Color = model.DefaultProjectColor
	}
	if err := t.db.CreateProject(ctx, p); err != nil {
		return model.Project{}, err
	}
	return p, nil
}

func (t *localTracker) Now() time.Time {
	return t.engine.Now()
}

func (t *localTracker) Close() error {
	return t.db.Close()
}

// openTracker returns the server client when logged in, unless local is
// forced, and the local database otherwise
func openTracker(cfg *config.Config, forceLocal bool) (Tracker, error) {
	dir, err := config.Dir()
	if err != nil {
		return nil, err
	}

	if !forceLocal {
		if c := client.NewDefault(dir); c.IsLoggedIn() {
			return c, nil
		}
	}

	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	db, err := store.OpenSQLite(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return newLocalTracker(db, loc, reminder.Options{
		DueWindow:  cfg.ReminderDueWindow,
		StaleAfter: cfg.ReminderStaleAfter,
	}), nil
}

// ErrAmbiguousID is returned when an id prefix matches several tasks
var ErrAmbiguousID = errors.New("ambiguous task id")

// findTask resolves a full id or a unique id prefix
func findTask(ctx context.Context, tr Tracker, ref string) (model.Task, error) {
	tasks, err := tr.Board(ctx)
	if err != nil {
		return model.Task{}, err
	}

	var matches []model.Task
	for _, t := range tasks {
		if t.ID == ref {
			return t, nil
		}
		if strings.HasPrefix(t.ID, ref) {
			matches = append(matches, t)
		}
	}

	switch len(matches) {
	case 0:
		return model.Task{}, fmt.Errorf("task not found: %s", ref)
	case 1:
		return matches[0], nil
	}
	return model.Task{}, fmt.Errorf("%w: %s matches %d tasks", ErrAmbiguousID, ref, len(matches))
}

// findProject resolves a project by id, id prefix or case-insensitive name
func findProject(ctx context.Context, tr Tracker, ref string) (model.Project, error) {
	projects, err := tr.Projects(ctx)
	if err != nil {
		return model.Project{}, err
	}
	for _, p := range projects {
		if p.ID == ref || strings.EqualFold(p.Name, ref) {
			return p, nil
		}
	}
	for _, p := range projects {
		if strings.HasPrefix(p.ID, ref) {
			return p, nil
		}
	}
	return model.Project{}, fmt.Errorf("project not found: %s", ref)
}
