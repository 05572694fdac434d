package tui

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/existflow/ironclock/internal/engine"
	"github.com/existflow/ironclock/internal/model"
)

// fakeBackend keeps the board in memory
type fakeBackend struct {
	now   time.Time
	tasks []model.Task
	moves []model.Status
	seq   int
}

func (f *fakeBackend) find(id string) *model.Task {
	for i := range f.tasks {
		if f.tasks[i].ID == id {
			return &f.tasks[i]
		}
	}
	return nil
}

func (f *fakeBackend) Board(ctx context.Context) ([]model.Task, error) {
	return append([]model.Task(nil), f.tasks...), nil
}

func (f *fakeBackend) CreateTask(ctx context.Context, in engine.NewTask) (model.Task, error) {
	f.seq++
	t := model.NewTask(string(rune('a'+f.seq)), "u", in.Title, f.now)
	f.tasks = append(f.tasks, t)
	return t, nil
}

func (f *fakeBackend) stop(t *model.Task) engine.StopResult {
	d := int64(f.now.Sub(*t.TimerStartedAt) / time.Second)
	t.TimeSpent += d
	t.IsRunning = false
	t.TimerStartedAt = nil
	return engine.StopResult{Task: *t, Entry: model.TimeEntry{DurationSeconds: d}}
}

func (f *fakeBackend) StartTimer(ctx context.Context, taskID string) (engine.StartResult, error) {
	var res engine.StartResult
	for i := range f.tasks {
		if f.tasks[i].IsRunning && f.tasks[i].ID != taskID {
			res.Stopped = append(res.Stopped, f.stop(&f.tasks[i]))
		}
	}
	t := f.find(taskID)
	now := f.now
	t.IsRunning = true
	t.TimerStartedAt = &now
	res.Task = *t
	return res, nil
}

func (f *fakeBackend) StopTimer(ctx context.Context, taskID string) (engine.StopResult, error) {
	t := f.find(taskID)
	if t == nil || !t.IsRunning {
		return engine.StopResult{}, engine.ErrNotRunning
	}
	return f.stop(t), nil
}

func (f *fakeBackend) MoveTask(ctx context.Context, taskID string, status model.Status, position int) (engine.MoveResult, error) {
	t := f.find(taskID)
	res := engine.MoveResult{From: t.Status}
	if status == model.StatusDone && t.IsRunning {
		s := f.stop(t)
		res.Stopped = &s
	}
	t.Status = status
	t.Position = position
	f.moves = append(f.moves, status)
	res.Task = *t
	return res, nil
}

func (f *fakeBackend) DeleteTask(ctx context.Context, taskID string) (*engine.StopResult, error) {
	for i := range f.tasks {
		if f.tasks[i].ID == taskID {
			f.tasks = append(f.tasks[:i], f.tasks[i+1:]...)
			return nil, nil
		}
	}
	return nil, engine.ErrNotFound
}

func (f *fakeBackend) TotalSecondsToday(ctx context.Context) (int64, error) {
	var total int64
	for _, t := range f.tasks {
		total += t.TimeSpent
	}
	return total, nil
}

func (f *fakeBackend) Now() time.Time { return f.now }

func newBoard(t *testing.T, titles ...string) (Model, *fakeBackend) {
	t.Helper()
	f := &fakeBackend{now: time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)}
	for _, title := range titles {
		if _, err := f.CreateTask(context.Background(), engine.NewTask{Title: title}); err != nil {
			t.Fatal(err)
		}
	}
	m := New(context.Background(), f)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 30})
	return next.(Model), f
}

func press(t *testing.T, m Model, k string) Model {
	t.Helper()
	var msg tea.KeyMsg
	switch k {
	case "enter":
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		msg = tea.KeyMsg{Type: tea.KeyEsc}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
	}
	next, _ := m.Update(msg)
	return next.(Model)
}

func TestTimerToggle(t *testing.T) {
	m, f := newBoard(t, "Write docs")

	m = press(t, m, "s")
	if !f.tasks[0].IsRunning {
		t.Fatal("timer should be running")
	}
	if m.running() == nil {
		t.Fatal("board should show the running task")
	}

	f.now = f.now.Add(90 * time.Second)
	next, _ := m.Update(tickMsg(f.now))
	m = next.(Model)
	if !strings.Contains(m.View(), "0:01:30") {
		t.Error("view should show the live time")
	}

	m = press(t, m, "s")
	if f.tasks[0].IsRunning {
		t.Fatal("timer should be stopped")
	}
	if f.tasks[0].TimeSpent != 90 {
		t.Errorf("expected 90s, got %d", f.tasks[0].TimeSpent)
	}
	if m.today != 90 {
		t.Errorf("expected today 90, got %d", m.today)
	}
}

func TestMoveAcrossColumns(t *testing.T) {
	m, f := newBoard(t, "Task")

	m = press(t, m, "L")
	if f.tasks[0].Status != model.StatusInProgress {
		t.Fatalf("expected inProgress, got %s", f.tasks[0].Status)
	}
	if m.col != 1 {
		t.Errorf("selection should follow the task, column %d", m.col)
	}

	m = press(t, m, "L")
	m = press(t, m, "L")
	if f.tasks[0].Status != model.StatusDone {
		t.Fatalf("expected done, got %s", f.tasks[0].Status)
	}
	if len(f.moves) != 2 {
		t.Errorf("moving past the last column should do nothing, moves %v", f.moves)
	}

	m = press(t, m, "H")
	if f.tasks[0].Status != model.StatusInProgress {
		t.Errorf("expected inProgress, got %s", f.tasks[0].Status)
	}
	_ = m
}

func TestDoneStopsTimer(t *testing.T) {
	m, f := newBoard(t, "Task")

	m = press(t, m, " ")
	f.now = f.now.Add(30 * time.Second)
	m = press(t, m, "x")

	if f.tasks[0].Status != model.StatusDone || f.tasks[0].IsRunning {
		t.Fatalf("task should be done and idle: %+v", f.tasks[0])
	}
	if !strings.Contains(m.message, "0:00:30") {
		t.Errorf("message should report the stopped time: %q", m.message)
	}

	m = press(t, m, "x")
	if f.tasks[0].Status != model.StatusTodo {
		t.Errorf("toggling done again should reopen, got %s", f.tasks[0].Status)
	}
}

func TestAddTask(t *testing.T) {
	m, f := newBoard(t)

	m = press(t, m, "a")
	if m.mode != ModeAddTask {
		t.Fatal("expected add mode")
	}
	m = press(t, m, "Plan sprint")
	m = press(t, m, "enter")

	if m.mode != ModeNormal {
		t.Error("expected normal mode after saving")
	}
	if len(f.tasks) != 1 || f.tasks[0].Title != "Plan sprint" {
		t.Fatalf("task not created: %+v", f.tasks)
	}
	if task := m.currentTask(); task == nil || task.Title != "Plan sprint" {
		t.Error("new task should be selected")
	}
}

func TestAddTaskCancel(t *testing.T) {
	m, f := newBoard(t)

	m = press(t, m, "a")
	m = press(t, m, "nope")
	m = press(t, m, "esc")

	if m.mode != ModeNormal || len(f.tasks) != 0 {
		t.Error("escape should cancel without creating")
	}
}

func TestDeleteKeepsCursorInRange(t *testing.T) {
	m, f := newBoard(t, "one", "two")

	m = press(t, m, "j")
	m = press(t, m, "d")

	if len(f.tasks) != 1 {
		t.Fatalf("expected 1 task, got %d", len(f.tasks))
	}
	if m.rows[0] != 0 {
		t.Errorf("cursor should move back to row 0, got %d", m.rows[0])
	}
}

func TestEmptyColumnKeys(t *testing.T) {
	m, f := newBoard(t)

	for _, k := range []string{"s", "x", "d", "L", "H", "j", "k"} {
		m = press(t, m, k)
	}
	if m.err != nil {
		t.Errorf("keys on an empty column should be no-ops: %v", m.err)
	}
	if len(f.moves) != 0 {
		t.Error("nothing should move")
	}
}
