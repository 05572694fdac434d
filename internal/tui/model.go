package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/existflow/ironclock/internal/engine"
	"github.com/existflow/ironclock/internal/logger"
	"github.com/existflow/ironclock/internal/model"
)

// Backend is the task engine as the board sees it
type Backend interface {
	Board(ctx context.Context) ([]model.Task, error)
	CreateTask(ctx context.Context, in engine.NewTask) (model.Task, error)
	StartTimer(ctx context.Context, taskID string) (engine.StartResult, error)
	StopTimer(ctx context.Context, taskID string) (engine.StopResult, error)
	MoveTask(ctx context.Context, taskID string, status model.Status, position int) (engine.MoveResult, error)
	DeleteTask(ctx context.Context, taskID string) (*engine.StopResult, error)
	TotalSecondsToday(ctx context.Context) (int64, error)
	Now() time.Time
}

// Mode represents the current UI mode
type Mode int

const (
	ModeNormal Mode = iota
	ModeAddTask
	ModeHelp
)

// refreshEvery is the number of ticks between board reloads
const refreshEvery = 15

// Model is the board TUI model
type Model struct {
	ctx     context.Context
	backend Backend

	columns [3][]model.Task
	today   int64
	now     time.Time
	ticks   int

	// UI state
	width  int
	height int
	mode   Mode
	col    int
	rows   [3]int

	input textinput.Model

	message string
	err     error
}

// New creates the board model and loads the tasks
func New(ctx context.Context, backend Backend) Model {
	logger.Info("Initializing board")

	ti := textinput.New()
	ti.Placeholder = "Task title..."
	ti.CharLimit = 256
	ti.Width = 50

	m := Model{
		ctx:     ctx,
		backend: backend,
		mode:    ModeNormal,
		input:   ti,
	}
	m.loadData()

	logger.Debug("Board initialized",
		logger.F("todo", len(m.columns[0])),
		logger.F("in_progress", len(m.columns[1])),
		logger.F("done", len(m.columns[2])))
	return m
}

func (m *Model) loadData() {
	m.now = m.backend.Now()

	tasks, err := m.backend.Board(m.ctx)
	if err != nil {
		m.fail("load board", err)
		return
	}
	m.columns = splitColumns(tasks)

	if today, err := m.backend.TotalSecondsToday(m.ctx); err == nil {
		m.today = today
	}

	for i := range m.rows {
		if m.rows[i] >= len(m.columns[i]) {
			m.rows[i] = len(m.columns[i]) - 1
		}
		if m.rows[i] < 0 {
			m.rows[i] = 0
		}
	}
}

func (m *Model) fail(action string, err error) {
	logger.Warn("Board action failed", logger.F("action", action), logger.F("error", err))
	m.err = err
	m.message = ""
}

func (m *Model) say(msg string) {
	m.message = msg
	m.err = nil
}

// currentTask returns the selected task, or nil in an empty column
func (m *Model) currentTask() *model.Task {
	col := m.columns[m.col]
	row := m.rows[m.col]
	if row < len(col) {
		return &col[row]
	}
	return nil
}

// running returns the running task on the board
func (m *Model) running() *model.Task {
	for c := range m.columns {
		for i := range m.columns[c] {
			if m.columns[c][i].IsRunning {
				return &m.columns[c][i]
			}
		}
	}
	return nil
}

// focus selects a task by id after a reload
func (m *Model) focus(id string) {
	for c, col := range m.columns {
		for r, t := range col {
			if t.ID == id {
				m.col = c
				m.rows[c] = r
				return
			}
		}
	}
}
