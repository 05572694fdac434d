package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/existflow/ironclock/internal/engine"
	"github.com/existflow/ironclock/internal/model"
)

// tickMsg is sent every second for time updates
type tickMsg time.Time

// Init starts the ticker
func (m Model) Init() tea.Cmd {
	return tickCmd()
}

func tickCmd() tea.Cmd {
	return tea.Every(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		m.ticks++
		if m.ticks%refreshEvery == 0 {
			m.loadData()
		} else {
			m.now = m.backend.Now()
		}
		return m, tickCmd()

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch m.mode {
		case ModeAddTask:
			return m.updateInput(msg)
		case ModeHelp:
			m.mode = ModeNormal
			return m, nil
		}
		return m.handleNormalKeys(msg)
	}

	return m, nil
}

// handleNormalKeys handles key presses in normal mode
func (m Model) handleNormalKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, keys.Up):
		if m.rows[m.col] > 0 {
			m.rows[m.col]--
		}

	case key.Matches(msg, keys.Down):
		if m.rows[m.col] < len(m.columns[m.col])-1 {
			m.rows[m.col]++
		}

	case key.Matches(msg, keys.Left):
		if m.col > 0 {
			m.col--
		}

	case key.Matches(msg, keys.Right):
		if m.col < len(m.columns)-1 {
			m.col++
		}

	case key.Matches(msg, keys.MoveLeft):
		m.handleMove(-1)

	case key.Matches(msg, keys.MoveRight):
		m.handleMove(1)

	case key.Matches(msg, keys.Timer):
		m.handleTimer()

	case key.Matches(msg, keys.Done):
		m.handleToggleDone()

	case key.Matches(msg, keys.Delete):
		m.handleDelete()

	case key.Matches(msg, keys.Add):
		return m.startAddTask()

	case key.Matches(msg, keys.Refresh):
		m.loadData()
		if m.err == nil {
			m.say("Refreshed")
		}

	case key.Matches(msg, keys.Help):
		m.mode = ModeHelp
	}

	return m, nil
}

func (m *Model) handleTimer() {
	task := m.currentTask()
	if task == nil {
		return
	}
	id, title := task.ID, task.Title

	if task.IsRunning {
		res, err := m.backend.StopTimer(m.ctx, id)
		if err != nil {
			m.fail("stop timer", err)
			return
		}
		m.say(fmt.Sprintf("■ %s +%s", truncate(title, 30), clock(res.Entry.DurationSeconds)))
	} else {
		res, err := m.backend.StartTimer(m.ctx, id)
		if err != nil {
			m.fail("start timer", err)
			return
		}
		msg := "▶ " + truncate(title, 30)
		for _, s := range res.Stopped {
			msg += fmt.Sprintf("  (■ %s +%s)", truncate(s.Task.Title, 20), clock(s.Entry.DurationSeconds))
		}
		m.say(msg)
	}

	m.loadData()
	m.focus(id)
}

// handleMove shifts the selected task one column and appends it there
func (m *Model) handleMove(dir int) {
	task := m.currentTask()
	if task == nil {
		return
	}
	target := m.col + dir
	if target < 0 || target >= len(model.Statuses) {
		return
	}
	m.moveTo(*task, model.Statuses[target])
}

func (m *Model) handleToggleDone() {
	task := m.currentTask()
	if task == nil {
		return
	}
	status := model.StatusDone
	if task.Status == model.StatusDone {
		status = model.StatusTodo
	}
	m.moveTo(*task, status)
}

func (m *Model) moveTo(task model.Task, status model.Status) {
	pos := endPosition(m.columns[status.Index()])

	res, err := m.backend.MoveTask(m.ctx, task.ID, status, pos)
	if err != nil {
		m.fail("move task", err)
		return
	}

	msg := fmt.Sprintf("→ %s: %s", status.Label(), truncate(task.Title, 30))
	if res.Stopped != nil {
		msg += fmt.Sprintf("  (■ +%s)", clock(res.Stopped.Entry.DurationSeconds))
	}
	m.say(msg)

	m.loadData()
	m.focus(task.ID)
}

func (m *Model) handleDelete() {
	task := m.currentTask()
	if task == nil {
		return
	}
	title := task.Title

	if _, err := m.backend.DeleteTask(m.ctx, task.ID); err != nil {
		m.fail("delete task", err)
		return
	}
	m.say("Deleted: " + truncate(title, 30))
	m.loadData()
}

func (m Model) startAddTask() (tea.Model, tea.Cmd) {
	m.mode = ModeAddTask
	m.input.SetValue("")
	m.input.Focus()
	return m, textinput.Blink
}

func (m Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Escape):
		m.mode = ModeNormal
		m.input.Blur()
		return m, nil

	case key.Matches(msg, keys.Enter):
		m.mode = ModeNormal
		m.input.Blur()

		title := strings.TrimSpace(m.input.Value())
		if title == "" {
			return m, nil
		}
		task, err := m.backend.CreateTask(m.ctx, engine.NewTask{Title: title})
		if err != nil {
			m.fail("create task", err)
			return m, nil
		}
		m.say("Added: " + truncate(task.Title, 30))
		m.loadData()
		m.focus(task.ID)
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}
