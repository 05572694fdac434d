package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/existflow/ironclock/internal/model"
)

// View renders the UI
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	header := m.renderHeader()
	statusBar := m.renderStatusBar()
	bodyHeight := m.height - lipgloss.Height(header) - lipgloss.Height(statusBar)

	var body string
	switch m.mode {
	case ModeHelp:
		body = m.renderHelp()
	case ModeAddTask:
		body = lipgloss.Place(
			m.width, bodyHeight,
			lipgloss.Center, lipgloss.Center,
			m.renderModal(),
			lipgloss.WithWhitespaceChars(" "),
		)
	default:
		body = m.renderBoard(bodyHeight)
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, body, statusBar)
}

func (m Model) renderHeader() string {
	title := HeaderStyle.Render("IronClock")
	today := HelpStyle.Render(fmt.Sprintf("today %s", clock(m.today)))

	running := HelpStyle.Render("no timer running")
	if t := m.running(); t != nil {
		running = TaskRunningStyle.Render(fmt.Sprintf("▶ %s %s", truncate(t.Title, 30), clock(t.LiveSeconds(m.now))))
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, title, "  ", running, "  ", today)
}

func (m Model) renderBoard(height int) string {
	colWidth := m.width/len(m.columns) - 2
	if colWidth < 20 {
		colWidth = 20
	}
	if height < 3 {
		height = 3
	}

	cols := make([]string, len(m.columns))
	for i, tasks := range m.columns {
		cols[i] = m.renderColumn(i, tasks, colWidth, height-2)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cols...)
}

func (m Model) renderColumn(idx int, tasks []model.Task, width, height int) string {
	status := model.Statuses[idx]
	inner := width - 2

	var s strings.Builder
	s.WriteString(ColumnTitleStyle.Render(fmt.Sprintf("%s (%d)", status.Label(), len(tasks))))
	s.WriteString("\n")
	s.WriteString(lipgloss.NewStyle().Foreground(Border).Render(strings.Repeat("─", inner)))
	s.WriteString("\n")

	if len(tasks) == 0 {
		s.WriteString(HelpStyle.Render("empty"))
	}

	for i, t := range tasks {
		selected := idx == m.col && i == m.rows[idx]
		s.WriteString(m.renderTask(t, selected, inner))
		s.WriteString("\n")
	}

	style := ColumnStyle
	if idx == m.col {
		style = ColumnFocusedStyle
	}
	return style.Width(width).Height(height).Render(s.String())
}

func (m Model) renderTask(t model.Task, selected bool, width int) string {
	cursor := "  "
	style := TaskItemStyle
	switch {
	case t.IsRunning:
		style = TaskRunningStyle
	case t.Status == model.StatusDone:
		style = TaskDoneStyle
	}
	if selected {
		cursor = "❯ "
		style = style.Inherit(TaskItemSelectedStyle)
	}

	icon := " "
	if t.IsRunning {
		icon = "▶"
	}

	timeText := clock(t.LiveSeconds(m.now))
	titleWidth := width - len(timeText) - 7
	line := style.Render(fmt.Sprintf("%s%s %-*s", cursor, icon, titleWidth, truncate(t.Title, titleWidth)))

	due := ""
	if t.IsOverdue(m.now) {
		due = OverdueStyle.Render("!")
	}
	return line + " " + FormatPriority(t.Priority) + due + " " + HelpStyle.Render(timeText)
}

func (m Model) renderStatusBar() string {
	if m.err != nil {
		return StatusBarStyle.Width(m.width).Render(ErrorStyle.Render("Error: " + m.err.Error()))
	}

	help := "space:timer  H/L:move  x:done  a:add  d:del  r:refresh  ?:help  q:quit"
	if m.message != "" {
		help = m.message
	}
	return StatusBarStyle.Width(m.width).Render(help)
}

func (m Model) renderModal() string {
	content := lipgloss.NewStyle().Bold(true).Render("Add Task") + "\n\n"
	content += m.input.View() + "\n\n"
	content += HelpStyle.Render("Enter:save  Esc:cancel")

	return ModalStyle.Render(content)
}

func (m Model) renderHelp() string {
	var s strings.Builder
	s.WriteString(HeaderStyle.Render("Keys"))
	s.WriteString("\n\n")
	for _, b := range keys.helpBindings() {
		h := b.Help()
		fmt.Fprintf(&s, "  %-12s %s\n", h.Key, h.Desc)
	}
	s.WriteString("\n")
	s.WriteString(HelpStyle.Render("Press any key to return"))
	return lipgloss.NewStyle().Padding(1, 2).Render(s.String())
}
