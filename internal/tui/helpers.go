package tui

import (
	"fmt"

	"github.com/existflow/ironclock/internal/model"
)

// truncate shortens a string to max length with ellipsis
func truncate(s string, max int) string {
	if max <= 3 {
		return s
	}
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}

// clock renders seconds as H:MM:SS
func clock(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%d:%02d:%02d", seconds/3600, (seconds%3600)/60, seconds%60)
}

// splitColumns groups board-ordered tasks by status
func splitColumns(tasks []model.Task) [3][]model.Task {
	var cols [3][]model.Task
	for _, t := range tasks {
		if i := t.Status.Index(); i >= 0 {
			cols[i] = append(cols[i], t)
		}
	}
	return cols
}

// endPosition is one past the highest position in a column
func endPosition(tasks []model.Task) int {
	pos := 0
	for _, t := range tasks {
		if t.Position >= pos {
			pos = t.Position + 1
		}
	}
	return pos
}
