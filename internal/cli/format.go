package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/existflow/ironclock/internal/model"
)

// formatDuration renders seconds as 1h02m03s, 4m05s or 6s
func formatDuration(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60

	switch {
	case h > 0:
		return fmt.Sprintf("%dh%02dm%02ds", h, m, s)
	case m > 0:
		return fmt.Sprintf("%dm%02ds", m, s)
	}
	return fmt.Sprintf("%ds", s)
}

// shortID returns the first 8 characters of an id
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}

func statusIcon(t model.Task) string {
	switch {
	case t.IsRunning:
		return "[▶]"
	case t.Status == model.StatusDone:
		return "[x]"
	case t.Status == model.StatusInProgress:
		return "[~]"
	}
	return "[ ]"
}

func priorityLabel(p model.Priority) string {
	switch p {
	case model.PriorityHigh:
		return "▲ high"
	case model.PriorityLow:
		return "  low"
	}
	return "  medium"
}

// parseDay parses YYYY-MM-DD in loc, or the words today and yesterday
func parseDay(s string, now time.Time, loc *time.Location) (time.Time, error) {
	year, month, day := now.In(loc).Date()
	today := time.Date(year, month, day, 0, 0, 0, 0, loc)

	switch strings.ToLower(s) {
	case "", "today":
		return today, nil
	case "yesterday":
		return today.AddDate(0, 0, -1), nil
	case "tomorrow":
		return today.AddDate(0, 0, 1), nil
	}
	t, err := time.ParseInLocation(model.DateLayout, s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (use YYYY-MM-DD, today or yesterday)", s)
	}
	return t, nil
}
