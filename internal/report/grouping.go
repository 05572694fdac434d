package report

import (
	"errors"
	"fmt"
	"time"
)

// GroupBy selects how report entries are bucketed
type GroupBy string

const (
	GroupNone        GroupBy = "none"
	GroupDay         GroupBy = "day"
	GroupWeek        GroupBy = "week"
	GroupWeekOfMonth GroupBy = "weekOfMonth"
)

// ErrInvalidGroupBy is returned for an unknown grouping
var ErrInvalidGroupBy = errors.New("invalid group_by")

// ParseGroupBy converts a query value; empty means none
func ParseGroupBy(s string) (GroupBy, error) {
	switch GroupBy(s) {
	case "":
		return GroupNone, nil
	case GroupNone, GroupDay, GroupWeek, GroupWeekOfMonth:
		return GroupBy(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidGroupBy, s)
}

// WeekOfMonth returns the 1-based Monday-started week of t within its month
func WeekOfMonth(t time.Time) int {
	year, month, _ := t.Date()
	firstMonday, _ := WeekRange(time.Date(year, month, 1, 0, 0, 0, 0, t.Location()))
	monday, _ := WeekRange(t)

	days := int(monday.Sub(firstMonday).Hours()/24 + 0.5)
	return days/7 + 1
}

// WeekRange returns the Monday and Sunday (at midnight) of t's week
func WeekRange(t time.Time) (time.Time, time.Time) {
	offset := int(t.Weekday())
	if offset == 0 {
		offset = 7
	}
	year, month, day := t.Date()
	start := time.Date(year, month, day-offset+1, 0, 0, 0, 0, t.Location())
	end := start.AddDate(0, 0, 6)
	return start, end
}

// GroupKey returns a sortable bucket key for t
func GroupKey(t time.Time, groupBy GroupBy) string {
	switch groupBy {
	case GroupDay:
		return t.Format("2006-01-02")
	case GroupWeek:
		year, week := t.ISOWeek()
		return fmt.Sprintf("%d-W%02d", year, week)
	case GroupWeekOfMonth:
		year, month, _ := t.Date()
		return fmt.Sprintf("%d-%02d-W%d", year, month, WeekOfMonth(t))
	}
	return ""
}

// GroupTitle returns a display title for t's bucket
func GroupTitle(t time.Time, groupBy GroupBy) string {
	switch groupBy {
	case GroupDay:
		return t.Format("Monday, 02 Jan 2006")
	case GroupWeek:
		start, end := WeekRange(t)
		return fmt.Sprintf("%s - %s", start.Format("Jan 02"), end.Format("Jan 02, 2006"))
	case GroupWeekOfMonth:
		start, end := WeekRange(t)

		// clamp to t's month
		year, month, _ := t.Date()
		firstOfMonth := time.Date(year, month, 1, 0, 0, 0, 0, t.Location())
		lastOfMonth := firstOfMonth.AddDate(0, 1, -1)
		if start.Before(firstOfMonth) {
			start = firstOfMonth
		}
		if end.After(lastOfMonth) {
			end = lastOfMonth
		}
		return fmt.Sprintf("%s - %s", start.Format("Jan 02"), end.Format("Jan 02, 2006"))
	}
	return "All entries"
}
