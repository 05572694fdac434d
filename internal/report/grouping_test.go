package report

import (
	"errors"
	"testing"
	"time"
)

func TestGroupKey(t *testing.T) {
	// Wednesday
	ts := time.Date(2026, 4, 1, 15, 0, 0, 0, time.UTC)

	tests := []struct {
		groupBy GroupBy
		want    string
	}{
		{GroupNone, ""},
		{GroupDay, "2026-04-01"},
		{GroupWeek, "2026-W14"},
		{GroupWeekOfMonth, "2026-04-W1"},
	}
	for _, tt := range tests {
		if got := GroupKey(ts, tt.groupBy); got != tt.want {
			t.Errorf("GroupKey(%s) = %q, want %q", tt.groupBy, got, tt.want)
		}
	}
}

func TestWeekOfMonth(t *testing.T) {
	tests := []struct {
		date time.Time
		want int
	}{
		// April 2026 starts on a Wednesday
		{time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC), 1},
		{time.Date(2026, 4, 5, 23, 0, 0, 0, time.UTC), 1},
		{time.Date(2026, 4, 6, 0, 0, 0, 0, time.UTC), 2},
		{time.Date(2026, 4, 30, 12, 0, 0, 0, time.UTC), 5},
		// June 2026 starts on a Monday
		{time.Date(2026, 6, 1, 8, 0, 0, 0, time.UTC), 1},
		{time.Date(2026, 6, 8, 8, 0, 0, 0, time.UTC), 2},
	}
	for _, tt := range tests {
		if got := WeekOfMonth(tt.date); got != tt.want {
			t.Errorf("WeekOfMonth(%s) = %d, want %d", tt.date.Format("2006-01-02"), got, tt.want)
		}
	}
}

func TestGroupTitleClampsToMonth(t *testing.T) {
	ts := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)

	if got := GroupTitle(ts, GroupWeekOfMonth); got != "Apr 01 - Apr 05, 2026" {
		t.Fatalf("GroupTitle = %q", got)
	}
	if got := GroupTitle(ts, GroupWeek); got != "Mar 30 - Apr 05, 2026" {
		t.Fatalf("GroupTitle = %q", got)
	}
}

func TestParseGroupBy(t *testing.T) {
	if g, err := ParseGroupBy(""); err != nil || g != GroupNone {
		t.Fatalf("ParseGroupBy(\"\") = %q, %v", g, err)
	}
	if g, err := ParseGroupBy("weekOfMonth"); err != nil || g != GroupWeekOfMonth {
		t.Fatalf("ParseGroupBy(weekOfMonth) = %q, %v", g, err)
	}
	if _, err := ParseGroupBy("Monthly"); !errors.Is(err, ErrInvalidGroupBy) {
		t.Fatalf("ParseGroupBy(Monthly) = %v", err)
	}
}

func TestCompletionRate(t *testing.T) {
	tests := []struct{ done, total, want int }{
		{0, 0, 0},
		{1, 3, 33},
		{2, 3, 67},
		{3, 3, 100},
	}
	for _, tt := range tests {
		if got := CompletionRate(tt.done, tt.total); got != tt.want {
			t.Errorf("CompletionRate(%d, %d) = %d, want %d", tt.done, tt.total, got, tt.want)
		}
	}
}
