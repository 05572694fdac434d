package model

import (
	"errors"
	"testing"
	"time"
)

func TestParseStatus(t *testing.T) {
	tests := []struct {
		in      string
		want    Status
		wantErr bool
	}{
		{"todo", StatusTodo, false},
		{"inProgress", StatusInProgress, false},
		{"done", StatusDone, false},
		{"in_progress", "", true},
		{"", "", true},
		{"DONE", "", true},
	}

	for _, tt := range tests {
		got, err := ParseStatus(tt.in)
		if tt.wantErr {
			if !errors.Is(err, ErrInvalidStatus) {
				t.Errorf("ParseStatus(%q) error = %v, want ErrInvalidStatus", tt.in, err)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("ParseStatus(%q) = %q, %v; want %q", tt.in, got, err, tt.want)
		}
	}
}

func TestStatusIndex(t *testing.T) {
	if StatusTodo.Index() != 0 || StatusInProgress.Index() != 1 || StatusDone.Index() != 2 {
		t.Fatal("unexpected board order")
	}
	if Status("blocked").Index() != -1 {
		t.Fatal("unknown status should have index -1")
	}
}

func TestLiveSeconds(t *testing.T) {
	t0 := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	idle := Task{TimeSpent: 120}
	if got := idle.LiveSeconds(t0); got != 120 {
		t.Fatalf("idle LiveSeconds = %d, want 120", got)
	}

	running := Task{TimeSpent: 120, IsRunning: true, TimerStartedAt: &t0}
	if got := running.LiveSeconds(t0.Add(90 * time.Second)); got != 210 {
		t.Fatalf("running LiveSeconds = %d, want 210", got)
	}

	// a clock behind the start never subtracts
	if got := running.LiveSeconds(t0.Add(-time.Minute)); got != 120 {
		t.Fatalf("regressed LiveSeconds = %d, want 120", got)
	}
}

func TestIsOverdue(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)

	task := Task{DueDate: &past, Status: StatusTodo}
	if !task.IsOverdue(now) {
		t.Fatal("expected overdue")
	}
	task.Status = StatusDone
	if task.IsOverdue(now) {
		t.Fatal("done tasks are never overdue")
	}
}

func TestEntryDateUsesStartDay(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*60*60)
	start := time.Date(2026, 3, 1, 23, 30, 0, 0, time.UTC)

	if got := EntryDate(start, time.UTC); got != "2026-03-01" {
		t.Fatalf("EntryDate UTC = %s", got)
	}
	if got := EntryDate(start, loc); got != "2026-03-02" {
		t.Fatalf("EntryDate UTC+2 = %s", got)
	}
}
