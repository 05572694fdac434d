package engine

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/existflow/ironclock/internal/model"
	"github.com/existflow/ironclock/internal/store"
	"github.com/google/uuid"
	"pgregory.net/rapid"
)

// TestTimerInvariants drives random start, stop, move and clock steps and
// checks after every step that at most one timer runs, that the running task
// is the one last started, and that the ledger balances.
func TestTimerInvariants(t *testing.T) {
	db, err := store.OpenSQLite(filepath.Join(t.TempDir(), "property.db"))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	defer db.Close()

	rapid.Check(t, func(rt *rapid.T) {
		ctx := context.Background()
		clock := &fakeClock{now: t0}
		e := New(db, Options{Clock: clock, Location: time.UTC})
		userID := uuid.NewString()

		n := rapid.IntRange(1, 4).Draw(rt, "tasks")
		tasks := make([]string, n)
		for i := range tasks {
			task, err := e.CreateTask(ctx, userID, NewTask{Title: "task"})
			if err != nil {
				rt.Fatalf("CreateTask: %v", err)
			}
			tasks[i] = task.ID
		}

		var running string
		steps := rapid.IntRange(1, 25).Draw(rt, "steps")
		for s := 0; s < steps; s++ {
			id := tasks[rapid.IntRange(0, n-1).Draw(rt, "task")]

			switch rapid.IntRange(0, 3).Draw(rt, "op") {
			case 0:
				if _, err := e.StartTimer(ctx, userID, id); err != nil {
					rt.Fatalf("StartTimer: %v", err)
				}
				running = id
			case 1:
				_, err := e.StopTimer(ctx, userID, id)
				switch {
				case id == running && err != nil:
					rt.Fatalf("StopTimer on running task: %v", err)
				case id != running && !errors.Is(err, ErrNotRunning):
					rt.Fatalf("StopTimer on idle task = %v, want ErrNotRunning", err)
				}
				if id == running {
					running = ""
				}
			case 2:
				status := rapid.SampledFrom(model.Statuses).Draw(rt, "status")
				pos := rapid.IntRange(0, 10).Draw(rt, "position")
				if _, err := e.MoveTask(ctx, userID, id, status, pos); err != nil {
					rt.Fatalf("MoveTask: %v", err)
				}
				if status == model.StatusDone && id == running {
					running = ""
				}
			case 3:
				// negative steps exercise clock regression
				ms := rapid.IntRange(-5000, 120000).Draw(rt, "advance_ms")
				clock.Advance(time.Duration(ms) * time.Millisecond)
			}

			got, err := e.RunningTask(ctx, userID)
			if err != nil {
				rt.Fatalf("RunningTask: %v", err)
			}
			switch {
			case running == "" && got != nil:
				rt.Fatalf("task %s running, want none", got.ID)
			case running != "" && (got == nil || got.ID != running):
				rt.Fatalf("running = %v, want %s", got, running)
			}
		}

		entries, err := db.ListEntries(ctx, store.EntryFilter{UserID: userID})
		if err != nil {
			rt.Fatalf("ListEntries: %v", err)
		}
		for _, entry := range entries {
			if entry.DurationSeconds < 0 || entry.EndedAt.Before(entry.StartedAt) {
				rt.Fatalf("invalid entry: %+v", entry)
			}
		}
		assertConservation(rt, db, userID)
	})
}
