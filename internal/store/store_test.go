package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/existflow/ironclock/internal/model"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := OpenSQLite(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

var t0 = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

func insertTask(t *testing.T, db *DB, id, userID string) model.Task {
	t.Helper()
	task := model.NewTask(id, userID, "task "+id, t0)
	if err := db.CreateTask(context.Background(), task); err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	return task
}

func TestRebind(t *testing.T) {
	pg := &Queries{dialect: Postgres}
	got := pg.rebind("SELECT * FROM tasks WHERE id = ? AND user_id = ?")
	if got != "SELECT * FROM tasks WHERE id = $1 AND user_id = $2" {
		t.Fatalf("rebind = %q", got)
	}

	lite := &Queries{dialect: SQLite}
	if got := lite.rebind("a = ?"); got != "a = ?" {
		t.Fatalf("sqlite rebind changed query: %q", got)
	}
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "twice.db")
	for i := 0; i < 2; i++ {
		db, err := OpenSQLite(path)
		if err != nil {
			t.Fatalf("open %d: %v", i, err)
		}
		_ = db.Close()
	}
}

func TestTaskRoundTrip(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	due := t0.Add(48 * time.Hour)
	project := "p1"
	task := model.NewTask("t1", "u1", "Write report", t0)
	task.ProjectID = &project
	task.DueDate = &due
	task.Priority = model.PriorityHigh
	if err := db.CreateTask(ctx, task); err != nil {
		t.Fatalf("CreateTask: %v", err)
	}

	got, err := db.GetTask(ctx, "t1")
	if err != nil {
		t.Fatalf("GetTask: %v", err)
	}
	if got.Title != "Write report" || got.Status != model.StatusTodo || got.Priority != model.PriorityHigh {
		t.Fatalf("unexpected task: %+v", got)
	}
	if got.ProjectID == nil || *got.ProjectID != "p1" {
		t.Fatalf("ProjectID = %v", got.ProjectID)
	}
	if got.DueDate == nil || !got.DueDate.Equal(due) {
		t.Fatalf("DueDate = %v, want %v", got.DueDate, due)
	}
	if !got.CreatedAt.Equal(t0) {
		t.Fatalf("CreatedAt = %v", got.CreatedAt)
	}

	if _, err := db.GetTask(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("GetTask(missing) = %v, want ErrNotFound", err)
	}
}

func TestUpdateEngineFields(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	task := insertTask(t, db, "t1", "u1")

	started := t0.Add(time.Minute)
	task.IsRunning = true
	task.TimerStartedAt = &started
	task.Status = model.StatusInProgress
	task.Position = 3
	task.UpdatedAt = started
	if err := db.UpdateEngineFields(ctx, task); err != nil {
		t.Fatalf("UpdateEngineFields: %v", err)
	}

	got, _ := db.GetTask(ctx, "t1")
	if !got.IsRunning || got.TimerStartedAt == nil || !got.TimerStartedAt.Equal(started) {
		t.Fatalf("timer not persisted: %+v", got)
	}
	if got.Status != model.StatusInProgress || got.Position != 3 {
		t.Fatalf("lifecycle not persisted: %+v", got)
	}

	// another user's id never matches
	task.UserID = "u2"
	if err := db.UpdateEngineFields(ctx, task); !errors.Is(err, ErrNotFound) {
		t.Fatalf("cross-user update = %v, want ErrNotFound", err)
	}
}

func TestRunningInvariantEnforcedBySchema(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	a := insertTask(t, db, "a", "u1")
	b := insertTask(t, db, "b", "u1")

	// running without a start time violates the CHECK constraint
	a.IsRunning = true
	if err := db.UpdateEngineFields(ctx, a); err == nil {
		t.Fatal("expected CHECK violation for running task without start time")
	}

	a.TimerStartedAt = &t0
	if err := db.UpdateEngineFields(ctx, a); err != nil {
		t.Fatalf("start a: %v", err)
	}

	b.IsRunning = true
	b.TimerStartedAt = &t0
	if err := db.UpdateEngineFields(ctx, b); err == nil {
		t.Fatal("expected unique index violation for a second running task")
	}

	running, err := db.ListRunningTasks(ctx, "u1")
	if err != nil {
		t.Fatalf("ListRunningTasks: %v", err)
	}
	if len(running) != 1 || running[0].ID != "a" {
		t.Fatalf("running = %+v", running)
	}
}

func TestListTasksBoardOrder(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	specs := []struct {
		id     string
		status model.Status
		pos    int
	}{
		{"d1", model.StatusDone, 0},
		{"p2", model.StatusInProgress, 1},
		{"t2", model.StatusTodo, 1},
		{"p1", model.StatusInProgress, 0},
		{"t1", model.StatusTodo, 1},
	}
	for _, s := range specs {
		task := insertTask(t, db, s.id, "u1")
		task.Status = s.status
		task.Position = s.pos
		if err := db.UpdateEngineFields(ctx, task); err != nil {
			t.Fatal(err)
		}
	}
	insertTask(t, db, "other", "u2")

	tasks, err := db.ListTasks(ctx, "u1")
	if err != nil {
		t.Fatalf("ListTasks: %v", err)
	}

	want := []string{"t1", "t2", "p1", "p2", "d1"}
	if len(tasks) != len(want) {
		t.Fatalf("got %d tasks, want %d", len(tasks), len(want))
	}
	for i, id := range want {
		if tasks[i].ID != id {
			t.Fatalf("tasks[%d] = %s, want %s", i, tasks[i].ID, id)
		}
	}
}

func entry(id, userID, taskID string, start time.Time, secs int64) model.TimeEntry {
	return model.TimeEntry{
		ID:              id,
		UserID:          userID,
		TaskID:          &taskID,
		Description:     "work",
		StartedAt:       start,
		EndedAt:         start.Add(time.Duration(secs) * time.Second),
		DurationSeconds: secs,
		Date:            model.EntryDate(start, time.UTC),
		CreatedAt:       start,
	}
}

func TestEntriesQueries(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	insertTask(t, db, "t1", "u1")
	insertTask(t, db, "t2", "u1")

	entries := []model.TimeEntry{
		entry("e1", "u1", "t1", t0, 60),
		entry("e2", "u1", "t1", t0.Add(500*time.Millisecond+time.Hour), 30),
		entry("e3", "u1", "t2", t0.Add(24*time.Hour), 45),
		entry("e4", "u2", "t2", t0, 999),
	}
	for _, e := range entries {
		if err := db.InsertEntry(ctx, e); err != nil {
			t.Fatalf("InsertEntry: %v", err)
		}
	}

	total, err := db.SumForDate(ctx, "u1", "2026-03-02")
	if err != nil || total != 90 {
		t.Fatalf("SumForDate = %d, %v; want 90", total, err)
	}

	byTask, err := db.SumForTask(ctx, "t1")
	if err != nil || byTask != 90 {
		t.Fatalf("SumForTask = %d, %v; want 90", byTask, err)
	}

	from, to := t0, t0.Add(2*time.Hour)
	list, err := db.ListEntries(ctx, EntryFilter{UserID: "u1", From: &from, To: &to})
	if err != nil {
		t.Fatalf("ListEntries: %v", err)
	}
	if len(list) != 2 || list[0].ID != "e2" || list[1].ID != "e1" {
		t.Fatalf("ListEntries order = %+v", list)
	}

	daily, err := db.DailyTotals(ctx, "u1", "2026-03-01", "2026-03-03")
	if err != nil {
		t.Fatalf("DailyTotals: %v", err)
	}
	if daily["2026-03-02"] != 90 || daily["2026-03-03"] != 45 {
		t.Fatalf("DailyTotals = %v", daily)
	}
}

func TestDeleteTaskKeepsEntries(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	insertTask(t, db, "t1", "u1")
	if err := db.InsertEntry(ctx, entry("e1", "u1", "t1", t0, 60)); err != nil {
		t.Fatal(err)
	}

	if err := db.DeleteTask(ctx, "u1", "t1"); err != nil {
		t.Fatalf("DeleteTask: %v", err)
	}

	list, err := db.ListEntries(ctx, EntryFilter{UserID: "u1"})
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 || list[0].TaskID != nil {
		t.Fatalf("entry should outlive its task with a nil task id: %+v", list)
	}
}

func TestWithUserTxRollsBack(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	insertTask(t, db, "t1", "u1")

	boom := errors.New("boom")
	err := db.WithUserTx(ctx, "u1", func(q *Queries) error {
		if err := q.InsertEntry(ctx, entry("e1", "u1", "t1", t0, 60)); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("WithUserTx = %v, want boom", err)
	}

	list, _ := db.ListEntries(ctx, EntryFilter{UserID: "u1"})
	if len(list) != 0 {
		t.Fatalf("rolled back entry is visible: %+v", list)
	}
}

func TestSessions(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	user := model.User{ID: "u1", Username: "ada", Email: "ada@example.com", PasswordHash: "x", CreatedAt: t0}
	if err := db.CreateUser(ctx, user); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if err := db.CreateUser(ctx, user); !errors.Is(err, ErrConflict) {
		t.Fatalf("duplicate CreateUser = %v, want ErrConflict", err)
	}

	s := model.Session{Token: "tok", UserID: "u1", ExpiresAt: t0.Add(time.Hour), CreatedAt: t0}
	if err := db.CreateSession(ctx, s); err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	got, err := db.GetSession(ctx, "tok")
	if err != nil || got.UserID != "u1" {
		t.Fatalf("GetSession = %+v, %v", got, err)
	}

	n, err := db.DeleteExpiredSessions(ctx, t0.Add(2*time.Hour))
	if err != nil || n != 1 {
		t.Fatalf("DeleteExpiredSessions = %d, %v", n, err)
	}
	if _, err := db.GetSession(ctx, "tok"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expired session still present: %v", err)
	}
}
