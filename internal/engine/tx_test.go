package engine

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/existflow/ironclock/internal/logger"
	"github.com/existflow/ironclock/internal/model"
	"github.com/existflow/ironclock/internal/store"
)

type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

var (
	logOnce sync.Once
	logBuf  = &lockedBuffer{}
)

// captureLogs routes the global logger into logBuf. The global logger is
// initialised once per binary, so callers compare output after a mark.
func captureLogs(t *testing.T) *lockedBuffer {
	t.Helper()
	logOnce.Do(func() {
		if err := logger.Init(logger.Config{Level: logger.DEBUG, Output: logBuf}); err != nil {
			t.Fatalf("logger.Init: %v", err)
		}
	})
	return logBuf
}

func openEngine(t *testing.T, path string, clock Clock) (*Engine, *store.DB) {
	t.Helper()
	db, err := store.OpenSQLite(path)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return New(db, Options{Clock: clock, Location: time.UTC}), db
}

func TestFailedStartKeepsSiblingRunning(t *testing.T) {
	path := filepath.Join(t.TempDir(), "engine.db")
	clock := &fakeClock{now: t0}
	e, db := openEngine(t, path, clock)
	ctx := context.Background()
	logs := captureLogs(t)

	a := addTask(t, e, "u1", "a")
	b := addTask(t, e, "u1", "b")
	if _, err := e.StartTimer(ctx, "u1", a.ID); err != nil {
		t.Fatalf("StartTimer(a): %v", err)
	}

	// Make the write that starts b fail after a has been stopped in the
	// same transaction.
	raw, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("sql.Open: %v", err)
	}
	_, err = raw.Exec(`CREATE TRIGGER fail_start BEFORE UPDATE ON tasks
		WHEN NEW.id = '` + b.ID + `' AND NEW.is_running
		BEGIN SELECT RAISE(ABORT, 'start rejected'); END`)
	_ = raw.Close()
	if err != nil {
		t.Fatalf("create trigger: %v", err)
	}

	clock.Advance(2 * time.Minute)
	mark := len(logs.String())
	if _, err := e.StartTimer(ctx, "u1", b.ID); err == nil {
		t.Fatalf("StartTimer(b) succeeded, want error")
	}

	got, err := db.GetTask(ctx, a.ID)
	if err != nil {
		t.Fatalf("GetTask: %v", err)
	}
	if !got.IsRunning || got.TimerStartedAt == nil || !got.TimerStartedAt.Equal(t0) {
		t.Fatalf("a after failed start = %+v, want running since %v", got, t0)
	}
	if got.TimeSpent != 0 {
		t.Fatalf("a TimeSpent = %d, want 0", got.TimeSpent)
	}
	if got, _ := db.GetTask(ctx, b.ID); got.IsRunning {
		t.Fatalf("b is running after failed start")
	}
	if entries := entriesFor(t, db, "u1"); len(entries) != 0 {
		t.Fatalf("entries = %+v, want none", entries)
	}
	if out := logs.String()[mark:]; strings.Contains(out, "timer stopped") {
		t.Fatalf("rolled back stop was logged:\n%s", out)
	}
	assertConservation(t, db, "u1")
}

func TestStopIsLoggedAfterCommit(t *testing.T) {
	e, _, clock := newTestEngine(t)
	ctx := context.Background()
	logs := captureLogs(t)

	a := addTask(t, e, "u1", "a")
	b := addTask(t, e, "u1", "b")
	if _, err := e.StartTimer(ctx, "u1", a.ID); err != nil {
		t.Fatal(err)
	}
	clock.Advance(time.Minute)

	mark := len(logs.String())
	if _, err := e.StartTimer(ctx, "u1", b.ID); err != nil {
		t.Fatal(err)
	}
	out := logs.String()[mark:]
	stopped := strings.Index(out, "timer stopped")
	started := strings.Index(out, "timer started")
	if stopped < 0 || started < 0 || stopped > started {
		t.Fatalf("want stop logged before start, got:\n%s", out)
	}
	if !strings.Contains(out, "task_id="+a.ID) || !strings.Contains(out, "duration=60") {
		t.Fatalf("stop line missing fields:\n%s", out)
	}
}

func TestCancelledContextChangesNothing(t *testing.T) {
	e, db, _ := newTestEngine(t)
	task := addTask(t, e, "u1", "a")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := e.StartTimer(ctx, "u1", task.ID); !errors.Is(err, context.Canceled) {
		t.Fatalf("StartTimer = %v, want context.Canceled", err)
	}
	got, err := db.GetTask(context.Background(), task.ID)
	if err != nil {
		t.Fatalf("GetTask: %v", err)
	}
	if got.IsRunning {
		t.Fatalf("task started under a cancelled context")
	}
}

func TestCancelDuringOperationStillCommits(t *testing.T) {
	var cancel context.CancelFunc
	clock := ClockFunc(func() time.Time {
		if cancel != nil {
			cancel()
		}
		return t0
	})
	e, db := openEngine(t, filepath.Join(t.TempDir(), "engine.db"), clock)
	task := addTask(t, e, "u1", "a")

	var ctx context.Context
	ctx, cancel = context.WithCancel(context.Background())
	defer cancel()

	res, err := e.StartTimer(ctx, "u1", task.ID)
	if err != nil {
		t.Fatalf("StartTimer: %v", err)
	}
	if ctx.Err() == nil {
		t.Fatalf("context was not cancelled during the operation")
	}
	got, err := db.GetTask(context.Background(), task.ID)
	if err != nil {
		t.Fatalf("GetTask: %v", err)
	}
	if !got.IsRunning || !res.Task.IsRunning {
		t.Fatalf("start did not commit: stored %+v", got)
	}
}

// Two handles on one file stand in for two processes: neither the
// in-process user lock nor the connection pool is shared.
func TestTwoHandlesOnOneFileDoNotFail(t *testing.T) {
	path := filepath.Join(t.TempDir(), "engine.db")
	clock := &fakeClock{now: t0}
	e1, db := openEngine(t, path, clock)
	e2, _ := openEngine(t, path, clock)

	var tasks []model.Task
	for _, title := range []string{"a", "b", "c"} {
		tasks = append(tasks, addTask(t, e1, "u1", title))
	}

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)
	for i, e := range []*Engine{e1, e2, e1, e2} {
		wg.Add(1)
		go func(i int, e *Engine) {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				task := tasks[(i+j)%len(tasks)]
				if _, err := e.StartTimer(context.Background(), "u1", task.ID); err != nil {
					mu.Lock()
					errs = append(errs, err)
					mu.Unlock()
					return
				}
				clock.Advance(time.Second)
			}
		}(i, e)
	}
	wg.Wait()

	if len(errs) > 0 {
		t.Fatalf("concurrent starts failed: %v", errs)
	}
	running, err := db.ListRunningTasks(context.Background(), "u1")
	if err != nil {
		t.Fatalf("ListRunningTasks: %v", err)
	}
	if len(running) != 1 {
		t.Fatalf("running tasks = %d, want 1", len(running))
	}
	assertConservation(t, db, "u1")
}

func TestCreateTaskChecksProjectOwner(t *testing.T) {
	e, db, _ := newTestEngine(t)
	ctx := context.Background()

	if err := db.CreateProject(ctx, model.Project{ID: "p1", UserID: "u1", Name: "Work", CreatedAt: t0}); err != nil {
		t.Fatalf("CreateProject: %v", err)
	}
	own := "p1"
	task, err := e.CreateTask(ctx, "u1", NewTask{Title: "mine", ProjectID: &own})
	if err != nil {
		t.Fatalf("CreateTask with own project: %v", err)
	}
	if task.ProjectID == nil || *task.ProjectID != "p1" {
		t.Fatalf("ProjectID = %v, want p1", task.ProjectID)
	}

	if _, err := e.CreateTask(ctx, "u2", NewTask{Title: "theirs", ProjectID: &own}); !errors.Is(err, ErrProjectNotFound) {
		t.Fatalf("CreateTask with foreign project = %v, want ErrProjectNotFound", err)
	}
	missing := "nope"
	if _, err := e.CreateTask(ctx, "u1", NewTask{Title: "lost", ProjectID: &missing}); !errors.Is(err, ErrProjectNotFound) {
		t.Fatalf("CreateTask with missing project = %v, want ErrProjectNotFound", err)
	}
	tasks, err := db.ListTasks(ctx, "u2")
	if err != nil {
		t.Fatalf("ListTasks: %v", err)
	}
	if len(tasks) != 0 {
		t.Fatalf("u2 tasks = %d, want 0", len(tasks))
	}
}
