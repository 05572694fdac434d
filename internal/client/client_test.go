package client

import (
	"context"
	"errors"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/existflow/ironclock/internal/engine"
	"github.com/existflow/ironclock/internal/model"
	"github.com/existflow/ironclock/internal/report"
	"github.com/existflow/ironclock/internal/store"
	"github.com/existflow/ironclock/server"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	db, err := store.OpenSQLite(filepath.Join(t.TempDir(), "server.db"))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	srv := httptest.NewServer(server.New(db, server.Options{Location: time.UTC}).Router())
	t.Cleanup(srv.Close)

	c := New(filepath.Join(t.TempDir(), "remote.json"))
	if err := c.SetServer(srv.URL + "/"); err != nil {
		t.Fatalf("SetServer: %v", err)
	}
	return c
}

func TestRemoteLifecycle(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	if c.IsLoggedIn() {
		t.Fatal("fresh client should not be logged in")
	}
	if err := c.Register(ctx, "ada", "ada@example.com", "correct horse"); err != nil {
		t.Fatalf("Register: %v", err)
	}

	// the login survives a reload
	reloaded := New(c.configPath)
	if !reloaded.IsLoggedIn() {
		t.Fatal("login not persisted")
	}
	if _, username, _ := reloaded.Status(); username != "ada" {
		t.Fatalf("username = %q", username)
	}

	task, err := c.CreateTask(ctx, engine.NewTask{Title: "Write docs", Priority: "high"})
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	if task.Priority != model.PriorityHigh || task.Status != model.StatusTodo {
		t.Fatalf("task = %+v", task)
	}

	if _, err := c.StopTimer(ctx, task.ID); !errors.Is(err, engine.ErrNotRunning) {
		t.Fatalf("StopTimer(idle) = %v, want ErrNotRunning", err)
	}
	if _, err := c.StartTimer(ctx, "missing"); !errors.Is(err, engine.ErrNotFound) {
		t.Fatalf("StartTimer(missing) = %v, want ErrNotFound", err)
	}

	if _, err := c.StartTimer(ctx, task.ID); err != nil {
		t.Fatalf("StartTimer: %v", err)
	}
	running, err := c.RunningTask(ctx)
	if err != nil || running == nil || running.ID != task.ID {
		t.Fatalf("RunningTask = %+v, %v", running, err)
	}

	moved, err := c.MoveTask(ctx, task.ID, model.StatusDone, 0)
	if err != nil {
		t.Fatalf("MoveTask: %v", err)
	}
	if moved.Stopped == nil || moved.Task.IsRunning {
		t.Fatalf("move to done did not stop the timer: %+v", moved)
	}

	now := time.Now()
	entries, err := c.EntriesInRange(ctx, now.Add(-time.Hour), now.Add(time.Hour))
	if err != nil || len(entries) != 1 {
		t.Fatalf("EntriesInRange = %+v, %v", entries, err)
	}

	if _, err := c.Report(ctx, now.Add(-time.Hour), now.Add(time.Hour), report.GroupWeek); err != nil {
		t.Fatalf("Report: %v", err)
	}
	d, err := c.Dashboard(ctx)
	if err != nil || d.CompletionRate != 100 {
		t.Fatalf("Dashboard = %+v, %v", d, err)
	}

	board, err := c.Board(ctx)
	if err != nil || len(board) != 1 {
		t.Fatalf("Board = %+v, %v", board, err)
	}

	if _, err := c.DeleteTask(ctx, task.ID); err != nil {
		t.Fatalf("DeleteTask: %v", err)
	}

	if err := c.Logout(ctx); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if c.IsLoggedIn() {
		t.Fatal("still logged in after logout")
	}

	var apiErr *APIError
	if _, err := c.Board(ctx); !errors.As(err, &apiErr) || apiErr.Status != 401 {
		t.Fatalf("Board after logout = %v, want 401", err)
	}
}

func TestProjects(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()
	if err := c.Register(ctx, "bob", "bob@example.com", "correct horse"); err != nil {
		t.Fatal(err)
	}

	p, err := c.CreateProject(ctx, "Website", "")
	if err != nil {
		t.Fatalf("CreateProject: %v", err)
	}
	if p.Color != model.DefaultProjectColor {
		t.Fatalf("Color = %q", p.Color)
	}

	projects, err := c.Projects(ctx)
	if err != nil || len(projects) != 1 || projects[0].Name != "Website" {
		t.Fatalf("Projects = %+v, %v", projects, err)
	}
}
