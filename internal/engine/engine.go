// Package engine governs the task lifecycle and time tracking: status
// moves, the per-user single running timer and the append-only time ledger.
//
// Every mutating operation for a user runs under that user's lock and inside
// one database transaction, so a user's operations are linearizable. Reads go
// straight to the store without locking.
package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/existflow/ironclock/internal/model"
	"github.com/existflow/ironclock/internal/store"
	"github.com/google/uuid"
)

// Clock supplies the current time
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to Clock
type ClockFunc func() time.Time

// Now calls f
func (f ClockFunc) Now() time.Time { return f() }

// SystemClock reads the wall clock
var SystemClock Clock = ClockFunc(time.Now)

// Options configure an Engine. Zero values select the system clock, the
// local time zone and random UUIDs.
type Options struct {
	Clock    Clock
	Location *time.Location
	NewID    func() string
}

// Engine is the task lifecycle and time-tracking engine
type Engine struct {
	db    *store.DB
	clock Clock
	loc   *time.Location
	newID func() string
	locks *lockTable
}

// New creates an engine over db
func New(db *store.DB, opts Options) *Engine {
	e := &Engine{
		db:    db,
		clock: opts.Clock,
		loc:   opts.Location,
		newID: opts.NewID,
		locks: newLockTable(),
	}
	if e.clock == nil {
		e.clock = SystemClock
	}
	if e.loc == nil {
		e.loc = time.Local
	}
	if e.newID == nil {
		e.newID = uuid.NewString
	}
	return e
}

// Location returns the time zone used for ledger dates
func (e *Engine) Location() *time.Location {
	return e.loc
}

// Now returns the engine clock's current time
func (e *Engine) Now() time.Time {
	return e.clock.Now()
}

// mutate runs fn for userID under the user lock and in one transaction. The
// transaction ignores ctx cancellation once started so an operation either
// commits entirely or not at all.
func (e *Engine) mutate(ctx context.Context, userID string, fn func(ctx context.Context, q *store.Queries, now time.Time) error) error {
	unlock := e.locks.lock(userID)
	defer unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	ctx = context.WithoutCancel(ctx)
	return e.db.WithUserTx(ctx, userID, func(q *store.Queries) error {
		return fn(ctx, q, e.clock.Now())
	})
}

// ownedTask loads and locks a task, checking it belongs to userID
func ownedTask(ctx context.Context, q *store.Queries, userID, taskID string) (model.Task, error) {
	task, err := q.LockTask(ctx, taskID)
	if errors.Is(err, store.ErrNotFound) {
		return model.Task{}, ErrNotFound
	}
	if err != nil {
		return model.Task{}, fmt.Errorf("failed to load task: %w", err)
	}
	if task.UserID != userID {
		return model.Task{}, ErrForbidden
	}
	return task, nil
}
