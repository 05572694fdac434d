// Package reminder computes which tasks deserve a nudge: unfinished tasks due
// soon and todo tasks that have waited too long. Delivery is up to the caller.
package reminder

import (
	"fmt"
	"sort"
	"time"

	"github.com/existflow/ironclock/internal/model"
)

// Kind of reminder
type Kind string

const (
	KindDeadline Kind = "deadline"
	KindStale    Kind = "stale"
)

// Defaults for Options
const (
	DefaultDueWindow  = 24 * time.Hour
	DefaultStaleAfter = 72 * time.Hour
	DefaultLimit      = 20
)

// Options tune the reminder windows. Zero values select the defaults.
type Options struct {
	DueWindow  time.Duration
	StaleAfter time.Duration
	Limit      int
}

func (o Options) withDefaults() Options {
	if o.DueWindow <= 0 {
		o.DueWindow = DefaultDueWindow
	}
	if o.StaleAfter <= 0 {
		o.StaleAfter = DefaultStaleAfter
	}
	if o.Limit <= 0 {
		o.Limit = DefaultLimit
	}
	return o
}

// Reminder is one nudge about a task
type Reminder struct {
	Kind     Kind           `json:"kind"`
	TaskID   string         `json:"task_id"`
	Title    string         `json:"title"`
	Message  string         `json:"message"`
	Priority model.Priority `json:"priority"`
	// At is the due date for deadlines and the creation time for stale tasks
	At time.Time `json:"at"`
}

// Compute returns the reminders for tasks at now. Deadlines come first,
// soonest due first, followed by stale tasks, oldest first. The result holds
// at most Limit reminders.
func Compute(tasks []model.Task, now time.Time, opts Options) []Reminder {
	opts = opts.withDefaults()

	var deadlines, stale []Reminder
	dueBy := now.Add(opts.DueWindow)

	for _, t := range tasks {
		if t.DueDate != nil && t.Status != model.StatusDone &&
			!t.DueDate.Before(now) && !t.DueDate.After(dueBy) {
			hours := int(t.DueDate.Sub(now) / time.Hour)
			deadlines = append(deadlines, Reminder{
				Kind:     KindDeadline,
				TaskID:   t.ID,
				Title:    t.Title,
				Message:  fmt.Sprintf("%q is due in %dh", t.Title, hours),
				Priority: t.Priority,
				At:       *t.DueDate,
			})
		}

		if t.Status == model.StatusTodo {
			age := now.Sub(t.CreatedAt)
			if age >= opts.StaleAfter {
				days := int(age / (24 * time.Hour))
				stale = append(stale, Reminder{
					Kind:     KindStale,
					TaskID:   t.ID,
					Title:    t.Title,
					Message:  fmt.Sprintf("%q has not been started for %d days", t.Title, days),
					Priority: model.PriorityLow,
					At:       t.CreatedAt,
				})
			}
		}
	}

	byAt := func(rs []Reminder) {
		sort.SliceStable(rs, func(i, j int) bool {
			if rs[i].At.Equal(rs[j].At) {
				return rs[i].TaskID < rs[j].TaskID
			}
			return rs[i].At.Before(rs[j].At)
		})
	}
	byAt(deadlines)
	byAt(stale)

	out := append(deadlines, stale...)
	if len(out) > opts.Limit {
		out = out[:opts.Limit]
	}
	if out == nil {
		out = []Reminder{}
	}
	return out
}
