// Package report composes read-only views over the task store and the time
// ledger: the dashboard statistics and grouped time reports.
package report

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/existflow/ironclock/internal/engine"
	"github.com/existflow/ironclock/internal/model"
	"github.com/existflow/ironclock/internal/store"
)

const (
	topProjects = 5
	seriesDays  = 7
)

// Service builds reports for a user
type Service struct {
	db     *store.DB
	engine *engine.Engine
}

// New creates a report service. The engine supplies the clock and time zone.
func New(db *store.DB, eng *engine.Engine) *Service {
	return &Service{db: db, engine: eng}
}

// RunningTimer is the user's running task with its live elapsed time
type RunningTimer struct {
	Task        model.Task `json:"task"`
	LiveSeconds int64      `json:"live_seconds"`
}

// DayTotal is the tracked time of one date
type DayTotal struct {
	Date    string `json:"date"`
	Seconds int64  `json:"seconds"`
}

// Dashboard summarizes a user's board and ledger
type Dashboard struct {
	TotalTasks         int                    `json:"total_tasks"`
	CompletedTasks     int                    `json:"completed_tasks"`
	CompletionRate     int                    `json:"completion_rate"`
	TotalProjects      int                    `json:"total_projects"`
	ByStatus           map[model.Status]int   `json:"by_status"`
	ByPriority         map[model.Priority]int `json:"by_priority"`
	TotalSeconds       int64                  `json:"total_seconds"`
	AverageTaskSeconds int64                  `json:"average_task_seconds"`
	TodaySeconds       int64                  `json:"today_seconds"`
	Running            *RunningTimer          `json:"running"`
	TimeByProject      []store.ProjectTotal   `json:"time_by_project"`
	LastDays           []DayTotal             `json:"last_days"`
}

// Dashboard computes the dashboard for userID
func (s *Service) Dashboard(ctx context.Context, userID string) (Dashboard, error) {
	now := s.engine.Now()
	loc := s.engine.Location()

	tasks, err := s.db.ListTasks(ctx, userID)
	if err != nil {
		return Dashboard{}, err
	}
	projects, err := s.db.ListProjects(ctx, userID)
	if err != nil {
		return Dashboard{}, err
	}

	d := Dashboard{
		TotalTasks:    len(tasks),
		TotalProjects: len(projects),
		ByStatus:      make(map[model.Status]int, len(model.Statuses)),
		ByPriority:    make(map[model.Priority]int, len(model.Priorities)),
	}
	for _, st := range model.Statuses {
		d.ByStatus[st] = 0
	}
	for _, p := range model.Priorities {
		d.ByPriority[p] = 0
	}

	for _, t := range tasks {
		d.ByStatus[t.Status]++
		d.ByPriority[t.Priority]++
		d.TotalSeconds += t.TimeSpent
		if t.Status == model.StatusDone {
			d.CompletedTasks++
		}
		if t.IsRunning {
			task := t
			d.Running = &RunningTimer{Task: task, LiveSeconds: task.LiveSeconds(now)}
		}
	}
	d.CompletionRate = CompletionRate(d.CompletedTasks, d.TotalTasks)
	if d.TotalTasks > 0 {
		d.AverageTaskSeconds = d.TotalSeconds / int64(d.TotalTasks)
	}

	today := model.EntryDate(now, loc)
	if d.TodaySeconds, err = s.db.SumForDate(ctx, userID, today); err != nil {
		return Dashboard{}, err
	}

	totals, err := s.db.ProjectTotals(ctx, userID)
	if err != nil {
		return Dashboard{}, err
	}
	d.TimeByProject = topProjectTotals(totals, topProjects)

	if d.LastDays, err = s.dailySeries(ctx, userID, now.In(loc), seriesDays); err != nil {
		return Dashboard{}, err
	}

	return d, nil
}

// CompletionRate returns done/total as a rounded percentage, 0 for no tasks
func CompletionRate(done, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(done) / float64(total) * 100))
}

// topProjectTotals keeps the n largest project totals with time on them.
// Entries without a project are left out.
func topProjectTotals(totals []store.ProjectTotal, n int) []store.ProjectTotal {
	out := make([]store.ProjectTotal, 0, n)
	for _, pt := range totals {
		if pt.ProjectID == nil || pt.Seconds <= 0 {
			continue
		}
		out = append(out, pt)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Seconds > out[j].Seconds })
	if len(out) > n {
		out = out[:n]
	}
	return out
}

// dailySeries returns the totals for the days days ending on today, oldest first
func (s *Service) dailySeries(ctx context.Context, userID string, today time.Time, days int) ([]DayTotal, error) {
	year, month, day := today.Date()
	first := time.Date(year, month, day-days+1, 0, 0, 0, 0, today.Location())

	totals, err := s.db.DailyTotals(ctx, userID, first.Format(model.DateLayout), today.Format(model.DateLayout))
	if err != nil {
		return nil, err
	}

	series := make([]DayTotal, 0, days)
	for i := 0; i < days; i++ {
		date := first.AddDate(0, 0, i).Format(model.DateLayout)
		series = append(series, DayTotal{Date: date, Seconds: totals[date]})
	}
	return series, nil
}

// Group is one bucket of a report
type Group struct {
	Key     string            `json:"key"`
	Title   string            `json:"title"`
	Seconds int64             `json:"seconds"`
	Entries []model.TimeEntry `json:"entries"`
}

// Report lists ledger entries of a range in buckets with subtotals
type Report struct {
	Start        time.Time `json:"start"`
	End          time.Time `json:"end"`
	GroupBy      GroupBy   `json:"group_by"`
	TotalSeconds int64     `json:"total_seconds"`
	Groups       []Group   `json:"groups"`
}

// Report groups the entries that started in [start, end), oldest first
func (s *Service) Report(ctx context.Context, userID string, start, end time.Time, groupBy GroupBy) (Report, error) {
	if _, err := ParseGroupBy(string(groupBy)); err != nil {
		return Report{}, err
	}

	entries, err := s.engine.EntriesInRange(ctx, userID, start, end)
	if err != nil {
		return Report{}, err
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].StartedAt.Equal(entries[j].StartedAt) {
			return entries[i].ID < entries[j].ID
		}
		return entries[i].StartedAt.Before(entries[j].StartedAt)
	})

	r := Report{Start: start, End: end, GroupBy: groupBy, Groups: []Group{}}
	loc := s.engine.Location()
	index := make(map[string]int)

	for _, e := range entries {
		at := e.StartedAt.In(loc)
		key := GroupKey(at, groupBy)

		i, ok := index[key]
		if !ok {
			i = len(r.Groups)
			index[key] = i
			r.Groups = append(r.Groups, Group{Key: key, Title: GroupTitle(at, groupBy)})
		}
		r.Groups[i].Entries = append(r.Groups[i].Entries, e)
		r.Groups[i].Seconds += e.DurationSeconds
		r.TotalSeconds += e.DurationSeconds
	}

	return r, nil
}
