package cli

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/existflow/ironclock/internal/model"
	"github.com/existflow/ironclock/internal/reminder"
	"github.com/existflow/ironclock/internal/report"
	"github.com/spf13/cobra"
)

var todayCmd = &cobra.Command{
	Use:   "today",
	Short: "Show time tracked today",
	RunE:  runToday,
}

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "List time entries",
	Long: `List recorded time entries, newest first. Both dates are inclusive.

Examples:
  clock log
  clock log --start yesterday
  clock log --start 2026-03-01 --end 2026-03-31`,
	RunE: runLog,
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Summarize tracked time",
	Long: `Summarize time entries in groups. The range defaults to the last 7 days.

Examples:
  clock report
  clock report --group-by week --start 2026-03-01
  clock report dashboard`,
	RunE: runReport,
}

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Show task and time statistics",
	RunE:  runDashboard,
}

var remindCmd = &cobra.Command{
	Use:     "remind",
	Aliases: []string{"reminders"},
	Short:   "Show upcoming deadlines and stale tasks",
	RunE:    runRemind,
}

var (
	logStart    string
	logEnd      string
	reportStart string
	reportEnd   string
	groupBy     string
)

func init() {
	logCmd.Flags().StringVar(&logStart, "start", "today", "First day (YYYY-MM-DD, today, yesterday)")
	logCmd.Flags().StringVar(&logEnd, "end", "", "Last day (default: start day)")

	reportCmd.Flags().StringVar(&reportStart, "start", "", "First day (default: 6 days before end)")
	reportCmd.Flags().StringVar(&reportEnd, "end", "today", "Last day")
	reportCmd.Flags().StringVarP(&groupBy, "group-by", "g", "day", "Grouping (none, day, week, weekOfMonth)")
	reportCmd.AddCommand(dashboardCmd)
}

// dayRange turns inclusive start and end days into [start, end). An empty
// end means the start day, an empty start means defaultDays ending at end.
func dayRange(start, end string, defaultDays int, now time.Time, loc *time.Location) (time.Time, time.Time, error) {
	if end == "" {
		end = start
	}

	var from time.Time
	to, err := parseDay(end, now, loc)
	if err != nil {
		return from, to, err
	}

	if start == "" {
		from = to.AddDate(0, 0, -(defaultDays - 1))
	} else if from, err = parseDay(start, now, loc); err != nil {
		return from, to, err
	}

	to = to.AddDate(0, 0, 1)
	if !to.After(from) {
		return from, to, fmt.Errorf("end date is before start date")
	}
	return from, to, nil
}

func runToday(cmd *cobra.Command, args []string) error {
	return withTracker(func(ctx context.Context, tr Tracker) error {
		total, err := tr.TotalSecondsToday(ctx)
		if err != nil {
			return err
		}
		running, err := tr.RunningTask(ctx)
		if err != nil {
			return err
		}

		fmt.Printf("📅 Tracked today: %s\n", formatDuration(total))
		if running != nil {
			fmt.Printf("▶ Running: %q (%s, not yet counted)\n", running.Title, formatDuration(running.LiveSeconds(tr.Now())-running.TimeSpent))
		}
		return nil
	})
}

func runLog(cmd *cobra.Command, args []string) error {
	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	return withTracker(func(ctx context.Context, tr Tracker) error {
		from, to, err := dayRange(logStart, logEnd, 1, tr.Now(), loc)
		if err != nil {
			return err
		}

		entries, err := tr.EntriesInRange(ctx, from, to)
		if err != nil {
			return fmt.Errorf("failed to list entries: %w", err)
		}
		if len(entries) == 0 {
			fmt.Println("No time entries in this range.")
			return nil
		}

		var total int64
		fmt.Println()
		for _, e := range entries {
			total += e.DurationSeconds
			printEntry(e, loc)
		}
		fmt.Println(strings.Repeat("─", 60))
		fmt.Printf("  %d entries, %s\n\n", len(entries), formatDuration(total))
		return nil
	})
}

func printEntry(e model.TimeEntry, loc *time.Location) {
	fmt.Printf("  %s  %s-%s  %10s  %s\n",
		e.Date,
		e.StartedAt.In(loc).Format("15:04"),
		e.EndedAt.In(loc).Format("15:04"),
		formatDuration(e.DurationSeconds),
		truncate(e.Description, 40))
}

func runReport(cmd *cobra.Command, args []string) error {
	loc, err := cfg.Location()
	if err != nil {
		return err
	}
	gb, err := report.ParseGroupBy(groupBy)
	if err != nil {
		return err
	}

	return withTracker(func(ctx context.Context, tr Tracker) error {
		from, to, err := dayRange(reportStart, reportEnd, 7, tr.Now(), loc)
		if err != nil {
			return err
		}

		r, err := tr.Report(ctx, from, to, gb)
		if err != nil {
			return fmt.Errorf("failed to build report: %w", err)
		}

		fmt.Printf("\n📊 %s to %s\n", from.Format(model.DateLayout), to.AddDate(0, 0, -1).Format(model.DateLayout))
		for _, g := range r.Groups {
			fmt.Printf("\n%s  %s\n", g.Title, formatDuration(g.Seconds))
			fmt.Println(strings.Repeat("─", 60))
			for _, e := range g.Entries {
				printEntry(e, loc)
			}
		}
		fmt.Printf("\nTotal: %s\n\n", formatDuration(r.TotalSeconds))
		return nil
	})
}

func runDashboard(cmd *cobra.Command, args []string) error {
	return withTracker(func(ctx context.Context, tr Tracker) error {
		d, err := tr.Dashboard(ctx)
		if err != nil {
			return fmt.Errorf("failed to load dashboard: %w", err)
		}

		fmt.Println()
		fmt.Printf("  Tasks       %d (%d done, %d%%)\n", d.TotalTasks, d.CompletedTasks, d.CompletionRate)
		for _, st := range model.Statuses {
			fmt.Printf("    %-12s %d\n", st.Label(), d.ByStatus[st])
		}
		for _, p := range model.Priorities {
			fmt.Printf("    %-12s %d\n", p, d.ByPriority[p])
		}
		fmt.Printf("  Projects    %d\n", d.TotalProjects)
		fmt.Printf("  Tracked     %s (avg %s per task)\n", formatDuration(d.TotalSeconds), formatDuration(d.AverageTaskSeconds))
		fmt.Printf("  Today       %s\n", formatDuration(d.TodaySeconds))
		if d.Running != nil {
			fmt.Printf("  Running     %q %s\n", d.Running.Task.Title, formatDuration(d.Running.LiveSeconds))
		}

		if len(d.TimeByProject) > 0 {
			fmt.Println("\n  By project")
			for _, p := range d.TimeByProject {
				fmt.Printf("    %-20s %s\n", truncate(p.Name, 20), formatDuration(p.Seconds))
			}
		}

		fmt.Println("\n  Last days")
		days := append([]report.DayTotal(nil), d.LastDays...)
		sort.Slice(days, func(i, j int) bool { return days[i].Date < days[j].Date })
		for _, day := range days {
			fmt.Printf("    %s  %s\n", day.Date, formatDuration(day.Seconds))
		}
		fmt.Println()
		return nil
	})
}

func runRemind(cmd *cobra.Command, args []string) error {
	return withTracker(func(ctx context.Context, tr Tracker) error {
		reminders, err := tr.Reminders(ctx)
		if err != nil {
			return fmt.Errorf("failed to load reminders: %w", err)
		}
		if len(reminders) == 0 {
			fmt.Println("🎉 Nothing due and nothing stale")
			return nil
		}
		for _, r := range reminders {
			icon := "⏰"
			if r.Kind == reminder.KindStale {
				icon = "💤"
			}
			fmt.Printf("%s %s  %s\n", icon, shortID(r.TaskID), r.Message)
		}
		return nil
	})
}
