package cli

import (
	"context"
	"fmt"

	"github.com/existflow/ironclock/internal/engine"
	"github.com/spf13/cobra"
)

var startCmd = &cobra.Command{
	Use:   "start [task-id]",
	Short: "Start the timer of a task",
	Long: `Start tracking time on a task. A timer already running on another task
is stopped first and its time is recorded.

Examples:
  clock start 3f9a`,
	Args: cobra.ExactArgs(1),
	RunE: runStart,
}

var stopCmd = &cobra.Command{
	Use:   "stop [task-id]",
	Short: "Stop a running timer",
	Long: `Stop the timer of a task and record the elapsed time. Without an id the
running timer is stopped.

Examples:
  clock stop
  clock stop 3f9a`,
	Args: cobra.MaximumNArgs(1),
	RunE: runStop,
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the running timer and today's total",
	RunE:  runStatus,
}

func runStart(cmd *cobra.Command, args []string) error {
	return withTracker(func(ctx context.Context, tr Tracker) error {
		task, err := findTask(ctx, tr, args[0])
		if err != nil {
			return err
		}

		res, err := tr.StartTimer(ctx, task.ID)
		if err != nil {
			return fmt.Errorf("failed to start timer: %w", err)
		}

		for _, s := range res.Stopped {
			printStopped(s)
		}
		fmt.Printf("▶ Started: %q (%s so far)\n", res.Task.Title, formatDuration(res.Task.TimeSpent))
		return nil
	})
}

func runStop(cmd *cobra.Command, args []string) error {
	return withTracker(func(ctx context.Context, tr Tracker) error {
		var taskID string
		if len(args) == 1 {
			task, err := findTask(ctx, tr, args[0])
			if err != nil {
				return err
			}
			taskID = task.ID
		} else {
			running, err := tr.RunningTask(ctx)
			if err != nil {
				return err
			}
			if running == nil {
				fmt.Println("⏸  No timer is running")
				return nil
			}
			taskID = running.ID
		}

		res, err := tr.StopTimer(ctx, taskID)
		if err != nil {
			return fmt.Errorf("failed to stop timer: %w", err)
		}
		printStopped(res)
		return nil
	})
}

func printStopped(s engine.StopResult) {
	fmt.Printf("■ Stopped: %q +%s (total %s)\n",
		s.Task.Title, formatDuration(s.Entry.DurationSeconds), formatDuration(s.Task.TimeSpent))
	if s.ClockRegression {
		fmt.Println("⚠️  The system clock went backwards; the interval was recorded as 0s")
	}
}

func runStatus(cmd *cobra.Command, args []string) error {
	return withTracker(func(ctx context.Context, tr Tracker) error {
		running, err := tr.RunningTask(ctx)
		if err != nil {
			return err
		}
		today, err := tr.TotalSecondsToday(ctx)
		if err != nil {
			return err
		}

		now := tr.Now()
		if running == nil {
			fmt.Println("⏸  No timer is running")
		} else {
			fmt.Printf("▶ %s  %q  %s\n", shortID(running.ID), running.Title, formatDuration(running.LiveSeconds(now)))
		}
		fmt.Printf("📅 Tracked today: %s\n", formatDuration(today))
		return nil
	})
}
