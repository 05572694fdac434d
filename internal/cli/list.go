package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/existflow/ironclock/internal/model"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List tasks by column",
	Long: `List tasks grouped by board column with the time spent on each.
A running task shows its live time.

Examples:
  clock list
  clock list --project work
  clock list --status inProgress`,
	RunE: runList,
}

var (
	listProject string
	listStatus  string
)

func init() {
	listCmd.Flags().StringVarP(&listProject, "project", "P", "", "Filter by project name or id")
	listCmd.Flags().StringVarP(&listStatus, "status", "s", "", "Only show one column (todo, inProgress, done)")
}

func runList(cmd *cobra.Command, args []string) error {
	return withTracker(func(ctx context.Context, tr Tracker) error {
		var only model.Status
		if listStatus != "" {
			st, err := model.ParseStatus(listStatus)
			if err != nil {
				return err
			}
			only = st
		}

		tasks, err := tr.Board(ctx)
		if err != nil {
			return fmt.Errorf("failed to list tasks: %w", err)
		}

		if listProject != "" {
			project, err := findProject(ctx, tr, listProject)
			if err != nil {
				return err
			}
			tasks = filterByProject(tasks, project.ID)
		}

		if len(tasks) == 0 {
			fmt.Println("No tasks found. Add one with: clock add \"Your task\"")
			return nil
		}

		now := tr.Now()
		for _, st := range model.Statuses {
			if only != "" && st != only {
				continue
			}
			printColumn(st, columnTasks(tasks, st), now)
		}
		return nil
	})
}

func filterByProject(tasks []model.Task, projectID string) []model.Task {
	var out []model.Task
	for _, t := range tasks {
		if t.ProjectID != nil && *t.ProjectID == projectID {
			out = append(out, t)
		}
	}
	return out
}

// columnTasks keeps board order
func columnTasks(tasks []model.Task, status model.Status) []model.Task {
	var out []model.Task
	for _, t := range tasks {
		if t.Status == status {
			out = append(out, t)
		}
	}
	return out
}

func printColumn(status model.Status, tasks []model.Task, now time.Time) {
	fmt.Printf("\n📋 %s (%d)\n", status.Label(), len(tasks))
	fmt.Println(strings.Repeat("─", 72))

	for _, t := range tasks {
		printTask(t, now)
	}
	if len(tasks) == 0 {
		fmt.Println("  (empty)")
	}
	fmt.Println()
}

func printTask(t model.Task, now time.Time) {
	due := ""
	if t.DueDate != nil {
		due = t.DueDate.In(now.Location()).Format("Jan 2")
		if t.IsOverdue(now) {
			due = "!" + due
		}
	}

	fmt.Printf("  %s  %-8s  %-36s  %-7s  %10s  %s\n",
		statusIcon(t), shortID(t.ID), truncate(t.Title, 36), due,
		formatDuration(t.LiveSeconds(now)), priorityLabel(t.Priority))
}
