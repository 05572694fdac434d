package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/existflow/ironclock/internal/engine"
	"github.com/spf13/cobra"
)

var addCmd = &cobra.Command{
	Use:   "add [title]",
	Short: "Add a new task",
	Long: `Add a new task to the To do column.

Examples:
  clock add "Write release notes"
  clock add "Fix login bug" -p high
  clock add "Quarterly report" --project work --due 2026-05-01`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAdd,
}

var (
	addProject     string
	addPriority    string
	addDue         string
	addDescription string
)

func init() {
	addCmd.Flags().StringVarP(&addProject, "project", "P", "", "Project name or id")
	addCmd.Flags().StringVarP(&addPriority, "priority", "p", "medium", "Priority (low, medium, high)")
	addCmd.Flags().StringVarP(&addDue, "due", "d", "", "Due date (e.g., 'tomorrow', '2026-01-15')")
	addCmd.Flags().StringVar(&addDescription, "description", "", "Longer description")
}

func runAdd(cmd *cobra.Command, args []string) error {
	title := strings.Join(args, " ")

	return withTracker(func(ctx context.Context, tr Tracker) error {
		in := engine.NewTask{
			Title:       title,
			Description: addDescription,
			Priority:    addPriority,
		}

		// Use context if no project specified
		projectRef := addProject
		if !cmd.Flags().Changed("project") {
			projectRef = GetCurrentContext()
		}

		projectName := "no project"
		if projectRef != "" {
			project, err := findProject(ctx, tr, projectRef)
			if err != nil {
				return err
			}
			in.ProjectID = &project.ID
			projectName = project.Name
		}

		if addDue != "" {
			loc, err := cfg.Location()
			if err != nil {
				return err
			}
			day, err := parseDay(addDue, tr.Now(), loc)
			if err != nil {
				return err
			}
			// Due at the end of the day
			due := day.AddDate(0, 0, 1).Add(-time.Second)
			in.DueDate = &due
		}

		task, err := tr.CreateTask(ctx, in)
		if err != nil {
			return fmt.Errorf("failed to create task: %w", err)
		}

		fmt.Printf("✓ Added to [%s]: %q (%s) %s\n", projectName, task.Title, task.Priority, shortID(task.ID))
		return nil
	})
}
