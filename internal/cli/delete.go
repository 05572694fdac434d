package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:     "delete [task-id]",
	Aliases: []string{"rm"},
	Short:   "Delete a task",
	Long: `Delete a task by its ID. A running timer is stopped and recorded first;
time entries of the task stay in the ledger.

Examples:
  clock delete 3f9a
  clock rm 3f9a --yes`,
	Args: cobra.ExactArgs(1),
	RunE: runDelete,
}

var deleteYes bool

func init() {
	deleteCmd.Flags().BoolVarP(&deleteYes, "yes", "y", false, "Do not ask for confirmation")
}

func runDelete(cmd *cobra.Command, args []string) error {
	return withTracker(func(ctx context.Context, tr Tracker) error {
		task, err := findTask(ctx, tr, args[0])
		if err != nil {
			return err
		}

		if cfg.ConfirmDelete && !deleteYes {
			fmt.Printf("About to delete: %q (ID: %s)\n", task.Title, task.ID)
			fmt.Print("Are you sure? [y/N]: ")
			var confirm string
			_, _ = fmt.Scanln(&confirm)
			if confirm != "y" && confirm != "Y" {
				fmt.Println("Cancelled.")
				return nil
			}
		}

		stopped, err := tr.DeleteTask(ctx, task.ID)
		if err != nil {
			return fmt.Errorf("failed to delete task: %w", err)
		}
		if stopped != nil {
			printStopped(*stopped)
		}

		fmt.Printf("🗑️  Deleted: %q\n", task.Title)
		return nil
	})
}
