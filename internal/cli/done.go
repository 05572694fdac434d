package cli

import (
	"context"
	"fmt"

	"github.com/existflow/ironclock/internal/model"
	"github.com/spf13/cobra"
)

var moveCmd = &cobra.Command{
	Use:   "move [task-id] [status]",
	Short: "Move a task to another column",
	Long: `Move a task to todo, inProgress or done. Moving a running task to done
stops its timer.

Examples:
  clock move 3f9a inProgress
  clock move 3f9a todo --position 0`,
	Args: cobra.ExactArgs(2),
	RunE: runMove,
}

var doneCmd = &cobra.Command{
	Use:   "done [task-id]",
	Short: "Mark a task as done",
	Long: `Mark a task as completed. A running timer is stopped first.

Examples:
  clock done 3f9a
  clock done 3f9a --undo`,
	Args: cobra.ExactArgs(1),
	RunE: runDone,
}

var (
	movePosition int
	doneUndo     bool
)

func init() {
	moveCmd.Flags().IntVar(&movePosition, "position", -1, "Position in the column (default: end)")
	doneCmd.Flags().BoolVar(&doneUndo, "undo", false, "Move the task back to todo")
}

func runMove(cmd *cobra.Command, args []string) error {
	status, err := model.ParseStatus(args[1])
	if err != nil {
		return err
	}
	return moveTo(args[0], status, movePosition)
}

func runDone(cmd *cobra.Command, args []string) error {
	status := model.StatusDone
	if doneUndo {
		status = model.StatusTodo
	}
	return moveTo(args[0], status, -1)
}

// moveTo moves a task; a negative position appends to the column
func moveTo(ref string, status model.Status, position int) error {
	return withTracker(func(ctx context.Context, tr Tracker) error {
		tasks, err := tr.Board(ctx)
		if err != nil {
			return err
		}
		task, err := findTask(ctx, tr, ref)
		if err != nil {
			return err
		}
		if position < 0 {
			position = endPosition(tasks, status, task.ID)
		}

		res, err := tr.MoveTask(ctx, task.ID, status, position)
		if err != nil {
			return fmt.Errorf("failed to move task: %w", err)
		}

		if res.Stopped != nil {
			printStopped(*res.Stopped)
		}
		switch {
		case status == model.StatusDone:
			fmt.Printf("✓ Completed: %q (%s)\n", res.Task.Title, formatDuration(res.Task.TimeSpent))
		case res.From == model.StatusDone:
			fmt.Printf("○ Reopened: %q → %s\n", res.Task.Title, status.Label())
		default:
			fmt.Printf("→ Moved: %q %s → %s\n", res.Task.Title, res.From.Label(), status.Label())
		}
		return nil
	})
}

// endPosition is one past the highest position in a column, ignoring the
// task being moved
func endPosition(tasks []model.Task, status model.Status, skipID string) int {
	pos := 0
	for _, t := range tasks {
		if t.Status == status && t.ID != skipID && t.Position >= pos {
			pos = t.Position + 1
		}
	}
	return pos
}
