package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/existflow/ironclock/internal/config"
	"github.com/spf13/cobra"
)

var contextCmd = &cobra.Command{
	Use:   "context",
	Short: "Manage project context",
	Long: `Set or view the current project context.

When a context is set, new tasks are added to that project by default.

Examples:
  clock context              # Show current context
  clock context set work     # Set context to the 'work' project
  clock context clear        # Clear context`,
	RunE: runContextShow,
}

var contextSetCmd = &cobra.Command{
	Use:   "set [project]",
	Short: "Set the current project context",
	Args:  cobra.ExactArgs(1),
	RunE:  runContextSet,
}

var contextClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear the current context",
	RunE:  runContextClear,
}

func init() {
	contextCmd.AddCommand(contextSetCmd)
	contextCmd.AddCommand(contextClearCmd)
}

func contextFilePath() (string, error) {
	dir, err := config.Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "context"), nil
}

// GetCurrentContext returns the current project id (empty means none)
func GetCurrentContext() string {
	path, err := contextFilePath()
	if err != nil {
		return ""
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

// SetContext saves the current context
func SetContext(projectID string) error {
	path, err := contextFilePath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(projectID), 0644)
}

// ClearContext removes the context file
func ClearContext() error {
	path, err := contextFilePath()
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func runContextShow(cmd *cobra.Command, args []string) error {
	current := GetCurrentContext()
	if current == "" {
		fmt.Println("📥 Current context: none")
		return nil
	}

	return withTracker(func(ctx context.Context, tr Tracker) error {
		project, err := findProject(ctx, tr, current)
		if err != nil {
			fmt.Printf("⚠️  Context set to '%s' but project not found\n", current)
			return nil
		}

		tasks, err := tr.Board(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("📁 Current context: %s (%d tasks)\n", project.Name, len(filterByProject(tasks, project.ID)))
		return nil
	})
}

func runContextSet(cmd *cobra.Command, args []string) error {
	return withTracker(func(ctx context.Context, tr Tracker) error {
		project, err := findProject(ctx, tr, args[0])
		if err != nil {
			return err
		}
		if err := SetContext(project.ID); err != nil {
			return fmt.Errorf("failed to set context: %w", err)
		}
		fmt.Printf("📁 Switched to: %s\n", project.Name)
		return nil
	})
}

func runContextClear(cmd *cobra.Command, args []string) error {
	if err := ClearContext(); err != nil {
		return fmt.Errorf("failed to clear context: %w", err)
	}
	fmt.Println("📥 Context cleared")
	return nil
}
