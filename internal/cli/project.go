package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/existflow/ironclock/internal/model"
	"github.com/spf13/cobra"
)

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Manage projects",
	Long:  `Create and list projects. Reports break tracked time down by project.`,
}

var projectNewCmd = &cobra.Command{
	Use:   "new [name]",
	Short: "Create a new project",
	Long: `Create a new project for organizing tasks.

Examples:
  clock project new "Work"
  clock project new "Personal" --color "#FF6B6B"`,
	Args: cobra.ExactArgs(1),
	RunE: runProjectNew,
}

var projectListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List all projects",
	RunE:    runProjectList,
}

var projectColor string

func init() {
	projectNewCmd.Flags().StringVarP(&projectColor, "color", "c", model.DefaultProjectColor, "Project color (hex)")

	projectCmd.AddCommand(projectNewCmd)
	projectCmd.AddCommand(projectListCmd)
}

func runProjectNew(cmd *cobra.Command, args []string) error {
	name := strings.TrimSpace(args[0])
	if name == "" {
		return fmt.Errorf("project name is required")
	}

	return withTracker(func(ctx context.Context, tr Tracker) error {
		p, err := tr.CreateProject(ctx, name, projectColor)
		if err != nil {
			return fmt.Errorf("failed to create project: %w", err)
		}
		fmt.Printf("✓ Created project: %s (id: %s)\n", p.Name, shortID(p.ID))
		return nil
	})
}

func runProjectList(cmd *cobra.Command, args []string) error {
	return withTracker(func(ctx context.Context, tr Tracker) error {
		projects, err := tr.Projects(ctx)
		if err != nil {
			return fmt.Errorf("failed to list projects: %w", err)
		}
		if len(projects) == 0 {
			fmt.Println("No projects found. Create one with: clock project new \"Work\"")
			return nil
		}

		tasks, err := tr.Board(ctx)
		if err != nil {
			return err
		}

		current := GetCurrentContext()
		now := tr.Now()

		fmt.Println()
		fmt.Printf("  %-10s  %-20s  %-7s  %s\n", "ID", "Name", "Tasks", "Time")
		fmt.Println(strings.Repeat("─", 54))
		for _, p := range projects {
			marker := "  "
			if p.ID == current {
				marker = "❯ "
			}
			own := filterByProject(tasks, p.ID)
			var seconds int64
			for _, t := range own {
				seconds += t.LiveSeconds(now)
			}
			fmt.Printf("%s%-10s  %-20s  %-7d  %s\n", marker, shortID(p.ID), truncate(p.Name, 20), len(own), formatDuration(seconds))
		}
		fmt.Println()
		return nil
	})
}
