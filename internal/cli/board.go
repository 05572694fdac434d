package cli

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/existflow/ironclock/internal/tui"
	"github.com/spf13/cobra"
)

var boardCmd = &cobra.Command{
	Use:   "board",
	Short: "Open the interactive board",
	RunE:  runBoard,
}

func runBoard(cmd *cobra.Command, args []string) error {
	return withTracker(func(ctx context.Context, tr Tracker) error {
		p := tea.NewProgram(tui.New(ctx, tr), tea.WithAltScreen())
		if _, err := p.Run(); err != nil {
			return fmt.Errorf("error running board: %w", err)
		}
		return nil
	})
}
