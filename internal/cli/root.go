package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/existflow/ironclock/internal/config"
	"github.com/existflow/ironclock/internal/logger"
	"github.com/spf13/cobra"
)

var (
	logLevel   string
	logFile    string
	logConsole bool
	forceLocal bool

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "clock",
	Short: "IronClock - Kanban tasks with a time tracker",
	Long: `IronClock keeps your tasks on a three column board and tracks the time
you spend on them. One timer runs at a time; every stopped interval is
recorded in the time ledger.

Run 'clock' without arguments to open the board.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Load config from file (or defaults if not exists)
		var err error
		cfg, err = config.Load()
		if err != nil {
			dir, dirErr := config.Dir()
			if dirErr != nil {
				return dirErr
			}
			fmt.Fprintf(os.Stderr, "⚠️  %v, using defaults\n", err)
			cfg = config.DefaultConfig(dir)
		}

		// Override with CLI flags if provided
		configChanged := false
		if cmd.Flags().Changed("log-level") {
			cfg.LogLevel = logLevel
			configChanged = true
		}
		if cmd.Flags().Changed("log-file") {
			cfg.LogFile = logFile
			configChanged = true
		}
		if cmd.Flags().Changed("log-console") {
			cfg.LogConsole = logConsole
			configChanged = true
		}

		// Save config if changed via CLI flags
		if configChanged {
			if err := cfg.Save(); err != nil {
				fmt.Fprintf(os.Stderr, "⚠️  failed to save config: %v\n", err)
			}
		}

		logConfig := logger.Config{
			Level:      logger.ParseLevel(cfg.LogLevel),
			FilePath:   cfg.LogFile,
			MaxSize:    10 * 1024 * 1024, // 10MB
			MaxAge:     7,
			MaxBackups: 5,
			Console:    cfg.LogConsole,
		}

		if err := logger.Init(logConfig); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		logger.Debug("IronClock started", logger.F("command", cmd.Name()))
		return nil
	},

	RunE: runBoard,

	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Debug("IronClock exiting", logger.F("command", cmd.Name()))
		_ = logger.Close()
	},
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// withTracker opens the tracker for one command
func withTracker(fn func(ctx context.Context, tr Tracker) error) error {
	tr, err := openTracker(cfg, forceLocal)
	if err != nil {
		return err
	}
	defer func() {
		_ = tr.Close()
	}()
	return fn(context.Background(), tr)
}

func init() {
	// Add logging flags
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (DEBUG, INFO, WARN, ERROR)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Path to log file")
	rootCmd.PersistentFlags().BoolVar(&logConsole, "log-console", false, "Enable console logging")
	rootCmd.PersistentFlags().BoolVar(&forceLocal, "local", false, "Use the local database even when logged in to a server")

	// Add subcommands
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(stopCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(moveCmd)
	rootCmd.AddCommand(doneCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(todayCmd)
	rootCmd.AddCommand(logCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(remindCmd)
	rootCmd.AddCommand(projectCmd)
	rootCmd.AddCommand(contextCmd)
	rootCmd.AddCommand(remoteCmd)
	rootCmd.AddCommand(boardCmd)
	rootCmd.AddCommand(configCmd)
}
