package cli

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or change settings",
	Long: `Show the active settings or change one of them.

Examples:
  clock config
  clock config set timezone Europe/Berlin
  clock config set confirm_delete true
  clock config set reminder_due_window 48h`,
	RunE: runConfigShow,
}

var configSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Change a setting",
	Args:  cobra.ExactArgs(2),
	RunE:  runConfigSet,
}

func init() {
	configCmd.AddCommand(configSetCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	fmt.Printf("# %s\n%s", cfg.Path(), data)
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key, value := args[0], args[1]

	switch key {
	case "db_path":
		cfg.DBPath = value
	case "database_url":
		cfg.DatabaseURL = value
	case "port":
		cfg.Port = value
	case "timezone":
		prev := cfg.Timezone
		cfg.Timezone = value
		if _, err := cfg.Location(); err != nil {
			cfg.Timezone = prev
			return err
		}
	case "reminder_due_window", "reminder_stale_after":
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", value, err)
		}
		if key == "reminder_due_window" {
			cfg.ReminderDueWindow = d
		} else {
			cfg.ReminderStaleAfter = d
		}
	case "confirm_delete", "log_console":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean %q", value)
		}
		if key == "confirm_delete" {
			cfg.ConfirmDelete = b
		} else {
			cfg.LogConsole = b
		}
	case "log_level":
		cfg.LogLevel = value
	case "log_file":
		cfg.LogFile = value
	default:
		return fmt.Errorf("unknown setting: %s", key)
	}

	if err := cfg.Save(); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	fmt.Printf("✓ %s = %s\n", key, value)
	return nil
}
