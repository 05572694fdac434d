package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config holds user and server settings
type Config struct {
	// Storage
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"` // postgres URL; empty uses DBPath
	DBPath      string `yaml:"db_path" mapstructure:"db_path"`           // local SQLite file

	// Server
	Port string `yaml:"port" mapstructure:"port"`

	// Tracking
	Timezone string `yaml:"timezone" mapstructure:"timezone"` // IANA name used for entry dates and "today"

	// Reminders
	ReminderDueWindow  time.Duration `yaml:"reminder_due_window" mapstructure:"reminder_due_window"`
	ReminderStaleAfter time.Duration `yaml:"reminder_stale_after" mapstructure:"reminder_stale_after"`

	// CLI
	ConfirmDelete bool `yaml:"confirm_delete" mapstructure:"confirm_delete"` // ask before deleting tasks

	// Logging configuration
	LogLevel   string `yaml:"log_level" mapstructure:"log_level"`     // DEBUG, INFO, WARN, ERROR
	LogFile    string `yaml:"log_file" mapstructure:"log_file"`       // Path to log file
	LogConsole bool   `yaml:"log_console" mapstructure:"log_console"` // Enable console logging

	path string
}

// Dir returns the application directory (~/.ironclock)
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".ironclock"), nil
}

// DefaultConfig returns default settings rooted at dir
func DefaultConfig(dir string) *Config {
	return &Config{
		DBPath:             filepath.Join(dir, "clock.db"),
		Port:               "8080",
		Timezone:           "Local",
		ReminderDueWindow:  24 * time.Hour,
		ReminderStaleAfter: 72 * time.Hour,
		LogLevel:           "INFO",
		LogFile:            filepath.Join(dir, "logs", "ironclock.log"),
		path:               filepath.Join(dir, "config.yaml"),
	}
}

// Load loads config from ~/.ironclock/config.yaml
func Load() (*Config, error) {
	dir, err := Dir()
	if err != nil {
		return nil, err
	}
	return LoadFrom(dir)
}

// LoadFrom reads dir/config.yaml, falling back to defaults for missing keys
// and letting IRONCLOCK_* environment variables override both.
func LoadFrom(dir string) (*Config, error) {
	cfg := DefaultConfig(dir)

	v := viper.New()
	v.SetConfigFile(cfg.path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("IRONCLOCK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("database_url", cfg.DatabaseURL)
	v.SetDefault("db_path", cfg.DBPath)
	v.SetDefault("port", cfg.Port)
	v.SetDefault("timezone", cfg.Timezone)
	v.SetDefault("reminder_due_window", cfg.ReminderDueWindow)
	v.SetDefault("reminder_stale_after", cfg.ReminderStaleAfter)
	v.SetDefault("confirm_delete", cfg.ConfirmDelete)
	v.SetDefault("log_level", cfg.LogLevel)
	v.SetDefault("log_file", cfg.LogFile)
	v.SetDefault("log_console", cfg.LogConsole)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if _, err := cfg.Location(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Location resolves the configured timezone
func (c *Config) Location() (*time.Location, error) {
	switch c.Timezone {
	case "", "Local":
		return time.Local, nil
	case "UTC":
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// Path returns the file the config is saved to
func (c *Config) Path() string {
	return c.path
}

// Save writes the config back to its file
func (c *Config) Save() error {
	if c.path == "" {
		dir, err := Dir()
		if err != nil {
			return err
		}
		c.path = filepath.Join(dir, "config.yaml")
	}

	if err := os.MkdirAll(filepath.Dir(c.path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(c.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}
