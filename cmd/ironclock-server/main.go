package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/existflow/ironclock/internal/config"
	"github.com/existflow/ironclock/internal/logger"
	"github.com/existflow/ironclock/internal/reminder"
	"github.com/existflow/ironclock/internal/store"
	"github.com/existflow/ironclock/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// PORT and DATABASE_URL win, as on most hosting platforms
	if port := os.Getenv("PORT"); port != "" {
		cfg.Port = port
	}
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		cfg.DatabaseURL = dbURL
	}

	if err := logger.Init(logger.Config{
		Level:      logger.ParseLevel(cfg.LogLevel),
		FilePath:   cfg.LogFile,
		MaxSize:    10 * 1024 * 1024, // 10MB
		MaxAge:     7,
		MaxBackups: 5,
		Console:    true,
	}); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() {
		_ = logger.Close()
	}()

	loc, err := cfg.Location()
	if err != nil {
		log.Fatalf("Invalid timezone: %v", err)
	}

	dsn := cfg.DatabaseURL
	if dsn == "" {
		dsn = cfg.DBPath
	}
	db, err := store.Open(dsn)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}

	srv := server.New(db, server.Options{
		Location: loc,
		Reminders: reminder.Options{
			DueWindow:  cfg.ReminderDueWindow,
			StaleAfter: cfg.ReminderStaleAfter,
		},
	})
	defer func() {
		if err := srv.Close(); err != nil {
			log.Printf("Error closing server: %v", err)
		}
	}()

	go func() {
		logger.Info("IronClock server starting",
			logger.F("port", cfg.Port),
			logger.F("dialect", db.Dialect()),
			logger.F("timezone", loc.String()))
		if err := srv.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("IronClock server shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Shutdown failed", logger.F("error", err))
	}
}
