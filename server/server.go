// Package server exposes the time-tracking engine over a REST API
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/existflow/ironclock/internal/engine"
	"github.com/existflow/ironclock/internal/reminder"
	"github.com/existflow/ironclock/internal/report"
	"github.com/existflow/ironclock/internal/store"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// sessionTTL is how long a login stays valid
const sessionTTL = 30 * 24 * time.Hour

// Options configure a Server
type Options struct {
	Clock     engine.Clock
	Location  *time.Location
	Reminders reminder.Options
}

// Server is the REST server
type Server struct {
	db        *store.DB
	engine    *engine.Engine
	reports   *report.Service
	reminders reminder.Options
	echo      *echo.Echo
}

// New creates a server over an open database
func New(db *store.DB, opts Options) *Server {
	eng := engine.New(db, engine.Options{Clock: opts.Clock, Location: opts.Location})

	s := &Server{
		db:        db,
		engine:    eng,
		reports:   report.New(db, eng),
		reminders: opts.Reminders,
	}
	s.setupEcho()
	return s
}

func (s *Server) setupEcho() {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(requestLogger)
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.CORS())

	// Health check
	e.GET("/health", s.handleHealth)

	// API v1
	api := e.Group("/api/v1")

	// Auth endpoints (public)
	api.POST("/register", s.handleRegister)
	api.POST("/login", s.handleLogin)

	// Protected endpoints
	protected := api.Group("")
	protected.Use(s.authMiddleware)
	protected.GET("/me", s.handleMe)
	protected.POST("/logout", s.handleLogout)

	protected.GET("/tasks", s.handleListTasks)
	protected.POST("/tasks", s.handleCreateTask)
	protected.DELETE("/tasks/:id", s.handleDeleteTask)
	protected.POST("/tasks/:id/start", s.handleStartTimer)
	protected.POST("/tasks/:id/stop", s.handleStopTimer)
	protected.PUT("/tasks/:id/move", s.handleMoveTask)

	protected.GET("/projects", s.handleListProjects)
	protected.POST("/projects", s.handleCreateProject)

	protected.GET("/timer", s.handleRunningTimer)
	protected.GET("/time/today", s.handleToday)
	protected.GET("/time/entries", s.handleEntries)

	protected.GET("/reports/dashboard", s.handleDashboard)
	protected.GET("/reports/summary", s.handleSummary)
	protected.GET("/reminders", s.handleReminders)

	s.echo = e
}

// Close closes the database connection
func (s *Server) Close() error {
	return s.db.Close()
}

// Router returns the HTTP handler
func (s *Server) Router() http.Handler {
	return s.echo
}

// Start starts the server
func (s *Server) Start(addr string) error {
	return s.echo.Start(addr)
}

// Shutdown stops accepting requests and waits for in-flight ones
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *Server) handleHealth(c echo.Context) error {
	if err := s.db.Ping(c.Request().Context()); err != nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
