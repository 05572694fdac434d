package server

import (
	"net/http"

	"github.com/existflow/ironclock/internal/model"
	"github.com/existflow/ironclock/internal/reminder"
	"github.com/existflow/ironclock/internal/report"
	"github.com/labstack/echo/v4"
)

// TimerResponse is the running timer, if any
type TimerResponse struct {
	Task        *model.Task `json:"task"`
	LiveSeconds int64       `json:"live_seconds"`
}

// handleRunningTimer returns the running task with its live elapsed time
func (s *Server) handleRunningTimer(c echo.Context) error {
	task, err := s.engine.RunningTask(c.Request().Context(), userID(c))
	if err != nil {
		return s.respondError(c, err)
	}

	resp := TimerResponse{Task: task}
	if task != nil {
		resp.LiveSeconds = task.LiveSeconds(s.engine.Now())
	}
	return c.JSON(http.StatusOK, resp)
}

// handleToday returns the time tracked today
func (s *Server) handleToday(c echo.Context) error {
	total, err := s.engine.TotalSecondsToday(c.Request().Context(), userID(c))
	if err != nil {
		return s.respondError(c, err)
	}
	date := model.EntryDate(s.engine.Now(), s.engine.Location())
	return c.JSON(http.StatusOK, map[string]interface{}{"date": date, "seconds": total})
}

// handleEntries returns the ledger entries of a range, newest first
func (s *Server) handleEntries(c echo.Context) error {
	start, end, err := s.rangeParams(c, 1)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	entries, err := s.engine.EntriesInRange(c.Request().Context(), userID(c), start, end)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"entries": entries})
}

// handleDashboard returns the dashboard statistics
func (s *Server) handleDashboard(c echo.Context) error {
	d, err := s.reports.Dashboard(c.Request().Context(), userID(c))
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(http.StatusOK, d)
}

// handleSummary returns a grouped report, by default of the last seven days
func (s *Server) handleSummary(c echo.Context) error {
	start, end, err := s.rangeParams(c, 7)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	groupBy, err := report.ParseGroupBy(c.QueryParam("group_by"))
	if err != nil {
		return s.respondError(c, err)
	}

	r, err := s.reports.Report(c.Request().Context(), userID(c), start, end, groupBy)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(http.StatusOK, r)
}

// handleReminders returns the user's current reminders
func (s *Server) handleReminders(c echo.Context) error {
	tasks, err := s.engine.Board(c.Request().Context(), userID(c))
	if err != nil {
		return s.respondError(c, err)
	}
	reminders := reminder.Compute(tasks, s.engine.Now(), s.reminders)
	return c.JSON(http.StatusOK, map[string]interface{}{"reminders": reminders})
}
