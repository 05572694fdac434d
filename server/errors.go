package server

import (
	"errors"
	"net/http"

	"github.com/existflow/ironclock/internal/engine"
	"github.com/existflow/ironclock/internal/logger"
	"github.com/existflow/ironclock/internal/model"
	"github.com/existflow/ironclock/internal/report"
	"github.com/labstack/echo/v4"
)

// respondError maps engine errors onto HTTP responses. Tasks of other users
// look the same as missing ones.
func (s *Server) respondError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, engine.ErrNotFound), errors.Is(err, engine.ErrForbidden):
		return c.JSON(http.StatusNotFound, map[string]string{"error": "task not found"})
	case errors.Is(err, engine.ErrNotRunning):
		return c.JSON(http.StatusConflict, map[string]string{"error": err.Error()})
	case errors.Is(err, model.ErrInvalidStatus),
		errors.Is(err, model.ErrInvalidPriority),
		errors.Is(err, engine.ErrTitleRequired),
		errors.Is(err, engine.ErrProjectNotFound),
		errors.Is(err, engine.ErrInvalidRange),
		errors.Is(err, report.ErrInvalidGroupBy):
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	return s.internalError(c, err)
}

// internalError logs err and hides it from the client
func (s *Server) internalError(c echo.Context, err error) error {
	logger.Error("request failed",
		logger.F("method", c.Request().Method),
		logger.F("uri", c.Request().RequestURI),
		logger.F("user_id", userID(c)),
		logger.F("error", err.Error()))
	return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
}
