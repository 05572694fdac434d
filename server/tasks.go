package server

import (
	"net/http"
	"strings"

	"github.com/existflow/ironclock/internal/engine"
	"github.com/existflow/ironclock/internal/model"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type createTaskRequest struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	ProjectID   *string `json:"project_id"`
	Priority    string  `json:"priority"`
	DueDate     string  `json:"due_date"`
}

type moveRequest struct {
	Status   string `json:"status"`
	Position int    `json:"position"`
}

type createProjectRequest struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

// handleListTasks returns the board
func (s *Server) handleListTasks(c echo.Context) error {
	tasks, err := s.engine.Board(c.Request().Context(), userID(c))
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"tasks": tasks})
}

// handleCreateTask adds a task to the todo column
func (s *Server) handleCreateTask(c echo.Context) error {
	var req createTaskRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}

	in := engine.NewTask{
		Title:       req.Title,
		Description: req.Description,
		ProjectID:   req.ProjectID,
		Priority:    req.Priority,
	}
	if req.DueDate != "" {
		due, _, err := parseTime(req.DueDate, s.engine.Location())
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		}
		in.DueDate = &due
	}

	task, err := s.engine.CreateTask(c.Request().Context(), userID(c), in)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(http.StatusCreated, task)
}

// handleDeleteTask stops a running timer and deletes the task
func (s *Server) handleDeleteTask(c echo.Context) error {
	stopped, err := s.engine.DeleteTask(c.Request().Context(), userID(c), c.Param("id"))
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"deleted": c.Param("id"), "stopped": stopped})
}

// handleStartTimer starts a task's timer
func (s *Server) handleStartTimer(c echo.Context) error {
	res, err := s.engine.StartTimer(c.Request().Context(), userID(c), c.Param("id"))
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

// handleStopTimer stops a task's timer
func (s *Server) handleStopTimer(c echo.Context) error {
	res, err := s.engine.StopTimer(c.Request().Context(), userID(c), c.Param("id"))
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

// handleMoveTask changes a task's column and position
func (s *Server) handleMoveTask(c echo.Context) error {
	var req moveRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}

	status, err := model.ParseStatus(req.Status)
	if err != nil {
		return s.respondError(c, err)
	}

	res, err := s.engine.MoveTask(c.Request().Context(), userID(c), c.Param("id"), status, req.Position)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

// handleListProjects returns the user's projects
func (s *Server) handleListProjects(c echo.Context) error {
	projects, err := s.db.ListProjects(c.Request().Context(), userID(c))
	if err != nil {
		return s.internalError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"projects": projects})
}

// handleCreateProject adds a project
func (s *Server) handleCreateProject(c echo.Context) error {
	var req createProjectRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "name is required"})
	}

	project := model.Project{
		ID:        uuid.NewString(),
		UserID:    userID(c),
		Name:      name,
		Color:     req.Color,
		CreatedAt: s.engine.Now(),
	}
	if project.Color == "" {
		project.Color = model.DefaultProjectColor
	}
	if err := s.db.CreateProject(c.Request().Context(), project); err != nil {
		return s.internalError(c, err)
	}
	return c.JSON(http.StatusCreated, project)
}
