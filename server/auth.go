package server

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/existflow/ironclock/internal/logger"
	"github.com/existflow/ironclock/internal/model"
	"github.com/existflow/ironclock/internal/store"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"
)

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// AuthResponse is returned by register and login
type AuthResponse struct {
	Token     string `json:"token"`
	ExpiresAt string `json:"expires_at"`
	UserID    string `json:"user_id"`
}

// handleRegister handles user registration
func (s *Server) handleRegister(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}

	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)
	if req.Username == "" || req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "username, email, and password required"})
	}

	if len(req.Password) < 8 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "password must be at least 8 characters"})
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return s.internalError(c, err)
	}

	user := model.User{
		ID:           uuid.NewString(),
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: string(hash),
		CreatedAt:    s.engine.Now(),
	}
	ctx := c.Request().Context()
	if err := s.db.CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrConflict) {
			return c.JSON(http.StatusConflict, map[string]string{"error": "username or email already exists"})
		}
		return s.internalError(c, err)
	}

	resp, err := s.createSession(c, user.ID)
	if err != nil {
		return s.internalError(c, err)
	}

	logger.Info("user registered", logger.F("username", user.Username), logger.F("user_id", user.ID))
	return c.JSON(http.StatusOK, resp)
}

// handleLogin handles user login
func (s *Server) handleLogin(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}

	user, err := s.db.GetUserByUsername(c.Request().Context(), strings.TrimSpace(req.Username))
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			return s.internalError(c, err)
		}
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid credentials"})
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid credentials"})
	}

	resp, err := s.createSession(c, user.ID)
	if err != nil {
		return s.internalError(c, err)
	}

	logger.Info("user logged in", logger.F("username", user.Username), logger.F("user_id", user.ID))
	return c.JSON(http.StatusOK, resp)
}

// handleLogout ends the current session
func (s *Server) handleLogout(c echo.Context) error {
	token, _ := c.Get("token").(string)
	if err := s.db.DeleteSession(c.Request().Context(), token); err != nil {
		return s.internalError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "logged out"})
}

// handleMe returns current user info
func (s *Server) handleMe(c echo.Context) error {
	user, err := s.db.GetUser(c.Request().Context(), userID(c))
	if errors.Is(err, store.ErrNotFound) {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "user not found"})
	}
	if err != nil {
		return s.internalError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]string{
		"id":       user.ID,
		"username": user.Username,
		"email":    user.Email,
	})
}

// createSession creates a new session for a user
func (s *Server) createSession(c echo.Context, userID string) (AuthResponse, error) {
	tokenBytes := make([]byte, 32)
	if _, err := rand.Read(tokenBytes); err != nil {
		return AuthResponse{}, err
	}

	now := s.engine.Now()
	session := model.Session{
		Token:     hex.EncodeToString(tokenBytes),
		UserID:    userID,
		ExpiresAt: now.Add(sessionTTL),
		CreatedAt: now,
	}
	ctx := c.Request().Context()
	if err := s.db.CreateSession(ctx, session); err != nil {
		return AuthResponse{}, err
	}
	if _, err := s.db.DeleteExpiredSessions(ctx, now); err != nil {
		logger.Warn("failed to prune sessions", logger.F("error", err.Error()))
	}

	return AuthResponse{
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt.Format(time.RFC3339),
		UserID:    userID,
	}, nil
}
