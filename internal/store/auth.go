package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/existflow/ironclock/internal/model"
)

// ErrConflict is returned when a unique value already exists
var ErrConflict = errors.New("already exists")

// CreateUser inserts a user account
func (q *Queries) CreateUser(ctx context.Context, u model.User) error {
	_, err := q.exec(ctx, `
		INSERT INTO users (id, username, email, password_hash, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		u.ID, u.Username, u.Email, u.PasswordHash, q.ts(u.CreatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrConflict
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetUserByUsername finds a user by login name
func (q *Queries) GetUserByUsername(ctx context.Context, username string) (model.User, error) {
	return q.getUser(ctx, `SELECT id, username, email, password_hash, created_at FROM users WHERE username = ?`, username)
}

// GetUser finds a user by id
func (q *Queries) GetUser(ctx context.Context, id string) (model.User, error) {
	return q.getUser(ctx, `SELECT id, username, email, password_hash, created_at FROM users WHERE id = ?`, id)
}

func (q *Queries) getUser(ctx context.Context, query string, arg string) (model.User, error) {
	var (
		u       model.User
		created timeScanner
	)
	err := q.queryRow(ctx, query, arg).Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, ErrNotFound
	}
	if err != nil {
		return model.User{}, fmt.Errorf("failed to get user: %w", err)
	}
	u.CreatedAt = created.Time
	return u, nil
}

// CreateSession stores a session token
func (q *Queries) CreateSession(ctx context.Context, s model.Session) error {
	_, err := q.exec(ctx, `
		INSERT INTO sessions (token, user_id, expires_at, created_at)
		VALUES (?, ?, ?, ?)`,
		s.Token, s.UserID, q.ts(s.ExpiresAt), q.ts(s.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

// GetSession looks up a session by token
func (q *Queries) GetSession(ctx context.Context, token string) (model.Session, error) {
	var (
		s                  model.Session
		expires, createdAt timeScanner
	)
	err := q.queryRow(ctx, `SELECT token, user_id, expires_at, created_at FROM sessions WHERE token = ?`, token).
		Scan(&s.Token, &s.UserID, &expires, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Session{}, ErrNotFound
	}
	if err != nil {
		return model.Session{}, fmt.Errorf("failed to get session: %w", err)
	}
	s.ExpiresAt = expires.Time
	s.CreatedAt = createdAt.Time
	return s, nil
}

// DeleteSession removes a session token
func (q *Queries) DeleteSession(ctx context.Context, token string) error {
	if _, err := q.exec(ctx, `DELETE FROM sessions WHERE token = ?`, token); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// DeleteExpiredSessions removes sessions that expired before now
func (q *Queries) DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	res, err := q.exec(ctx, `DELETE FROM sessions WHERE expires_at < ?`, q.ts(now))
	if err != nil {
		return 0, fmt.Errorf("failed to delete sessions: %w", err)
	}
	return res.RowsAffected()
}

func isUniqueViolation(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique")
}
