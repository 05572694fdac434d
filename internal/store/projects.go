package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/existflow/ironclock/internal/model"
)

// CreateProject inserts a project
func (q *Queries) CreateProject(ctx context.Context, p model.Project) error {
	if p.Color == "" {
		p.Color = model.DefaultProjectColor
	}
	_, err := q.exec(ctx, `
		INSERT INTO projects (id, user_id, name, color, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		p.ID, p.UserID, p.Name, p.Color, q.ts(p.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to create project: %w", err)
	}
	return nil
}

// ListProjects returns a user's projects by name
func (q *Queries) ListProjects(ctx context.Context, userID string) ([]model.Project, error) {
	rows, err := q.query(ctx, `
		SELECT id, user_id, name, color, created_at FROM projects
		WHERE user_id = ? ORDER BY name, id`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	projects := []model.Project{}
	for rows.Next() {
		var (
			p       model.Project
			created timeScanner
		)
		if err := rows.Scan(&p.ID, &p.UserID, &p.Name, &p.Color, &created); err != nil {
			return nil, err
		}
		p.CreatedAt = created.Time
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

// GetProject finds a project by id
func (q *Queries) GetProject(ctx context.Context, id string) (model.Project, error) {
	var (
		p       model.Project
		created timeScanner
	)
	err := q.queryRow(ctx, `
		SELECT id, user_id, name, color, created_at FROM projects
		WHERE id = ?`, id).Scan(&p.ID, &p.UserID, &p.Name, &p.Color, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Project{}, ErrNotFound
	}
	if err != nil {
		return model.Project{}, fmt.Errorf("failed to get project: %w", err)
	}
	p.CreatedAt = created.Time
	return p, nil
}
