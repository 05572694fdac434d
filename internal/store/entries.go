package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/existflow/ironclock/internal/model"
)

const entryColumns = `id, user_id, task_id, project_id, description, started_at, ended_at,
	duration_seconds, date, created_at`

// EntryFilter selects ledger entries for a user. From is inclusive and To is
// exclusive; both apply to StartedAt.
type EntryFilter struct {
	UserID string
	TaskID string
	From   *time.Time
	To     *time.Time
	Limit  int
}

// ProjectTotal is the tracked time of one project
type ProjectTotal struct {
	ProjectID *string `json:"project_id"`
	Name      string  `json:"name"`
	Color     string  `json:"color"`
	Seconds   int64   `json:"seconds"`
}

func scanEntry(row rowScanner) (model.TimeEntry, error) {
	var (
		e                         model.TimeEntry
		taskID, projectID         sql.NullString
		started, ended, createdAt timeScanner
	)
	err := row.Scan(&e.ID, &e.UserID, &taskID, &projectID, &e.Description, &started, &ended,
		&e.DurationSeconds, &e.Date, &createdAt)
	if err != nil {
		return model.TimeEntry{}, err
	}
	e.TaskID = stringPtr(taskID)
	e.ProjectID = stringPtr(projectID)
	e.StartedAt = started.Time
	e.EndedAt = ended.Time
	e.CreatedAt = createdAt.Time
	return e, nil
}

// InsertEntry appends to the ledger. Entries are never updated.
func (q *Queries) InsertEntry(ctx context.Context, e model.TimeEntry) error {
	_, err := q.exec(ctx, `
		INSERT INTO time_entries (`+entryColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.UserID, nullString(e.TaskID), nullString(e.ProjectID), e.Description,
		q.ts(e.StartedAt), q.ts(e.EndedAt), e.DurationSeconds, e.Date, q.ts(e.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert time entry: %w", err)
	}
	return nil
}

// ListEntries returns entries newest first
func (q *Queries) ListEntries(ctx context.Context, f EntryFilter) ([]model.TimeEntry, error) {
	var (
		where = []string{"user_id = ?"}
		args  = []any{f.UserID}
	)
	if f.TaskID != "" {
		where = append(where, "task_id = ?")
		args = append(args, f.TaskID)
	}
	if f.From != nil {
		where = append(where, "started_at >= ?")
		args = append(args, q.ts(*f.From))
	}
	if f.To != nil {
		where = append(where, "started_at < ?")
		args = append(args, q.ts(*f.To))
	}

	query := `SELECT ` + entryColumns + ` FROM time_entries WHERE ` + strings.Join(where, " AND ") +
		` ORDER BY started_at DESC, id DESC`
	if f.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", f.Limit)
	}

	rows, err := q.query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list time entries: %w", err)
	}
	defer rows.Close()

	entries := []model.TimeEntry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan time entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// SumForDate totals the user's entries attributed to date (YYYY-MM-DD)
func (q *Queries) SumForDate(ctx context.Context, userID, date string) (int64, error) {
	var total int64
	err := q.queryRow(ctx, `
		SELECT COALESCE(SUM(duration_seconds), 0) FROM time_entries
		WHERE user_id = ? AND date = ?`, userID, date).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to sum time entries: %w", err)
	}
	return total, nil
}

// SumForTask totals the ledger for one task
func (q *Queries) SumForTask(ctx context.Context, taskID string) (int64, error) {
	var total int64
	err := q.queryRow(ctx, `
		SELECT COALESCE(SUM(duration_seconds), 0) FROM time_entries WHERE task_id = ?`, taskID).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to sum time entries: %w", err)
	}
	return total, nil
}

// DailyTotals returns seconds per date for dates in [fromDate, toDate]
func (q *Queries) DailyTotals(ctx context.Context, userID, fromDate, toDate string) (map[string]int64, error) {
	rows, err := q.query(ctx, `
		SELECT date, COALESCE(SUM(duration_seconds), 0) FROM time_entries
		WHERE user_id = ? AND date >= ? AND date <= ?
		GROUP BY date`, userID, fromDate, toDate)
	if err != nil {
		return nil, fmt.Errorf("failed to total time entries: %w", err)
	}
	defer rows.Close()

	totals := make(map[string]int64)
	for rows.Next() {
		var (
			date    string
			seconds int64
		)
		if err := rows.Scan(&date, &seconds); err != nil {
			return nil, err
		}
		totals[date] = seconds
	}
	return totals, rows.Err()
}

// ProjectTotals returns ledger time per project, largest first. Entries
// without a project are grouped under a nil ProjectID.
func (q *Queries) ProjectTotals(ctx context.Context, userID string) ([]ProjectTotal, error) {
	rows, err := q.query(ctx, `
		SELECT e.project_id, COALESCE(p.name, ''), COALESCE(p.color, ''), SUM(e.duration_seconds) AS seconds
		FROM time_entries e
		LEFT JOIN projects p ON p.id = e.project_id
		WHERE e.user_id = ?
		GROUP BY e.project_id, p.name, p.color
		ORDER BY seconds DESC, e.project_id`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to total projects: %w", err)
	}
	defer rows.Close()

	totals := []ProjectTotal{}
	for rows.Next() {
		var (
			pt        ProjectTotal
			projectID sql.NullString
		)
		if err := rows.Scan(&projectID, &pt.Name, &pt.Color, &pt.Seconds); err != nil {
			return nil, err
		}
		pt.ProjectID = stringPtr(projectID)
		totals = append(totals, pt)
	}
	return totals, rows.Err()
}
