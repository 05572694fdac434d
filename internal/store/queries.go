package store

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// querier is satisfied by *sql.DB and *sql.Tx
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Queries runs statements against the database or an open transaction.
// Statements are written with ? placeholders.
type Queries struct {
	q       querier
	dialect Dialect
}

func (q *Queries) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return q.q.ExecContext(ctx, q.rebind(query), args...)
}

func (q *Queries) query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return q.q.QueryContext(ctx, q.rebind(query), args...)
}

func (q *Queries) queryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return q.q.QueryRowContext(ctx, q.rebind(query), args...)
}

// rebind rewrites ? placeholders as $1..$n for PostgreSQL
func (q *Queries) rebind(query string) string {
	if q.dialect != Postgres {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}

// forUpdate appends a row lock on backends that support it
func (q *Queries) forUpdate(query string) string {
	if q.dialect == Postgres {
		return query + " FOR UPDATE"
	}
	return query
}

// tsLayout is fixed width so stored SQLite timestamps compare correctly as text
const tsLayout = "2006-01-02T15:04:05.000000000Z07:00"

// ts converts a time into a query argument
func (q *Queries) ts(t time.Time) any {
	if q.dialect == Postgres {
		return t.UTC()
	}
	return t.UTC().Format(tsLayout)
}

// nullTS converts an optional time into a query argument
func (q *Queries) nullTS(t *time.Time) any {
	if t == nil {
		return nil
	}
	return q.ts(*t)
}

// timeScanner reads a timestamp stored natively or as text
type timeScanner struct {
	Time  time.Time
	Valid bool
}

func (s *timeScanner) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		s.Time, s.Valid = time.Time{}, false
		return nil
	case time.Time:
		s.Time, s.Valid = v.UTC(), true
		return nil
	case string:
		return s.parse(v)
	case []byte:
		return s.parse(string(v))
	default:
		return fmt.Errorf("cannot scan %T into timestamp", src)
	}
}

func (s *timeScanner) parse(v string) error {
	t, err := time.Parse(time.RFC3339Nano, v)
	if err != nil {
		return fmt.Errorf("invalid timestamp %q: %w", v, err)
	}
	s.Time, s.Valid = t.UTC(), true
	return nil
}

func (s *timeScanner) ptr() *time.Time {
	if !s.Valid {
		return nil
	}
	t := s.Time
	return &t
}

func nullString(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}
