// Package store persists tasks, the time ledger and the auth collaborator's
// users and sessions. The same queries run on SQLite (local CLI, tests) and
// PostgreSQL (server).
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"hash/fnv"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a row does not exist
var ErrNotFound = errors.New("not found")

// Dialect selects SQL syntax differences between backends
type Dialect int

const (
	SQLite Dialect = iota
	Postgres
)

func (d Dialect) String() string {
	if d == Postgres {
		return "postgres"
	}
	return "sqlite"
}

// DB wraps the database connection. Its embedded Queries run outside any
// transaction and are what readers use.
type DB struct {
	*Queries
	sql     *sql.DB
	dialect Dialect
}

// Open opens a PostgreSQL database for postgres:// URLs and a SQLite file otherwise
func Open(dsn string) (*DB, error) {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		return OpenPostgres(dsn)
	}
	return OpenSQLite(dsn)
}

// OpenSQLite opens or creates the SQLite database at path
func OpenSQLite(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// BEGIN IMMEDIATE takes the write lock up front, so another process on
	// the same file makes a transaction wait out the busy timeout instead of
	// failing on the lock upgrade.
	sqlDB, err := sql.Open("sqlite", path+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_txlock=immediate")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// one writer; transactions serialize on the connection
	sqlDB.SetMaxOpenConns(1)

	return newDB(sqlDB, SQLite)
}

// OpenPostgres connects to a PostgreSQL server
func OpenPostgres(url string) (*DB, error) {
	sqlDB, err := sql.Open("postgres", url)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return newDB(sqlDB, Postgres)
}

func newDB(sqlDB *sql.DB, dialect Dialect) (*DB, error) {
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db := &DB{
		Queries: &Queries{q: sqlDB, dialect: dialect},
		sql:     sqlDB,
		dialect: dialect,
	}

	if err := db.migrate(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return db, nil
}

// Dialect returns the backend in use
func (db *DB) Dialect() Dialect {
	return db.dialect
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.sql.Close()
}

// Ping checks the connection
func (db *DB) Ping(ctx context.Context) error {
	return db.sql.PingContext(ctx)
}

// WithUserTx runs fn inside a transaction that is exclusive for userID. On
// PostgreSQL the exclusivity holds across server processes through a
// transaction-scoped advisory lock; SQLite has a single writer. fn's error
// rolls the transaction back.
func (db *DB) WithUserTx(ctx context.Context, userID string, fn func(q *Queries) error) (err error) {
	tx, err := db.sql.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	q := &Queries{q: tx, dialect: db.dialect}

	if db.dialect == Postgres {
		if _, err = tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, userLockKey(userID)); err != nil {
			return fmt.Errorf("failed to lock user: %w", err)
		}
	}

	if err = fn(q); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

// userLockKey maps a user id onto the advisory lock key space
func userLockKey(userID string) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte("ironclock:user:" + userID))
	return int64(h.Sum64())
}
