// Package localstore is the durable last-resort store written when a remote
// write fails, and read back when a date-scoped future-task list cannot be
// fetched.
package localstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/daybook/core/internal/ports"
)

// Store wraps the SQLite connection holding the fallback entries.
type Store struct {
	db *sql.DB
}

var _ ports.FallbackStore = (*Store)(nil)

// Open creates the SQLite file (and its directory) if needed and
// initialises the schema.
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create local store directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open local store: %w", err)
	}
	// One writer; also keeps ":memory:" on a single database.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping local store: %w", err)
	}

	s := &Store{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS fallback_entries (
		key TEXT PRIMARY KEY,
		value BLOB NOT NULL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to init local store schema: %w", err)
	}
	return nil
}

// Put overwrites the value stored under key. Last write wins.
func (s *Store) Put(ctx context.Context, key string, value []byte) error {
	query := `
		INSERT INTO fallback_entries (key, value, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`

	if _, err := s.db.ExecContext(ctx, query, key, value); err != nil {
		return fmt.Errorf("failed to put local entry %q: %w", key, err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx, `SELECT value FROM fallback_entries WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get local entry %q: %w", key, err)
	}
	return value, true, nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM fallback_entries WHERE key = ?`, key); err != nil {
		return fmt.Errorf("failed to delete local entry %q: %w", key, err)
	}
	return nil
}

// Ping is used by readiness checks.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// NotesKey is the fallback key for a user's notes on one date.
func NotesKey(userID, date string) string {
	return "notes_" + userID + "_" + date
}

// FutureTasksKey is the fallback key for a user's future tasks on one date.
func FutureTasksKey(userID, date string) string {
	return "future_tasks_" + userID + "_" + date
}

// PayrollKey is the fallback key for a pending payroll confirmation.
func PayrollKey(userID string) string {
	return "payroll_" + userID
}

// SpecialDaysKey is the fallback key for a user's special days.
func SpecialDaysKey(userID string) string {
	return "special_days_" + userID
}
