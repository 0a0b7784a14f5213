// Package store provides SQLite-backed persistence for the maintenance
// domain. All contended fields (the sequence counter, status flags,
// assignment program sets, the runner lock) are mutated through single
// atomic SQL statements; the application layer never does a read, compute,
// write sequence against them.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// Store implements persistence using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// Open creates a new SQLite-backed store.
// Use ":memory:" for in-memory database, or a file path for persistent storage.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, wrap("open sqlite database", err)
	}
	// One connection: SQLite serializes writers anyway, and a single shared
	// connection keeps ":memory:" databases visible across the pool.
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.initialize(); err != nil {
		_ = db.Close() // Best effort cleanup on initialization error
		return nil, wrap("initialize schema", err)
	}

	return s, nil
}

func (s *Store) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS properties (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'active',
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);
	CREATE TABLE IF NOT EXISTS wings (
		id TEXT PRIMARY KEY,
		property_id TEXT NOT NULL,
		name TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'active'
	);
	CREATE INDEX IF NOT EXISTS idx_wings_property ON wings(property_id);
	CREATE TABLE IF NOT EXISTS programs (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL UNIQUE,
		status TEXT NOT NULL DEFAULT 'active',
		created_by TEXT,
		updated_by TEXT,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);
	CREATE TABLE IF NOT EXISTS tasks (
		id TEXT PRIMARY KEY,
		program_id TEXT NOT NULL,
		name TEXT NOT NULL,
		vendor TEXT NOT NULL,
		frequency TEXT NOT NULL,
		day TEXT,
		month INTEGER,
		date INTEGER,
		position INTEGER NOT NULL,
		status TEXT NOT NULL DEFAULT 'active',
		created_by TEXT,
		updated_by TEXT,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL,
		UNIQUE(program_id, name)
	);
	CREATE INDEX IF NOT EXISTS idx_tasks_program ON tasks(program_id);
	CREATE TABLE IF NOT EXISTS wing_assignments (
		wing_id TEXT PRIMARY KEY,
		property_id TEXT NOT NULL,
		program_ids TEXT NOT NULL,
		updated_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_assignments_property ON wing_assignments(property_id);
	CREATE TABLE IF NOT EXISTS checklist_categories (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL UNIQUE,
		status TEXT NOT NULL DEFAULT 'active',
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);
	CREATE TABLE IF NOT EXISTS checklist_items (
		id TEXT PRIMARY KEY,
		category_id TEXT NOT NULL,
		code TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL,
		type TEXT,
		frequency TEXT NOT NULL,
		day TEXT,
		month INTEGER,
		date INTEGER,
		file_ref TEXT,
		status TEXT NOT NULL DEFAULT 'active',
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_items_category ON checklist_items(category_id);
	CREATE TABLE IF NOT EXISTS sequence_counter (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		next_value INTEGER NOT NULL
	);
	CREATE TABLE IF NOT EXISTS runner_passes (
		run_date TEXT PRIMARY KEY,
		started_at INTEGER NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}

// IsNotFound reports whether err stems from a lookup that matched no row.
func IsNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

// IsUniqueViolation reports whether err stems from a UNIQUE constraint,
// i.e. a duplicate program/category name or checklist code. The driver's
// error code is authoritative; the message match covers errors that reach
// us stripped of their type.
func IsUniqueViolation(err error) bool {
	var se *sqlite.Error
	if errors.As(err, &se) {
		return se.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
	}
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// Timestamps are stored as unix nanoseconds so creation order remains a
// stable sort key even for rows created within the same second.
func toUnix(t time.Time) int64 {
	return t.UTC().UnixNano()
}

func fromUnix(n int64) time.Time {
	return time.Unix(0, n).UTC()
}

func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", op, err)
}
