// Package db manages the SQLite database backing multi-user study snapshots.
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3" // registers the sqlite3 driver with database/sql
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/pedrovi35/EduSync-Pro/internal/apperr"
)

const schemaVersion = "2"

// Options tunes the connection pool and password hashing.
type Options struct {
	MaxOpenConns int
	PoolTimeout  time.Duration
	HashCost     int
	Logger       *zap.Logger
}

// DB wraps a *sql.DB with the path it was opened from.
type DB struct {
	db          *sql.DB
	path        string
	poolTimeout time.Duration
	hashCost    int
	logger      *zap.Logger
}

// Open opens (or creates) the SQLite database at path and initialises the schema.
func Open(path string, opts Options) (*DB, error) {
	sqldb, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("db.Open: %w", err)
	}
	if opts.MaxOpenConns <= 0 {
		opts.MaxOpenConns = 4
	}
	if opts.PoolTimeout <= 0 {
		opts.PoolTimeout = 2 * time.Second
	}
	if opts.HashCost == 0 {
		opts.HashCost = bcrypt.DefaultCost
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	sqldb.SetMaxOpenConns(opts.MaxOpenConns)
	sqldb.SetMaxIdleConns(opts.MaxOpenConns)

	d := &DB{
		db:          sqldb,
		path:        path,
		poolTimeout: opts.PoolTimeout,
		hashCost:    opts.HashCost,
		logger:      opts.Logger,
	}
	if err := d.createSchema(); err != nil {
		_ = sqldb.Close()
		return nil, fmt.Errorf("db.Open createSchema: %w", err)
	}
	return d, nil
}

// Close closes the underlying database connection.
func (d *DB) Close() error {
	return d.db.Close()
}

// Path returns the file the database was opened from.
func (d *DB) Path() string { return d.path }

// acquire takes a connection from the pool, failing with ResourceExhausted
// when none frees up within the pool timeout.
func (d *DB) acquire(ctx context.Context) (*sql.Conn, error) {
	actx, cancel := context.WithTimeout(ctx, d.poolTimeout)
	defer cancel()

	conn, err := d.db.Conn(actx)
	if err == nil {
		return conn, nil
	}
	if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
		d.logger.Warn("connection pool exhausted", zap.Duration("timeout", d.poolTimeout))
		return nil, apperr.NewExhaustedError("connection pool", err)
	}
	return nil, apperr.NewUnavailableError("database", err)
}

// ---------------------------------------------------------------------------
// Schema
// ---------------------------------------------------------------------------

func (d *DB) createSchema() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id            TEXT PRIMARY KEY,
			name          TEXT NOT NULL,
			email         TEXT UNIQUE NOT NULL,
			password_hash TEXT NOT NULL,
			xp            INTEGER NOT NULL DEFAULT 0,
			level         INTEGER NOT NULL DEFAULT 0,
			created_at    TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS tasks (
			id         TEXT PRIMARY KEY,
			user_id    TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			content    TEXT NOT NULL,
			status     TEXT NOT NULL,
			created_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS flashcards (
			id         TEXT PRIMARY KEY,
			user_id    TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			front      TEXT NOT NULL,
			back       TEXT NOT NULL,
			created_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS achievements (
			user_id        TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			achievement_id TEXT NOT NULL,
			unlocked_at    TEXT NOT NULL,
			PRIMARY KEY (user_id, achievement_id)
		)`,
		`CREATE TABLE IF NOT EXISTS calendar_events (
			id       TEXT PRIMARY KEY,
			user_id  TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			title    TEXT NOT NULL,
			start_at TEXT NOT NULL,
			end_at   TEXT,
			all_day  INTEGER NOT NULL DEFAULT 0,
			position INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS meta (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_tasks_user ON tasks(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_flashcards_user ON flashcards(user_id)`,
	}

	for _, s := range stmts {
		if _, err := d.db.Exec(s); err != nil {
			return fmt.Errorf("createSchema exec: %w\nSQL: %s", err, s)
		}
	}

	// Migrations: columns added after the first release of each table.
	migrations := []struct {
		table, column, ddl string
	}{
		{"users", "pomodoro_sessions_done", "ALTER TABLE users ADD COLUMN pomodoro_sessions_done INTEGER NOT NULL DEFAULT 0"},
		{"users", "notes", "ALTER TABLE users ADD COLUMN notes TEXT NOT NULL DEFAULT ''"},
		{"users", "progress_saved_at", "ALTER TABLE users ADD COLUMN progress_saved_at TEXT"},
		{"tasks", "completed_once", "ALTER TABLE tasks ADD COLUMN completed_once INTEGER NOT NULL DEFAULT 0"},
		{"tasks", "position", "ALTER TABLE tasks ADD COLUMN position INTEGER NOT NULL DEFAULT 0"},
		{"flashcards", "position", "ALTER TABLE flashcards ADD COLUMN position INTEGER NOT NULL DEFAULT 0"},
	}
	for _, m := range migrations {
		cols, err := d.columns(m.table)
		if err != nil {
			return err
		}
		if cols[m.column] {
			continue
		}
		if _, err := d.db.Exec(m.ddl); err != nil {
			return fmt.Errorf("migration %s.%s: %w", m.table, m.column, err)
		}
	}

	return d.SetMeta("schema_version", schemaVersion)
}

func (d *DB) columns(table string) (map[string]bool, error) {
	rows, err := d.db.Query("PRAGMA table_info(" + table + ")") // #nosec G202 -- table names come from the hardcoded migration list
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cols := make(map[string]bool)
	for rows.Next() {
		var cid int
		var name, typ string
		var notNull, pk int
		var dflt sql.NullString
		if err := rows.Scan(&cid, &name, &typ, &notNull, &dflt, &pk); err != nil {
			return nil, err
		}
		cols[name] = true
	}
	return cols, rows.Err()
}

// ---------------------------------------------------------------------------
// Meta
// ---------------------------------------------------------------------------

// GetMeta reads a value from the meta table.
func (d *DB) GetMeta(key string) (string, bool, error) {
	var val string
	err := d.db.QueryRow(`SELECT value FROM meta WHERE key = ?`, key).Scan(&val)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

// SetMeta upserts a value in the meta table.
func (d *DB) SetMeta(key, value string) error {
	_, err := d.db.Exec(
		`INSERT INTO meta (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	return err
}

// ---------------------------------------------------------------------------
// helpers
// ---------------------------------------------------------------------------

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
