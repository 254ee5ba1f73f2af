package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// timeLayout is fixed width so stored timestamps compare correctly as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

const schema = `
CREATE TABLE IF NOT EXISTS user_challenges (
	id             TEXT PRIMARY KEY,
	user_id        TEXT NOT NULL,
	challenge_id   TEXT NOT NULL,
	challenge_data TEXT NOT NULL,
	status         TEXT NOT NULL DEFAULT 'active',
	start_date     TEXT NOT NULL,
	end_date       TEXT,
	progress       REAL NOT NULL DEFAULT 0,
	created_at     TEXT NOT NULL,
	completed_at   TEXT
);
CREATE INDEX IF NOT EXISTS idx_user_challenges_user ON user_challenges (user_id, created_at);

CREATE TABLE IF NOT EXISTS user_goals (
	id               TEXT PRIMARY KEY,
	user_id          TEXT NOT NULL,
	title            TEXT NOT NULL,
	description      TEXT NOT NULL DEFAULT '',
	category         TEXT NOT NULL DEFAULT '',
	target           REAL NOT NULL,
	unit             TEXT NOT NULL DEFAULT '',
	current_progress REAL NOT NULL DEFAULT 0,
	deadline         TEXT,
	status           TEXT NOT NULL DEFAULT 'active',
	created_at       TEXT NOT NULL,
	completed_at     TEXT
);
CREATE INDEX IF NOT EXISTS idx_user_goals_user ON user_goals (user_id, created_at);

CREATE TABLE IF NOT EXISTS user_achievements (
	user_id        TEXT NOT NULL,
	achievement_id TEXT NOT NULL,
	PRIMARY KEY (user_id, achievement_id)
);

CREATE TABLE IF NOT EXISTS user_devices (
	user_id    TEXT NOT NULL,
	token      TEXT NOT NULL,
	platform   TEXT NOT NULL,
	created_at TEXT NOT NULL,
	PRIMARY KEY (user_id, token)
);

CREATE TABLE IF NOT EXISTS prayer_entries (
	id         TEXT PRIMARY KEY,
	user_id    TEXT NOT NULL,
	created_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS volunteer_applications (
	id              TEXT PRIMARY KEY,
	user_id         TEXT NOT NULL,
	status          TEXT NOT NULL,
	hours_completed REAL NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS reading_logs (
	id            TEXT PRIMARY KEY,
	user_id       TEXT NOT NULL,
	completed_at  TEXT NOT NULL,
	chapters_read REAL NOT NULL DEFAULT 0
);
`

// Store is the single-file backend used for local development.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Open opens (or creates) the database at path and prepares the schema.
func Open(ctx context.Context, path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_txlock=immediate", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	db.SetMaxOpenConns(1)

	s := New(db)
	if err := s.InitSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) InitSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func formatTimePtr(t *time.Time) any {
	if t == nil {
		return nil
	}
	return formatTime(*t)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse timestamp %q: %w", s, err)
	}
	return t, nil
}

func parseTimePtr(s sql.NullString) (*time.Time, error) {
	if !s.Valid {
		return nil, nil
	}
	t, err := parseTime(s.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

type scanner interface {
	Scan(dest ...any) error
}
