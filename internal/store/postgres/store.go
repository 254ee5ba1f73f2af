package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `
CREATE TABLE IF NOT EXISTS user_challenges (
	id             TEXT PRIMARY KEY,
	user_id        TEXT NOT NULL,
	challenge_id   TEXT NOT NULL,
	challenge_data JSONB NOT NULL,
	status         TEXT NOT NULL DEFAULT 'active',
	start_date     TIMESTAMPTZ NOT NULL,
	end_date       TIMESTAMPTZ,
	progress       DOUBLE PRECISION NOT NULL DEFAULT 0,
	created_at     TIMESTAMPTZ NOT NULL,
	completed_at   TIMESTAMPTZ
);
CREATE INDEX IF NOT EXISTS idx_user_challenges_user ON user_challenges (user_id, created_at DESC);

CREATE TABLE IF NOT EXISTS user_goals (
	id               TEXT PRIMARY KEY,
	user_id          TEXT NOT NULL,
	title            TEXT NOT NULL,
	description      TEXT NOT NULL DEFAULT '',
	category         TEXT NOT NULL DEFAULT '',
	target           DOUBLE PRECISION NOT NULL,
	unit             TEXT NOT NULL DEFAULT '',
	current_progress DOUBLE PRECISION NOT NULL DEFAULT 0,
	deadline         TIMESTAMPTZ,
	status           TEXT NOT NULL DEFAULT 'active',
	created_at       TIMESTAMPTZ NOT NULL,
	completed_at     TIMESTAMPTZ
);
CREATE INDEX IF NOT EXISTS idx_user_goals_user ON user_goals (user_id, created_at DESC);

CREATE TABLE IF NOT EXISTS user_achievements (
	user_id        TEXT NOT NULL,
	achievement_id TEXT NOT NULL,
	awarded_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	PRIMARY KEY (user_id, achievement_id)
);

CREATE TABLE IF NOT EXISTS user_devices (
	user_id    TEXT NOT NULL,
	token      TEXT NOT NULL,
	platform   TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (user_id, token)
);

CREATE TABLE IF NOT EXISTS prayer_entries (
	id         TEXT PRIMARY KEY,
	user_id    TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_prayer_entries_user ON prayer_entries (user_id, created_at DESC);

CREATE TABLE IF NOT EXISTS volunteer_applications (
	id              TEXT PRIMARY KEY,
	user_id         TEXT NOT NULL,
	status          TEXT NOT NULL,
	hours_completed DOUBLE PRECISION NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_volunteer_applications_user ON volunteer_applications (user_id);

CREATE TABLE IF NOT EXISTS reading_logs (
	id            TEXT PRIMARY KEY,
	user_id       TEXT NOT NULL,
	completed_at  TIMESTAMPTZ NOT NULL,
	chapters_read DOUBLE PRECISION NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_reading_logs_user ON reading_logs (user_id, completed_at DESC);
`

type Store struct {
	db *pgxpool.Pool
}

func New(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

// Connect opens a pool with the settings the API runs with in production.
func Connect(ctx context.Context, dbURL string) (*Store, error) {
	poolConfig, err := pgxpool.ParseConfig(dbURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	poolConfig.MaxConns = 25
	poolConfig.MinConns = 2
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return New(pool), nil
}

// InitSchema creates the tables if they do not exist yet.
func (s *Store) InitSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

func (s *Store) Close() error {
	s.db.Close()
	return nil
}

// inTx runs fn in a transaction and commits when fn succeeds.
func (s *Store) inTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
