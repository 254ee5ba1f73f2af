package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"congregationAPI/internal/errs"
	"congregationAPI/internal/types/activity"
)

func (s *Store) PrayerEntries(ctx context.Context, userID string, since time.Time) ([]activity.PrayerEntry, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, user_id, created_at
		FROM prayer_entries
		WHERE user_id = $1 AND created_at >= $2
		ORDER BY created_at DESC
	`, userID, since)
	if err != nil {
		return nil, fmt.Errorf("%w: prayer_entries: %w", errs.ErrQueryFailure, err)
	}
	return collect(rows, "prayer_entries", func(row pgx.Row) (activity.PrayerEntry, error) {
		var p activity.PrayerEntry
		err := row.Scan(&p.ID, &p.UserID, &p.CreatedAt)
		return p, err
	})
}

func (s *Store) VolunteerApplications(ctx context.Context, userID string) ([]activity.VolunteerApplication, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, user_id, status, hours_completed
		FROM volunteer_applications
		WHERE user_id = $1
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: volunteer_applications: %w", errs.ErrQueryFailure, err)
	}
	return collect(rows, "volunteer_applications", func(row pgx.Row) (activity.VolunteerApplication, error) {
		var v activity.VolunteerApplication
		err := row.Scan(&v.ID, &v.UserID, &v.Status, &v.HoursCompleted)
		return v, err
	})
}

func (s *Store) ReadingLogs(ctx context.Context, userID string, since time.Time) ([]activity.ReadingLog, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, user_id, completed_at, chapters_read
		FROM reading_logs
		WHERE user_id = $1 AND completed_at >= $2
		ORDER BY completed_at DESC
	`, userID, since)
	if err != nil {
		return nil, fmt.Errorf("%w: reading_logs: %w", errs.ErrQueryFailure, err)
	}
	return collect(rows, "reading_logs", func(row pgx.Row) (activity.ReadingLog, error) {
		var r activity.ReadingLog
		err := row.Scan(&r.ID, &r.UserID, &r.CompletedAt, &r.ChaptersRead)
		return r, err
	})
}

func collect[T any](rows pgx.Rows, table string, scan func(pgx.Row) (T, error)) ([]T, error) {
	defer rows.Close()
	var out []T
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan %s row: %w", table, err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", errs.ErrQueryFailure, table, err)
	}
	return out, nil
}
