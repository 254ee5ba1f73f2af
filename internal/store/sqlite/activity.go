package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"congregationAPI/internal/errs"
	"congregationAPI/internal/types/activity"
)

func (s *Store) PrayerEntries(ctx context.Context, userID string, since time.Time) ([]activity.PrayerEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, created_at FROM prayer_entries
		WHERE user_id = ? AND created_at >= ?
		ORDER BY created_at DESC
	`, userID, formatTime(since))
	if err != nil {
		return nil, fmt.Errorf("%w: prayer_entries: %w", errs.ErrQueryFailure, err)
	}
	return collect(rows, "prayer_entries", func(row scanner) (activity.PrayerEntry, error) {
		var p activity.PrayerEntry
		var created string
		if err := row.Scan(&p.ID, &p.UserID, &created); err != nil {
			return p, err
		}
		var err error
		p.CreatedAt, err = parseTime(created)
		return p, err
	})
}

func (s *Store) VolunteerApplications(ctx context.Context, userID string) ([]activity.VolunteerApplication, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, status, hours_completed FROM volunteer_applications WHERE user_id = ?
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: volunteer_applications: %w", errs.ErrQueryFailure, err)
	}
	return collect(rows, "volunteer_applications", func(row scanner) (activity.VolunteerApplication, error) {
		var v activity.VolunteerApplication
		err := row.Scan(&v.ID, &v.UserID, &v.Status, &v.HoursCompleted)
		return v, err
	})
}

func (s *Store) ReadingLogs(ctx context.Context, userID string, since time.Time) ([]activity.ReadingLog, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, completed_at, chapters_read FROM reading_logs
		WHERE user_id = ? AND completed_at >= ?
		ORDER BY completed_at DESC
	`, userID, formatTime(since))
	if err != nil {
		return nil, fmt.Errorf("%w: reading_logs: %w", errs.ErrQueryFailure, err)
	}
	return collect(rows, "reading_logs", func(row scanner) (activity.ReadingLog, error) {
		var r activity.ReadingLog
		var completed string
		if err := row.Scan(&r.ID, &r.UserID, &completed, &r.ChaptersRead); err != nil {
			return r, err
		}
		var err error
		r.CompletedAt, err = parseTime(completed)
		return r, err
	})
}

// RecordPrayer, RecordVolunteerHours and RecordReading seed activity for local
// development; the congregation app owns these records in production.
func (s *Store) RecordPrayer(ctx context.Context, p activity.PrayerEntry) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO prayer_entries (id, user_id, created_at) VALUES (?, ?, ?)`,
		p.ID, p.UserID, formatTime(p.CreatedAt))
	if err != nil {
		return fmt.Errorf("failed to record prayer: %w", err)
	}
	return nil
}

func (s *Store) RecordVolunteerHours(ctx context.Context, v activity.VolunteerApplication) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO volunteer_applications (id, user_id, status, hours_completed) VALUES (?, ?, ?, ?)
	`, v.ID, v.UserID, v.Status, v.HoursCompleted)
	if err != nil {
		return fmt.Errorf("failed to record volunteer hours: %w", err)
	}
	return nil
}

func (s *Store) RecordReading(ctx context.Context, r activity.ReadingLog) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO reading_logs (id, user_id, completed_at, chapters_read) VALUES (?, ?, ?, ?)
	`, r.ID, r.UserID, formatTime(r.CompletedAt), r.ChaptersRead)
	if err != nil {
		return fmt.Errorf("failed to record reading: %w", err)
	}
	return nil
}

func collect[T any](rows *sql.Rows, table string, scan func(scanner) (T, error)) ([]T, error) {
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
