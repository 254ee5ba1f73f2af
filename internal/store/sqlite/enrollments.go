package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"congregationAPI/internal/errs"
	"congregationAPI/internal/types/challenge"
)

const enrollmentColumns = `id, user_id, challenge_id, challenge_data, status, start_date, end_date, progress, created_at, completed_at`

func scanEnrollment(row scanner) (*challenge.Enrollment, error) {
	var e challenge.Enrollment
	var data, start, created string
	var end, completed sql.NullString
	if err := row.Scan(&e.ID, &e.UserID, &e.ChallengeID, &data, &e.Status, &start, &end, &e.Progress, &created, &completed); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(data), &e.ChallengeData); err != nil {
		return nil, fmt.Errorf("failed to decode challenge data for %s: %w", e.ID, err)
	}

	var err error
	if e.StartDate, err = parseTime(start); err != nil {
		return nil, err
	}
	if e.CreatedAt, err = parseTime(created); err != nil {
		return nil, err
	}
	if e.EndDate, err = parseTimePtr(end); err != nil {
		return nil, err
	}
	if e.CompletedAt, err = parseTimePtr(completed); err != nil {
		return nil, err
	}
	return &e, nil
}

func (s *Store) CreateEnrollment(ctx context.Context, e *challenge.Enrollment) error {
	data, err := json.Marshal(e.ChallengeData)
	if err != nil {
		return fmt.Errorf("failed to encode challenge data: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO user_challenges (`+enrollmentColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, e.ID, e.UserID, e.ChallengeID, string(data), string(e.Status), formatTime(e.StartDate),
		formatTimePtr(e.EndDate), e.Progress, formatTime(e.CreatedAt), formatTimePtr(e.CompletedAt))
	if err != nil {
		return fmt.Errorf("failed to create enrollment: %w", err)
	}
	return nil
}

func (s *Store) GetEnrollment(ctx context.Context, id string) (*challenge.Enrollment, error) {
	e, err := scanEnrollment(s.db.QueryRowContext(ctx, `SELECT `+enrollmentColumns+` FROM user_challenges WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: enrollment %s", errs.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to get enrollment: %w", err)
	}
	return e, nil
}

func (s *Store) ListEnrollments(ctx context.Context, userID string) ([]*challenge.Enrollment, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+enrollmentColumns+`
		FROM user_challenges
		WHERE user_id = ?
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: user_challenges: %w", errs.ErrQueryFailure, err)
	}
	defer rows.Close()

	var out []*challenge.Enrollment
	for rows.Next() {
		e, err := scanEnrollment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan enrollment: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: user_challenges: %w", errs.ErrQueryFailure, err)
	}
	return out, nil
}

func (s *Store) UpdateEnrollment(ctx context.Context, id string, fn func(e *challenge.Enrollment) error) (*challenge.Enrollment, error) {
	var out *challenge.Enrollment
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		e, err := scanEnrollment(tx.QueryRowContext(ctx, `SELECT `+enrollmentColumns+` FROM user_challenges WHERE id = ?`, id))
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("%w: enrollment %s", errs.ErrNotFound, id)
			}
			return fmt.Errorf("failed to read enrollment: %w", err)
		}
		if err := fn(e); err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `
			UPDATE user_challenges SET status = ?, progress = ?, completed_at = ? WHERE id = ?
		`, string(e.Status), e.Progress, formatTimePtr(e.CompletedAt), id)
		if err != nil {
			return fmt.Errorf("failed to update enrollment: %w", err)
		}
		out = e
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
