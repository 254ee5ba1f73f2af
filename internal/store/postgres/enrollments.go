package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"

	"congregationAPI/internal/errs"
	"congregationAPI/internal/types/challenge"
)

const enrollmentColumns = `id, user_id, challenge_id, challenge_data, status, start_date, end_date, progress, created_at, completed_at`

func scanEnrollment(row pgx.Row) (*challenge.Enrollment, error) {
	var e challenge.Enrollment
	var data []byte
	err := row.Scan(&e.ID, &e.UserID, &e.ChallengeID, &data, &e.Status, &e.StartDate,
		&e.EndDate, &e.Progress, &e.CreatedAt, &e.CompletedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(data, &e.ChallengeData); err != nil {
		return nil, fmt.Errorf("failed to decode challenge data for %s: %w", e.ID, err)
	}
	return &e, nil
}

func (s *Store) CreateEnrollment(ctx context.Context, e *challenge.Enrollment) error {
	data, err := json.Marshal(e.ChallengeData)
	if err != nil {
		return fmt.Errorf("failed to encode challenge data: %w", err)
	}

	query := `
		INSERT INTO user_challenges (` + enrollmentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err = s.db.Exec(ctx, query, e.ID, e.UserID, e.ChallengeID, data, e.Status, e.StartDate,
		e.EndDate, e.Progress, e.CreatedAt, e.CompletedAt)
	if err != nil {
		return fmt.Errorf("failed to create enrollment: %w", err)
	}
	return nil
}

func (s *Store) GetEnrollment(ctx context.Context, id string) (*challenge.Enrollment, error) {
	row := s.db.QueryRow(ctx, `SELECT `+enrollmentColumns+` FROM user_challenges WHERE id = $1`, id)
	e, err := scanEnrollment(row)
	if err != nil {
		if isNoRows(err) {
			return nil, fmt.Errorf("%w: enrollment %s", errs.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to get enrollment: %w", err)
	}
	return e, nil
}

func (s *Store) ListEnrollments(ctx context.Context, userID string) ([]*challenge.Enrollment, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+enrollmentColumns+`
		FROM user_challenges
		WHERE user_id = $1
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

// UpdateEnrollment locks the row with SELECT ... FOR UPDATE for the duration of fn.
func (s *Store) UpdateEnrollment(ctx context.Context, id string, fn func(e *challenge.Enrollment) error) (*challenge.Enrollment, error) {
	var out *challenge.Enrollment
	err := s.inTx(ctx, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx, `SELECT `+enrollmentColumns+` FROM user_challenges WHERE id = $1 FOR UPDATE`, id)
		e, err := scanEnrollment(row)
		if err != nil {
			if isNoRows(err) {
				return fmt.Errorf("%w: enrollment %s", errs.ErrNotFound, id)
			}
			return fmt.Errorf("failed to lock enrollment: %w", err)
		}
		if err := fn(e); err != nil {
			return err
		}
		_, err = tx.Exec(ctx, `
			UPDATE user_challenges
			SET status = $2, progress = $3, completed_at = $4
			WHERE id = $1
		`, id, e.Status, e.Progress, e.CompletedAt)
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
