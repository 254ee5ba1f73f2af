package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"congregationAPI/internal/errs"
	"congregationAPI/internal/types/goal"
)

const goalColumns = `id, user_id, title, description, category, target, unit, current_progress, deadline, status, created_at, completed_at`

func scanGoal(row scanner) (*goal.Goal, error) {
	var g goal.Goal
	var created string
	var deadline, completed sql.NullString
	err := row.Scan(&g.ID, &g.UserID, &g.Title, &g.Description, &g.Category, &g.Target, &g.Unit,
		&g.CurrentProgress, &deadline, &g.Status, &created, &completed)
	if err != nil {
		return nil, err
	}
	if g.CreatedAt, err = parseTime(created); err != nil {
		return nil, err
	}
	if g.Deadline, err = parseTimePtr(deadline); err != nil {
		return nil, err
	}
	if g.CompletedAt, err = parseTimePtr(completed); err != nil {
		return nil, err
	}
	return &g, nil
}

func (s *Store) CreateGoal(ctx context.Context, g *goal.Goal) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO user_goals (`+goalColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, g.ID, g.UserID, g.Title, g.Description, g.Category, g.Target, g.Unit, g.CurrentProgress,
		formatTimePtr(g.Deadline), string(g.Status), formatTime(g.CreatedAt), formatTimePtr(g.CompletedAt))
	if err != nil {
		return fmt.Errorf("failed to create goal: %w", err)
	}
	return nil
}

func (s *Store) GetGoal(ctx context.Context, id string) (*goal.Goal, error) {
	g, err := scanGoal(s.db.QueryRowContext(ctx, `SELECT `+goalColumns+` FROM user_goals WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: goal %s", errs.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to get goal: %w", err)
	}
	return g, nil
}

func (s *Store) ListGoals(ctx context.Context, userID string) ([]*goal.Goal, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+goalColumns+`
		FROM user_goals
		WHERE user_id = ?
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: user_goals: %w", errs.ErrQueryFailure, err)
	}
	defer rows.Close()

	var out []*goal.Goal
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan goal: %w", err)
		}
		out = append(out, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: user_goals: %w", errs.ErrQueryFailure, err)
	}
	return out, nil
}

func (s *Store) UpdateGoal(ctx context.Context, id string, fn func(g *goal.Goal) error) (*goal.Goal, error) {
	var out *goal.Goal
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		g, err := scanGoal(tx.QueryRowContext(ctx, `SELECT `+goalColumns+` FROM user_goals WHERE id = ?`, id))
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("%w: goal %s", errs.ErrNotFound, id)
			}
			return fmt.Errorf("failed to read goal: %w", err)
		}
		if err := fn(g); err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `
			UPDATE user_goals SET current_progress = ?, status = ?, completed_at = ? WHERE id = ?
		`, g.CurrentProgress, string(g.Status), formatTimePtr(g.CompletedAt), id)
		if err != nil {
			return fmt.Errorf("failed to update goal: %w", err)
		}
		out = g
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) DeleteGoal(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM user_goals WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete goal: %w", err)
	}
	return nil
}
