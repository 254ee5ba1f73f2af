package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"congregationAPI/internal/errs"
	"congregationAPI/internal/types/goal"
)

const goalColumns = `id, user_id, title, description, category, target, unit, current_progress, deadline, status, created_at, completed_at`

func scanGoal(row pgx.Row) (*goal.Goal, error) {
	var g goal.Goal
	err := row.Scan(&g.ID, &g.UserID, &g.Title, &g.Description, &g.Category, &g.Target, &g.Unit,
		&g.CurrentProgress, &g.Deadline, &g.Status, &g.CreatedAt, &g.CompletedAt)
	if err != nil {
		return nil, err
	}
	return &g, nil
}

func (s *Store) CreateGoal(ctx context.Context, g *goal.Goal) error {
	query := `
		INSERT INTO user_goals (` + goalColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err := s.db.Exec(ctx, query, g.ID, g.UserID, g.Title, g.Description, g.Category, g.Target, g.Unit,
		g.CurrentProgress, g.Deadline, g.Status, g.CreatedAt, g.CompletedAt)
	if err != nil {
		return fmt.Errorf("failed to create goal: %w", err)
	}
	return nil
}

func (s *Store) GetGoal(ctx context.Context, id string) (*goal.Goal, error) {
	g, err := scanGoal(s.db.QueryRow(ctx, `SELECT `+goalColumns+` FROM user_goals WHERE id = $1`, id))
	if err != nil {
		if isNoRows(err) {
			return nil, fmt.Errorf("%w: goal %s", errs.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to get goal: %w", err)
	}
	return g, nil
}

func (s *Store) ListGoals(ctx context.Context, userID string) ([]*goal.Goal, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+goalColumns+`
		FROM user_goals
		WHERE user_id = $1
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
	err := s.inTx(ctx, func(tx pgx.Tx) error {
		g, err := scanGoal(tx.QueryRow(ctx, `SELECT `+goalColumns+` FROM user_goals WHERE id = $1 FOR UPDATE`, id))
		if err != nil {
			if isNoRows(err) {
				return fmt.Errorf("%w: goal %s", errs.ErrNotFound, id)
			}
			return fmt.Errorf("failed to lock goal: %w", err)
		}
		if err := fn(g); err != nil {
			return err
		}
		_, err = tx.Exec(ctx, `
			UPDATE user_goals
			SET current_progress = $2, status = $3, completed_at = $4
			WHERE id = $1
		`, id, g.CurrentProgress, g.Status, g.CompletedAt)
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
	if _, err := s.db.Exec(ctx, `DELETE FROM user_goals WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete goal: %w", err)
	}
	return nil
}
