package postgres

import (
	"context"
	"fmt"

	"congregationAPI/internal/notification"
)

func (s *Store) AddAchievement(ctx context.Context, userID, achievementID string) (bool, error) {
	tag, err := s.db.Exec(ctx, `
		INSERT INTO user_achievements (user_id, achievement_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, achievement_id) DO NOTHING
	`, userID, achievementID)
	if err != nil {
		return false, fmt.Errorf("failed to add achievement: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (s *Store) ListAchievements(ctx context.Context, userID string) ([]string, error) {
	rows, err := s.db.Query(ctx, `
		SELECT achievement_id FROM user_achievements WHERE user_id = $1 ORDER BY achievement_id
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list achievements: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan achievement: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *Store) AddDeviceToken(ctx context.Context, userID string, token notification.DeviceToken) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO user_devices (user_id, token, platform, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, token) DO UPDATE SET platform = EXCLUDED.platform
	`, userID, token.Token, token.Platform, token.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to add device token: %w", err)
	}
	return nil
}

func (s *Store) DeviceTokens(ctx context.Context, userID string) ([]notification.DeviceToken, error) {
	rows, err := s.db.Query(ctx, `
		SELECT token, platform, created_at FROM user_devices WHERE user_id = $1 ORDER BY created_at
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list device tokens: %w", err)
	}
	defer rows.Close()

	var tokens []notification.DeviceToken
	for rows.Next() {
		var t notification.DeviceToken
		if err := rows.Scan(&t.Token, &t.Platform, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan device token: %w", err)
		}
		tokens = append(tokens, t)
	}
	return tokens, rows.Err()
}
