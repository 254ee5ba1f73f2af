package services

import (
	"context"
	"fmt"
	"log"
	"slices"
	"strings"

	"congregationAPI/internal/catalog"
	"congregationAPI/internal/errs"
	"congregationAPI/internal/metrics"
	"congregationAPI/internal/notification"
	"congregationAPI/internal/types/achievement"
)

type AchievementNotifier interface {
	Dispatch(ctx context.Context, push *notification.Push)
}

type AchievementService struct {
	repo     AchievementRepository
	catalog  *catalog.Catalog
	notifier AchievementNotifier
}

func NewAchievementService(repo AchievementRepository, cat *catalog.Catalog) *AchievementService {
	return &AchievementService{repo: repo, catalog: cat}
}

func (s *AchievementService) SetNotifier(n AchievementNotifier) {
	s.notifier = n
}

// Award adds achievementID to the user's ledger. Awarding an id twice leaves
// a single entry; added is true only for the call that inserted it.
func (s *AchievementService) Award(ctx context.Context, userID, achievementID string) (bool, error) {
	if userID == "" {
		return false, errs.ErrNotAuthenticated
	}
	achievementID = strings.TrimSpace(achievementID)
	if achievementID == "" {
		return false, fmt.Errorf("%w: achievement id is required", errs.ErrValidation)
	}

	added, err := s.repo.AddAchievement(ctx, userID, achievementID)
	if err != nil {
		return false, fmt.Errorf("failed to award %s: %w", achievementID, err)
	}
	if !added {
		return false, nil
	}

	metrics.AchievementsAwarded.WithLabelValues(achievementID).Inc()
	log.Printf("Achievements: user %s unlocked %s", userID, achievementID)

	if s.notifier != nil {
		title, body := s.describe(achievementID)
		s.notifier.Dispatch(ctx, &notification.Push{
			UserID: userID,
			Type:   notification.NotificationAchievement,
			Title:  title,
			Body:   body,
			Data:   map[string]any{"achievementId": achievementID},
		})
	}
	return true, nil
}

// EnsureAwarded awards every id in ids that the ledger does not hold yet.
// Completed records call it on each write and read, so an award that failed
// after the completion was stored is added on the next attempt.
func (s *AchievementService) EnsureAwarded(ctx context.Context, userID string, ids ...string) error {
	if userID == "" {
		return errs.ErrNotAuthenticated
	}
	held, err := s.repo.ListAchievements(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to read achievements: %w", err)
	}
	for _, id := range ids {
		if slices.Contains(held, id) {
			continue
		}
		if _, err := s.Award(ctx, userID, id); err != nil {
			return err
		}
	}
	return nil
}

func (s *AchievementService) List(ctx context.Context, userID string) (*achievement.Ledger, error) {
	if userID == "" {
		return nil, errs.ErrNotAuthenticated
	}
	ids, err := s.repo.ListAchievements(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list achievements: %w", err)
	}
	return achievement.NewLedger(userID, ids), nil
}

func (s *AchievementService) describe(id string) (string, string) {
	switch id {
	case achievement.GoalCompleted:
		return "Goal reached!", "You completed one of your goals. Keep going!"
	case achievement.ChallengeCompleted:
		return "Challenge complete!", "You finished a challenge."
	}
	if s.catalog != nil && strings.HasPrefix(id, "challenge_") {
		if t, ok := s.catalog.Get(strings.TrimPrefix(id, "challenge_")); ok {
			return "Challenge complete!", fmt.Sprintf("You completed %s.", t.Title)
		}
	}
	return "Achievement unlocked!", "You earned a new achievement."
}
