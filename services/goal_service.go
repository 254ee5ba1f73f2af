package services

import (
	"context"
	"fmt"
	"log"
	"math"
	"strings"

	"github.com/google/uuid"

	"congregationAPI/internal/engine"
	"congregationAPI/internal/errs"
	"congregationAPI/internal/metrics"
	"congregationAPI/internal/types/achievement"
	"congregationAPI/internal/types/goal"
)

type GoalService struct {
	goals        GoalRepository
	achievements *AchievementService
	now          clock
}

func NewGoalService(goals GoalRepository, achievements *AchievementService, now clock) *GoalService {
	return &GoalService{goals: goals, achievements: achievements, now: now}
}

func (s *GoalService) Create(ctx context.Context, userID string, req *goal.CreateRequest) (*goal.Goal, error) {
	if userID == "" {
		return nil, errs.ErrNotAuthenticated
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", errs.ErrValidation)
	}
	target, err := goal.ParseTarget(req.Target)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrValidation, err)
	}
	if target <= 0 {
		return nil, fmt.Errorf("%w: target must be a positive number", errs.ErrValidation)
	}
	deadline, err := goal.ParseDeadline(req.Deadline)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrValidation, err)
	}

	g := &goal.Goal{
		ID:          uuid.NewString(),
		UserID:      userID,
		Title:       title,
		Description: strings.TrimSpace(req.Description),
		Category:    strings.TrimSpace(req.Category),
		Target:      target,
		Unit:        strings.TrimSpace(req.Unit),
		Deadline:    deadline,
		Status:      goal.StatusActive,
		CreatedAt:   s.now(),
	}

	if err := s.goals.CreateGoal(ctx, g); err != nil {
		return nil, fmt.Errorf("failed to create goal: %w", err)
	}
	return g, nil
}

func (s *GoalService) List(ctx context.Context, userID string) ([]*goal.GoalWithProgress, error) {
	if userID == "" {
		return nil, errs.ErrNotAuthenticated
	}
	goals, err := s.goals.ListGoals(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list goals: %w", err)
	}
	out := make([]*goal.GoalWithProgress, 0, len(goals))
	for _, g := range goals {
		g.Normalize()
		out = append(out, withProgress(g))
	}
	return out, nil
}

func (s *GoalService) Get(ctx context.Context, userID, goalID string) (*goal.GoalWithProgress, error) {
	g, err := s.owned(ctx, userID, goalID)
	if err != nil {
		return nil, err
	}
	return withProgress(g), nil
}

// UpdateProgress sets the goal's progress to value. Reaching the target
// completes the goal and awards goal_completed once.
func (s *GoalService) UpdateProgress(ctx context.Context, userID, goalID string, value float64) (*goal.GoalWithProgress, error) {
	if math.IsNaN(value) || math.IsInf(value, 0) || value < 0 {
		return nil, fmt.Errorf("%w: progress must be a non-negative number", errs.ErrValidation)
	}
	return s.apply(ctx, userID, goalID, func(g *goal.Goal) float64 {
		return value
	})
}

// IncrementProgress adds delta to the stored progress in the same transaction
// that reads it. The result never drops below zero.
func (s *GoalService) IncrementProgress(ctx context.Context, userID, goalID string, delta float64) (*goal.GoalWithProgress, error) {
	if math.IsNaN(delta) || math.IsInf(delta, 0) {
		return nil, fmt.Errorf("%w: delta must be a number", errs.ErrValidation)
	}
	return s.apply(ctx, userID, goalID, func(g *goal.Goal) float64 {
		return math.Max(0, g.CurrentProgress+delta)
	})
}

func (s *GoalService) Delete(ctx context.Context, userID, goalID string) error {
	if _, err := s.owned(ctx, userID, goalID); err != nil {
		return err
	}
	if err := s.goals.DeleteGoal(ctx, goalID); err != nil {
		return fmt.Errorf("failed to delete goal: %w", err)
	}
	return nil
}

func (s *GoalService) apply(ctx context.Context, userID, goalID string, next func(g *goal.Goal) float64) (*goal.GoalWithProgress, error) {
	if userID == "" {
		return nil, errs.ErrNotAuthenticated
	}

	now := s.now()
	var completed bool

	g, err := s.goals.UpdateGoal(ctx, goalID, func(g *goal.Goal) error {
		completed = false
		if g.UserID != userID {
			return fmt.Errorf("%w: goal %s", errs.ErrNotFound, goalID)
		}
		g.Normalize()
		completed = g.ApplyProgress(next(g), now)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update goal progress: %w", err)
	}

	if completed {
		metrics.Completions.WithLabelValues("goal").Inc()
		log.Printf("Goals: user %s completed goal %s", userID, goalID)
	}
	if g.Status == goal.StatusCompleted {
		if err := s.achievements.EnsureAwarded(ctx, userID, achievement.GoalCompleted); err != nil {
			log.Printf("Goals: failed to award %s to user %s: %v", achievement.GoalCompleted, userID, err)
			return nil, err
		}
	}
	return withProgress(g), nil
}

func (s *GoalService) owned(ctx context.Context, userID, goalID string) (*goal.Goal, error) {
	if userID == "" {
		return nil, errs.ErrNotAuthenticated
	}
	g, err := s.goals.GetGoal(ctx, goalID)
	if err != nil {
		return nil, err
	}
	if g.UserID != userID {
		return nil, fmt.Errorf("%w: goal %s", errs.ErrNotFound, goalID)
	}
	g.Normalize()
	return g, nil
}

func withProgress(g *goal.Goal) *goal.GoalWithProgress {
	p := engine.Build(g.CurrentProgress, g.Target)
	p.Completed = g.Status == goal.StatusCompleted
	return &goal.GoalWithProgress{Goal: g, Derived: p}
}
