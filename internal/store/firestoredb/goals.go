package firestoredb

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"

	"congregationAPI/internal/errs"
	"congregationAPI/internal/types/goal"
)

func setGoalID(g *goal.Goal, id string) { g.ID = id }

func (s *Store) CreateGoal(ctx context.Context, g *goal.Goal) error {
	if _, err := s.client.Collection(goalsCollection).Doc(g.ID).Create(ctx, g); err != nil {
		return fmt.Errorf("failed to create goal: %w", err)
	}
	return nil
}

func (s *Store) GetGoal(ctx context.Context, id string) (*goal.Goal, error) {
	snap, err := s.client.Collection(goalsCollection).Doc(id).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("%w: goal %s", errs.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to get goal: %w", err)
	}
	var g goal.Goal
	if err := snap.DataTo(&g); err != nil {
		return nil, fmt.Errorf("failed to decode goal %s: %w", id, err)
	}
	g.ID = id
	return &g, nil
}

func (s *Store) ListGoals(ctx context.Context, userID string) ([]*goal.Goal, error) {
	byUser := s.client.Collection(goalsCollection).Where("userId", "==", userID)
	return fetchWithFallback(goalsCollection,
		func() ([]*goal.Goal, error) {
			return decodeAll(byUser.OrderBy("createdAt", firestore.Desc).Documents(ctx), setGoalID)
		},
		func() ([]*goal.Goal, error) {
			return decodeAll(byUser.Documents(ctx), setGoalID)
		},
		nil,
		func(a, b *goal.Goal) bool { return a.CreatedAt.After(b.CreatedAt) },
	)
}

func (s *Store) UpdateGoal(ctx context.Context, id string, fn func(g *goal.Goal) error) (*goal.Goal, error) {
	ref := s.client.Collection(goalsCollection).Doc(id)
	var out *goal.Goal

	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if err != nil {
			if isNotFound(err) {
				return fmt.Errorf("%w: goal %s", errs.ErrNotFound, id)
			}
			return err
		}
		var g goal.Goal
		if err := snap.DataTo(&g); err != nil {
			return fmt.Errorf("failed to decode goal %s: %w", id, err)
		}
		g.ID = id
		if err := fn(&g); err != nil {
			return err
		}
		out = &g
		return tx.Update(ref, []firestore.Update{
			{Path: "currentProgress", Value: g.CurrentProgress},
			{Path: "status", Value: g.Status},
			{Path: "completedAt", Value: g.CompletedAt},
		})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) DeleteGoal(ctx context.Context, id string) error {
	if _, err := s.client.Collection(goalsCollection).Doc(id).Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete goal: %w", err)
	}
	return nil
}
