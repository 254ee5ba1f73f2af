package firestoredb

import (
	"context"
	"fmt"
	"slices"

	"cloud.google.com/go/firestore"

	"congregationAPI/internal/notification"
)

// userRecord is the part of a users/{uid} document this service touches.
// Other profile fields are left alone.
type userRecord struct {
	Achievements []string                   `firestore:"achievements"`
	DeviceTokens []notification.DeviceToken `firestore:"deviceTokens"`
}

func (s *Store) readUser(tx *firestore.Transaction, ref *firestore.DocumentRef) (*userRecord, error) {
	var rec userRecord
	snap, err := tx.Get(ref)
	if err != nil {
		if isNotFound(err) {
			return &rec, nil
		}
		return nil, err
	}
	if err := snap.DataTo(&rec); err != nil {
		return nil, fmt.Errorf("failed to decode user %s: %w", ref.ID, err)
	}
	return &rec, nil
}

// AddAchievement unions achievementID into users/{uid}.achievements. The
// read inside the transaction reports whether the id was already there.
func (s *Store) AddAchievement(ctx context.Context, userID, achievementID string) (bool, error) {
	ref := s.client.Collection(usersCollection).Doc(userID)
	var added bool

	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		added = false
		rec, err := s.readUser(tx, ref)
		if err != nil {
			return err
		}
		if slices.Contains(rec.Achievements, achievementID) {
			return nil
		}
		added = true
		return tx.Set(ref, map[string]any{
			"achievements": firestore.ArrayUnion(achievementID),
		}, firestore.MergeAll)
	})
	if err != nil {
		return false, fmt.Errorf("failed to add achievement: %w", err)
	}
	return added, nil
}

func (s *Store) ListAchievements(ctx context.Context, userID string) ([]string, error) {
	snap, err := s.client.Collection(usersCollection).Doc(userID).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get achievements: %w", err)
	}
	var rec userRecord
	if err := snap.DataTo(&rec); err != nil {
		return nil, fmt.Errorf("failed to decode user %s: %w", userID, err)
	}
	return rec.Achievements, nil
}

// AddDeviceToken stores token once per user; registering it again only
// updates the platform.
func (s *Store) AddDeviceToken(ctx context.Context, userID string, token notification.DeviceToken) error {
	ref := s.client.Collection(usersCollection).Doc(userID)

	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		rec, err := s.readUser(tx, ref)
		if err != nil {
			return err
		}
		tokens := slices.Clone(rec.DeviceTokens)
		i := slices.IndexFunc(tokens, func(t notification.DeviceToken) bool { return t.Token == token.Token })
		if i >= 0 {
			tokens[i].Platform = token.Platform
		} else {
			tokens = append(tokens, token)
		}
		return tx.Set(ref, map[string]any{"deviceTokens": tokens}, firestore.MergeAll)
	})
	if err != nil {
		return fmt.Errorf("failed to add device token: %w", err)
	}
	return nil
}

func (s *Store) DeviceTokens(ctx context.Context, userID string) ([]notification.DeviceToken, error) {
	snap, err := s.client.Collection(usersCollection).Doc(userID).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get device tokens: %w", err)
	}
	var rec userRecord
	if err := snap.DataTo(&rec); err != nil {
		return nil, fmt.Errorf("failed to decode user %s: %w", userID, err)
	}
	return rec.DeviceTokens, nil
}
