package firestoredb

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"

	"congregationAPI/internal/errs"
	"congregationAPI/internal/types/activity"
)

func (s *Store) PrayerEntries(ctx context.Context, userID string, since time.Time) ([]activity.PrayerEntry, error) {
	byUser := s.client.Collection(prayersCollection).Where("userId", "==", userID)
	set := func(p *activity.PrayerEntry, id string) { p.ID = id }

	entries, err := fetchWithFallback(prayersCollection,
		func() ([]*activity.PrayerEntry, error) {
			return decodeAll(byUser.Where("createdAt", ">=", since).OrderBy("createdAt", firestore.Desc).Documents(ctx), set)
		},
		func() ([]*activity.PrayerEntry, error) {
			return decodeAll(byUser.Documents(ctx), set)
		},
		func(p *activity.PrayerEntry) bool { return !p.CreatedAt.Before(since) },
		func(a, b *activity.PrayerEntry) bool { return a.CreatedAt.After(b.CreatedAt) },
	)
	if err != nil {
		return nil, err
	}
	return deref(entries), nil
}

// VolunteerApplications filters on a single equality field, which Firestore
// indexes automatically.
func (s *Store) VolunteerApplications(ctx context.Context, userID string) ([]activity.VolunteerApplication, error) {
	apps, err := decodeAll(
		s.client.Collection(volunteerCollection).Where("userId", "==", userID).Documents(ctx),
		func(v *activity.VolunteerApplication, id string) { v.ID = id },
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", errs.ErrQueryFailure, volunteerCollection, err)
	}
	return deref(apps), nil
}

func (s *Store) ReadingLogs(ctx context.Context, userID string, since time.Time) ([]activity.ReadingLog, error) {
	byUser := s.client.Collection(readingCollection).Where("userId", "==", userID)
	set := func(r *activity.ReadingLog, id string) { r.ID = id }

	logs, err := fetchWithFallback(readingCollection,
		func() ([]*activity.ReadingLog, error) {
			return decodeAll(byUser.Where("completedAt", ">=", since).OrderBy("completedAt", firestore.Desc).Documents(ctx), set)
		},
		func() ([]*activity.ReadingLog, error) {
			return decodeAll(byUser.Documents(ctx), set)
		},
		func(r *activity.ReadingLog) bool { return !r.CompletedAt.Before(since) },
		func(a, b *activity.ReadingLog) bool { return a.CompletedAt.After(b.CompletedAt) },
	)
	if err != nil {
		return nil, err
	}
	return deref(logs), nil
}

func deref[T any](in []*T) []T {
	out := make([]T, len(in))
	for i, v := range in {
		out[i] = *v
	}
	return out
}
