package firestoredb

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"

	"congregationAPI/internal/errs"
	"congregationAPI/internal/types/challenge"
)

func setEnrollmentID(e *challenge.Enrollment, id string) { e.ID = id }

func (s *Store) CreateEnrollment(ctx context.Context, e *challenge.Enrollment) error {
	if _, err := s.client.Collection(enrollmentsCollection).Doc(e.ID).Create(ctx, e); err != nil {
		return fmt.Errorf("failed to create enrollment: %w", err)
	}
	return nil
}

func (s *Store) GetEnrollment(ctx context.Context, id string) (*challenge.Enrollment, error) {
	snap, err := s.client.Collection(enrollmentsCollection).Doc(id).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("%w: enrollment %s", errs.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to get enrollment: %w", err)
	}
	var e challenge.Enrollment
	if err := snap.DataTo(&e); err != nil {
		return nil, fmt.Errorf("failed to decode enrollment %s: %w", id, err)
	}
	e.ID = id
	return &e, nil
}

// ListEnrollments returns the user's enrollments, newest first.
func (s *Store) ListEnrollments(ctx context.Context, userID string) ([]*challenge.Enrollment, error) {
	byUser := s.client.Collection(enrollmentsCollection).Where("userId", "==", userID)
	return fetchWithFallback(enrollmentsCollection,
		func() ([]*challenge.Enrollment, error) {
			return decodeAll(byUser.OrderBy("createdAt", firestore.Desc).Documents(ctx), setEnrollmentID)
		},
		func() ([]*challenge.Enrollment, error) {
			return decodeAll(byUser.Documents(ctx), setEnrollmentID)
		},
		nil,
		func(a, b *challenge.Enrollment) bool { return a.CreatedAt.After(b.CreatedAt) },
	)
}

// UpdateEnrollment applies fn inside a Firestore transaction. Only the fields
// the lifecycle changes are written back.
func (s *Store) UpdateEnrollment(ctx context.Context, id string, fn func(e *challenge.Enrollment) error) (*challenge.Enrollment, error) {
	ref := s.client.Collection(enrollmentsCollection).Doc(id)
	var out *challenge.Enrollment

	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if err != nil {
			if isNotFound(err) {
				return fmt.Errorf("%w: enrollment %s", errs.ErrNotFound, id)
			}
			return err
		}
		var e challenge.Enrollment
		if err := snap.DataTo(&e); err != nil {
			return fmt.Errorf("failed to decode enrollment %s: %w", id, err)
		}
		e.ID = id
		if err := fn(&e); err != nil {
			return err
		}
		out = &e
		return tx.Update(ref, []firestore.Update{
			{Path: "status", Value: e.Status},
			{Path: "progress", Value: e.Progress},
			{Path: "completedAt", Value: e.CompletedAt},
		})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
