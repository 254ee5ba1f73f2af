package services

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"congregationAPI/internal/catalog"
	"congregationAPI/internal/engine"
	"congregationAPI/internal/errs"
	"congregationAPI/internal/metrics"
	"congregationAPI/internal/types/achievement"
	"congregationAPI/internal/types/challenge"
)

// evaluateConcurrency caps parallel progress computations per request.
const evaluateConcurrency = 8

type ChallengeService struct {
	catalog      *catalog.Catalog
	enrollments  EnrollmentRepository
	engine       ProgressEngine
	achievements *AchievementService
	now          clock
}

func NewChallengeService(cat *catalog.Catalog, enrollments EnrollmentRepository, eng ProgressEngine, achievements *AchievementService, now clock) *ChallengeService {
	return &ChallengeService{
		catalog:      cat,
		enrollments:  enrollments,
		engine:       eng,
		achievements: achievements,
		now:          now,
	}
}

func (s *ChallengeService) Catalog() *catalog.Catalog {
	return s.catalog
}

// Join enrolls the user in a catalog template. The duplicate check reads the
// user's enrollments first and is not atomic with the write.
func (s *ChallengeService) Join(ctx context.Context, userID, templateID string) (*challenge.Enrollment, error) {
	if userID == "" {
		return nil, errs.ErrNotAuthenticated
	}
	tpl, ok := s.catalog.Get(templateID)
	if !ok {
		return nil, fmt.Errorf("%w: challenge %s", errs.ErrNotFound, templateID)
	}

	enrolled, err := s.enrolledIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	if enrolled[templateID] {
		return nil, fmt.Errorf("%w: %s", errs.ErrAlreadyEnrolled, templateID)
	}

	e := challenge.NewEnrollment(uuid.NewString(), userID, tpl, s.now())
	if err := s.enrollments.CreateEnrollment(ctx, e); err != nil {
		return nil, fmt.Errorf("failed to create enrollment: %w", err)
	}

	log.Printf("Challenges: user %s joined %s", userID, templateID)
	return e, nil
}

// Available lists the catalog templates the user has never enrolled in.
func (s *ChallengeService) Available(ctx context.Context, userID string) ([]challenge.Template, error) {
	if userID == "" {
		return nil, errs.ErrNotAuthenticated
	}
	enrolled, err := s.enrolledIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.catalog.AvailableFor(userID, enrolled), nil
}

func (s *ChallengeService) Get(ctx context.Context, userID, enrollmentID string) (*challenge.EnrollmentWithProgress, error) {
	e, err := s.owned(ctx, userID, enrollmentID)
	if err != nil {
		return nil, err
	}
	return s.Evaluate(ctx, e)
}

// ListForUser returns every enrollment of the user with derived progress.
// Progress is computed concurrently; the first failure cancels the rest.
func (s *ChallengeService) ListForUser(ctx context.Context, userID string) ([]*challenge.EnrollmentWithProgress, error) {
	if userID == "" {
		return nil, errs.ErrNotAuthenticated
	}
	enrollments, err := s.enrollments.ListEnrollments(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list enrollments: %w", err)
	}

	results := make([]*challenge.EnrollmentWithProgress, len(enrollments))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(evaluateConcurrency)
	for i, e := range enrollments {
		i, e := i, e
		e.Normalize(s.catalog.Get)
		g.Go(func() error {
			view, err := s.Evaluate(gctx, e)
			if err != nil {
				return err
			}
			results[i] = view
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Evaluate derives the enrollment's progress. An active enrollment that reaches
// 100% is transitioned to completed and its achievements are awarded. Completed
// enrollments report the progress frozen at completion.
func (s *ChallengeService) Evaluate(ctx context.Context, e *challenge.Enrollment) (*challenge.EnrollmentWithProgress, error) {
	if e.Status == challenge.StatusCompleted {
		if err := s.awardCompletion(ctx, e); err != nil {
			return nil, err
		}
		frozen := engine.Build(e.Progress, e.ChallengeData.Target)
		frozen.Completed = true
		return &challenge.EnrollmentWithProgress{Enrollment: e, Derived: frozen}, nil
	}

	p, err := s.engine.Compute(ctx, engine.ParamsFor(e))
	if err != nil {
		return nil, fmt.Errorf("failed to evaluate enrollment %s: %w", e.ID, err)
	}

	if p.Completed && !p.Unsupported {
		completed, err := s.complete(ctx, e.UserID, e.ID, p.Current)
		if err != nil {
			return nil, err
		}
		e = completed
	}
	return &challenge.EnrollmentWithProgress{Enrollment: e, Derived: p}, nil
}

// Complete is the explicit transition for screens that mark a challenge done,
// including challenges whose metric has no progress rule.
func (s *ChallengeService) Complete(ctx context.Context, userID, enrollmentID string) (*challenge.EnrollmentWithProgress, error) {
	e, err := s.owned(ctx, userID, enrollmentID)
	if err != nil {
		return nil, err
	}
	if e.Status == challenge.StatusCompleted {
		return s.Evaluate(ctx, e)
	}

	final := e.Progress
	p, err := s.engine.Compute(ctx, engine.ParamsFor(e))
	if err != nil {
		return nil, fmt.Errorf("failed to evaluate enrollment %s: %w", e.ID, err)
	}
	if !p.Unsupported {
		final = p.Current
	}

	completed, err := s.complete(ctx, userID, e.ID, final)
	if err != nil {
		return nil, err
	}
	return s.Evaluate(ctx, completed)
}

// complete flips an active enrollment to completed inside a store transaction.
// Achievements are ensured on every call, not only the transitioning one.
func (s *ChallengeService) complete(ctx context.Context, userID, enrollmentID string, final float64) (*challenge.Enrollment, error) {
	now := s.now()
	var transitioned bool

	e, err := s.enrollments.UpdateEnrollment(ctx, enrollmentID, func(e *challenge.Enrollment) error {
		transitioned = false
		if e.UserID != userID {
			return fmt.Errorf("%w: enrollment %s", errs.ErrNotFound, enrollmentID)
		}
		if e.Status == challenge.StatusCompleted {
			return nil
		}
		e.Status = challenge.StatusCompleted
		e.Progress = final
		e.CompletedAt = &now
		transitioned = true
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to complete enrollment: %w", err)
	}
	e.Normalize(s.catalog.Get)

	if transitioned {
		metrics.Completions.WithLabelValues("challenge").Inc()
		log.Printf("Challenges: user %s completed %s", userID, e.ChallengeID)
	}
	if err := s.awardCompletion(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

// awardCompletion makes sure a completed enrollment's achievements are in the ledger.
func (s *ChallengeService) awardCompletion(ctx context.Context, e *challenge.Enrollment) error {
	err := s.achievements.EnsureAwarded(ctx, e.UserID, achievement.ChallengeCompleted, achievement.ForChallenge(e.ChallengeID))
	if err != nil {
		log.Printf("Challenges: failed to award completion of %s to user %s: %v", e.ChallengeID, e.UserID, err)
	}
	return err
}

func (s *ChallengeService) owned(ctx context.Context, userID, enrollmentID string) (*challenge.Enrollment, error) {
	if userID == "" {
		return nil, errs.ErrNotAuthenticated
	}
	e, err := s.enrollments.GetEnrollment(ctx, enrollmentID)
	if err != nil {
		return nil, err
	}
	if e.UserID != userID {
		return nil, fmt.Errorf("%w: enrollment %s", errs.ErrNotFound, enrollmentID)
	}
	e.Normalize(s.catalog.Get)
	return e, nil
}

func (s *ChallengeService) enrolledIDs(ctx context.Context, userID string) (map[string]bool, error) {
	enrollments, err := s.enrollments.ListEnrollments(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list enrollments: %w", err)
	}
	ids := make(map[string]bool, len(enrollments))
	for _, e := range enrollments {
		ids[e.ChallengeID] = true
	}
	return ids, nil
}

var _ ProgressEngine = (*engine.Engine)(nil)
