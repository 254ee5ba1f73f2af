package services

import (
	"context"
	"time"

	"congregationAPI/internal/engine"
	"congregationAPI/internal/notification"
	"congregationAPI/internal/types/challenge"
	"congregationAPI/internal/types/goal"
	"congregationAPI/internal/types/progress"
)

// EnrollmentRepository stores userChallenges records. UpdateEnrollment runs
// fn inside a store transaction; fn may be called more than once and must not
// have side effects beyond mutating the record.
type EnrollmentRepository interface {
	CreateEnrollment(ctx context.Context, e *challenge.Enrollment) error
	GetEnrollment(ctx context.Context, id string) (*challenge.Enrollment, error)
	ListEnrollments(ctx context.Context, userID string) ([]*challenge.Enrollment, error)
	UpdateEnrollment(ctx context.Context, id string, fn func(e *challenge.Enrollment) error) (*challenge.Enrollment, error)
}

// GoalRepository stores userGoals records. UpdateGoal has the same
// transactional contract as UpdateEnrollment.
type GoalRepository interface {
	CreateGoal(ctx context.Context, g *goal.Goal) error
	GetGoal(ctx context.Context, id string) (*goal.Goal, error)
	ListGoals(ctx context.Context, userID string) ([]*goal.Goal, error)
	UpdateGoal(ctx context.Context, id string, fn func(g *goal.Goal) error) (*goal.Goal, error)
	DeleteGoal(ctx context.Context, id string) error
}

// AchievementRepository is the append-only ledger. AddAchievement is an atomic
// set-add and reports whether the id was new.
type AchievementRepository interface {
	AddAchievement(ctx context.Context, userID, achievementID string) (bool, error)
	ListAchievements(ctx context.Context, userID string) ([]string, error)
}

type DeviceRepository interface {
	AddDeviceToken(ctx context.Context, userID string, token notification.DeviceToken) error
	DeviceTokens(ctx context.Context, userID string) ([]notification.DeviceToken, error)
}

// Store is everything one backend provides.
type Store interface {
	EnrollmentRepository
	GoalRepository
	AchievementRepository
	DeviceRepository
	engine.ActivitySource
	Ping(ctx context.Context) error
	Close() error
}

type ProgressEngine interface {
	Compute(ctx context.Context, p engine.Params) (progress.Progress, error)
}

type clock func() time.Time
