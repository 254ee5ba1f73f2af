package engine

import (
	"context"
	"fmt"
	"log"
	"time"

	"congregationAPI/internal/metrics"
	"congregationAPI/internal/types/activity"
	"congregationAPI/internal/types/challenge"
	"congregationAPI/internal/types/progress"
)

// ActivitySource is the read-only view of activity records progress is computed from.
type ActivitySource interface {
	PrayerEntries(ctx context.Context, userID string, since time.Time) ([]activity.PrayerEntry, error)
	VolunteerApplications(ctx context.Context, userID string) ([]activity.VolunteerApplication, error)
	ReadingLogs(ctx context.Context, userID string, since time.Time) ([]activity.ReadingLog, error)
}

type Metric struct {
	Category challenge.Category
	Unit     string
}

func (m Metric) String() string {
	return string(m.Category) + "/" + m.Unit
}

// Rule computes the raw input of one metric. Streak rules set Days,
// accumulative rules set Values.
type Rule struct {
	Type   challenge.ProgressType
	Days   func(ctx context.Context, src ActivitySource, userID string, since time.Time) ([]time.Time, error)
	Values func(ctx context.Context, src ActivitySource, userID string) ([]float64, error)
}

type Params struct {
	UserID   string
	Type     challenge.ProgressType
	Category challenge.Category
	Unit     string
	Target   float64
}

// ParamsFor builds the computation parameters from an enrollment snapshot.
func ParamsFor(e *challenge.Enrollment) Params {
	return Params{
		UserID:   e.UserID,
		Type:     e.ChallengeData.Type,
		Category: e.ChallengeData.Category,
		Unit:     e.ChallengeData.Unit,
		Target:   e.ChallengeData.Target,
	}
}

type Engine struct {
	source       ActivitySource
	rules        map[Metric]Rule
	loc          *time.Location
	lookbackDays int
	now          func() time.Time
}

type Option func(*Engine)

func WithLocation(loc *time.Location) Option {
	return func(e *Engine) {
		if loc != nil {
			e.loc = loc
		}
	}
}

// WithLookbackDays bounds how far back streak queries read.
func WithLookbackDays(days int) Option {
	return func(e *Engine) {
		if days > 0 {
			e.lookbackDays = days
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

func WithRule(m Metric, r Rule) Option {
	return func(e *Engine) { e.rules[m] = r }
}

func NewEngine(source ActivitySource, opts ...Option) *Engine {
	e := &Engine{
		source:       source,
		rules:        DefaultRules(),
		loc:          time.UTC,
		lookbackDays: 365,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) Supports(p Params) bool {
	r, ok := e.rules[Metric{Category: p.Category, Unit: p.Unit}]
	return ok && r.Type == p.Type
}

// Compute derives progress for p. A metric with no registered rule yields an
// Unsupported result rather than an error.
func (e *Engine) Compute(ctx context.Context, p Params) (progress.Progress, error) {
	metric := Metric{Category: p.Category, Unit: p.Unit}
	rule, ok := e.rules[metric]
	if !ok || rule.Type != p.Type {
		log.Printf("Progress: no %s rule registered for metric %s", p.Type, metric)
		metrics.UnsupportedMetrics.WithLabelValues(metric.String()).Inc()
		return progress.Progress{
			Target:      p.Target,
			Unsupported: true,
			Metric:      metric.String(),
		}, nil
	}

	metrics.ProgressEvaluations.WithLabelValues(string(p.Type)).Inc()

	var current float64
	switch p.Type {
	case challenge.ProgressStreak:
		now := e.now().In(e.loc)
		since := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, e.loc).AddDate(0, 0, -e.lookbackDays)
		days, err := rule.Days(ctx, e.source, p.UserID, since)
		if err != nil {
			return progress.Progress{}, fmt.Errorf("failed to compute %s progress: %w", metric, err)
		}
		current = float64(StreakLength(days, now, e.loc))
	case challenge.ProgressAccumulative:
		values, err := rule.Values(ctx, e.source, p.UserID)
		if err != nil {
			return progress.Progress{}, fmt.Errorf("failed to compute %s progress: %w", metric, err)
		}
		current = Sum(values)
	}

	result := Build(current, p.Target)
	result.Metric = metric.String()
	return result, nil
}
