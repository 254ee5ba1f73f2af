package services_test

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"congregationAPI/internal/errs"
	"congregationAPI/internal/notification"
	"congregationAPI/internal/types/activity"
	"congregationAPI/internal/types/challenge"
	"congregationAPI/internal/types/goal"
)

// memStore is an in-memory services.Store. Updates hold the lock for the
// whole read-modify-write, like a serialised store transaction.
type memStore struct {
	mu           sync.Mutex
	enrollments  map[string]challenge.Enrollment
	goals        map[string]goal.Goal
	achievements map[string]map[string]bool
	devices      map[string][]notification.DeviceToken

	prayers   []activity.PrayerEntry
	volunteer []activity.VolunteerApplication
	reading   []activity.ReadingLog

	listErr error
	// failAwards makes the next n AddAchievement calls fail.
	failAwards int
}

var errLedgerUnavailable = errors.New("ledger unavailable")

func newMemStore() *memStore {
	return &memStore{
		enrollments:  map[string]challenge.Enrollment{},
		goals:        map[string]goal.Goal{},
		achievements: map[string]map[string]bool{},
		devices:      map[string][]notification.DeviceToken{},
	}
}

func (m *memStore) CreateEnrollment(ctx context.Context, e *challenge.Enrollment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.enrollments[e.ID] = *e
	return nil
}

func (m *memStore) GetEnrollment(ctx context.Context, id string) (*challenge.Enrollment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.enrollments[id]
	if !ok {
		return nil, fmt.Errorf("%w: enrollment %s", errs.ErrNotFound, id)
	}
	return &e, nil
}

func (m *memStore) ListEnrollments(ctx context.Context, userID string) ([]*challenge.Enrollment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	var out []*challenge.Enrollment
	for _, e := range m.enrollments {
		if e.UserID == userID {
			e := e
			out = append(out, &e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *memStore) UpdateEnrollment(ctx context.Context, id string, fn func(e *challenge.Enrollment) error) (*challenge.Enrollment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.enrollments[id]
	if !ok {
		return nil, fmt.Errorf("%w: enrollment %s", errs.ErrNotFound, id)
	}
	if err := fn(&e); err != nil {
		return nil, err
	}
	m.enrollments[id] = e
	return &e, nil
}

func (m *memStore) CreateGoal(ctx context.Context, g *goal.Goal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.goals[g.ID] = *g
	return nil
}

func (m *memStore) GetGoal(ctx context.Context, id string) (*goal.Goal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.goals[id]
	if !ok {
		return nil, fmt.Errorf("%w: goal %s", errs.ErrNotFound, id)
	}
	return &g, nil
}

func (m *memStore) ListGoals(ctx context.Context, userID string) ([]*goal.Goal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*goal.Goal
	for _, g := range m.goals {
		if g.UserID == userID {
			g := g
			out = append(out, &g)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *memStore) UpdateGoal(ctx context.Context, id string, fn func(g *goal.Goal) error) (*goal.Goal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.goals[id]
	if !ok {
		return nil, fmt.Errorf("%w: goal %s", errs.ErrNotFound, id)
	}
	if err := fn(&g); err != nil {
		return nil, err
	}
	m.goals[id] = g
	return &g, nil
}

func (m *memStore) DeleteGoal(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.goals, id)
	return nil
}

func (m *memStore) AddAchievement(ctx context.Context, userID, achievementID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAwards > 0 {
		m.failAwards--
		return false, errLedgerUnavailable
	}
	set, ok := m.achievements[userID]
	if !ok {
		set = map[string]bool{}
		m.achievements[userID] = set
	}
	if set[achievementID] {
		return false, nil
	}
	set[achievementID] = true
	return true, nil
}

func (m *memStore) ListAchievements(ctx context.Context, userID string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for id := range m.achievements[userID] {
		out = append(out, id)
	}
	return out, nil
}

func (m *memStore) AddDeviceToken(ctx context.Context, userID string, token notification.DeviceToken) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.devices[userID] {
		if t.Token == token.Token {
			return nil
		}
	}
	m.devices[userID] = append(m.devices[userID], token)
	return nil
}

func (m *memStore) DeviceTokens(ctx context.Context, userID string) ([]notification.DeviceToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]notification.DeviceToken(nil), m.devices[userID]...), nil
}

func (m *memStore) PrayerEntries(ctx context.Context, userID string, since time.Time) ([]activity.PrayerEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []activity.PrayerEntry
	for _, p := range m.prayers {
		if p.UserID == userID && !p.CreatedAt.Before(since) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memStore) VolunteerApplications(ctx context.Context, userID string) ([]activity.VolunteerApplication, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []activity.VolunteerApplication
	for _, v := range m.volunteer {
		if v.UserID == userID {
			out = append(out, v)
		}
	}
	return out, nil
}

func (m *memStore) ReadingLogs(ctx context.Context, userID string, since time.Time) ([]activity.ReadingLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []activity.ReadingLog
	for _, r := range m.reading {
		if r.UserID == userID && !r.CompletedAt.Before(since) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memStore) Ping(ctx context.Context) error { return nil }

func (m *memStore) Close() error { return nil }

func (m *memStore) addPrayers(userID string, at ...time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, t := range at {
		m.prayers = append(m.prayers, activity.PrayerEntry{ID: fmt.Sprintf("%s-p%d", userID, len(m.prayers)+i), UserID: userID, CreatedAt: t})
	}
}

// recordingNotifier collects dispatched pushes.
type recordingNotifier struct {
	mu     sync.Mutex
	pushes []*notification.Push
}

func (r *recordingNotifier) Dispatch(ctx context.Context, push *notification.Push) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pushes = append(r.pushes, push)
}

func (r *recordingNotifier) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pushes)
}
