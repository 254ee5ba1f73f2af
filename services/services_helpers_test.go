package services_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"congregationAPI/internal/catalog"
	"congregationAPI/internal/engine"
	"congregationAPI/internal/types/activity"
	"congregationAPI/services"
)

var testNow = time.Date(2024, time.March, 10, 15, 0, 0, 0, time.UTC)

func daysAgo(n int) time.Time {
	return testNow.AddDate(0, 0, -n)
}

type fixture struct {
	store        *memStore
	notifier     *recordingNotifier
	achievements *services.AchievementService
	challenges   *services.ChallengeService
	goals        *services.GoalService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	cat, err := catalog.Default()
	require.NoError(t, err)

	now := func() time.Time { return testNow }
	store := newMemStore()
	eng := engine.NewEngine(store, engine.WithClock(now))

	notifier := &recordingNotifier{}
	achievements := services.NewAchievementService(store, cat)
	achievements.SetNotifier(notifier)

	return &fixture{
		store:        store,
		notifier:     notifier,
		achievements: achievements,
		challenges:   services.NewChallengeService(cat, store, eng, achievements, now),
		goals:        services.NewGoalService(store, achievements, now),
	}
}

func ptr(v float64) *float64 {
	return &v
}

var volunteerSeq int

func volunteer(userID, status string, hours float64) activity.VolunteerApplication {
	volunteerSeq++
	return activity.VolunteerApplication{
		ID:             fmt.Sprintf("va-%d", volunteerSeq),
		UserID:         userID,
		Status:         status,
		HoursCompleted: hours,
	}
}
