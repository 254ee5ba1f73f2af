package services_test

import (
	"context"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"congregationAPI/internal/errs"
	"congregationAPI/internal/metrics"
	"congregationAPI/internal/types/goal"
)

func createGoal(t *testing.T, f *fixture, userID string, target any) *goal.Goal {
	t.Helper()
	g, err := f.goals.Create(context.Background(), userID, &goal.CreateRequest{
		Title:  "Read Psalms",
		Target: target,
		Unit:   "chapters",
	})
	require.NoError(t, err)
	return g
}

func TestCreateGoal(t *testing.T) {
	f := newFixture(t)

	g, err := f.goals.Create(context.Background(), "user-1", &goal.CreateRequest{
		Title:       "  Memorise verses ",
		Description: "Romans 8",
		Category:    "bible",
		Target:      "12",
		Unit:        "verses",
		Deadline:    "2024-06-01",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, g.ID)
	assert.Equal(t, "Memorise verses", g.Title)
	assert.Equal(t, 12.0, g.Target)
	assert.Equal(t, goal.StatusActive, g.Status)
	assert.Zero(t, g.CurrentProgress)
	assert.Equal(t, testNow, g.CreatedAt)
	require.NotNil(t, g.Deadline)
	assert.Equal(t, time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC), *g.Deadline)
}

func TestCreateGoal_Validation(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name string
		req  goal.CreateRequest
	}{
		{"blank title", goal.CreateRequest{Title: "   ", Target: 5.0}},
		{"missing target", goal.CreateRequest{Title: "x"}},
		{"zero target", goal.CreateRequest{Title: "x", Target: 0.0}},
		{"negative target", goal.CreateRequest{Title: "x", Target: -3.0}},
		{"non-numeric target", goal.CreateRequest{Title: "x", Target: "ten"}},
		{"bad deadline", goal.CreateRequest{Title: "x", Target: 5.0, Deadline: "next week"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := tt.req
			_, err := f.goals.Create(context.Background(), "user-1", &req)
			assert.ErrorIs(t, err, errs.ErrValidation)
		})
	}

	_, err := f.goals.Create(context.Background(), "", &goal.CreateRequest{Title: "x", Target: 1.0})
	assert.ErrorIs(t, err, errs.ErrNotAuthenticated)
}

func TestUpdateProgress_CompletesOnceAndStaysCompleted(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	g := createGoal(t, f, "user-1", 10.0)

	before := testutil.ToFloat64(metrics.AchievementsAwarded.WithLabelValues("goal_completed"))

	view, err := f.goals.UpdateProgress(ctx, "user-1", g.ID, 4)
	require.NoError(t, err)
	assert.Equal(t, goal.StatusActive, view.Status)
	assert.Equal(t, 40.0, view.Derived.Percentage)

	view, err = f.goals.UpdateProgress(ctx, "user-1", g.ID, 10)
	require.NoError(t, err)
	assert.Equal(t, goal.StatusCompleted, view.Status)
	require.NotNil(t, view.CompletedAt)
	assert.True(t, view.Derived.Completed)

	view, err = f.goals.UpdateProgress(ctx, "user-1", g.ID, 12)
	require.NoError(t, err)
	assert.Equal(t, goal.StatusCompleted, view.Status)
	assert.Equal(t, 12.0, view.CurrentProgress)
	assert.Equal(t, 100.0, view.Derived.Percentage)

	// lowering progress never reopens the goal
	view, err = f.goals.UpdateProgress(ctx, "user-1", g.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, goal.StatusCompleted, view.Status)
	assert.True(t, view.Derived.Completed)

	ledger, err := f.achievements.List(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"goal_completed"}, ledger.Achievements)
	assert.Equal(t, 1, f.notifier.count())
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.AchievementsAwarded.WithLabelValues("goal_completed")))
}

func TestUpdateProgress_RetryAwardsAfterLedgerFailure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	g := createGoal(t, f, "user-1", 10.0)

	f.store.failAwards = 1
	_, err := f.goals.UpdateProgress(ctx, "user-1", g.ID, 10)
	require.ErrorIs(t, err, errLedgerUnavailable)

	stored, err := f.goals.Get(ctx, "user-1", g.ID)
	require.NoError(t, err)
	assert.Equal(t, goal.StatusCompleted, stored.Status)

	ledger, err := f.achievements.List(ctx, "user-1")
	require.NoError(t, err)
	assert.Empty(t, ledger.Achievements)

	for i := 0; i < 2; i++ {
		view, err := f.goals.UpdateProgress(ctx, "user-1", g.ID, 10)
		require.NoError(t, err)
		assert.Equal(t, goal.StatusCompleted, view.Status)
	}

	ledger, err = f.achievements.List(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"goal_completed"}, ledger.Achievements)
	assert.Equal(t, 1, f.notifier.count())
}

func TestUpdateProgress_SecondGoalDoesNotDuplicateAchievement(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first := createGoal(t, f, "user-1", 1.0)
	second := createGoal(t, f, "user-1", 2.0)

	_, err := f.goals.UpdateProgress(ctx, "user-1", first.ID, 1)
	require.NoError(t, err)
	view, err := f.goals.UpdateProgress(ctx, "user-1", second.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, goal.StatusCompleted, view.Status)

	ledger, err := f.achievements.List(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"goal_completed"}, ledger.Achievements)
	assert.Equal(t, 1, f.notifier.count())
}

func TestUpdateProgress_Errors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	g := createGoal(t, f, "user-1", 10.0)

	_, err := f.goals.UpdateProgress(ctx, "user-1", g.ID, -1)
	assert.ErrorIs(t, err, errs.ErrValidation)

	_, err = f.goals.UpdateProgress(ctx, "user-1", g.ID, math.NaN())
	assert.ErrorIs(t, err, errs.ErrValidation)

	_, err = f.goals.UpdateProgress(ctx, "", g.ID, 1)
	assert.ErrorIs(t, err, errs.ErrNotAuthenticated)

	_, err = f.goals.UpdateProgress(ctx, "user-2", g.ID, 1)
	assert.ErrorIs(t, err, errs.ErrNotFound)

	_, err = f.goals.UpdateProgress(ctx, "user-1", "missing", 1)
	assert.ErrorIs(t, err, errs.ErrNotFound)

	stored, err := f.store.GetGoal(ctx, g.ID)
	require.NoError(t, err)
	assert.Zero(t, stored.CurrentProgress)
}

func TestIncrementProgress(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	g := createGoal(t, f, "user-1", 10.0)

	view, err := f.goals.IncrementProgress(ctx, "user-1", g.ID, 4)
	require.NoError(t, err)
	assert.Equal(t, 4.0, view.CurrentProgress)

	view, err = f.goals.IncrementProgress(ctx, "user-1", g.ID, -10)
	require.NoError(t, err)
	assert.Zero(t, view.CurrentProgress)

	view, err = f.goals.IncrementProgress(ctx, "user-1", g.ID, 10)
	require.NoError(t, err)
	assert.Equal(t, goal.StatusCompleted, view.Status)

	_, err = f.goals.IncrementProgress(ctx, "user-1", g.ID, math.Inf(1))
	assert.ErrorIs(t, err, errs.ErrValidation)
}

func TestIncrementProgress_ConcurrentUpdatesAreNotLost(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	g := createGoal(t, f, "user-1", 20.0)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.goals.IncrementProgress(ctx, "user-1", g.ID, 1)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	view, err := f.goals.Get(ctx, "user-1", g.ID)
	require.NoError(t, err)
	assert.Equal(t, 20.0, view.CurrentProgress)
	assert.Equal(t, goal.StatusCompleted, view.Status)
	assert.Equal(t, 1, f.notifier.count())
}

func TestListAndDeleteGoals(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	mine := createGoal(t, f, "user-1", 5.0)
	createGoal(t, f, "user-2", 5.0)

	goals, err := f.goals.List(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, goals, 1)
	assert.Equal(t, mine.ID, goals[0].ID)
	assert.Equal(t, 5.0, goals[0].Derived.Target)

	err = f.goals.Delete(ctx, "user-2", mine.ID)
	assert.ErrorIs(t, err, errs.ErrNotFound)

	require.NoError(t, f.goals.Delete(ctx, "user-1", mine.ID))
	_, err = f.goals.Get(ctx, "user-1", mine.ID)
	assert.ErrorIs(t, err, errs.ErrNotFound)

	_, err = f.goals.List(ctx, "")
	assert.ErrorIs(t, err, errs.ErrNotAuthenticated)
}
