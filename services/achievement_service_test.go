package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"congregationAPI/internal/errs"
	"congregationAPI/internal/notification"
)

func TestAward_IsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	added, err := f.achievements.Award(ctx, "user-1", "goal_completed")
	require.NoError(t, err)
	assert.True(t, added)

	added, err = f.achievements.Award(ctx, "user-1", "goal_completed")
	require.NoError(t, err)
	assert.False(t, added)

	ledger, err := f.achievements.List(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "user-1", ledger.UserID)
	assert.Equal(t, []string{"goal_completed"}, ledger.Achievements)
	assert.Equal(t, 1, f.notifier.count())
}

func TestAward_PushDescribesChallenge(t *testing.T) {
	f := newFixture(t)

	_, err := f.achievements.Award(context.Background(), "user-1", "challenge_prayer-7-day")
	require.NoError(t, err)

	require.Equal(t, 1, f.notifier.count())
	push := f.notifier.pushes[0]
	assert.Equal(t, "user-1", push.UserID)
	assert.Equal(t, notification.NotificationAchievement, push.Type)
	assert.Contains(t, push.Body, "7-Day Prayer Streak")
	assert.Equal(t, "challenge_prayer-7-day", push.Data["achievementId"])
}

func TestAward_Errors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.achievements.Award(ctx, "", "goal_completed")
	assert.ErrorIs(t, err, errs.ErrNotAuthenticated)

	_, err = f.achievements.Award(ctx, "user-1", " ")
	assert.ErrorIs(t, err, errs.ErrValidation)

	_, err = f.achievements.List(ctx, "")
	assert.ErrorIs(t, err, errs.ErrNotAuthenticated)
}

func TestListAchievements_EmptyLedger(t *testing.T) {
	f := newFixture(t)

	ledger, err := f.achievements.List(context.Background(), "user-1")
	require.NoError(t, err)
	assert.NotNil(t, ledger.Achievements)
	assert.Empty(t, ledger.Achievements)
}

func TestEnsureAwarded_AddsOnlyMissingIDs(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.achievements.Award(ctx, "user-1", "challenge_completed")
	require.NoError(t, err)

	require.NoError(t, f.achievements.EnsureAwarded(ctx, "user-1", "challenge_completed", "challenge_prayer-7-day"))
	require.NoError(t, f.achievements.EnsureAwarded(ctx, "user-1", "challenge_completed", "challenge_prayer-7-day"))

	ledger, err := f.achievements.List(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"challenge_completed", "challenge_prayer-7-day"}, ledger.Achievements)
	assert.Equal(t, 2, f.notifier.count())
}

func TestEnsureAwarded_LedgerFailure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.store.failAwards = 1
	err := f.achievements.EnsureAwarded(ctx, "user-1", "goal_completed")
	assert.ErrorIs(t, err, errLedgerUnavailable)
	assert.Zero(t, f.notifier.count())

	assert.ErrorIs(t, f.achievements.EnsureAwarded(ctx, "", "goal_completed"), errs.ErrNotAuthenticated)
}
