package engine

import (
	"context"
	"time"

	"congregationAPI/internal/types/activity"
	"congregationAPI/internal/types/challenge"
)

// DefaultRules returns the metrics backed by the known activity sources.
func DefaultRules() map[Metric]Rule {
	return map[Metric]Rule{
		{Category: challenge.CategoryPrayer, Unit: "days"}: {
			Type: challenge.ProgressStreak,
			Days: prayerDays,
		},
		{Category: challenge.CategoryPrayer, Unit: "prayers"}: {
			Type:   challenge.ProgressAccumulative,
			Values: prayerCount,
		},
		{Category: challenge.CategoryBible, Unit: "days"}: {
			Type: challenge.ProgressStreak,
			Days: readingDays,
		},
		{Category: challenge.CategoryBible, Unit: "chapters"}: {
			Type:   challenge.ProgressAccumulative,
			Values: chaptersRead,
		},
		{Category: challenge.CategoryService, Unit: "hours"}: {
			Type:   challenge.ProgressAccumulative,
			Values: approvedHours,
		},
	}
}

func prayerDays(ctx context.Context, src ActivitySource, userID string, since time.Time) ([]time.Time, error) {
	entries, err := src.PrayerEntries(ctx, userID, since)
	if err != nil {
		return nil, err
	}
	days := make([]time.Time, 0, len(entries))
	for _, e := range entries {
		days = append(days, e.CreatedAt)
	}
	return days, nil
}

func prayerCount(ctx context.Context, src ActivitySource, userID string) ([]float64, error) {
	entries, err := src.PrayerEntries(ctx, userID, time.Time{})
	if err != nil {
		return nil, err
	}
	values := make([]float64, len(entries))
	for i := range entries {
		values[i] = 1
	}
	return values, nil
}

func readingDays(ctx context.Context, src ActivitySource, userID string, since time.Time) ([]time.Time, error) {
	logs, err := src.ReadingLogs(ctx, userID, since)
	if err != nil {
		return nil, err
	}
	days := make([]time.Time, 0, len(logs))
	for _, l := range logs {
		days = append(days, l.CompletedAt)
	}
	return days, nil
}

func chaptersRead(ctx context.Context, src ActivitySource, userID string) ([]float64, error) {
	logs, err := src.ReadingLogs(ctx, userID, time.Time{})
	if err != nil {
		return nil, err
	}
	values := make([]float64, 0, len(logs))
	for _, l := range logs {
		values = append(values, l.ChaptersRead)
	}
	return values, nil
}

func approvedHours(ctx context.Context, src ActivitySource, userID string) ([]float64, error) {
	apps, err := src.VolunteerApplications(ctx, userID)
	if err != nil {
		return nil, err
	}
	values := make([]float64, 0, len(apps))
	for _, a := range apps {
		if a.Status != activity.VolunteerStatusApproved {
			continue
		}
		values = append(values, a.HoursCompleted)
	}
	return values, nil
}
