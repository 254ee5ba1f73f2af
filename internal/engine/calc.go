package engine

import (
	"time"

	"congregationAPI/internal/types/progress"
)

const dayLayout = "2006-01-02"

// StreakLength counts the consecutive calendar days in loc, ending today or
// yesterday, that hold at least one timestamp. The walk stops at the first gap.
func StreakLength(days []time.Time, now time.Time, loc *time.Location) int {
	if loc == nil {
		loc = time.UTC
	}
	active := make(map[string]bool, len(days))
	for _, d := range days {
		active[d.In(loc).Format(dayLayout)] = true
	}

	n := now.In(loc)
	cursor := time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, loc)
	if !active[cursor.Format(dayLayout)] {
		// today may still be credited later; the run can end yesterday
		cursor = cursor.AddDate(0, 0, -1)
	}

	streak := 0
	for active[cursor.Format(dayLayout)] {
		streak++
		cursor = cursor.AddDate(0, 0, -1)
	}
	return streak
}

// Sum adds the non-negative values.
func Sum(values []float64) float64 {
	total := 0.0
	for _, v := range values {
		if v > 0 {
			total += v
		}
	}
	return total
}

// Percentage is min(current/target, 1) * 100, clamped to [0, 100].
func Percentage(current, target float64) float64 {
	if target <= 0 || current <= 0 {
		return 0
	}
	ratio := current / target
	if ratio > 1 {
		ratio = 1
	}
	return ratio * 100
}

// Build derives the progress triple for a current value against target.
func Build(current, target float64) progress.Progress {
	if current < 0 {
		current = 0
	}
	pct := Percentage(current, target)
	return progress.Progress{
		Current:    current,
		Target:     target,
		Percentage: pct,
		Completed:  pct >= 100,
	}
}
