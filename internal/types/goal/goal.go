package goal

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"congregationAPI/internal/types/progress"
)

type Status string

const (
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
)

// Goal is a user-created target with self-reported progress.
type Goal struct {
	ID              string     `json:"id" firestore:"-" db:"id"`
	UserID          string     `json:"userId" firestore:"userId" db:"user_id"`
	Title           string     `json:"title" firestore:"title" db:"title"`
	Description     string     `json:"description" firestore:"description" db:"description"`
	Category        string     `json:"category" firestore:"category" db:"category"`
	Target          float64    `json:"target" firestore:"target" db:"target"`
	Unit            string     `json:"unit" firestore:"unit" db:"unit"`
	CurrentProgress float64    `json:"currentProgress" firestore:"currentProgress" db:"current_progress"`
	Deadline        *time.Time `json:"deadline,omitempty" firestore:"deadline" db:"deadline"`
	Status          Status     `json:"status" firestore:"status" db:"status"`
	CreatedAt       time.Time  `json:"createdAt" firestore:"createdAt" db:"created_at"`
	CompletedAt     *time.Time `json:"completedAt,omitempty" firestore:"completedAt,omitempty" db:"completed_at"`
}

func (g *Goal) Normalize() {
	if g.Status == "" {
		g.Status = StatusActive
	}
	if g.CurrentProgress < 0 {
		g.CurrentProgress = 0
	}
}

// ApplyProgress sets the new progress value and reports whether this call
// moved the goal from active to completed. A completed goal stays completed.
func (g *Goal) ApplyProgress(value float64, now time.Time) bool {
	g.CurrentProgress = value
	if g.Status == StatusCompleted {
		return false
	}
	if value >= g.Target {
		g.Status = StatusCompleted
		g.CompletedAt = &now
		return true
	}
	return false
}

type CreateRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	// Target accepts a JSON number or a numeric string.
	Target   any    `json:"target"`
	Unit     string `json:"unit"`
	Deadline string `json:"deadline,omitempty"`
}

type ProgressRequest struct {
	Value *float64 `json:"value"`
}

type IncrementRequest struct {
	Delta *float64 `json:"delta"`
}

type GoalWithProgress struct {
	*Goal
	Derived progress.Progress `json:"derivedProgress"`
}

// ParseTarget converts a decoded JSON target into a finite number.
func ParseTarget(v any) (float64, error) {
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case int:
		f = float64(t)
	case json.Number:
		parsed, err := t.Float64()
		if err != nil {
			return 0, fmt.Errorf("target %q is not a number", t.String())
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, fmt.Errorf("target %q is not a number", t)
		}
		f = parsed
	case nil:
		return 0, fmt.Errorf("target is required")
	default:
		return 0, fmt.Errorf("target has unsupported type %T", v)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("target is not a finite number")
	}
	return f, nil
}

// ParseDeadline accepts YYYY-MM-DD or RFC 3339. An empty string means no deadline.
func ParseDeadline(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, fmt.Errorf("invalid deadline %q, use YYYY-MM-DD or RFC 3339", s)
	}
	return &t, nil
}
