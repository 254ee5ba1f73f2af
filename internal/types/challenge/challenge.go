package challenge

import (
	"time"

	"congregationAPI/internal/types/progress"
)

type Category string

const (
	CategoryBible     Category = "bible"
	CategoryPrayer    Category = "prayer"
	CategoryService   Category = "service"
	CategoryCommunity Category = "community"
	CategoryPersonal  Category = "personal"
)

func (c Category) Valid() bool {
	switch c {
	case CategoryBible, CategoryPrayer, CategoryService, CategoryCommunity, CategoryPersonal:
		return true
	}
	return false
}

type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

func (d Difficulty) Valid() bool {
	return d == DifficultyEasy || d == DifficultyMedium || d == DifficultyHard
}

type ProgressType string

const (
	ProgressStreak       ProgressType = "streak"
	ProgressAccumulative ProgressType = "accumulative"
)

func (p ProgressType) Valid() bool {
	return p == ProgressStreak || p == ProgressAccumulative
}

type Status string

const (
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
)

// Template is an immutable catalog definition of a joinable challenge.
type Template struct {
	ID           string       `json:"id" yaml:"id"`
	Title        string       `json:"title" yaml:"title"`
	Description  string       `json:"description" yaml:"description"`
	Category     Category     `json:"category" yaml:"category"`
	Difficulty   Difficulty   `json:"difficulty" yaml:"difficulty"`
	DurationDays *int         `json:"durationDays,omitempty" yaml:"durationDays"`
	Type         ProgressType `json:"type" yaml:"type"`
	Target       float64      `json:"target" yaml:"target"`
	Unit         string       `json:"unit" yaml:"unit"`
}

// Snapshot freezes the template fields stored on an enrollment at join time.
func (t Template) Snapshot() Data {
	var duration *int
	if t.DurationDays != nil {
		d := *t.DurationDays
		duration = &d
	}
	return Data{
		Title:       t.Title,
		Description: t.Description,
		Category:    t.Category,
		Difficulty:  t.Difficulty,
		Duration:    duration,
		Type:        t.Type,
		Target:      t.Target,
		Unit:        t.Unit,
	}
}

// Data is the challengeData sub-document of a userChallenges record.
type Data struct {
	Title       string       `json:"title" firestore:"title"`
	Description string       `json:"description" firestore:"description"`
	Category    Category     `json:"category" firestore:"category"`
	Difficulty  Difficulty   `json:"difficulty" firestore:"difficulty"`
	Duration    *int         `json:"duration,omitempty" firestore:"duration"`
	Type        ProgressType `json:"type" firestore:"type"`
	Target      float64      `json:"target" firestore:"target"`
	Unit        string       `json:"unit" firestore:"unit"`
}

type Enrollment struct {
	ID            string     `json:"id" firestore:"-" db:"id"`
	UserID        string     `json:"userId" firestore:"userId" db:"user_id"`
	ChallengeID   string     `json:"challengeId" firestore:"challengeId" db:"challenge_id"`
	ChallengeData Data       `json:"challengeData" firestore:"challengeData" db:"challenge_data"`
	Status        Status     `json:"status" firestore:"status" db:"status"`
	StartDate     time.Time  `json:"startDate" firestore:"startDate" db:"start_date"`
	EndDate       *time.Time `json:"endDate,omitempty" firestore:"endDate" db:"end_date"`
	Progress      float64    `json:"progress" firestore:"progress" db:"progress"`
	CreatedAt     time.Time  `json:"createdAt" firestore:"createdAt" db:"created_at"`
	CompletedAt   *time.Time `json:"completedAt,omitempty" firestore:"completedAt,omitempty" db:"completed_at"`
}

// NewEnrollment builds an active enrollment for userID starting at now.
func NewEnrollment(id, userID string, t Template, now time.Time) *Enrollment {
	e := &Enrollment{
		ID:            id,
		UserID:        userID,
		ChallengeID:   t.ID,
		ChallengeData: t.Snapshot(),
		Status:        StatusActive,
		StartDate:     now,
		CreatedAt:     now,
	}
	if t.DurationDays != nil {
		end := now.AddDate(0, 0, *t.DurationDays)
		e.EndDate = &end
	}
	return e
}

// Normalize fills defaults for records written by older clients. lookup may
// be nil; when set it resolves the catalog template for missing snapshot fields.
func (e *Enrollment) Normalize(lookup func(id string) (Template, bool)) {
	if e.Status == "" {
		e.Status = StatusActive
	}
	if e.StartDate.IsZero() {
		e.StartDate = e.CreatedAt
	}
	if lookup == nil {
		return
	}
	t, ok := lookup(e.ChallengeID)
	if !ok {
		return
	}
	d := &e.ChallengeData
	if d.Title == "" {
		d.Title = t.Title
	}
	if d.Category == "" {
		d.Category = t.Category
	}
	if d.Difficulty == "" {
		d.Difficulty = t.Difficulty
	}
	if d.Type == "" {
		d.Type = t.Type
	}
	if d.Target <= 0 {
		d.Target = t.Target
	}
	if d.Unit == "" {
		d.Unit = t.Unit
	}
	if d.Duration == nil && t.DurationDays != nil {
		dur := *t.DurationDays
		d.Duration = &dur
	}
}

type EnrollmentWithProgress struct {
	*Enrollment
	Derived progress.Progress `json:"derivedProgress"`
}
