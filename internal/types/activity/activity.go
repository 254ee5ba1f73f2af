package activity

import "time"

const VolunteerStatusApproved = "approved"

// PrayerEntry is a prayer-journal record. Only the owner and timestamp matter here.
type PrayerEntry struct {
	ID        string    `json:"id" firestore:"-" db:"id"`
	UserID    string    `json:"userId" firestore:"userId" db:"user_id"`
	CreatedAt time.Time `json:"createdAt" firestore:"createdAt" db:"created_at"`
}

type VolunteerApplication struct {
	ID             string  `json:"id" firestore:"-" db:"id"`
	UserID         string  `json:"userId" firestore:"userId" db:"user_id"`
	Status         string  `json:"status" firestore:"status" db:"status"`
	HoursCompleted float64 `json:"hoursCompleted" firestore:"hoursCompleted" db:"hours_completed"`
}

// ReadingLog records one completed reading-plan day.
type ReadingLog struct {
	ID           string    `json:"id" firestore:"-" db:"id"`
	UserID       string    `json:"userId" firestore:"userId" db:"user_id"`
	CompletedAt  time.Time `json:"completedAt" firestore:"completedAt" db:"completed_at"`
	ChaptersRead float64   `json:"chaptersRead" firestore:"chaptersRead" db:"chapters_read"`
}
