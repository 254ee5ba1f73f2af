package notification

import "time"

type NotificationType string

const (
	NotificationAchievement NotificationType = "achievement"
)

// DeviceToken is an FCM registration token for one of the user's devices.
type DeviceToken struct {
	Token     string    `json:"token" firestore:"token" db:"token"`
	Platform  string    `json:"platform" firestore:"platform" db:"platform"`
	CreatedAt time.Time `json:"createdAt" firestore:"createdAt" db:"created_at"`
}

// Push is one message queued for delivery to every device of a user.
type Push struct {
	UserID string           `json:"userId"`
	Type   NotificationType `json:"type"`
	Title  string           `json:"title"`
	Body   string           `json:"body"`
	Data   map[string]any   `json:"data"`
}
