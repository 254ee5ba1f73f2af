package achievement

import "sort"

const (
	GoalCompleted      = "goal_completed"
	ChallengeCompleted = "challenge_completed"
)

// ForChallenge is the achievement awarded for completing a specific catalog challenge.
func ForChallenge(templateID string) string {
	return "challenge_" + templateID
}

type Ledger struct {
	UserID       string   `json:"userId"`
	Achievements []string `json:"achievements"`
}

// NewLedger returns a ledger with ids deduplicated and sorted.
func NewLedger(userID string, ids []string) *Ledger {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	sort.Strings(out)
	return &Ledger{UserID: userID, Achievements: out}
}
