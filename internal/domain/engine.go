package domain

import (
	"context"
	"time"
)

// ReliabilityLedger centralizes every penalty-state mutation. Callers must
// not write penalty fields through the musician repository directly.
type ReliabilityLedger interface {
	// ApplyPenalty adds points, evaluates the block threshold and appends a
	// penalty audit entry. The returned notification (new total and, when
	// blocking, the block duration) is dispatched by the caller after its
	// transaction commits.
	ApplyPenalty(ctx context.Context, musicianID string, points int, reason, description string, eventID, invitationID *string) (*Musician, *Notification, error)
}

// GamificationEngine centralizes point, level, streak and achievement
// mutations.
type GamificationEngine interface {
	// GrantPoints appends a point audit entry, adds to the musician's total
	// and recomputes the level.
	GrantPoints(ctx context.Context, musicianID string, amount int, action, reason string, eventID, invitationID *string) (*Musician, error)
	// UpdateStreak increments the streak when eventDate falls within the
	// streak window of the last event, else resets it to 1.
	UpdateStreak(ctx context.Context, musicianID string, eventDate time.Time) (*Musician, error)
	// EvaluateAchievements unlocks every achievement whose metric now meets
	// its threshold, granting bonus points through GrantPoints. Unlocked
	// achievements are never re-evaluated or re-granted.
	EvaluateAchievements(ctx context.Context, musicianID string) ([]*UnlockedAchievement, []*Notification, error)
}
