package domain

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Achievement is a policy-driven unlockable. Requirement has the form
// "<metric>:<threshold>", e.g. "total_events:50".
// swagger:model Achievement
type Achievement struct {
	ID          string `json:"id"`
	Code        string `json:"code"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	Requirement string `json:"requirement"`
	BonusPoints int    `json:"bonus_points"`
}

// ParseRequirement splits the requirement into its metric name and threshold.
func (a *Achievement) ParseRequirement() (metric string, threshold int, err error) {
	parts := strings.SplitN(a.Requirement, ":", 2)
	if len(parts) != 2 {
		return "", 0, fmt.Errorf("malformed requirement %q: %w", a.Requirement, ErrInvalidInput)
	}
	threshold, err = strconv.Atoi(parts[1])
	if err != nil {
		return "", 0, fmt.Errorf("malformed requirement threshold %q: %w", a.Requirement, ErrInvalidInput)
	}
	return parts[0], threshold, nil
}

// MusicianAchievement records an unlocked achievement. The (musician,
// achievement) pair is unique; an achievement is never re-granted.
type MusicianAchievement struct {
	MusicianID    string    `json:"musician_id"`
	AchievementID string    `json:"achievement_id"`
	UnlockedAt    time.Time `json:"unlocked_at"`
}

// UnlockedAchievement bundles an achievement with its unlock time for
// musician-facing listings.
type UnlockedAchievement struct {
	Achievement *Achievement `json:"achievement"`
	UnlockedAt  time.Time    `json:"unlocked_at"`
}

// AchievementRepository defines storage for achievements and unlocks.
// Unlock must enforce the uniqueness of the pair and return ErrConflict on a
// duplicate, which evaluation treats as already unlocked.
type AchievementRepository interface {
	ListAll(ctx context.Context) ([]*Achievement, error)
	ListUnlockedByMusicianID(ctx context.Context, musicianID string) ([]*UnlockedAchievement, error)
	Unlock(ctx context.Context, musicianID, achievementID string, unlockedAt time.Time) error
}
