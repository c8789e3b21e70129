package domain

import (
	"context"
	"time"
)

// Reliability ledger constants. Points never decay; crossing the threshold
// blocks the musician for the full block duration.
const (
	BlockThresholdPoints = 9
	BlockDuration        = 30 * 24 * time.Hour
)

// Musician represents a church musician with reliability and gamification state.
// swagger:model Musician
type Musician struct {
	ID            string     `json:"id"`
	ChurchID      string     `json:"church_id"`
	Name          string     `json:"name"`
	Email         string     `json:"email"`
	PenaltyPoints int        `json:"penalty_points"`
	IsBlocked     bool       `json:"is_blocked"`
	BlockedUntil  *time.Time `json:"blocked_until,omitempty"`
	TotalPoints   int        `json:"total_points"`
	Level         int        `json:"level"`
	Streak        int        `json:"streak"`
	LastEventDate *time.Time `json:"last_event_date,omitempty"`
	// Availability maps a weekly slot label (e.g. "saturday_morning") to a
	// declared availability. A missing slot, or a nil map, means available.
	Availability       map[string]bool `json:"availability,omitempty"`
	Instruments        []string        `json:"instruments"`
	VocalParts         []string        `json:"vocal_parts"`
	TotalEvents        int             `json:"total_events"`
	TotalCancellations int             `json:"total_cancellations"`
	IsGuest            bool            `json:"is_guest"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

// BlockedAt reports whether the musician is blocked at the given instant.
// The block flag is not cleared eagerly when blockedUntil elapses; every
// authorization-time check must go through this method instead of reading
// IsBlocked directly.
func (m *Musician) BlockedAt(now time.Time) bool {
	if !m.IsBlocked {
		return false
	}
	if m.BlockedUntil != nil && !now.Before(*m.BlockedUntil) {
		return false
	}
	return true
}

// AvailableForSlot reports whether the musician declared availability for the
// slot. The policy is fail-open: no record, or no explicit false, means
// available.
func (m *Musician) AvailableForSlot(slot string) bool {
	if m.Availability == nil {
		return true
	}
	available, ok := m.Availability[slot]
	if !ok {
		return true
	}
	return available
}

// PlaysRole reports whether the musician can cover the requested role:
// "singer" requires at least one vocal part; any other role string must
// appear in the instrument list.
func (m *Musician) PlaysRole(role string) bool {
	if role == RoleSinger {
		return len(m.VocalParts) > 0
	}
	for _, instrument := range m.Instruments {
		if instrument == role {
			return true
		}
	}
	return false
}

// RoleSinger is the roster role satisfied by vocal parts rather than instruments.
const RoleSinger = "singer"

// MusicianRepository defines the interface for musician storage.
// Penalty/gamification state has dedicated update methods so that all
// mutation flows through the ledger and gamification services.
type MusicianRepository interface {
	Create(ctx context.Context, m *Musician) error
	GetByID(ctx context.Context, id string) (*Musician, error)
	GetByEmail(ctx context.Context, email string) (*Musician, error)
	ListByChurchID(ctx context.Context, churchID string) ([]*Musician, error)
	UpdateAvailability(ctx context.Context, id string, availability map[string]bool) error
	UpdateSkills(ctx context.Context, id string, instruments, vocalParts []string) error
	UpdatePenaltyState(ctx context.Context, id string, penaltyPoints int, isBlocked bool, blockedUntil *time.Time) error
	UpdateGamification(ctx context.Context, id string, totalPoints, level int) error
	UpdateStreak(ctx context.Context, id string, streak int, lastEventDate time.Time) error
	IncrementEventCount(ctx context.Context, id string) error
	IncrementCancellationCount(ctx context.Context, id string) error
}
