package domain

import (
	"context"
	"time"
)

// InvitationRequest is one entry in a director's send-invitations call.
type InvitationRequest struct {
	MusicianID string  `json:"musician_id"`
	Role       string  `json:"role"`
	Instrument *string `json:"instrument,omitempty"`
	VocalPart  *string `json:"vocal_part,omitempty"`
}

// CancelEventResult reports how many invitations an event cancellation
// touched.
type CancelEventResult struct {
	CancelledCount int `json:"cancelled_count"`
}

// EventService defines director-facing event operations.
type EventService interface {
	CreateEvent(ctx context.Context, caller AuthContext, event *Event) error
	GetEvent(ctx context.Context, caller AuthContext, eventID string) (*Event, error)
	// SendInvitations creates one PENDING invitation per musician, moves the
	// event to PUBLISHED, and notifies each invitee. Duplicate pairs and
	// currently blocked musicians are skipped, not errors.
	SendInvitations(ctx context.Context, caller AuthContext, eventID string, reqs []InvitationRequest) ([]*Invitation, error)
	// CancelEvent cancels the event and all its PENDING and CONFIRMED
	// invitations. Director-initiated cancellation never applies penalties,
	// regardless of forgivePenalty; the flag only changes notification
	// wording.
	CancelEvent(ctx context.Context, caller AuthContext, eventID, reason string, forgivePenalty bool) (*CancelEventResult, error)
	ListEventInvitations(ctx context.Context, caller AuthContext, eventID, search string, params PaginationParams) ([]*Invitation, int, error)
	SuggestRoster(ctx context.Context, caller AuthContext, eventID string, needs RosterNeeds) (*RosterSuggestion, error)
}

// InvitationService is the invitation state machine's entry point.
type InvitationService interface {
	// Respond applies the musician's action to the invitation. The status
	// write and every side effect (ledger, audit, point grants) commit in a
	// single transaction; notifications are dispatched after commit.
	Respond(ctx context.Context, caller AuthContext, invitationID string, action ResponseAction, reason string) (*Invitation, error)
	ListMyInvitations(ctx context.Context, caller AuthContext, params PaginationParams) ([]*InvitationWithEvent, int, error)
}

// MusicianStats summarizes a musician's reliability and gamification state.
type MusicianStats struct {
	Musician      *Musician `json:"musician"`
	LevelName     string    `json:"level_name"`
	LevelIcon     string    `json:"level_icon"`
	NextLevelAt   *int      `json:"next_level_at,omitempty"`
	BlockedNow    bool      `json:"blocked_now"`
	PenaltyPoints int       `json:"penalty_points"`
}

// MusicianService defines musician-facing profile and history operations.
type MusicianService interface {
	Get(ctx context.Context, caller AuthContext, musicianID string) (*Musician, error)
	UpdateAvailability(ctx context.Context, caller AuthContext, availability map[string]bool) (*Musician, error)
	UpdateSkills(ctx context.Context, caller AuthContext, instruments, vocalParts []string) (*Musician, error)
	Stats(ctx context.Context, caller AuthContext) (*MusicianStats, error)
	ListPenaltyHistory(ctx context.Context, caller AuthContext, params PaginationParams) ([]*PenaltyHistoryEntry, int, error)
	ListPointHistory(ctx context.Context, caller AuthContext, params PaginationParams) ([]*PointHistoryEntry, int, error)
	ListAchievements(ctx context.Context, caller AuthContext) ([]*UnlockedAchievement, error)
	// InviteGuestMusician issues a short-lived access code for a musician
	// from another church and emails it to them.
	InviteGuestMusician(ctx context.Context, caller AuthContext, email string, expiry time.Duration) error
	// RedeemGuestCode validates a guest access code and returns the guest
	// musician record admitted into the caller's church pool.
	RedeemGuestCode(ctx context.Context, email, code string) (*Musician, error)
}
