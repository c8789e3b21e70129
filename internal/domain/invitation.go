package domain

import (
	"context"
	"time"
)

// InvitationStatus is the lifecycle status of an invitation.
type InvitationStatus string

// Invitation statuses. DECLINED and CANCELLED are terminal; CANCELLED is
// reachable only from CONFIRMED and is preserved for audit.
const (
	InvitationPending   InvitationStatus = "PENDING"
	InvitationConfirmed InvitationStatus = "CONFIRMED"
	InvitationDeclined  InvitationStatus = "DECLINED"
	InvitationCancelled InvitationStatus = "CANCELLED"
)

// CanTransitionTo is the single source of truth for invitation lifecycle
// rules: PENDING -> {CONFIRMED, DECLINED}, CONFIRMED -> CANCELLED.
func (s InvitationStatus) CanTransitionTo(next InvitationStatus) bool {
	switch s {
	case InvitationPending:
		return next == InvitationConfirmed || next == InvitationDeclined
	case InvitationConfirmed:
		return next == InvitationCancelled
	default:
		return false
	}
}

// ResponseAction is a musician's response to an invitation.
type ResponseAction string

// Response actions accepted by the state machine.
const (
	ActionConfirm ResponseAction = "confirm"
	ActionDecline ResponseAction = "decline"
	ActionCancel  ResponseAction = "cancel"
)

// TargetStatus maps a response action to the status it requests.
func (a ResponseAction) TargetStatus() (InvitationStatus, bool) {
	switch a {
	case ActionConfirm:
		return InvitationConfirmed, true
	case ActionDecline:
		return InvitationDeclined, true
	case ActionCancel:
		return InvitationCancelled, true
	default:
		return "", false
	}
}

// CancelPenaltyPoints is granted against a musician who cancels an
// invitation after confirming it.
const CancelPenaltyPoints = 3

// Invitation links one musician to one event for a requested role.
// Exactly one invitation exists per (event, musician) pair and it is never
// physically deleted.
// swagger:model Invitation
type Invitation struct {
	ID             string           `json:"id"`
	EventID        string           `json:"event_id"`
	MusicianID     string           `json:"musician_id"`
	Role           string           `json:"role"`
	Instrument     *string          `json:"instrument,omitempty"`
	VocalPart      *string          `json:"vocal_part,omitempty"`
	Status         InvitationStatus `json:"status"`
	RespondedAt    *time.Time       `json:"responded_at,omitempty"`
	CancelReason   *string          `json:"cancel_reason,omitempty"`
	PenaltyApplied bool             `json:"penalty_applied"`
	PenaltyPoints  *int             `json:"penalty_points,omitempty"`
	CreatedAt      time.Time        `json:"created_at"`
}

// InvitationWithEvent bundles an invitation with its event, used for
// conflict detection and musician-facing listings.
type InvitationWithEvent struct {
	Invitation *Invitation `json:"invitation"`
	Event      *Event      `json:"event"`
}

// InvitationStatusUpdate carries the fields written by a status transition.
type InvitationStatusUpdate struct {
	Status         InvitationStatus
	RespondedAt    time.Time
	CancelReason   *string
	PenaltyApplied bool
	PenaltyPoints  *int
}

// InvitationRepository defines storage operations for invitations.
// UpdateStatusIf is a compare-and-set: it writes upd only when the current
// status equals expected and returns ErrConflict otherwise, so two
// concurrent responders to the same invitation cannot both win.
type InvitationRepository interface {
	Create(ctx context.Context, inv *Invitation) error
	GetByID(ctx context.Context, id string) (*Invitation, error)
	ListByEventID(ctx context.Context, eventID, search string, params PaginationParams) ([]*Invitation, int, error)
	ListByMusicianID(ctx context.Context, musicianID string, params PaginationParams) ([]*InvitationWithEvent, int, error)
	ListActiveByEventID(ctx context.Context, eventID string) ([]*Invitation, error)
	UpdateStatusIf(ctx context.Context, id string, expected InvitationStatus, upd InvitationStatusUpdate) error
	// ListConfirmedOverlapping returns confirmed invitations of the church's
	// musicians whose event windows overlap [start, end) with inclusive
	// semantics (existing.start <= end AND existing.end >= start).
	ListConfirmedOverlapping(ctx context.Context, churchID string, start, end time.Time) ([]*InvitationWithEvent, error)
}
