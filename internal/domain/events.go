package domain

import (
	"context"
	"time"
)

// InvitationEventType identifies a terminal state-machine transition.
type InvitationEventType string

// Domain events emitted by the invitation state machine.
const (
	InvitationConfirmedEvent            InvitationEventType = "InvitationConfirmed"
	InvitationDeclinedEvent             InvitationEventType = "InvitationDeclined"
	InvitationCancelledWithPenaltyEvent InvitationEventType = "InvitationCancelledWithPenalty"
)

// InvitationEvent is published when an invitation completes a transition.
// The ledger and the gamification engine consume it inside the same
// transaction as the status write; notification dispatch happens after
// commit using the notifications the handlers return.
type InvitationEvent struct {
	Type       InvitationEventType
	Invitation *Invitation
	Event      *Event
	Musician   *Musician
	OccurredAt time.Time
}

// InvitationEventHandler reacts to an invitation transition. Handlers run
// inside the transition's transaction; a handler error aborts the whole
// transaction. Returned notifications are dispatched only after commit.
type InvitationEventHandler interface {
	HandleInvitationEvent(ctx context.Context, evt *InvitationEvent) ([]*Notification, error)
}
