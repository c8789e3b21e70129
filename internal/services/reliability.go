package services

import (
	"context"
	"fmt"

	"ministryroster/internal/domain"
	"ministryroster/internal/metrics"
)

// Penalty reasons recorded in the audit trail.
const (
	PenaltyReasonLateCancellation = "late_cancellation"
)

// ReliabilityService implements domain.ReliabilityLedger and consumes
// invitation events as a domain.InvitationEventHandler, applying the
// cancellation penalty when the state machine emits
// InvitationCancelledWithPenalty.
type ReliabilityService struct {
	musicianRepo domain.MusicianRepository
	penaltyRepo  domain.PenaltyHistoryRepository
	clock        domain.Clock
}

var (
	_ domain.ReliabilityLedger      = (*ReliabilityService)(nil)
	_ domain.InvitationEventHandler = (*ReliabilityService)(nil)
)

// NewReliabilityService returns the reliability ledger.
func NewReliabilityService(
	musicianRepo domain.MusicianRepository,
	penaltyRepo domain.PenaltyHistoryRepository,
	clock domain.Clock,
) *ReliabilityService {
	return &ReliabilityService{
		musicianRepo: musicianRepo,
		penaltyRepo:  penaltyRepo,
		clock:        clock,
	}
}

func (s *ReliabilityService) ApplyPenalty(ctx context.Context, musicianID string, points int, reason, description string, eventID, invitationID *string) (*domain.Musician, *domain.Notification, error) {
	if points <= 0 {
		return nil, nil, fmt.Errorf("penalty points must be positive: %w", domain.ErrInvalidInput)
	}
	musician, err := s.musicianRepo.GetByID(ctx, musicianID)
	if err != nil {
		return nil, nil, fmt.Errorf("get musician: %w", err)
	}

	now := s.clock.Now()
	newPoints := musician.PenaltyPoints + points
	shouldBlock := newPoints >= domain.BlockThresholdPoints
	blockedUntil := musician.BlockedUntil
	if shouldBlock {
		until := now.Add(domain.BlockDuration)
		blockedUntil = &until
	}

	if err := s.musicianRepo.UpdatePenaltyState(ctx, musicianID, newPoints, shouldBlock, blockedUntil); err != nil {
		return nil, nil, fmt.Errorf("update penalty state: %w", err)
	}

	entry := &domain.PenaltyHistoryEntry{
		MusicianID:   musicianID,
		EventID:      eventID,
		InvitationID: invitationID,
		Points:       points,
		Reason:       reason,
		Description:  description,
		CreatedAt:    now,
	}
	if err := s.penaltyRepo.Create(ctx, entry); err != nil {
		return nil, nil, fmt.Errorf("append penalty history: %w", err)
	}

	metrics.PenaltiesApplied.Inc()
	if shouldBlock && !musician.IsBlocked {
		metrics.BlocksTriggered.Inc()
	}

	musician.PenaltyPoints = newPoints
	musician.IsBlocked = shouldBlock
	musician.BlockedUntil = blockedUntil

	message := fmt.Sprintf("You received %d penalty points. Your total is now %d.", points, newPoints)
	if shouldBlock {
		message += fmt.Sprintf(" You are blocked from confirming invitations for %d days.", int(domain.BlockDuration.Hours()/24))
	}
	note := &domain.Notification{
		UserID:  musicianID,
		Title:   "Penalty applied",
		Message: message,
		Type:    domain.NotificationPenalty,
	}
	return musician, note, nil
}

// HandleInvitationEvent applies the late-cancellation penalty and increments
// the lifetime cancellation counter. Runs inside the respond transaction.
func (s *ReliabilityService) HandleInvitationEvent(ctx context.Context, evt *domain.InvitationEvent) ([]*domain.Notification, error) {
	if evt.Type != domain.InvitationCancelledWithPenaltyEvent {
		return nil, nil
	}
	description := fmt.Sprintf("Cancelled confirmed invitation for %q", evt.Event.Title)
	_, note, err := s.ApplyPenalty(ctx, evt.Musician.ID, domain.CancelPenaltyPoints,
		PenaltyReasonLateCancellation, description, &evt.Event.ID, &evt.Invitation.ID)
	if err != nil {
		return nil, err
	}
	if err := s.musicianRepo.IncrementCancellationCount(ctx, evt.Musician.ID); err != nil {
		return nil, fmt.Errorf("increment cancellation count: %w", err)
	}
	return []*domain.Notification{note}, nil
}
