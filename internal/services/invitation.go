package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"ministryroster/internal/domain"
	"ministryroster/internal/metrics"
)

type invitationService struct {
	invitationRepo domain.InvitationRepository
	eventRepo      domain.EventRepository
	musicianRepo   domain.MusicianRepository
	tx             domain.Transactor
	handlers       []domain.InvitationEventHandler
	notifier       domain.Notifier
	clock          domain.Clock
	logger         *slog.Logger
	contextTimeout time.Duration
}

// NewInvitationService returns the invitation state machine. Handlers are
// invoked inside the respond transaction in registration order; the
// reliability ledger and the gamification engine subscribe here.
func NewInvitationService(
	invitationRepo domain.InvitationRepository,
	eventRepo domain.EventRepository,
	musicianRepo domain.MusicianRepository,
	tx domain.Transactor,
	handlers []domain.InvitationEventHandler,
	notifier domain.Notifier,
	clock domain.Clock,
	logger *slog.Logger,
	timeout time.Duration,
) domain.InvitationService {
	return &invitationService{
		invitationRepo: invitationRepo,
		eventRepo:      eventRepo,
		musicianRepo:   musicianRepo,
		tx:             tx,
		handlers:       handlers,
		notifier:       notifier,
		clock:          clock,
		logger:         logger,
		contextTimeout: timeout,
	}
}

func (s *invitationService) Respond(ctx context.Context, caller domain.AuthContext, invitationID string, action domain.ResponseAction, reason string) (*domain.Invitation, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	inv, err := s.invitationRepo.GetByID(ctx, invitationID)
	if err != nil {
		return nil, fmt.Errorf("get invitation: %w", err)
	}
	if inv.MusicianID != caller.UserID {
		return nil, domain.ErrForbidden
	}

	target, ok := action.TargetStatus()
	if !ok {
		return nil, fmt.Errorf("unknown action %q: %w", action, domain.ErrInvalidInput)
	}
	if !inv.Status.CanTransitionTo(target) {
		return nil, fmt.Errorf("%s invitation cannot be %sed: %w", inv.Status, action, domain.ErrInvalidTransition)
	}

	event, err := s.eventRepo.GetByID(ctx, inv.EventID)
	if err != nil {
		return nil, fmt.Errorf("get event: %w", err)
	}
	musician, err := s.musicianRepo.GetByID(ctx, inv.MusicianID)
	if err != nil {
		return nil, fmt.Errorf("get musician: %w", err)
	}

	now := s.clock.Now()
	if action == domain.ActionConfirm && musician.BlockedAt(now) {
		return nil, domain.ErrMusicianBlocked
	}

	upd := domain.InvitationStatusUpdate{Status: target, RespondedAt: now}
	var evtType domain.InvitationEventType
	switch action {
	case domain.ActionConfirm:
		evtType = domain.InvitationConfirmedEvent
	case domain.ActionDecline:
		if reason != "" {
			upd.CancelReason = &reason
		}
		evtType = domain.InvitationDeclinedEvent
	case domain.ActionCancel:
		if reason != "" {
			upd.CancelReason = &reason
		}
		points := domain.CancelPenaltyPoints
		upd.PenaltyApplied = true
		upd.PenaltyPoints = &points
		evtType = domain.InvitationCancelledWithPenaltyEvent
	}

	updated := *inv
	updated.Status = upd.Status
	updated.RespondedAt = &upd.RespondedAt
	updated.CancelReason = upd.CancelReason
	updated.PenaltyApplied = upd.PenaltyApplied
	updated.PenaltyPoints = upd.PenaltyPoints

	evt := &domain.InvitationEvent{
		Type:       evtType,
		Invitation: &updated,
		Event:      event,
		Musician:   musician,
		OccurredAt: now,
	}

	var notes []*domain.Notification
	err = s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		if err := s.invitationRepo.UpdateStatusIf(txCtx, inv.ID, inv.Status, upd); err != nil {
			return fmt.Errorf("update invitation status: %w", err)
		}
		for _, h := range s.handlers {
			ns, err := h.HandleInvitationEvent(txCtx, evt)
			if err != nil {
				return fmt.Errorf("handle %s: %w", evt.Type, err)
			}
			notes = append(notes, ns...)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.InvitationTransitions.WithLabelValues(string(action)).Inc()

	notes = append(notes, s.creatorNotification(event, musician, &updated, action))
	s.dispatch(ctx, notes)
	return &updated, nil
}

// creatorNotification tells the event's creator how the musician responded.
func (s *invitationService) creatorNotification(event *domain.Event, musician *domain.Musician, inv *domain.Invitation, action domain.ResponseAction) *domain.Notification {
	data := map[string]string{
		"event_id":      event.ID,
		"invitation_id": inv.ID,
	}
	var title, message string
	switch action {
	case domain.ActionConfirm:
		title = "Invitation confirmed"
		message = fmt.Sprintf("%s confirmed for %q (%s).", musician.Name, event.Title, inv.Role)
	case domain.ActionDecline:
		title = "Invitation declined"
		message = fmt.Sprintf("%s declined the invitation for %q.", musician.Name, event.Title)
		if inv.CancelReason != nil {
			message += fmt.Sprintf(" Reason: %s", *inv.CancelReason)
		}
	case domain.ActionCancel:
		title = "Confirmed musician cancelled"
		message = fmt.Sprintf("%s cancelled a confirmed spot for %q. A penalty was applied.", musician.Name, event.Title)
		data["penalty_applied"] = "true"
	}
	return &domain.Notification{
		UserID:      event.CreatedBy,
		Title:       title,
		Message:     message,
		Type:        domain.NotificationResponse,
		ContextData: data,
	}
}

// dispatch sends notifications fire-and-forget; failures are logged and
// never roll back the transition that produced them.
func (s *invitationService) dispatch(ctx context.Context, notes []*domain.Notification) {
	for _, n := range notes {
		if err := s.notifier.Notify(ctx, n); err != nil {
			s.logger.ErrorContext(ctx, "notification dispatch failed",
				"user_id", n.UserID, "type", n.Type, "err", err)
		}
	}
}

func (s *invitationService) ListMyInvitations(ctx context.Context, caller domain.AuthContext, params domain.PaginationParams) ([]*domain.InvitationWithEvent, int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	invs, total, err := s.invitationRepo.ListByMusicianID(ctx, caller.UserID, params)
	if err != nil {
		return nil, 0, fmt.Errorf("list invitations: %w", err)
	}
	if invs == nil {
		invs = []*domain.InvitationWithEvent{}
	}
	return invs, total, nil
}
