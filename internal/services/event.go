package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"ministryroster/internal/domain"
)

type eventService struct {
	eventRepo      domain.EventRepository
	invitationRepo domain.InvitationRepository
	musicianRepo   domain.MusicianRepository
	planner        *RosterPlanner
	tx             domain.Transactor
	notifier       domain.Notifier
	clock          domain.Clock
	logger         *slog.Logger
	contextTimeout time.Duration
}

// NewEventService returns the director-facing event service.
func NewEventService(
	eventRepo domain.EventRepository,
	invitationRepo domain.InvitationRepository,
	musicianRepo domain.MusicianRepository,
	planner *RosterPlanner,
	tx domain.Transactor,
	notifier domain.Notifier,
	clock domain.Clock,
	logger *slog.Logger,
	timeout time.Duration,
) domain.EventService {
	return &eventService{
		eventRepo:      eventRepo,
		invitationRepo: invitationRepo,
		musicianRepo:   musicianRepo,
		planner:        planner,
		tx:             tx,
		notifier:       notifier,
		clock:          clock,
		logger:         logger,
		contextTimeout: timeout,
	}
}

func (s *eventService) CreateEvent(ctx context.Context, caller domain.AuthContext, event *domain.Event) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if !caller.CanManageEvents() {
		return domain.ErrForbidden
	}
	if event.Title == "" || event.Date.IsZero() {
		return fmt.Errorf("title and date are required: %w", domain.ErrInvalidInput)
	}
	if event.EndTime != nil && !event.EndTime.After(event.Date) {
		return fmt.Errorf("end time must be after start: %w", domain.ErrInvalidInput)
	}

	now := s.clock.Now()
	event.ChurchID = caller.ChurchID
	event.CreatedBy = caller.UserID
	event.Status = domain.EventDraft
	event.CreatedAt = now
	event.UpdatedAt = now
	return s.eventRepo.Create(ctx, event)
}

// getChurchEvent fetches the event and hides events of other churches
// behind ErrNotFound.
func (s *eventService) getChurchEvent(ctx context.Context, caller domain.AuthContext, eventID string) (*domain.Event, error) {
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	if event.ChurchID != caller.ChurchID {
		return nil, domain.ErrNotFound
	}
	return event, nil
}

func (s *eventService) GetEvent(ctx context.Context, caller domain.AuthContext, eventID string) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()
	return s.getChurchEvent(ctx, caller, eventID)
}

func (s *eventService) SendInvitations(ctx context.Context, caller domain.AuthContext, eventID string, reqs []domain.InvitationRequest) ([]*domain.Invitation, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if !caller.CanManageEvents() {
		return nil, domain.ErrForbidden
	}
	if len(reqs) == 0 {
		return nil, fmt.Errorf("at least one invitation is required: %w", domain.ErrInvalidInput)
	}
	for _, req := range reqs {
		if req.MusicianID == "" || req.Role == "" {
			return nil, fmt.Errorf("musician_id and role are required: %w", domain.ErrInvalidInput)
		}
	}

	event, err := s.getChurchEvent(ctx, caller, eventID)
	if err != nil {
		return nil, err
	}
	if event.Status == domain.EventCancelled || event.Status == domain.EventCompleted {
		return nil, fmt.Errorf("cannot invite to a %s event: %w", event.Status, domain.ErrInvalidTransition)
	}

	now := s.clock.Now()
	created := []*domain.Invitation{}
	var notes []*domain.Notification
	for _, req := range reqs {
		musician, err := s.musicianRepo.GetByID(ctx, req.MusicianID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				s.logger.WarnContext(ctx, "skipping unknown musician", "musician_id", req.MusicianID)
				continue
			}
			return nil, fmt.Errorf("get musician: %w", err)
		}
		if musician.BlockedAt(now) {
			s.logger.InfoContext(ctx, "skipping blocked musician", "musician_id", musician.ID)
			continue
		}
		inv := &domain.Invitation{
			EventID:    eventID,
			MusicianID: req.MusicianID,
			Role:       req.Role,
			Instrument: req.Instrument,
			VocalPart:  req.VocalPart,
			Status:     domain.InvitationPending,
			CreatedAt:  now,
		}
		if err := s.invitationRepo.Create(ctx, inv); err != nil {
			if errors.Is(err, domain.ErrAlreadyInvited) {
				continue
			}
			return nil, fmt.Errorf("create invitation: %w", err)
		}
		created = append(created, inv)
		notes = append(notes, &domain.Notification{
			UserID:  musician.ID,
			Title:   "New invitation",
			Message: fmt.Sprintf("You are invited to serve as %s at %q on %s.", req.Role, event.Title, event.Date.Format("Mon, Jan 2 15:04")),
			Type:    domain.NotificationInvitation,
			ContextData: map[string]string{
				"event_id":      event.ID,
				"invitation_id": inv.ID,
			},
		})
	}

	if event.Status == domain.EventDraft && len(created) > 0 {
		if err := s.eventRepo.UpdateStatus(ctx, eventID, domain.EventPublished); err != nil {
			return nil, fmt.Errorf("publish event: %w", err)
		}
		event.Status = domain.EventPublished
	}

	s.dispatch(ctx, notes)
	return created, nil
}

func (s *eventService) CancelEvent(ctx context.Context, caller domain.AuthContext, eventID, reason string, forgivePenalty bool) (*domain.CancelEventResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if !caller.CanManageEvents() {
		return nil, domain.ErrForbidden
	}
	event, err := s.getChurchEvent(ctx, caller, eventID)
	if err != nil {
		return nil, err
	}
	if event.Status == domain.EventCancelled {
		return nil, fmt.Errorf("event already cancelled: %w", domain.ErrInvalidTransition)
	}

	now := s.clock.Now()
	cancelReason := reason
	var notes []*domain.Notification
	cancelled := 0

	// Director-initiated cancellation never applies penalties, whatever the
	// forgive flag says; the flag only changes the notification wording.
	err = s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		active, err := s.invitationRepo.ListActiveByEventID(txCtx, eventID)
		if err != nil {
			return fmt.Errorf("list active invitations: %w", err)
		}
		for _, inv := range active {
			upd := domain.InvitationStatusUpdate{
				Status:       domain.InvitationCancelled,
				RespondedAt:  now,
				CancelReason: &cancelReason,
			}
			if err := s.invitationRepo.UpdateStatusIf(txCtx, inv.ID, inv.Status, upd); err != nil {
				return fmt.Errorf("cancel invitation %s: %w", inv.ID, err)
			}
			cancelled++

			message := fmt.Sprintf("%q on %s was cancelled by the director.", event.Title, event.Date.Format("Mon, Jan 2 15:04"))
			if reason != "" {
				message += fmt.Sprintf(" Reason: %s.", reason)
			}
			if forgivePenalty {
				message += " No penalty applies to your commitment."
			}
			notes = append(notes, &domain.Notification{
				UserID:  inv.MusicianID,
				Title:   "Event cancelled",
				Message: message,
				Type:    domain.NotificationEventCancelled,
				ContextData: map[string]string{
					"event_id":      event.ID,
					"invitation_id": inv.ID,
				},
			})
		}
		if err := s.eventRepo.UpdateStatus(txCtx, eventID, domain.EventCancelled); err != nil {
			return fmt.Errorf("cancel event: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.dispatch(ctx, notes)
	return &domain.CancelEventResult{CancelledCount: cancelled}, nil
}

func (s *eventService) ListEventInvitations(ctx context.Context, caller domain.AuthContext, eventID, search string, params domain.PaginationParams) ([]*domain.Invitation, int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if !caller.CanManageEvents() {
		return nil, 0, domain.ErrForbidden
	}
	if _, err := s.getChurchEvent(ctx, caller, eventID); err != nil {
		return nil, 0, err
	}
	invs, total, err := s.invitationRepo.ListByEventID(ctx, eventID, search, params)
	if err != nil {
		return nil, 0, fmt.Errorf("list event invitations: %w", err)
	}
	if invs == nil {
		invs = []*domain.Invitation{}
	}
	return invs, total, nil
}

func (s *eventService) SuggestRoster(ctx context.Context, caller domain.AuthContext, eventID string, needs domain.RosterNeeds) (*domain.RosterSuggestion, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if !caller.CanManageEvents() {
		return nil, domain.ErrForbidden
	}
	if len(needs) == 0 {
		return nil, fmt.Errorf("at least one role is required: %w", domain.ErrInvalidInput)
	}
	for role, count := range needs {
		if role == "" || count < 1 {
			return nil, fmt.Errorf("roles must be named with positive counts: %w", domain.ErrInvalidInput)
		}
	}
	event, err := s.getChurchEvent(ctx, caller, eventID)
	if err != nil {
		return nil, err
	}
	return s.planner.Suggest(ctx, event, needs)
}

func (s *eventService) dispatch(ctx context.Context, notes []*domain.Notification) {
	for _, n := range notes {
		if err := s.notifier.Notify(ctx, n); err != nil {
			s.logger.ErrorContext(ctx, "notification dispatch failed",
				"user_id", n.UserID, "type", n.Type, "err", err)
		}
	}
}
