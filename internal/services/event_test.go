package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ministryroster/internal/domain"
)

var director = domain.AuthContext{UserID: "director-1", Role: domain.RoleDirector, ChurchID: "church-1"}

func newEventService(eventRepo *fakeEventRepo, invRepo *fakeInvitationRepo, musicianRepo *fakeMusicianRepo, tx *fakeTx, notifier *fakeNotifier, now time.Time) domain.EventService {
	clock := &fixedClock{now: now}
	planner := NewRosterPlanner(musicianRepo, invRepo, clock)
	return NewEventService(eventRepo, invRepo, musicianRepo, planner, tx, notifier, clock, discardLogger(), 5*time.Second)
}

func TestEventService_CreateEvent(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	date := time.Date(2026, 3, 15, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		caller  domain.AuthContext
		event   *domain.Event
		wantErr error
	}{
		{
			name:   "director creates draft",
			caller: director,
			event:  &domain.Event{Title: "Sunday Service", Date: date},
		},
		{
			name:   "admin creates draft",
			caller: domain.AuthContext{UserID: "admin-1", Role: domain.RoleAdmin, ChurchID: "church-1"},
			event:  &domain.Event{Title: "Rehearsal", Date: date},
		},
		{
			name:    "musician cannot create",
			caller:  domain.AuthContext{UserID: "mus-1", Role: domain.RoleMusician, ChurchID: "church-1"},
			event:   &domain.Event{Title: "Sunday Service", Date: date},
			wantErr: domain.ErrForbidden,
		},
		{
			name:    "missing title",
			caller:  director,
			event:   &domain.Event{Date: date},
			wantErr: domain.ErrInvalidInput,
		},
		{
			name:    "missing date",
			caller:  director,
			event:   &domain.Event{Title: "Sunday Service"},
			wantErr: domain.ErrInvalidInput,
		},
		{
			name:    "end before start",
			caller:  director,
			event:   &domain.Event{Title: "Sunday Service", Date: date, EndTime: timePtr(date.Add(-time.Hour))},
			wantErr: domain.ErrInvalidInput,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eventRepo := newFakeEventRepo()
			svc := newEventService(eventRepo, newFakeInvitationRepo(), newFakeMusicianRepo(), &fakeTx{}, &fakeNotifier{}, now)

			err := svc.CreateEvent(ctx, tt.caller, tt.event)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.NotEmpty(t, tt.event.ID)
			assert.Equal(t, domain.EventDraft, tt.event.Status)
			assert.Equal(t, tt.caller.ChurchID, tt.event.ChurchID)
			assert.Equal(t, tt.caller.UserID, tt.event.CreatedBy)
			assert.Equal(t, now, tt.event.CreatedAt)
		})
	}
}

func TestEventService_GetEvent(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	eventRepo := newFakeEventRepo()
	eventRepo.add(&domain.Event{ID: "ev-1", ChurchID: "church-1", Title: "Sunday Service"})
	eventRepo.add(&domain.Event{ID: "ev-2", ChurchID: "church-2", Title: "Elsewhere"})
	svc := newEventService(eventRepo, newFakeInvitationRepo(), newFakeMusicianRepo(), &fakeTx{}, &fakeNotifier{}, now)

	event, err := svc.GetEvent(ctx, director, "ev-1")
	require.NoError(t, err)
	assert.Equal(t, "Sunday Service", event.Title)

	// Events of other churches are indistinguishable from missing ones.
	_, err = svc.GetEvent(ctx, director, "ev-2")
	require.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.GetEvent(ctx, director, "ev-404")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestEventService_SendInvitations(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	setup := func(status domain.EventStatus) (*fakeEventRepo, *fakeInvitationRepo, *fakeMusicianRepo, *fakeNotifier) {
		eventRepo := newFakeEventRepo()
		eventRepo.add(&domain.Event{
			ID:        "ev-1",
			ChurchID:  "church-1",
			CreatedBy: "director-1",
			Title:     "Sunday Service",
			Date:      time.Date(2026, 3, 15, 9, 0, 0, 0, time.UTC),
			Status:    status,
		})
		musicianRepo := newFakeMusicianRepo()
		musicianRepo.add(&domain.Musician{ID: "mus-1", ChurchID: "church-1", Name: "Ana"})
		musicianRepo.add(&domain.Musician{ID: "mus-2", ChurchID: "church-1", Name: "Ben"})
		return eventRepo, newFakeInvitationRepo(), musicianRepo, &fakeNotifier{}
	}

	t.Run("creates pending invitations and publishes draft", func(t *testing.T) {
		eventRepo, invRepo, musicianRepo, notifier := setup(domain.EventDraft)
		svc := newEventService(eventRepo, invRepo, musicianRepo, &fakeTx{}, notifier, now)

		created, err := svc.SendInvitations(ctx, director, "ev-1", []domain.InvitationRequest{
			{MusicianID: "mus-1", Role: "singer"},
			{MusicianID: "mus-2", Role: "guitar"},
		})
		require.NoError(t, err)
		require.Len(t, created, 2)
		for _, inv := range created {
			assert.Equal(t, domain.InvitationPending, inv.Status)
			assert.NotEmpty(t, inv.ID)
		}

		event, err := eventRepo.GetByID(ctx, "ev-1")
		require.NoError(t, err)
		assert.Equal(t, domain.EventPublished, event.Status)

		require.Len(t, notifier.sent, 2)
		assert.Equal(t, domain.NotificationInvitation, notifier.sent[0].Type)
		assert.Equal(t, "mus-1", notifier.sent[0].UserID)
	})

	t.Run("duplicates and blocked musicians are skipped", func(t *testing.T) {
		eventRepo, invRepo, musicianRepo, notifier := setup(domain.EventPublished)
		until := now.Add(10 * 24 * time.Hour)
		musicianRepo.add(&domain.Musician{ID: "mus-3", ChurchID: "church-1", Name: "Blocked", IsBlocked: true, BlockedUntil: &until})
		invRepo.add(&domain.Invitation{EventID: "ev-1", MusicianID: "mus-1", Role: "singer", Status: domain.InvitationPending})
		svc := newEventService(eventRepo, invRepo, musicianRepo, &fakeTx{}, notifier, now)

		created, err := svc.SendInvitations(ctx, director, "ev-1", []domain.InvitationRequest{
			{MusicianID: "mus-1", Role: "singer"},  // already invited
			{MusicianID: "mus-3", Role: "piano"},   // blocked
			{MusicianID: "mus-404", Role: "piano"}, // unknown
			{MusicianID: "mus-2", Role: "guitar"},
		})
		require.NoError(t, err)
		require.Len(t, created, 1)
		assert.Equal(t, "mus-2", created[0].MusicianID)
		require.Len(t, notifier.sent, 1)
	})

	t.Run("published event stays published", func(t *testing.T) {
		eventRepo, invRepo, musicianRepo, notifier := setup(domain.EventPublished)
		svc := newEventService(eventRepo, invRepo, musicianRepo, &fakeTx{}, notifier, now)

		_, err := svc.SendInvitations(ctx, director, "ev-1", []domain.InvitationRequest{{MusicianID: "mus-1", Role: "singer"}})
		require.NoError(t, err)
		event, err := eventRepo.GetByID(ctx, "ev-1")
		require.NoError(t, err)
		assert.Equal(t, domain.EventPublished, event.Status)
	})

	t.Run("cancelled and completed events reject invitations", func(t *testing.T) {
		for _, status := range []domain.EventStatus{domain.EventCancelled, domain.EventCompleted} {
			eventRepo, invRepo, musicianRepo, notifier := setup(status)
			svc := newEventService(eventRepo, invRepo, musicianRepo, &fakeTx{}, notifier, now)

			_, err := svc.SendInvitations(ctx, director, "ev-1", []domain.InvitationRequest{{MusicianID: "mus-1", Role: "singer"}})
			require.ErrorIs(t, err, domain.ErrInvalidTransition)
		}
	})

	t.Run("validation", func(t *testing.T) {
		eventRepo, invRepo, musicianRepo, notifier := setup(domain.EventDraft)
		svc := newEventService(eventRepo, invRepo, musicianRepo, &fakeTx{}, notifier, now)

		_, err := svc.SendInvitations(ctx, director, "ev-1", nil)
		require.ErrorIs(t, err, domain.ErrInvalidInput)

		_, err = svc.SendInvitations(ctx, director, "ev-1", []domain.InvitationRequest{{MusicianID: "mus-1"}})
		require.ErrorIs(t, err, domain.ErrInvalidInput)

		_, err = svc.SendInvitations(ctx, domain.AuthContext{UserID: "mus-1", Role: domain.RoleMusician, ChurchID: "church-1"}, "ev-1", []domain.InvitationRequest{{MusicianID: "mus-1", Role: "singer"}})
		require.ErrorIs(t, err, domain.ErrForbidden)
	})
}

func TestEventService_CancelEvent(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	setup := func() (*fakeEventRepo, *fakeInvitationRepo, *fakeTx, *fakeNotifier, domain.EventService) {
		eventRepo := newFakeEventRepo()
		eventRepo.add(&domain.Event{
			ID:        "ev-1",
			ChurchID:  "church-1",
			CreatedBy: "director-1",
			Title:     "Sunday Service",
			Date:      time.Date(2026, 3, 15, 9, 0, 0, 0, time.UTC),
			Status:    domain.EventPublished,
		})
		invRepo := newFakeInvitationRepo()
		invRepo.add(&domain.Invitation{EventID: "ev-1", MusicianID: "mus-1", Status: domain.InvitationPending})
		invRepo.add(&domain.Invitation{EventID: "ev-1", MusicianID: "mus-2", Status: domain.InvitationConfirmed})
		invRepo.add(&domain.Invitation{EventID: "ev-1", MusicianID: "mus-3", Status: domain.InvitationDeclined})
		tx := &fakeTx{}
		notifier := &fakeNotifier{}
		svc := newEventService(eventRepo, invRepo, newFakeMusicianRepo(), tx, notifier, now)
		return eventRepo, invRepo, tx, notifier, svc
	}

	t.Run("cancels event and active invitations without penalties", func(t *testing.T) {
		eventRepo, invRepo, tx, notifier, svc := setup()

		result, err := svc.CancelEvent(ctx, director, "ev-1", "venue flooded", false)
		require.NoError(t, err)
		assert.Equal(t, 2, result.CancelledCount, "only PENDING and CONFIRMED are touched")
		assert.Equal(t, 1, tx.calls)

		event, err := eventRepo.GetByID(ctx, "ev-1")
		require.NoError(t, err)
		assert.Equal(t, domain.EventCancelled, event.Status)

		for _, id := range []string{"inv-1", "inv-2"} {
			inv, err := invRepo.GetByID(ctx, id)
			require.NoError(t, err)
			assert.Equal(t, domain.InvitationCancelled, inv.Status)
			// Director-initiated cancellation never costs the musician points.
			assert.False(t, inv.PenaltyApplied)
			assert.Nil(t, inv.PenaltyPoints)
			require.NotNil(t, inv.CancelReason)
			assert.Equal(t, "venue flooded", *inv.CancelReason)
		}
		declined, err := invRepo.GetByID(ctx, "inv-3")
		require.NoError(t, err)
		assert.Equal(t, domain.InvitationDeclined, declined.Status)

		require.Len(t, notifier.sent, 2)
		assert.Equal(t, domain.NotificationEventCancelled, notifier.sent[0].Type)
		assert.NotContains(t, notifier.sent[0].Message, "No penalty applies")
	})

	t.Run("forgive flag only changes wording", func(t *testing.T) {
		_, invRepo, _, notifier, svc := setup()

		_, err := svc.CancelEvent(ctx, director, "ev-1", "storm", true)
		require.NoError(t, err)

		inv, err := invRepo.GetByID(ctx, "inv-2")
		require.NoError(t, err)
		assert.False(t, inv.PenaltyApplied)
		require.Len(t, notifier.sent, 2)
		assert.Contains(t, notifier.sent[0].Message, "No penalty applies")
	})

	t.Run("already cancelled", func(t *testing.T) {
		_, _, _, _, svc := setup()
		_, err := svc.CancelEvent(ctx, director, "ev-1", "x", false)
		require.NoError(t, err)

		_, err = svc.CancelEvent(ctx, director, "ev-1", "x", false)
		require.ErrorIs(t, err, domain.ErrInvalidTransition)
	})

	t.Run("musician cannot cancel", func(t *testing.T) {
		_, _, _, _, svc := setup()
		_, err := svc.CancelEvent(ctx, domain.AuthContext{UserID: "mus-1", Role: domain.RoleMusician, ChurchID: "church-1"}, "ev-1", "x", false)
		require.ErrorIs(t, err, domain.ErrForbidden)
	})
}

func TestEventService_SuggestRoster(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	eventRepo := newFakeEventRepo()
	eventRepo.add(&domain.Event{
		ID:       "ev-1",
		ChurchID: "church-1",
		Title:    "Sunday Service",
		Date:     time.Date(2026, 3, 15, 9, 0, 0, 0, time.UTC),
		Status:   domain.EventPublished,
	})
	musicianRepo := newFakeMusicianRepo()
	musicianRepo.add(&domain.Musician{ChurchID: "church-1", Name: "Ana", VocalParts: []string{"alto"}})
	svc := newEventService(eventRepo, newFakeInvitationRepo(), musicianRepo, &fakeTx{}, &fakeNotifier{}, now)

	suggestion, err := svc.SuggestRoster(ctx, director, "ev-1", domain.RosterNeeds{"singer": 1})
	require.NoError(t, err)
	require.Len(t, suggestion.Assigned, 1)
	assert.Equal(t, "Ana", suggestion.Assigned[0].Musician.Name)

	_, err = svc.SuggestRoster(ctx, director, "ev-1", nil)
	require.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = svc.SuggestRoster(ctx, director, "ev-1", domain.RosterNeeds{"": 1})
	require.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = svc.SuggestRoster(ctx, director, "ev-1", domain.RosterNeeds{"singer": 0})
	require.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = svc.SuggestRoster(ctx, domain.AuthContext{UserID: "mus-1", Role: domain.RoleMusician, ChurchID: "church-1"}, "ev-1", domain.RosterNeeds{"singer": 1})
	require.ErrorIs(t, err, domain.ErrForbidden)
}

func TestEventService_ListEventInvitations(t *testing.T) {
	ctx := context.Background()
	now := time.Now()

	eventRepo := newFakeEventRepo()
	eventRepo.add(&domain.Event{ID: "ev-1", ChurchID: "church-1", Status: domain.EventPublished})
	invRepo := newFakeInvitationRepo()
	invRepo.add(&domain.Invitation{EventID: "ev-1", MusicianID: "mus-1", Status: domain.InvitationPending})
	invRepo.add(&domain.Invitation{EventID: "ev-2", MusicianID: "mus-1", Status: domain.InvitationPending})
	svc := newEventService(eventRepo, invRepo, newFakeMusicianRepo(), &fakeTx{}, &fakeNotifier{}, now)

	list, total, err := svc.ListEventInvitations(ctx, director, "ev-1", "", domain.PaginationParams{Page: 1, PageSize: 20})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, list, 1)
	assert.Equal(t, "ev-1", list[0].EventID)

	_, _, err = svc.ListEventInvitations(ctx, domain.AuthContext{UserID: "mus-1", Role: domain.RoleMusician, ChurchID: "church-1"}, "ev-1", "", domain.PaginationParams{})
	require.ErrorIs(t, err, domain.ErrForbidden)
}
