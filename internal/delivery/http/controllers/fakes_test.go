package controllers

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	"ministryroster/internal/delivery/http/middleware"
	"ministryroster/internal/domain"
)

// testLogger is a no-op logger for controller tests so we don't assert on log output.
var testLogger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))

var testDirector = domain.AuthContext{UserID: "director-1", Role: domain.RoleDirector, ChurchID: "church-1"}

var testMusician = domain.AuthContext{UserID: "mus-1", Role: domain.RoleMusician, ChurchID: "church-1"}

// withAuth sets the caller identity on the request context the way the auth
// middleware would.
func withAuth(r *http.Request, ac domain.AuthContext) *http.Request {
	return r.WithContext(middleware.SetAuthContext(r.Context(), ac))
}

// fakeEventService implements domain.EventService for handler tests.
type fakeEventService struct {
	createEventErr error
	lastCreated    *domain.Event

	getEventErr    error
	getEventResult *domain.Event

	sendInvitationsErr    error
	sendInvitationsResult []*domain.Invitation
	lastSendEventID       string
	lastSendReqs          []domain.InvitationRequest

	cancelEventErr     error
	cancelEventResult  *domain.CancelEventResult
	lastCancelEventID  string
	lastCancelReason   string
	lastCancelForgive  bool

	listInvitationsErr    error
	listInvitationsResult []*domain.Invitation
	listInvitationsTotal  int
	lastListSearch        string
	lastListParams        domain.PaginationParams

	suggestRosterErr    error
	suggestRosterResult *domain.RosterSuggestion
	lastSuggestNeeds    domain.RosterNeeds
}

func (f *fakeEventService) CreateEvent(ctx context.Context, caller domain.AuthContext, event *domain.Event) error {
	f.lastCreated = event
	if f.createEventErr != nil {
		return f.createEventErr
	}
	event.ID = "ev-created"
	return nil
}

func (f *fakeEventService) GetEvent(ctx context.Context, caller domain.AuthContext, eventID string) (*domain.Event, error) {
	if f.getEventErr != nil {
		return nil, f.getEventErr
	}
	return f.getEventResult, nil
}

func (f *fakeEventService) SendInvitations(ctx context.Context, caller domain.AuthContext, eventID string, reqs []domain.InvitationRequest) ([]*domain.Invitation, error) {
	f.lastSendEventID = eventID
	f.lastSendReqs = reqs
	if f.sendInvitationsErr != nil {
		return nil, f.sendInvitationsErr
	}
	return f.sendInvitationsResult, nil
}

func (f *fakeEventService) CancelEvent(ctx context.Context, caller domain.AuthContext, eventID, reason string, forgivePenalty bool) (*domain.CancelEventResult, error) {
	f.lastCancelEventID = eventID
	f.lastCancelReason = reason
	f.lastCancelForgive = forgivePenalty
	if f.cancelEventErr != nil {
		return nil, f.cancelEventErr
	}
	return f.cancelEventResult, nil
}

func (f *fakeEventService) ListEventInvitations(ctx context.Context, caller domain.AuthContext, eventID, search string, params domain.PaginationParams) ([]*domain.Invitation, int, error) {
	f.lastListSearch = search
	f.lastListParams = params
	if f.listInvitationsErr != nil {
		return nil, 0, f.listInvitationsErr
	}
	return f.listInvitationsResult, f.listInvitationsTotal, nil
}

func (f *fakeEventService) SuggestRoster(ctx context.Context, caller domain.AuthContext, eventID string, needs domain.RosterNeeds) (*domain.RosterSuggestion, error) {
	f.lastSuggestNeeds = needs
	if f.suggestRosterErr != nil {
		return nil, f.suggestRosterErr
	}
	return f.suggestRosterResult, nil
}

// fakeInvitationService implements domain.InvitationService for handler tests.
type fakeInvitationService struct {
	respondErr        error
	respondResult     *domain.Invitation
	lastRespondID     string
	lastRespondAction domain.ResponseAction
	lastRespondReason string

	listErr    error
	listResult []*domain.InvitationWithEvent
	listTotal  int
}

func (f *fakeInvitationService) Respond(ctx context.Context, caller domain.AuthContext, invitationID string, action domain.ResponseAction, reason string) (*domain.Invitation, error) {
	f.lastRespondID = invitationID
	f.lastRespondAction = action
	f.lastRespondReason = reason
	if f.respondErr != nil {
		return nil, f.respondErr
	}
	return f.respondResult, nil
}

func (f *fakeInvitationService) ListMyInvitations(ctx context.Context, caller domain.AuthContext, params domain.PaginationParams) ([]*domain.InvitationWithEvent, int, error) {
	if f.listErr != nil {
		return nil, 0, f.listErr
	}
	return f.listResult, f.listTotal, nil
}

// fakeMusicianService implements domain.MusicianService for handler tests.
type fakeMusicianService struct {
	getErr    error
	getResult *domain.Musician

	updateAvailabilityErr error
	lastAvailability      map[string]bool

	updateSkillsErr error
	lastInstruments []string
	lastVocalParts  []string

	statsErr    error
	statsResult *domain.MusicianStats

	penaltiesErr    error
	penaltiesResult []*domain.PenaltyHistoryEntry
	penaltiesTotal  int

	pointsErr    error
	pointsResult []*domain.PointHistoryEntry
	pointsTotal  int

	achievementsErr    error
	achievementsResult []*domain.UnlockedAchievement

	inviteGuestErr  error
	lastGuestEmail  string
	lastGuestExpiry time.Duration

	redeemErr       error
	redeemResult    *domain.Musician
	lastRedeemEmail string
	lastRedeemCode  string
}

func (f *fakeMusicianService) Get(ctx context.Context, caller domain.AuthContext, musicianID string) (*domain.Musician, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.getResult, nil
}

func (f *fakeMusicianService) UpdateAvailability(ctx context.Context, caller domain.AuthContext, availability map[string]bool) (*domain.Musician, error) {
	f.lastAvailability = availability
	if f.updateAvailabilityErr != nil {
		return nil, f.updateAvailabilityErr
	}
	return f.getResult, nil
}

func (f *fakeMusicianService) UpdateSkills(ctx context.Context, caller domain.AuthContext, instruments, vocalParts []string) (*domain.Musician, error) {
	f.lastInstruments = instruments
	f.lastVocalParts = vocalParts
	if f.updateSkillsErr != nil {
		return nil, f.updateSkillsErr
	}
	return f.getResult, nil
}

func (f *fakeMusicianService) Stats(ctx context.Context, caller domain.AuthContext) (*domain.MusicianStats, error) {
	if f.statsErr != nil {
		return nil, f.statsErr
	}
	return f.statsResult, nil
}

func (f *fakeMusicianService) ListPenaltyHistory(ctx context.Context, caller domain.AuthContext, params domain.PaginationParams) ([]*domain.PenaltyHistoryEntry, int, error) {
	if f.penaltiesErr != nil {
		return nil, 0, f.penaltiesErr
	}
	return f.penaltiesResult, f.penaltiesTotal, nil
}

func (f *fakeMusicianService) ListPointHistory(ctx context.Context, caller domain.AuthContext, params domain.PaginationParams) ([]*domain.PointHistoryEntry, int, error) {
	if f.pointsErr != nil {
		return nil, 0, f.pointsErr
	}
	return f.pointsResult, f.pointsTotal, nil
}

func (f *fakeMusicianService) ListAchievements(ctx context.Context, caller domain.AuthContext) ([]*domain.UnlockedAchievement, error) {
	if f.achievementsErr != nil {
		return nil, f.achievementsErr
	}
	return f.achievementsResult, nil
}

func (f *fakeMusicianService) InviteGuestMusician(ctx context.Context, caller domain.AuthContext, email string, expiry time.Duration) error {
	f.lastGuestEmail = email
	f.lastGuestExpiry = expiry
	return f.inviteGuestErr
}

func (f *fakeMusicianService) RedeemGuestCode(ctx context.Context, email, code string) (*domain.Musician, error) {
	f.lastRedeemEmail = email
	f.lastRedeemCode = code
	if f.redeemErr != nil {
		return nil, f.redeemErr
	}
	return f.redeemResult, nil
}
