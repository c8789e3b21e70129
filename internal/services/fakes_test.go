package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"ministryroster/internal/domain"
)

// discardLogger silences service logging in tests.
func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fixedClock returns a preset instant from Now.
type fixedClock struct {
	now time.Time
}

func (c *fixedClock) Now() time.Time { return c.now }

// fakeMusicianRepo is an in-memory MusicianRepository for tests.
type fakeMusicianRepo struct {
	byID    map[string]*domain.Musician
	byEmail map[string]*domain.Musician
	nextID  int

	getErr       error
	updateErr    error // if set, every update method returns this error
	createErr    error
	cancelCounts map[string]int
	eventCounts  map[string]int
}

func newFakeMusicianRepo() *fakeMusicianRepo {
	return &fakeMusicianRepo{
		byID:         make(map[string]*domain.Musician),
		byEmail:      make(map[string]*domain.Musician),
		nextID:       1,
		cancelCounts: make(map[string]int),
		eventCounts:  make(map[string]int),
	}
}

func (f *fakeMusicianRepo) add(m *domain.Musician) *domain.Musician {
	if m.ID == "" {
		m.ID = fmt.Sprintf("mus-%d", f.nextID)
		f.nextID++
	}
	f.byID[m.ID] = m
	if m.Email != "" {
		f.byEmail[m.Email] = m
	}
	return m
}

func (f *fakeMusicianRepo) Create(ctx context.Context, m *domain.Musician) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.add(m)
	return nil
}

func (f *fakeMusicianRepo) GetByID(ctx context.Context, id string) (*domain.Musician, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	if m, ok := f.byID[id]; ok {
		cp := *m
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeMusicianRepo) GetByEmail(ctx context.Context, email string) (*domain.Musician, error) {
	if m, ok := f.byEmail[email]; ok {
		cp := *m
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeMusicianRepo) ListByChurchID(ctx context.Context, churchID string) ([]*domain.Musician, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	var out []*domain.Musician
	for i := 1; i < f.nextID; i++ {
		id := fmt.Sprintf("mus-%d", i)
		if m, ok := f.byID[id]; ok && m.ChurchID == churchID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeMusicianRepo) UpdateAvailability(ctx context.Context, id string, availability map[string]bool) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	m, ok := f.byID[id]
	if !ok {
		return domain.ErrNotFound
	}
	m.Availability = availability
	return nil
}

func (f *fakeMusicianRepo) UpdateSkills(ctx context.Context, id string, instruments, vocalParts []string) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	m, ok := f.byID[id]
	if !ok {
		return domain.ErrNotFound
	}
	m.Instruments = instruments
	m.VocalParts = vocalParts
	return nil
}

func (f *fakeMusicianRepo) UpdatePenaltyState(ctx context.Context, id string, penaltyPoints int, isBlocked bool, blockedUntil *time.Time) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	m, ok := f.byID[id]
	if !ok {
		return domain.ErrNotFound
	}
	m.PenaltyPoints = penaltyPoints
	m.IsBlocked = isBlocked
	m.BlockedUntil = blockedUntil
	return nil
}

func (f *fakeMusicianRepo) UpdateGamification(ctx context.Context, id string, totalPoints, level int) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	m, ok := f.byID[id]
	if !ok {
		return domain.ErrNotFound
	}
	m.TotalPoints = totalPoints
	m.Level = level
	return nil
}

func (f *fakeMusicianRepo) UpdateStreak(ctx context.Context, id string, streak int, lastEventDate time.Time) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	m, ok := f.byID[id]
	if !ok {
		return domain.ErrNotFound
	}
	m.Streak = streak
	d := lastEventDate
	m.LastEventDate = &d
	return nil
}

func (f *fakeMusicianRepo) IncrementEventCount(ctx context.Context, id string) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	m, ok := f.byID[id]
	if !ok {
		return domain.ErrNotFound
	}
	m.TotalEvents++
	f.eventCounts[id]++
	return nil
}

func (f *fakeMusicianRepo) IncrementCancellationCount(ctx context.Context, id string) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	m, ok := f.byID[id]
	if !ok {
		return domain.ErrNotFound
	}
	m.TotalCancellations++
	f.cancelCounts[id]++
	return nil
}

// fakeEventRepo is an in-memory EventRepository for tests.
type fakeEventRepo struct {
	byID      map[string]*domain.Event
	nextID    int
	createErr error
	statusErr error
}

func newFakeEventRepo() *fakeEventRepo {
	return &fakeEventRepo{byID: make(map[string]*domain.Event), nextID: 1}
}

func (f *fakeEventRepo) add(e *domain.Event) *domain.Event {
	if e.ID == "" {
		e.ID = fmt.Sprintf("ev-%d", f.nextID)
		f.nextID++
	}
	f.byID[e.ID] = e
	return e
}

func (f *fakeEventRepo) Create(ctx context.Context, e *domain.Event) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.add(e)
	return nil
}

func (f *fakeEventRepo) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	if e, ok := f.byID[id]; ok {
		cp := *e
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeEventRepo) ListByChurchID(ctx context.Context, churchID string) ([]*domain.Event, error) {
	var out []*domain.Event
	for _, e := range f.byID {
		if e.ChurchID == churchID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeEventRepo) UpdateStatus(ctx context.Context, id string, status domain.EventStatus) error {
	if f.statusErr != nil {
		return f.statusErr
	}
	e, ok := f.byID[id]
	if !ok {
		return domain.ErrNotFound
	}
	e.Status = status
	return nil
}

// fakeInvitationRepo is an in-memory InvitationRepository for tests.
// UpdateStatusIf enforces compare-and-set like the real repository.
type fakeInvitationRepo struct {
	byID        map[string]*domain.Invitation
	withEvents  []*domain.InvitationWithEvent
	nextID      int
	createErr   error
	updateErr   error
	overlapping []*domain.InvitationWithEvent
}

func newFakeInvitationRepo() *fakeInvitationRepo {
	return &fakeInvitationRepo{byID: make(map[string]*domain.Invitation), nextID: 1}
}

func (f *fakeInvitationRepo) add(inv *domain.Invitation) *domain.Invitation {
	if inv.ID == "" {
		inv.ID = fmt.Sprintf("inv-%d", f.nextID)
		f.nextID++
	}
	f.byID[inv.ID] = inv
	return inv
}

func (f *fakeInvitationRepo) Create(ctx context.Context, inv *domain.Invitation) error {
	if f.createErr != nil {
		return f.createErr
	}
	for _, existing := range f.byID {
		if existing.EventID == inv.EventID && existing.MusicianID == inv.MusicianID {
			return domain.ErrAlreadyInvited
		}
	}
	f.add(inv)
	return nil
}

func (f *fakeInvitationRepo) GetByID(ctx context.Context, id string) (*domain.Invitation, error) {
	if inv, ok := f.byID[id]; ok {
		cp := *inv
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeInvitationRepo) ListByEventID(ctx context.Context, eventID, search string, params domain.PaginationParams) ([]*domain.Invitation, int, error) {
	var out []*domain.Invitation
	for i := 1; i < f.nextID; i++ {
		id := fmt.Sprintf("inv-%d", i)
		if inv, ok := f.byID[id]; ok && inv.EventID == eventID {
			out = append(out, inv)
		}
	}
	return out, len(out), nil
}

func (f *fakeInvitationRepo) ListByMusicianID(ctx context.Context, musicianID string, params domain.PaginationParams) ([]*domain.InvitationWithEvent, int, error) {
	var out []*domain.InvitationWithEvent
	for _, iwe := range f.withEvents {
		if iwe.Invitation.MusicianID == musicianID {
			out = append(out, iwe)
		}
	}
	return out, len(out), nil
}

func (f *fakeInvitationRepo) ListActiveByEventID(ctx context.Context, eventID string) ([]*domain.Invitation, error) {
	var out []*domain.Invitation
	for i := 1; i < f.nextID; i++ {
		id := fmt.Sprintf("inv-%d", i)
		inv, ok := f.byID[id]
		if !ok || inv.EventID != eventID {
			continue
		}
		if inv.Status == domain.InvitationPending || inv.Status == domain.InvitationConfirmed {
			out = append(out, inv)
		}
	}
	return out, nil
}

func (f *fakeInvitationRepo) UpdateStatusIf(ctx context.Context, id string, expected domain.InvitationStatus, upd domain.InvitationStatusUpdate) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	inv, ok := f.byID[id]
	if !ok {
		return domain.ErrNotFound
	}
	if inv.Status != expected {
		return domain.ErrConflict
	}
	inv.Status = upd.Status
	t := upd.RespondedAt
	inv.RespondedAt = &t
	inv.CancelReason = upd.CancelReason
	inv.PenaltyApplied = upd.PenaltyApplied
	inv.PenaltyPoints = upd.PenaltyPoints
	return nil
}

func (f *fakeInvitationRepo) ListConfirmedOverlapping(ctx context.Context, churchID string, start, end time.Time) ([]*domain.InvitationWithEvent, error) {
	return f.overlapping, nil
}

// fakePenaltyRepo appends penalty entries in memory.
type fakePenaltyRepo struct {
	entries   []*domain.PenaltyHistoryEntry
	createErr error
	listErr   error
}

func (f *fakePenaltyRepo) Create(ctx context.Context, entry *domain.PenaltyHistoryEntry) error {
	if f.createErr != nil {
		return f.createErr
	}
	entry.ID = fmt.Sprintf("pen-%d", len(f.entries)+1)
	f.entries = append(f.entries, entry)
	return nil
}

func (f *fakePenaltyRepo) ListByMusicianID(ctx context.Context, musicianID string, params domain.PaginationParams) ([]*domain.PenaltyHistoryEntry, int, error) {
	if f.listErr != nil {
		return nil, 0, f.listErr
	}
	var out []*domain.PenaltyHistoryEntry
	for _, e := range f.entries {
		if e.MusicianID == musicianID {
			out = append(out, e)
		}
	}
	return out, len(out), nil
}

// fakePointRepo appends point entries in memory.
type fakePointRepo struct {
	entries   []*domain.PointHistoryEntry
	createErr error
}

func (f *fakePointRepo) Create(ctx context.Context, entry *domain.PointHistoryEntry) error {
	if f.createErr != nil {
		return f.createErr
	}
	entry.ID = fmt.Sprintf("pt-%d", len(f.entries)+1)
	f.entries = append(f.entries, entry)
	return nil
}

func (f *fakePointRepo) ListByMusicianID(ctx context.Context, musicianID string, params domain.PaginationParams) ([]*domain.PointHistoryEntry, int, error) {
	var out []*domain.PointHistoryEntry
	for _, e := range f.entries {
		if e.MusicianID == musicianID {
			out = append(out, e)
		}
	}
	return out, len(out), nil
}

// fakeAchievementRepo stores achievements and unlocks in memory. Unlock
// returns ErrConflict on a duplicate pair like the real repository.
type fakeAchievementRepo struct {
	all      []*domain.Achievement
	unlocked map[string][]*domain.UnlockedAchievement
}

func newFakeAchievementRepo(all ...*domain.Achievement) *fakeAchievementRepo {
	return &fakeAchievementRepo{all: all, unlocked: make(map[string][]*domain.UnlockedAchievement)}
}

func (f *fakeAchievementRepo) ListAll(ctx context.Context) ([]*domain.Achievement, error) {
	return f.all, nil
}

func (f *fakeAchievementRepo) ListUnlockedByMusicianID(ctx context.Context, musicianID string) ([]*domain.UnlockedAchievement, error) {
	return f.unlocked[musicianID], nil
}

func (f *fakeAchievementRepo) Unlock(ctx context.Context, musicianID, achievementID string, unlockedAt time.Time) error {
	for _, u := range f.unlocked[musicianID] {
		if u.Achievement.ID == achievementID {
			return domain.ErrConflict
		}
	}
	for _, a := range f.all {
		if a.ID == achievementID {
			f.unlocked[musicianID] = append(f.unlocked[musicianID], &domain.UnlockedAchievement{Achievement: a, UnlockedAt: unlockedAt})
			return nil
		}
	}
	return domain.ErrNotFound
}

// fakeGuestCodeRepo stores guest codes in memory.
type fakeGuestCodeRepo struct {
	codes     []*domain.GuestAccessCode
	nextID    int
	createErr error
}

func newFakeGuestCodeRepo() *fakeGuestCodeRepo {
	return &fakeGuestCodeRepo{nextID: 1}
}

func (f *fakeGuestCodeRepo) Create(ctx context.Context, code *domain.GuestAccessCode) error {
	if f.createErr != nil {
		return f.createErr
	}
	code.ID = fmt.Sprintf("code-%d", f.nextID)
	f.nextID++
	f.codes = append(f.codes, code)
	return nil
}

func (f *fakeGuestCodeRepo) ListActiveByEmail(ctx context.Context, email string, now time.Time) ([]*domain.GuestAccessCode, error) {
	var out []*domain.GuestAccessCode
	for _, c := range f.codes {
		if c.Email == email && c.ConsumedAt == nil && c.ExpiresAt.After(now) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeGuestCodeRepo) MarkConsumed(ctx context.Context, id string, consumedAt time.Time) error {
	for _, c := range f.codes {
		if c.ID == id {
			if c.ConsumedAt != nil {
				return domain.ErrConflict
			}
			t := consumedAt
			c.ConsumedAt = &t
			return nil
		}
	}
	return domain.ErrNotFound
}

// fakeTx runs fn directly; rolledBack records whether fn returned an error.
type fakeTx struct {
	calls      int
	rolledBack bool
}

func (f *fakeTx) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	f.calls++
	if err := fn(ctx); err != nil {
		f.rolledBack = true
		return err
	}
	return nil
}

// fakeNotifier records dispatched notifications.
type fakeNotifier struct {
	sent []*domain.Notification
	err  error
}

func (f *fakeNotifier) Notify(ctx context.Context, n *domain.Notification) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, n)
	return nil
}

// fakeMailer records sent emails.
type fakeMailer struct {
	to      []string
	bodies  []string
	types   []string
	sendErr error
}

func (f *fakeMailer) Send(_ context.Context, mail *domain.Mail) error {
	if f.sendErr != nil {
		return f.sendErr
	}
	f.to = append(f.to, mail.To)
	f.bodies = append(f.bodies, mail.TextBody)
	f.types = append(f.types, mail.Type)
	return nil
}

// fakeHasher hashes by prefixing, so tests can read stored codes back.
type fakeHasher struct{}

func (fakeHasher) Hash(code string) (string, error) { return "hashed:" + code, nil }

func (fakeHasher) Compare(hash, code string) error {
	if hash == "hashed:"+code {
		return nil
	}
	return fmt.Errorf("hash mismatch")
}

// fakeHandler records invitation events and optionally returns notes or an error.
type fakeHandler struct {
	events []*domain.InvitationEvent
	notes  []*domain.Notification
	err    error
}

func (f *fakeHandler) HandleInvitationEvent(ctx context.Context, evt *domain.InvitationEvent) ([]*domain.Notification, error) {
	f.events = append(f.events, evt)
	if f.err != nil {
		return nil, f.err
	}
	return f.notes, nil
}
