package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ministryroster/internal/domain"
	"ministryroster/internal/metrics"
)

// Point amounts and windows for the gamification engine.
const (
	ConfirmPoints    = 10
	LastMinutePoints = 30
	LastMinuteWindow = 24 * time.Hour
	StreakWindow     = 7 * 24 * time.Hour
)

// Point actions recorded in the audit trail.
const (
	PointActionConfirmation = "event_confirmation"
	PointActionLastMinute   = "last_minute_fill"
	PointActionAchievement  = "achievement_bonus"
)

// Level is one rung of the fixed level ladder.
type Level struct {
	Level     int    `json:"level"`
	Name      string `json:"name"`
	Icon      string `json:"icon"`
	MinPoints int    `json:"min_points"`
}

// levels is ordered by MinPoints ascending; LevelFor depends on that.
var levels = []Level{
	{Level: 1, Name: "Beginner", Icon: "🌱", MinPoints: 0},
	{Level: 2, Name: "Committed", Icon: "🎵", MinPoints: 50},
	{Level: 3, Name: "Faithful", Icon: "🎶", MinPoints: 150},
	{Level: 4, Name: "Dedicated", Icon: "🎸", MinPoints: 300},
	{Level: 5, Name: "Pillar", Icon: "🏛️", MinPoints: 500},
	{Level: 6, Name: "Legend", Icon: "⭐", MinPoints: 1000},
}

// LevelFor returns the highest level whose MinPoints does not exceed
// totalPoints. Totals below the first rung map to the first rung.
func LevelFor(totalPoints int) Level {
	current := levels[0]
	for _, l := range levels {
		if totalPoints >= l.MinPoints {
			current = l
		}
	}
	return current
}

// NextLevelAt returns the point total required for the next level, or nil at
// the top of the ladder.
func NextLevelAt(totalPoints int) *int {
	for _, l := range levels {
		if totalPoints < l.MinPoints {
			min := l.MinPoints
			return &min
		}
	}
	return nil
}

// ConfirmGrant returns the point amount and action for a confirmation at
// now for an event starting at eventStart. The last-minute rate applies only
// when the event is still in the future and starts in strictly less than the
// last-minute window; confirming exactly at the window boundary, or earlier,
// earns the base rate. The two rates are mutually exclusive.
func ConfirmGrant(now, eventStart time.Time) (amount int, action string) {
	until := eventStart.Sub(now)
	if until > 0 && until < LastMinuteWindow {
		return LastMinutePoints, PointActionLastMinute
	}
	return ConfirmPoints, PointActionConfirmation
}

// GamificationService implements domain.GamificationEngine and consumes
// invitation events as a domain.InvitationEventHandler, granting
// confirmation points, updating streaks and evaluating achievements.
type GamificationService struct {
	musicianRepo    domain.MusicianRepository
	pointRepo       domain.PointHistoryRepository
	achievementRepo domain.AchievementRepository
	clock           domain.Clock
}

var (
	_ domain.GamificationEngine     = (*GamificationService)(nil)
	_ domain.InvitationEventHandler = (*GamificationService)(nil)
)

// NewGamificationService returns the gamification engine.
func NewGamificationService(
	musicianRepo domain.MusicianRepository,
	pointRepo domain.PointHistoryRepository,
	achievementRepo domain.AchievementRepository,
	clock domain.Clock,
) *GamificationService {
	return &GamificationService{
		musicianRepo:    musicianRepo,
		pointRepo:       pointRepo,
		achievementRepo: achievementRepo,
		clock:           clock,
	}
}

func (s *GamificationService) GrantPoints(ctx context.Context, musicianID string, amount int, action, reason string, eventID, invitationID *string) (*domain.Musician, error) {
	musician, err := s.musicianRepo.GetByID(ctx, musicianID)
	if err != nil {
		return nil, fmt.Errorf("get musician: %w", err)
	}

	entry := &domain.PointHistoryEntry{
		MusicianID:   musicianID,
		Points:       amount,
		Action:       action,
		Reason:       reason,
		EventID:      eventID,
		InvitationID: invitationID,
		CreatedAt:    s.clock.Now(),
	}
	if err := s.pointRepo.Create(ctx, entry); err != nil {
		return nil, fmt.Errorf("append point history: %w", err)
	}

	newTotal := musician.TotalPoints + amount
	newLevel := LevelFor(newTotal)
	if err := s.musicianRepo.UpdateGamification(ctx, musicianID, newTotal, newLevel.Level); err != nil {
		return nil, fmt.Errorf("update gamification state: %w", err)
	}

	if amount > 0 {
		metrics.PointsGranted.Add(float64(amount))
	}

	musician.TotalPoints = newTotal
	musician.Level = newLevel.Level
	return musician, nil
}

func (s *GamificationService) UpdateStreak(ctx context.Context, musicianID string, eventDate time.Time) (*domain.Musician, error) {
	musician, err := s.musicianRepo.GetByID(ctx, musicianID)
	if err != nil {
		return nil, fmt.Errorf("get musician: %w", err)
	}

	streak := 1
	if musician.LastEventDate != nil {
		gap := eventDate.Sub(*musician.LastEventDate)
		if gap < 0 {
			gap = -gap
		}
		if gap <= StreakWindow {
			streak = musician.Streak + 1
		}
	}
	if err := s.musicianRepo.UpdateStreak(ctx, musicianID, streak, eventDate); err != nil {
		return nil, fmt.Errorf("update streak: %w", err)
	}

	musician.Streak = streak
	musician.LastEventDate = &eventDate
	return musician, nil
}

func (s *GamificationService) EvaluateAchievements(ctx context.Context, musicianID string) ([]*domain.UnlockedAchievement, []*domain.Notification, error) {
	musician, err := s.musicianRepo.GetByID(ctx, musicianID)
	if err != nil {
		return nil, nil, fmt.Errorf("get musician: %w", err)
	}
	all, err := s.achievementRepo.ListAll(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("list achievements: %w", err)
	}
	unlocked, err := s.achievementRepo.ListUnlockedByMusicianID(ctx, musicianID)
	if err != nil {
		return nil, nil, fmt.Errorf("list unlocked achievements: %w", err)
	}
	have := make(map[string]struct{}, len(unlocked))
	for _, u := range unlocked {
		have[u.Achievement.ID] = struct{}{}
	}

	now := s.clock.Now()
	var newlyUnlocked []*domain.UnlockedAchievement
	var notes []*domain.Notification
	for _, a := range all {
		if _, ok := have[a.ID]; ok {
			continue
		}
		metric, threshold, err := a.ParseRequirement()
		if err != nil {
			continue
		}
		if s.metricValue(musician, metric) < threshold {
			continue
		}
		if err := s.achievementRepo.Unlock(ctx, musicianID, a.ID, now); err != nil {
			if errors.Is(err, domain.ErrConflict) {
				continue
			}
			return nil, nil, fmt.Errorf("unlock achievement %s: %w", a.Code, err)
		}
		if a.BonusPoints > 0 {
			if _, err := s.GrantPoints(ctx, musicianID, a.BonusPoints, PointActionAchievement, a.Code, nil, nil); err != nil {
				return nil, nil, err
			}
		}
		newlyUnlocked = append(newlyUnlocked, &domain.UnlockedAchievement{Achievement: a, UnlockedAt: now})
		notes = append(notes, &domain.Notification{
			UserID:  musicianID,
			Title:   "Achievement unlocked",
			Message: fmt.Sprintf("%s %s: %s (+%d points)", a.Icon, a.Name, a.Description, a.BonusPoints),
			Type:    domain.NotificationAchievement,
		})
	}
	return newlyUnlocked, notes, nil
}

// metricValue computes the current value of an achievement metric from the
// musician aggregate. Unknown metrics never match.
func (s *GamificationService) metricValue(m *domain.Musician, metric string) int {
	switch metric {
	case "total_events":
		return m.TotalEvents
	case "streak":
		return m.Streak
	case "instruments":
		return len(m.Instruments)
	case "total_points":
		return m.TotalPoints
	default:
		return -1
	}
}

// HandleInvitationEvent grants confirmation points, updates the streak and
// lifetime event counter, and evaluates achievements. Runs inside the
// respond transaction.
func (s *GamificationService) HandleInvitationEvent(ctx context.Context, evt *domain.InvitationEvent) ([]*domain.Notification, error) {
	if evt.Type != domain.InvitationConfirmedEvent {
		return nil, nil
	}
	amount, action := ConfirmGrant(evt.OccurredAt, evt.Event.Date)
	reason := fmt.Sprintf("Confirmed invitation for %q", evt.Event.Title)
	if _, err := s.GrantPoints(ctx, evt.Musician.ID, amount, action, reason, &evt.Event.ID, &evt.Invitation.ID); err != nil {
		return nil, err
	}
	if _, err := s.UpdateStreak(ctx, evt.Musician.ID, evt.Event.Date); err != nil {
		return nil, err
	}
	if err := s.musicianRepo.IncrementEventCount(ctx, evt.Musician.ID); err != nil {
		return nil, fmt.Errorf("increment event count: %w", err)
	}
	_, notes, err := s.EvaluateAchievements(ctx, evt.Musician.ID)
	if err != nil {
		return nil, err
	}
	return notes, nil
}
