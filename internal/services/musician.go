package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"strings"
	"time"

	"ministryroster/internal/domain"
)

const guestCodeLength = 8

var guestCodeAlphabet = []rune("abcdefghjkmnpqrstuvwxyz23456789")

func generateGuestCode() (string, error) {
	b := make([]rune, guestCodeLength)
	max := big.NewInt(int64(len(guestCodeAlphabet)))
	for i := 0; i < guestCodeLength; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b[i] = guestCodeAlphabet[n.Int64()]
	}
	return string(b), nil
}

type musicianService struct {
	musicianRepo    domain.MusicianRepository
	penaltyRepo     domain.PenaltyHistoryRepository
	pointRepo       domain.PointHistoryRepository
	achievementRepo domain.AchievementRepository
	guestCodeRepo   domain.GuestCodeRepository
	hasher          domain.CodeHasher
	mailer          domain.Mailer
	clock           domain.Clock
	logger          *slog.Logger
	contextTimeout  time.Duration
}

// NewMusicianService returns the musician-facing profile service.
func NewMusicianService(
	musicianRepo domain.MusicianRepository,
	penaltyRepo domain.PenaltyHistoryRepository,
	pointRepo domain.PointHistoryRepository,
	achievementRepo domain.AchievementRepository,
	guestCodeRepo domain.GuestCodeRepository,
	hasher domain.CodeHasher,
	mailer domain.Mailer,
	clock domain.Clock,
	logger *slog.Logger,
	timeout time.Duration,
) domain.MusicianService {
	return &musicianService{
		musicianRepo:    musicianRepo,
		penaltyRepo:     penaltyRepo,
		pointRepo:       pointRepo,
		achievementRepo: achievementRepo,
		guestCodeRepo:   guestCodeRepo,
		hasher:          hasher,
		mailer:          mailer,
		clock:           clock,
		logger:          logger,
		contextTimeout:  timeout,
	}
}

func (s *musicianService) Get(ctx context.Context, caller domain.AuthContext, musicianID string) (*domain.Musician, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	musician, err := s.musicianRepo.GetByID(ctx, musicianID)
	if err != nil {
		return nil, fmt.Errorf("get musician: %w", err)
	}
	if musician.ChurchID != caller.ChurchID {
		return nil, domain.ErrNotFound
	}
	return musician, nil
}

func (s *musicianService) UpdateAvailability(ctx context.Context, caller domain.AuthContext, availability map[string]bool) (*domain.Musician, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	musician, err := s.musicianRepo.GetByID(ctx, caller.UserID)
	if err != nil {
		return nil, fmt.Errorf("get musician: %w", err)
	}
	if err := s.musicianRepo.UpdateAvailability(ctx, musician.ID, availability); err != nil {
		return nil, fmt.Errorf("update availability: %w", err)
	}
	musician.Availability = availability
	return musician, nil
}

func (s *musicianService) UpdateSkills(ctx context.Context, caller domain.AuthContext, instruments, vocalParts []string) (*domain.Musician, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	musician, err := s.musicianRepo.GetByID(ctx, caller.UserID)
	if err != nil {
		return nil, fmt.Errorf("get musician: %w", err)
	}
	if instruments == nil {
		instruments = []string{}
	}
	if vocalParts == nil {
		vocalParts = []string{}
	}
	if err := s.musicianRepo.UpdateSkills(ctx, musician.ID, instruments, vocalParts); err != nil {
		return nil, fmt.Errorf("update skills: %w", err)
	}
	musician.Instruments = instruments
	musician.VocalParts = vocalParts
	return musician, nil
}

func (s *musicianService) Stats(ctx context.Context, caller domain.AuthContext) (*domain.MusicianStats, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	musician, err := s.musicianRepo.GetByID(ctx, caller.UserID)
	if err != nil {
		return nil, fmt.Errorf("get musician: %w", err)
	}
	level := LevelFor(musician.TotalPoints)
	return &domain.MusicianStats{
		Musician:      musician,
		LevelName:     level.Name,
		LevelIcon:     level.Icon,
		NextLevelAt:   NextLevelAt(musician.TotalPoints),
		BlockedNow:    musician.BlockedAt(s.clock.Now()),
		PenaltyPoints: musician.PenaltyPoints,
	}, nil
}

func (s *musicianService) ListPenaltyHistory(ctx context.Context, caller domain.AuthContext, params domain.PaginationParams) ([]*domain.PenaltyHistoryEntry, int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	entries, total, err := s.penaltyRepo.ListByMusicianID(ctx, caller.UserID, params)
	if err != nil {
		return nil, 0, fmt.Errorf("list penalty history: %w", err)
	}
	if entries == nil {
		entries = []*domain.PenaltyHistoryEntry{}
	}
	return entries, total, nil
}

func (s *musicianService) ListPointHistory(ctx context.Context, caller domain.AuthContext, params domain.PaginationParams) ([]*domain.PointHistoryEntry, int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	entries, total, err := s.pointRepo.ListByMusicianID(ctx, caller.UserID, params)
	if err != nil {
		return nil, 0, fmt.Errorf("list point history: %w", err)
	}
	if entries == nil {
		entries = []*domain.PointHistoryEntry{}
	}
	return entries, total, nil
}

func (s *musicianService) ListAchievements(ctx context.Context, caller domain.AuthContext) ([]*domain.UnlockedAchievement, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	unlocked, err := s.achievementRepo.ListUnlockedByMusicianID(ctx, caller.UserID)
	if err != nil {
		return nil, fmt.Errorf("list achievements: %w", err)
	}
	if unlocked == nil {
		unlocked = []*domain.UnlockedAchievement{}
	}
	return unlocked, nil
}

func (s *musicianService) InviteGuestMusician(ctx context.Context, caller domain.AuthContext, email string, expiry time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if !caller.CanManageEvents() {
		return domain.ErrForbidden
	}
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" {
		return fmt.Errorf("email is required: %w", domain.ErrInvalidInput)
	}
	if expiry <= 0 {
		expiry = 72 * time.Hour
	}

	code, err := generateGuestCode()
	if err != nil {
		return fmt.Errorf("generate guest code: %w", err)
	}
	hash, err := s.hasher.Hash(code)
	if err != nil {
		return fmt.Errorf("hash guest code: %w", err)
	}
	now := s.clock.Now()
	record := &domain.GuestAccessCode{
		Email:     email,
		CodeHash:  hash,
		ChurchID:  caller.ChurchID,
		ExpiresAt: now.Add(expiry),
	}
	if err := s.guestCodeRepo.Create(ctx, record); err != nil {
		return fmt.Errorf("store guest code: %w", err)
	}

	mail := &domain.Mail{
		To:       email,
		Subject:  "Guest musician access code",
		TextBody: fmt.Sprintf("You have been invited as a guest musician. Your access code is %s. It expires in %d hours.", code, int(expiry.Hours())),
		Type:     domain.NotificationGuestAccess,
	}
	if err := s.mailer.Send(ctx, mail); err != nil {
		// The code is stored; delivery failure is surfaced so the director
		// can retry explicitly.
		return fmt.Errorf("send guest code email: %w", err)
	}
	return nil
}

func (s *musicianService) RedeemGuestCode(ctx context.Context, email, code string) (*domain.Musician, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || code == "" {
		return nil, fmt.Errorf("email and code are required: %w", domain.ErrInvalidInput)
	}

	now := s.clock.Now()
	candidates, err := s.guestCodeRepo.ListActiveByEmail(ctx, email, now)
	if err != nil {
		return nil, fmt.Errorf("list guest codes: %w", err)
	}
	var matched *domain.GuestAccessCode
	for _, c := range candidates {
		if s.hasher.Compare(c.CodeHash, code) == nil {
			matched = c
			break
		}
	}
	if matched == nil {
		return nil, domain.ErrNotFound
	}
	if err := s.guestCodeRepo.MarkConsumed(ctx, matched.ID, now); err != nil {
		return nil, fmt.Errorf("consume guest code: %w", err)
	}

	musician, err := s.musicianRepo.GetByEmail(ctx, email)
	if err == nil {
		return musician, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("get musician by email: %w", err)
	}

	guest := &domain.Musician{
		ChurchID:    matched.ChurchID,
		Name:        email,
		Email:       email,
		Level:       1,
		Instruments: []string{},
		VocalParts:  []string{},
		IsGuest:     true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.musicianRepo.Create(ctx, guest); err != nil {
		return nil, fmt.Errorf("create guest musician: %w", err)
	}
	return guest, nil
}
