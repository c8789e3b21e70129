package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"

	"ministryroster/internal/domain"
)

type achievementRepository struct {
	DB *sql.DB
}

// NewAchievementRepository returns a domain.AchievementRepository implemented with Postgres.
func NewAchievementRepository(db *sql.DB) domain.AchievementRepository {
	return &achievementRepository{DB: db}
}

func (r *achievementRepository) ListAll(ctx context.Context) ([]*domain.Achievement, error) {
	query := `
		SELECT id, code, name, description, icon, requirement, bonus_points
		FROM achievements
		ORDER BY code ASC
	`
	rows, err := queryerFrom(ctx, r.DB).QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var achievements []*domain.Achievement
	for rows.Next() {
		a := &domain.Achievement{}
		if err := rows.Scan(&a.ID, &a.Code, &a.Name, &a.Description, &a.Icon, &a.Requirement, &a.BonusPoints); err != nil {
			return nil, err
		}
		achievements = append(achievements, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if achievements == nil {
		achievements = []*domain.Achievement{}
	}
	return achievements, nil
}

func (r *achievementRepository) ListUnlockedByMusicianID(ctx context.Context, musicianID string) ([]*domain.UnlockedAchievement, error) {
	query := `
		SELECT a.id, a.code, a.name, a.description, a.icon, a.requirement, a.bonus_points, ma.unlocked_at
		FROM musician_achievements ma
		JOIN achievements a ON a.id = ma.achievement_id
		WHERE ma.musician_id = $1
		ORDER BY ma.unlocked_at DESC
	`
	rows, err := queryerFrom(ctx, r.DB).QueryContext(ctx, query, musicianID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var unlocked []*domain.UnlockedAchievement
	for rows.Next() {
		a := &domain.Achievement{}
		u := &domain.UnlockedAchievement{Achievement: a}
		if err := rows.Scan(&a.ID, &a.Code, &a.Name, &a.Description, &a.Icon, &a.Requirement, &a.BonusPoints, &u.UnlockedAt); err != nil {
			return nil, err
		}
		unlocked = append(unlocked, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if unlocked == nil {
		unlocked = []*domain.UnlockedAchievement{}
	}
	return unlocked, nil
}

func (r *achievementRepository) Unlock(ctx context.Context, musicianID, achievementID string, unlockedAt time.Time) error {
	query := `
		INSERT INTO musician_achievements (musician_id, achievement_id, unlocked_at)
		VALUES ($1, $2, $3)
	`
	_, err := queryerFrom(ctx, r.DB).ExecContext(ctx, query, musicianID, achievementID, unlockedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return domain.ErrConflict
		}
		return err
	}
	return nil
}
