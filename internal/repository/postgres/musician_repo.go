package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"ministryroster/internal/domain"
)

type musicianRepository struct {
	DB *sql.DB
}

// NewMusicianRepository returns a domain.MusicianRepository implemented with Postgres.
func NewMusicianRepository(db *sql.DB) domain.MusicianRepository {
	return &musicianRepository{DB: db}
}

const musicianColumns = `
	id, church_id, name, email, penalty_points, is_blocked, blocked_until,
	total_points, level, streak, last_event_date, availability,
	instruments, vocal_parts, total_events, total_cancellations, is_guest,
	created_at, updated_at`

func scanMusician(row interface{ Scan(dest ...any) error }) (*domain.Musician, error) {
	m := &domain.Musician{}
	var availability []byte
	err := row.Scan(
		&m.ID, &m.ChurchID, &m.Name, &m.Email, &m.PenaltyPoints, &m.IsBlocked,
		&m.BlockedUntil, &m.TotalPoints, &m.Level, &m.Streak, &m.LastEventDate,
		&availability, pq.Array(&m.Instruments), pq.Array(&m.VocalParts),
		&m.TotalEvents, &m.TotalCancellations, &m.IsGuest,
		&m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(availability) > 0 {
		if err := json.Unmarshal(availability, &m.Availability); err != nil {
			return nil, fmt.Errorf("decode availability: %w", err)
		}
	}
	return m, nil
}

func (r *musicianRepository) Create(ctx context.Context, m *domain.Musician) error {
	availability, err := marshalAvailability(m.Availability)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO musicians (church_id, name, email, level, availability, instruments, vocal_parts, is_guest, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id
	`
	return queryerFrom(ctx, r.DB).QueryRowContext(ctx, query,
		m.ChurchID, m.Name, m.Email, m.Level, availability,
		pq.Array(m.Instruments), pq.Array(m.VocalParts), m.IsGuest,
		m.CreatedAt, m.UpdatedAt,
	).Scan(&m.ID)
}

func marshalAvailability(availability map[string]bool) ([]byte, error) {
	if availability == nil {
		return nil, nil
	}
	data, err := json.Marshal(availability)
	if err != nil {
		return nil, fmt.Errorf("encode availability: %w", err)
	}
	return data, nil
}

func (r *musicianRepository) GetByID(ctx context.Context, id string) (*domain.Musician, error) {
	query := `SELECT` + musicianColumns + `
		FROM musicians
		WHERE id = $1
	`
	m, err := scanMusician(queryerFrom(ctx, r.DB).QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return m, nil
}

func (r *musicianRepository) GetByEmail(ctx context.Context, email string) (*domain.Musician, error) {
	query := `SELECT` + musicianColumns + `
		FROM musicians
		WHERE email = $1
	`
	m, err := scanMusician(queryerFrom(ctx, r.DB).QueryRowContext(ctx, query, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return m, nil
}

func (r *musicianRepository) ListByChurchID(ctx context.Context, churchID string) ([]*domain.Musician, error) {
	query := `SELECT` + musicianColumns + `
		FROM musicians
		WHERE church_id = $1
		ORDER BY name ASC
	`
	rows, err := queryerFrom(ctx, r.DB).QueryContext(ctx, query, churchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var musicians []*domain.Musician
	for rows.Next() {
		m, err := scanMusician(rows)
		if err != nil {
			return nil, err
		}
		musicians = append(musicians, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if musicians == nil {
		musicians = []*domain.Musician{}
	}
	return musicians, nil
}

func (r *musicianRepository) UpdateAvailability(ctx context.Context, id string, availability map[string]bool) error {
	data, err := marshalAvailability(availability)
	if err != nil {
		return err
	}
	query := `
		UPDATE musicians
		SET availability = $2, updated_at = NOW()
		WHERE id = $1
	`
	return r.execExpectingRow(ctx, query, id, data)
}

func (r *musicianRepository) UpdateSkills(ctx context.Context, id string, instruments, vocalParts []string) error {
	query := `
		UPDATE musicians
		SET instruments = $2, vocal_parts = $3, updated_at = NOW()
		WHERE id = $1
	`
	return r.execExpectingRow(ctx, query, id, pq.Array(instruments), pq.Array(vocalParts))
}

func (r *musicianRepository) UpdatePenaltyState(ctx context.Context, id string, penaltyPoints int, isBlocked bool, blockedUntil *time.Time) error {
	query := `
		UPDATE musicians
		SET penalty_points = $2, is_blocked = $3, blocked_until = $4, updated_at = NOW()
		WHERE id = $1
	`
	return r.execExpectingRow(ctx, query, id, penaltyPoints, isBlocked, blockedUntil)
}

func (r *musicianRepository) UpdateGamification(ctx context.Context, id string, totalPoints, level int) error {
	query := `
		UPDATE musicians
		SET total_points = $2, level = $3, updated_at = NOW()
		WHERE id = $1
	`
	return r.execExpectingRow(ctx, query, id, totalPoints, level)
}

func (r *musicianRepository) UpdateStreak(ctx context.Context, id string, streak int, lastEventDate time.Time) error {
	query := `
		UPDATE musicians
		SET streak = $2, last_event_date = $3, updated_at = NOW()
		WHERE id = $1
	`
	return r.execExpectingRow(ctx, query, id, streak, lastEventDate)
}

func (r *musicianRepository) IncrementEventCount(ctx context.Context, id string) error {
	query := `
		UPDATE musicians
		SET total_events = total_events + 1, updated_at = NOW()
		WHERE id = $1
	`
	return r.execExpectingRow(ctx, query, id)
}

func (r *musicianRepository) IncrementCancellationCount(ctx context.Context, id string) error {
	query := `
		UPDATE musicians
		SET total_cancellations = total_cancellations + 1, updated_at = NOW()
		WHERE id = $1
	`
	return r.execExpectingRow(ctx, query, id)
}

// execExpectingRow runs an update that must touch exactly one musician and
// maps a zero row count to ErrNotFound.
func (r *musicianRepository) execExpectingRow(ctx context.Context, query string, args ...any) error {
	res, err := queryerFrom(ctx, r.DB).ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}
