package postgres

import (
	"context"
	"database/sql"

	"ministryroster/internal/domain"
)

type penaltyHistoryRepository struct {
	DB *sql.DB
}

// NewPenaltyHistoryRepository returns a domain.PenaltyHistoryRepository implemented with Postgres.
func NewPenaltyHistoryRepository(db *sql.DB) domain.PenaltyHistoryRepository {
	return &penaltyHistoryRepository{DB: db}
}

func (r *penaltyHistoryRepository) Create(ctx context.Context, entry *domain.PenaltyHistoryEntry) error {
	query := `
		INSERT INTO penalty_history (musician_id, event_id, invitation_id, points, reason, description, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`
	return queryerFrom(ctx, r.DB).QueryRowContext(ctx, query,
		entry.MusicianID, entry.EventID, entry.InvitationID, entry.Points,
		entry.Reason, entry.Description, entry.CreatedAt,
	).Scan(&entry.ID)
}

func (r *penaltyHistoryRepository) ListByMusicianID(ctx context.Context, musicianID string, params domain.PaginationParams) ([]*domain.PenaltyHistoryEntry, int, error) {
	query := `
		SELECT id, musician_id, event_id, invitation_id, points, reason, description, created_at,
		       COUNT(*) OVER() AS total
		FROM penalty_history
		WHERE musician_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := queryerFrom(ctx, r.DB).QueryContext(ctx, query, musicianID, params.PageSize, params.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var entries []*domain.PenaltyHistoryEntry
	total := 0
	for rows.Next() {
		e := &domain.PenaltyHistoryEntry{}
		if err := rows.Scan(
			&e.ID, &e.MusicianID, &e.EventID, &e.InvitationID, &e.Points,
			&e.Reason, &e.Description, &e.CreatedAt, &total,
		); err != nil {
			return nil, 0, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	if entries == nil {
		entries = []*domain.PenaltyHistoryEntry{}
	}
	return entries, total, nil
}

type pointHistoryRepository struct {
	DB *sql.DB
}

// NewPointHistoryRepository returns a domain.PointHistoryRepository implemented with Postgres.
func NewPointHistoryRepository(db *sql.DB) domain.PointHistoryRepository {
	return &pointHistoryRepository{DB: db}
}

func (r *pointHistoryRepository) Create(ctx context.Context, entry *domain.PointHistoryEntry) error {
	query := `
		INSERT INTO point_history (musician_id, points, action, reason, event_id, invitation_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`
	return queryerFrom(ctx, r.DB).QueryRowContext(ctx, query,
		entry.MusicianID, entry.Points, entry.Action, entry.Reason,
		entry.EventID, entry.InvitationID, entry.CreatedAt,
	).Scan(&entry.ID)
}

func (r *pointHistoryRepository) ListByMusicianID(ctx context.Context, musicianID string, params domain.PaginationParams) ([]*domain.PointHistoryEntry, int, error) {
	query := `
		SELECT id, musician_id, points, action, reason, event_id, invitation_id, created_at,
		       COUNT(*) OVER() AS total
		FROM point_history
		WHERE musician_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := queryerFrom(ctx, r.DB).QueryContext(ctx, query, musicianID, params.PageSize, params.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var entries []*domain.PointHistoryEntry
	total := 0
	for rows.Next() {
		e := &domain.PointHistoryEntry{}
		if err := rows.Scan(
			&e.ID, &e.MusicianID, &e.Points, &e.Action, &e.Reason,
			&e.EventID, &e.InvitationID, &e.CreatedAt, &total,
		); err != nil {
			return nil, 0, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	if entries == nil {
		entries = []*domain.PointHistoryEntry{}
	}
	return entries, total, nil
}
