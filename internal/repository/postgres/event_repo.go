package postgres

import (
	"context"
	"database/sql"
	"errors"

	"ministryroster/internal/domain"
)

type eventRepository struct {
	DB *sql.DB
}

// NewEventRepository returns a domain.EventRepository implemented with Postgres.
func NewEventRepository(db *sql.DB) domain.EventRepository {
	return &eventRepository{DB: db}
}

func (r *eventRepository) Create(ctx context.Context, event *domain.Event) error {
	query := `
		INSERT INTO events (church_id, created_by, title, event_type, date, end_time, location, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id
	`
	return queryerFrom(ctx, r.DB).QueryRowContext(ctx, query,
		event.ChurchID, event.CreatedBy, event.Title, event.EventType,
		event.Date, event.EndTime, event.Location, event.Status,
		event.CreatedAt, event.UpdatedAt,
	).Scan(&event.ID)
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	query := `
		SELECT id, church_id, created_by, title, event_type, date, end_time, location, status, created_at, updated_at
		FROM events
		WHERE id = $1
	`
	event := &domain.Event{}
	err := queryerFrom(ctx, r.DB).QueryRowContext(ctx, query, id).Scan(
		&event.ID, &event.ChurchID, &event.CreatedBy, &event.Title,
		&event.EventType, &event.Date, &event.EndTime, &event.Location,
		&event.Status, &event.CreatedAt, &event.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return event, nil
}

func (r *eventRepository) ListByChurchID(ctx context.Context, churchID string) ([]*domain.Event, error) {
	query := `
		SELECT id, church_id, created_by, title, event_type, date, end_time, location, status, created_at, updated_at
		FROM events
		WHERE church_id = $1
		ORDER BY date DESC
	`
	rows, err := queryerFrom(ctx, r.DB).QueryContext(ctx, query, churchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*domain.Event
	for rows.Next() {
		event := &domain.Event{}
		if err := rows.Scan(
			&event.ID, &event.ChurchID, &event.CreatedBy, &event.Title,
			&event.EventType, &event.Date, &event.EndTime, &event.Location,
			&event.Status, &event.CreatedAt, &event.UpdatedAt,
		); err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if events == nil {
		events = []*domain.Event{}
	}
	return events, nil
}

func (r *eventRepository) UpdateStatus(ctx context.Context, id string, status domain.EventStatus) error {
	query := `
		UPDATE events
		SET status = $2, updated_at = NOW()
		WHERE id = $1
	`
	res, err := queryerFrom(ctx, r.DB).ExecContext(ctx, query, id, status)
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
