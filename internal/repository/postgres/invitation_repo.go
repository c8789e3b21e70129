package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"

	"ministryroster/internal/domain"
)

// uniqueViolation is the Postgres error code for unique constraint breaches.
const uniqueViolation = "23505"

type invitationRepository struct {
	DB *sql.DB
}

// NewInvitationRepository returns a domain.InvitationRepository implemented with Postgres.
func NewInvitationRepository(db *sql.DB) domain.InvitationRepository {
	return &invitationRepository{DB: db}
}

const invitationColumns = `
	id, event_id, musician_id, role, instrument, vocal_part, status,
	responded_at, cancel_reason, penalty_applied, penalty_points, created_at`

func scanInvitation(row interface{ Scan(dest ...any) error }) (*domain.Invitation, error) {
	inv := &domain.Invitation{}
	err := row.Scan(
		&inv.ID, &inv.EventID, &inv.MusicianID, &inv.Role, &inv.Instrument,
		&inv.VocalPart, &inv.Status, &inv.RespondedAt, &inv.CancelReason,
		&inv.PenaltyApplied, &inv.PenaltyPoints, &inv.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return inv, nil
}

func (r *invitationRepository) Create(ctx context.Context, inv *domain.Invitation) error {
	query := `
		INSERT INTO invitations (event_id, musician_id, role, instrument, vocal_part, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`
	err := queryerFrom(ctx, r.DB).QueryRowContext(ctx, query,
		inv.EventID, inv.MusicianID, inv.Role, inv.Instrument, inv.VocalPart,
		inv.Status, inv.CreatedAt,
	).Scan(&inv.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return domain.ErrAlreadyInvited
		}
		return err
	}
	return nil
}

func (r *invitationRepository) GetByID(ctx context.Context, id string) (*domain.Invitation, error) {
	query := `SELECT` + invitationColumns + `
		FROM invitations
		WHERE id = $1
	`
	inv, err := scanInvitation(queryerFrom(ctx, r.DB).QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return inv, nil
}

func (r *invitationRepository) ListByEventID(ctx context.Context, eventID, search string, params domain.PaginationParams) ([]*domain.Invitation, int, error) {
	query := `
		SELECT i.id, i.event_id, i.musician_id, i.role, i.instrument, i.vocal_part, i.status,
		       i.responded_at, i.cancel_reason, i.penalty_applied, i.penalty_points, i.created_at,
		       COUNT(*) OVER() AS total
		FROM invitations i
		JOIN musicians m ON m.id = i.musician_id
		WHERE i.event_id = $1
		  AND ($2 = '' OR m.name ILIKE '%' || $2 || '%' OR i.role ILIKE '%' || $2 || '%')
		ORDER BY i.created_at DESC
		LIMIT $3 OFFSET $4
	`
	rows, err := queryerFrom(ctx, r.DB).QueryContext(ctx, query, eventID, search, params.PageSize, params.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var invs []*domain.Invitation
	total := 0
	for rows.Next() {
		inv := &domain.Invitation{}
		if err := rows.Scan(
			&inv.ID, &inv.EventID, &inv.MusicianID, &inv.Role, &inv.Instrument,
			&inv.VocalPart, &inv.Status, &inv.RespondedAt, &inv.CancelReason,
			&inv.PenaltyApplied, &inv.PenaltyPoints, &inv.CreatedAt, &total,
		); err != nil {
			return nil, 0, err
		}
		invs = append(invs, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	if invs == nil {
		invs = []*domain.Invitation{}
	}
	return invs, total, nil
}

func (r *invitationRepository) ListByMusicianID(ctx context.Context, musicianID string, params domain.PaginationParams) ([]*domain.InvitationWithEvent, int, error) {
	query := `
		SELECT i.id, i.event_id, i.musician_id, i.role, i.instrument, i.vocal_part, i.status,
		       i.responded_at, i.cancel_reason, i.penalty_applied, i.penalty_points, i.created_at,
		       e.id, e.church_id, e.created_by, e.title, e.event_type, e.date, e.end_time,
		       e.location, e.status, e.created_at, e.updated_at,
		       COUNT(*) OVER() AS total
		FROM invitations i
		JOIN events e ON e.id = i.event_id
		WHERE i.musician_id = $1
		ORDER BY e.date DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := queryerFrom(ctx, r.DB).QueryContext(ctx, query, musicianID, params.PageSize, params.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []*domain.InvitationWithEvent
	total := 0
	for rows.Next() {
		inv := &domain.Invitation{}
		event := &domain.Event{}
		if err := rows.Scan(
			&inv.ID, &inv.EventID, &inv.MusicianID, &inv.Role, &inv.Instrument,
			&inv.VocalPart, &inv.Status, &inv.RespondedAt, &inv.CancelReason,
			&inv.PenaltyApplied, &inv.PenaltyPoints, &inv.CreatedAt,
			&event.ID, &event.ChurchID, &event.CreatedBy, &event.Title,
			&event.EventType, &event.Date, &event.EndTime, &event.Location,
			&event.Status, &event.CreatedAt, &event.UpdatedAt, &total,
		); err != nil {
			return nil, 0, err
		}
		out = append(out, &domain.InvitationWithEvent{Invitation: inv, Event: event})
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	if out == nil {
		out = []*domain.InvitationWithEvent{}
	}
	return out, total, nil
}

func (r *invitationRepository) ListActiveByEventID(ctx context.Context, eventID string) ([]*domain.Invitation, error) {
	query := `SELECT` + invitationColumns + `
		FROM invitations
		WHERE event_id = $1 AND status IN ($2, $3)
		ORDER BY created_at ASC
	`
	rows, err := queryerFrom(ctx, r.DB).QueryContext(ctx, query, eventID, domain.InvitationPending, domain.InvitationConfirmed)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var invs []*domain.Invitation
	for rows.Next() {
		inv, err := scanInvitation(rows)
		if err != nil {
			return nil, err
		}
		invs = append(invs, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if invs == nil {
		invs = []*domain.Invitation{}
	}
	return invs, nil
}

// UpdateStatusIf writes the transition only if the row still holds the
// expected status. Zero rows affected means a concurrent writer won the
// race (or the row vanished); callers have already checked existence.
func (r *invitationRepository) UpdateStatusIf(ctx context.Context, id string, expected domain.InvitationStatus, upd domain.InvitationStatusUpdate) error {
	query := `
		UPDATE invitations
		SET status = $2, responded_at = $3, cancel_reason = $4, penalty_applied = $5, penalty_points = $6
		WHERE id = $1 AND status = $7
	`
	res, err := queryerFrom(ctx, r.DB).ExecContext(ctx, query,
		id, upd.Status, upd.RespondedAt, upd.CancelReason,
		upd.PenaltyApplied, upd.PenaltyPoints, expected,
	)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrConflict
	}
	return nil
}

func (r *invitationRepository) ListConfirmedOverlapping(ctx context.Context, churchID string, start, end time.Time) ([]*domain.InvitationWithEvent, error) {
	query := `
		SELECT i.id, i.event_id, i.musician_id, i.role, i.instrument, i.vocal_part, i.status,
		       i.responded_at, i.cancel_reason, i.penalty_applied, i.penalty_points, i.created_at,
		       e.id, e.church_id, e.created_by, e.title, e.event_type, e.date, e.end_time,
		       e.location, e.status, e.created_at, e.updated_at
		FROM invitations i
		JOIN events e ON e.id = i.event_id
		JOIN musicians m ON m.id = i.musician_id
		WHERE m.church_id = $1
		  AND i.status = $2
		  AND e.date <= $4
		  AND COALESCE(e.end_time, e.date + interval '2 hours') >= $3
	`
	rows, err := queryerFrom(ctx, r.DB).QueryContext(ctx, query, churchID, domain.InvitationConfirmed, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.InvitationWithEvent
	for rows.Next() {
		inv := &domain.Invitation{}
		event := &domain.Event{}
		if err := rows.Scan(
			&inv.ID, &inv.EventID, &inv.MusicianID, &inv.Role, &inv.Instrument,
			&inv.VocalPart, &inv.Status, &inv.RespondedAt, &inv.CancelReason,
			&inv.PenaltyApplied, &inv.PenaltyPoints, &inv.CreatedAt,
			&event.ID, &event.ChurchID, &event.CreatedBy, &event.Title,
			&event.EventType, &event.Date, &event.EndTime, &event.Location,
			&event.Status, &event.CreatedAt, &event.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, &domain.InvitationWithEvent{Invitation: inv, Event: event})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if out == nil {
		out = []*domain.InvitationWithEvent{}
	}
	return out, nil
}
