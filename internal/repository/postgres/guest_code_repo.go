package postgres

import (
	"context"
	"database/sql"
	"time"

	"ministryroster/internal/domain"
)

type guestCodeRepository struct {
	DB *sql.DB
}

// NewGuestCodeRepository returns a domain.GuestCodeRepository implemented with Postgres.
func NewGuestCodeRepository(db *sql.DB) domain.GuestCodeRepository {
	return &guestCodeRepository{DB: db}
}

func (r *guestCodeRepository) Create(ctx context.Context, code *domain.GuestAccessCode) error {
	query := `
		INSERT INTO guest_access_codes (email, code_hash, church_id, expires_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`
	return queryerFrom(ctx, r.DB).QueryRowContext(ctx, query,
		code.Email, code.CodeHash, code.ChurchID, code.ExpiresAt,
	).Scan(&code.ID)
}

func (r *guestCodeRepository) ListActiveByEmail(ctx context.Context, email string, now time.Time) ([]*domain.GuestAccessCode, error) {
	query := `
		SELECT id, email, code_hash, church_id, expires_at, consumed_at
		FROM guest_access_codes
		WHERE email = $1 AND expires_at > $2 AND consumed_at IS NULL
		ORDER BY expires_at DESC
	`
	rows, err := queryerFrom(ctx, r.DB).QueryContext(ctx, query, email, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var codes []*domain.GuestAccessCode
	for rows.Next() {
		c := &domain.GuestAccessCode{}
		if err := rows.Scan(&c.ID, &c.Email, &c.CodeHash, &c.ChurchID, &c.ExpiresAt, &c.ConsumedAt); err != nil {
			return nil, err
		}
		codes = append(codes, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if codes == nil {
		codes = []*domain.GuestAccessCode{}
	}
	return codes, nil
}

func (r *guestCodeRepository) MarkConsumed(ctx context.Context, id string, consumedAt time.Time) error {
	query := `
		UPDATE guest_access_codes
		SET consumed_at = $2
		WHERE id = $1 AND consumed_at IS NULL
	`
	res, err := queryerFrom(ctx, r.DB).ExecContext(ctx, query, id, consumedAt)
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
