package domain

import (
	"context"
	"time"
)

// GuestAccessCode grants a musician from another church temporary access to
// a church's roster pool. The code itself is never stored; only its hash.
type GuestAccessCode struct {
	ID         string     `json:"id"`
	Email      string     `json:"email"`
	CodeHash   string     `json:"-"`
	ChurchID   string     `json:"church_id"`
	ExpiresAt  time.Time  `json:"expires_at"`
	ConsumedAt *time.Time `json:"consumed_at,omitempty"`
}

// GuestCodeRepository defines storage for guest access codes.
// Codes are hashed with a salted algorithm, so lookup is by email and the
// caller compares hashes; MarkConsumed invalidates a code after redemption.
type GuestCodeRepository interface {
	Create(ctx context.Context, code *GuestAccessCode) error
	ListActiveByEmail(ctx context.Context, email string, now time.Time) ([]*GuestAccessCode, error)
	MarkConsumed(ctx context.Context, id string, consumedAt time.Time) error
}

// CodeHasher hashes guest access codes at rest and verifies redemption
// attempts. Implementations may use bcrypt, argon2, etc.
type CodeHasher interface {
	Hash(code string) (string, error)
	Compare(hash, code string) error
}
