package domain

import (
	"context"
	"time"
)

// PenaltyHistoryEntry is an immutable audit record of a penalty grant.
// swagger:model PenaltyHistoryEntry
type PenaltyHistoryEntry struct {
	ID           string    `json:"id"`
	MusicianID   string    `json:"musician_id"`
	EventID      *string   `json:"event_id,omitempty"`
	InvitationID *string   `json:"invitation_id,omitempty"`
	Points       int       `json:"points"`
	Reason       string    `json:"reason"`
	Description  string    `json:"description"`
	CreatedAt    time.Time `json:"created_at"`
}

// PointHistoryEntry is an immutable audit record of a gamification point
// grant. Points is signed; achievements and confirmations grant positive
// amounts.
// swagger:model PointHistoryEntry
type PointHistoryEntry struct {
	ID           string    `json:"id"`
	MusicianID   string    `json:"musician_id"`
	Points       int       `json:"points"`
	Action       string    `json:"action"`
	Reason       string    `json:"reason"`
	EventID      *string   `json:"event_id,omitempty"`
	InvitationID *string   `json:"invitation_id,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// PenaltyHistoryRepository appends and lists penalty audit records.
type PenaltyHistoryRepository interface {
	Create(ctx context.Context, entry *PenaltyHistoryEntry) error
	ListByMusicianID(ctx context.Context, musicianID string, params PaginationParams) ([]*PenaltyHistoryEntry, int, error)
}

// PointHistoryRepository appends and lists gamification point audit records.
type PointHistoryRepository interface {
	Create(ctx context.Context, entry *PointHistoryEntry) error
	ListByMusicianID(ctx context.Context, musicianID string, params PaginationParams) ([]*PointHistoryEntry, int, error)
}
