package domain

import "errors"

// Sentinel errors shared across services. The HTTP layer maps these to
// status codes; services wrap them with context via fmt.Errorf("%w").
var (
	ErrNotFound          = errors.New("not found")
	ErrForbidden         = errors.New("forbidden")
	ErrInvalidInput      = errors.New("invalid input")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrConflict          = errors.New("conflicting concurrent write")
	ErrMusicianBlocked   = errors.New("musician is blocked")
	ErrAlreadyInvited    = errors.New("musician already invited to this event")
)
