package domain

import (
	"context"
	"time"
)

// EventStatus is the lifecycle status of an event.
type EventStatus string

// Event statuses. DRAFT events become PUBLISHED when invitations are sent;
// CANCELLED is terminal.
const (
	EventDraft      EventStatus = "DRAFT"
	EventPublished  EventStatus = "PUBLISHED"
	EventConfirmed  EventStatus = "CONFIRMED"
	EventInProgress EventStatus = "IN_PROGRESS"
	EventCompleted  EventStatus = "COMPLETED"
	EventCancelled  EventStatus = "CANCELLED"
)

// DefaultEventDuration is assumed when an event has no explicit end time,
// for availability and conflict windows.
const DefaultEventDuration = 2 * time.Hour

// Event represents a scheduled church service or rehearsal.
// swagger:model Event
type Event struct {
	ID        string      `json:"id"`
	ChurchID  string      `json:"church_id"`
	CreatedBy string      `json:"created_by"`
	Title     string      `json:"title"`
	EventType string      `json:"event_type"`
	Date      time.Time   `json:"date"`
	EndTime   *time.Time  `json:"end_time,omitempty"`
	Location  string      `json:"location"`
	Status    EventStatus `json:"status"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// NewEvent returns a new DRAFT Event. ID is set by the repository on create.
func NewEvent(churchID, createdBy, title, eventType, location string, date time.Time, endTime *time.Time, now time.Time) *Event {
	return &Event{
		ChurchID:  churchID,
		CreatedBy: createdBy,
		Title:     title,
		EventType: eventType,
		Location:  location,
		Date:      date,
		EndTime:   endTime,
		Status:    EventDraft,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Window returns the event's [start, end) window, defaulting the end to
// start plus DefaultEventDuration when no end time is set.
func (e *Event) Window() (start, end time.Time) {
	start = e.Date
	if e.EndTime != nil {
		return start, *e.EndTime
	}
	return start, start.Add(DefaultEventDuration)
}

// EventRepository defines the interface for event storage.
type EventRepository interface {
	Create(ctx context.Context, event *Event) error
	GetByID(ctx context.Context, id string) (*Event, error)
	ListByChurchID(ctx context.Context, churchID string) ([]*Event, error)
	UpdateStatus(ctx context.Context, id string, status EventStatus) error
}
