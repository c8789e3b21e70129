package domain

import "context"

// Notification types used by the engine.
const (
	NotificationInvitation     = "invitation"
	NotificationResponse       = "invitation_response"
	NotificationPenalty        = "penalty"
	NotificationEventCancelled = "event_cancelled"
	NotificationAchievement    = "achievement"
	NotificationGuestAccess    = "guest_access"
)

// Notification is a message to a single user. ContextData carries ids the
// client can link back to (event, invitation).
type Notification struct {
	ID          string            `json:"id"`
	UserID      string            `json:"user_id"`
	Title       string            `json:"title"`
	Message     string            `json:"message"`
	Type        string            `json:"type"`
	ContextData map[string]string `json:"context_data,omitempty"`
}

// Notifier delivers notifications. Delivery is fire-and-forget: a failure is
// logged by the caller and never rolls back the state transition that
// produced the notification.
type Notifier interface {
	Notify(ctx context.Context, n *Notification) error
}

// Mail is an outbound email derived from a notification or a guest access
// code issue. Type carries the originating notification type so providers
// can tag deliveries.
type Mail struct {
	To       string
	Subject  string
	TextBody string
	HTMLBody string
	Type     string
}

// Mailer defines the contract for sending emails (infrastructure port).
type Mailer interface {
	Send(ctx context.Context, mail *Mail) error
}
