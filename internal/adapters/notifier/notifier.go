// Package notifier delivers engine notifications to users by email.
package notifier

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"ministryroster/internal/domain"
)

type emailNotifier struct {
	musicianRepo domain.MusicianRepository
	mailer       domain.Mailer
	logger       *slog.Logger
}

// NewEmailNotifier returns a Notifier that resolves the recipient's email
// address and delivers the notification through the configured mailer.
func NewEmailNotifier(musicianRepo domain.MusicianRepository, mailer domain.Mailer, logger *slog.Logger) domain.Notifier {
	return &emailNotifier{
		musicianRepo: musicianRepo,
		mailer:       mailer,
		logger:       logger,
	}
}

func (n *emailNotifier) Notify(ctx context.Context, note *domain.Notification) error {
	if note.ID == "" {
		note.ID = uuid.NewString()
	}
	musician, err := n.musicianRepo.GetByID(ctx, note.UserID)
	if err != nil {
		return fmt.Errorf("resolve recipient %s: %w", note.UserID, err)
	}
	mail := &domain.Mail{
		To:       musician.Email,
		Subject:  note.Title,
		TextBody: note.Message,
		Type:     note.Type,
	}
	if err := n.mailer.Send(ctx, mail); err != nil {
		return fmt.Errorf("send notification %s: %w", note.ID, err)
	}
	n.logger.DebugContext(ctx, "notification delivered",
		"notification_id", note.ID, "user_id", note.UserID, "type", note.Type)
	return nil
}
