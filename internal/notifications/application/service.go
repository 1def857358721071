// Package application exposes fire-and-forget notification delivery.
package application

import (
	"context"
	"log/slog"

	"github.com/felixgeelhaar/tempora/internal/notifications/domain"
	"github.com/google/uuid"
)

// Notifier creates notification records. Delivery failures are logged,
// never propagated: notifications must not fail a scheduling operation.
type Notifier struct {
	repo   domain.Repository
	logger *slog.Logger
}

// NewNotifier creates a notifier.
func NewNotifier(repo domain.Repository, logger *slog.Logger) *Notifier {
	return &Notifier{repo: repo, logger: logger}
}

// Notify records a notification, fire-and-forget.
func (n *Notifier) Notify(ctx context.Context, userID uuid.UUID, kind domain.Kind, message string) {
	notification := domain.NewNotification(userID, kind, message)
	if err := n.repo.Save(ctx, notification); err != nil {
		n.logger.Warn("saving notification failed",
			slog.String("kind", string(kind)),
			slog.String("error", err.Error()))
	}
}

// List returns the user's recent notifications.
func (n *Notifier) List(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.Notification, error) {
	return n.repo.ListByUser(ctx, userID, limit)
}
