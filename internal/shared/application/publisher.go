package application

import (
	"context"

	"github.com/felixgeelhaar/tempora/internal/shared/domain"
)

// EventPublisher publishes domain events after a command has committed.
type EventPublisher interface {
	PublishDomainEvent(ctx context.Context, event domain.DomainEvent) error
}

// PublishAll publishes every event in order. Publication failures are
// returned but callers typically only log them: the state change has
// already been committed.
func PublishAll(ctx context.Context, publisher EventPublisher, events []domain.DomainEvent) error {
	if publisher == nil {
		return nil
	}
	for _, event := range events {
		if err := publisher.PublishDomainEvent(ctx, event); err != nil {
			return err
		}
	}
	return nil
}
