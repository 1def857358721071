package eventbus

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/felixgeelhaar/tempora/internal/shared/domain"
)

// InProcessEventBus delivers events synchronously to registered consumers.
// It is the default bus in local mode, where no broker is configured.
type InProcessEventBus struct {
	mu        sync.RWMutex
	consumers map[string][]EventConsumer
	logger    *slog.Logger
}

// NewInProcessEventBus creates a new in-process event bus.
func NewInProcessEventBus(logger *slog.Logger) *InProcessEventBus {
	if logger == nil {
		logger = slog.Default()
	}
	return &InProcessEventBus{
		consumers: make(map[string][]EventConsumer),
		logger:    logger,
	}
}

// RegisterConsumer subscribes a consumer to its routing keys.
func (b *InProcessEventBus) RegisterConsumer(consumer EventConsumer) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, key := range consumer.RoutingKeys() {
		b.consumers[key] = append(b.consumers[key], consumer)
	}
}

// PublishDomainEvent serializes a domain event and dispatches it to all
// consumers registered for its routing key. Consumer errors are logged,
// never propagated: the originating state change has already committed.
func (b *InProcessEventBus) PublishDomainEvent(ctx context.Context, event domain.DomainEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	consumed := &ConsumedEvent{
		EventID:       event.EventID(),
		AggregateID:   event.AggregateID(),
		AggregateType: event.AggregateType(),
		RoutingKey:    event.RoutingKey(),
		UserID:        event.UserID(),
		OccurredAt:    event.OccurredAt(),
		Payload:       payload,
	}

	b.mu.RLock()
	consumers := b.consumers[event.RoutingKey()]
	b.mu.RUnlock()

	for _, consumer := range consumers {
		start := time.Now()
		if err := consumer.Handle(ctx, consumed); err != nil {
			b.logger.Error("event consumer failed",
				"routing_key", event.RoutingKey(),
				"event_id", event.EventID().String(),
				"duration_ms", time.Since(start).Milliseconds(),
				"error", err,
			)
			continue
		}
		b.logger.Debug("event dispatched",
			"routing_key", event.RoutingKey(),
			"event_id", event.EventID().String(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}

	return nil
}

// Publish implements Publisher for pre-serialized payloads.
func (b *InProcessEventBus) Publish(ctx context.Context, routingKey string, payload []byte) error {
	event := &ConsumedEvent{RoutingKey: routingKey, Payload: payload}
	if err := json.Unmarshal(payload, event); err != nil {
		b.logger.Warn("failed to unmarshal event payload", "routing_key", routingKey, "error", err)
	}

	b.mu.RLock()
	consumers := b.consumers[routingKey]
	b.mu.RUnlock()

	for _, consumer := range consumers {
		if err := consumer.Handle(ctx, event); err != nil {
			b.logger.Error("event consumer failed", "routing_key", routingKey, "error", err)
		}
	}
	return nil
}

// Close is a no-op for the in-process bus.
func (b *InProcessEventBus) Close() error { return nil }
