// Package eventbus delivers domain events to interested consumers, either
// in-process (local mode) or through RabbitMQ.
package eventbus

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Publisher sends serialized events to the bus.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, payload []byte) error
	Close() error
}

// ConsumedEvent is the wire representation of a domain event as seen by
// consumers.
type ConsumedEvent struct {
	EventID       uuid.UUID       `json:"event_id"`
	AggregateID   uuid.UUID       `json:"aggregate_id"`
	AggregateType string          `json:"aggregate_type"`
	RoutingKey    string          `json:"routing_key"`
	UserID        uuid.UUID       `json:"user_id"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Payload       json.RawMessage `json:"payload,omitempty"`
}

// EventConsumer handles consumed events for a set of routing keys.
type EventConsumer interface {
	// RoutingKeys returns the routing keys this consumer subscribes to.
	RoutingKeys() []string
	// Handle processes one event. Errors are logged by the bus; they do not
	// stop delivery to other consumers.
	Handle(ctx context.Context, event *ConsumedEvent) error
}
