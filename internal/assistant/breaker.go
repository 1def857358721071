package assistant

import (
	"context"
	"log/slog"
	"time"

	"github.com/sony/gobreaker/v2"
)

// BreakerAssistant wraps an Assistant with a circuit breaker so a
// misbehaving service stops being called for a cool-down period instead
// of adding latency to every scheduling request.
type BreakerAssistant struct {
	inner         Assistant
	timeout       time.Duration
	parseBreaker  *gobreaker.CircuitBreaker[*ParsedTask]
	refineBreaker *gobreaker.CircuitBreaker[int]
	logger        *slog.Logger
}

// NewBreakerAssistant wraps inner with per-method circuit breakers.
func NewBreakerAssistant(inner Assistant, timeout time.Duration, logger *slog.Logger) *BreakerAssistant {
	settings := func(name string) gobreaker.Settings {
		return gobreaker.Settings{
			Name:        name,
			MaxRequests: 1,
			Timeout:     30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 3
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				logger.Warn("assistant circuit state changed",
					slog.String("breaker", name),
					slog.String("from", from.String()),
					slog.String("to", to.String()))
			},
		}
	}

	return &BreakerAssistant{
		inner:         inner,
		timeout:       timeout,
		parseBreaker:  gobreaker.NewCircuitBreaker[*ParsedTask](settings("assistant-parse")),
		refineBreaker: gobreaker.NewCircuitBreaker[int](settings("assistant-refine")),
		logger:        logger,
	}
}

// ParseTask calls the wrapped assistant through the breaker.
func (b *BreakerAssistant) ParseTask(ctx context.Context, text string) (*ParsedTask, error) {
	return b.parseBreaker.Execute(func() (*ParsedTask, error) {
		callCtx, cancel := context.WithTimeout(ctx, b.timeout)
		defer cancel()
		return b.inner.ParseTask(callCtx, text)
	})
}

// RefinePriority calls the wrapped assistant through the breaker.
func (b *BreakerAssistant) RefinePriority(ctx context.Context, pc PriorityContext) (int, error) {
	return b.refineBreaker.Execute(func() (int, error) {
		callCtx, cancel := context.WithTimeout(ctx, b.timeout)
		defer cancel()
		return b.inner.RefinePriority(callCtx, pc)
	})
}
