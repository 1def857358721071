package assistant

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type flakyAssistant struct {
	calls int
	fail  bool
}

func (f *flakyAssistant) ParseTask(context.Context, string) (*ParsedTask, error) {
	f.calls++
	if f.fail {
		return nil, errors.New("boom")
	}
	return &ParsedTask{Title: "parsed"}, nil
}

func (f *flakyAssistant) RefinePriority(context.Context, PriorityContext) (int, error) {
	f.calls++
	if f.fail {
		return 0, errors.New("boom")
	}
	return 4, nil
}

func newTestBreaker(inner Assistant) *BreakerAssistant {
	return NewBreakerAssistant(inner, time.Second, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestBreakerAssistant_PassesThrough(t *testing.T) {
	inner := &flakyAssistant{}
	breaker := newTestBreaker(inner)

	parsed, err := breaker.ParseTask(context.Background(), "write report")
	require.NoError(t, err)
	assert.Equal(t, "parsed", parsed.Title)

	priority, err := breaker.RefinePriority(context.Background(), PriorityContext{})
	require.NoError(t, err)
	assert.Equal(t, 4, priority)
}

func TestBreakerAssistant_OpensAfterConsecutiveFailures(t *testing.T) {
	inner := &flakyAssistant{fail: true}
	breaker := newTestBreaker(inner)

	for i := 0; i < 3; i++ {
		_, err := breaker.ParseTask(context.Background(), "x")
		require.Error(t, err)
	}
	callsBefore := inner.calls

	// Open circuit short-circuits without reaching the inner assistant.
	_, err := breaker.ParseTask(context.Background(), "x")
	require.Error(t, err)
	assert.Equal(t, callsBefore, inner.calls)
}
