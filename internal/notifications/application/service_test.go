package application

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/felixgeelhaar/tempora/internal/notifications/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeNotificationRepo struct {
	saved   []*domain.Notification
	saveErr error
}

func (r *fakeNotificationRepo) Save(_ context.Context, n *domain.Notification) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	r.saved = append(r.saved, n)
	return nil
}

func (r *fakeNotificationRepo) ListByUser(_ context.Context, _ uuid.UUID, _ int) ([]*domain.Notification, error) {
	return r.saved, nil
}

func TestNotifier_Notify(t *testing.T) {
	repo := &fakeNotificationRepo{}
	notifier := NewNotifier(repo, slog.New(slog.NewTextHandler(io.Discard, nil)))

	notifier.Notify(context.Background(), uuid.New(), domain.KindSlotUnavailable, "no slot for task")

	require.Len(t, repo.saved, 1)
	assert.Equal(t, domain.KindSlotUnavailable, repo.saved[0].Kind())
	assert.False(t, repo.saved[0].IsRead())
}

func TestNotifier_SaveFailureDoesNotPanic(t *testing.T) {
	repo := &fakeNotificationRepo{saveErr: errors.New("disk full")}
	notifier := NewNotifier(repo, slog.New(slog.NewTextHandler(io.Discard, nil)))

	// Must swallow the error.
	notifier.Notify(context.Background(), uuid.New(), domain.KindScheduleChanged, "moved 2 tasks")
	assert.Empty(t, repo.saved)
}
