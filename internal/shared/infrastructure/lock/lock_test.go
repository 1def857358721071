package lock

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryUserLock_SerializesPerUser(t *testing.T) {
	l := NewMemoryUserLock()
	userID := uuid.New()

	release, err := l.Acquire(context.Background(), userID)
	require.NoError(t, err)

	_, err = l.Acquire(context.Background(), userID)
	assert.ErrorIs(t, err, ErrLockHeld)

	release()

	release2, err := l.Acquire(context.Background(), userID)
	require.NoError(t, err)
	release2()
}

func TestMemoryUserLock_IndependentUsers(t *testing.T) {
	l := NewMemoryUserLock()

	releaseA, err := l.Acquire(context.Background(), uuid.New())
	require.NoError(t, err)
	defer releaseA()

	releaseB, err := l.Acquire(context.Background(), uuid.New())
	require.NoError(t, err)
	defer releaseB()
}
