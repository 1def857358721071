package lock

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// MemoryUserLock implements UserLock for single-process local mode.
type MemoryUserLock struct {
	mu   sync.Mutex
	held map[uuid.UUID]struct{}
}

// NewMemoryUserLock creates an in-memory user lock.
func NewMemoryUserLock() *MemoryUserLock {
	return &MemoryUserLock{held: make(map[uuid.UUID]struct{})}
}

// Acquire takes the lock for the user.
func (l *MemoryUserLock) Acquire(_ context.Context, userID uuid.UUID) (func(), error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.held[userID]; ok {
		return nil, ErrLockHeld
	}
	l.held[userID] = struct{}{}

	release := func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		delete(l.held, userID)
	}
	return release, nil
}
