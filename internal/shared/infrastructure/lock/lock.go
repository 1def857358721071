// Package lock serializes scheduling operations per user. The slot engine
// assumes no two scheduling operations mutate one user's busy intervals
// concurrently; callers must hold the user's lock for the duration of a
// scheduling or rescheduling request.
package lock

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrLockHeld is returned when another operation holds the user's lock.
var ErrLockHeld = errors.New("scheduling lock already held for user")

// UserLock serializes scheduling work for a single user.
type UserLock interface {
	// Acquire takes the lock for the user, returning a release function.
	// It returns ErrLockHeld if the lock is unavailable.
	Acquire(ctx context.Context, userID uuid.UUID) (release func(), err error)
}
