package domain

import (
	"time"

	sharedDomain "github.com/felixgeelhaar/tempora/internal/shared/domain"
	"github.com/google/uuid"
)

// TriggerKind names what set off a rescheduling pass.
type TriggerKind string

const (
	TriggerEarlyCompletion TriggerKind = "early_completion"
	TriggerPriorityChange  TriggerKind = "priority_change"
	TriggerDeadlineChange  TriggerKind = "deadline_change"
)

// MoveAction classifies one entry in a schedule change.
type MoveAction string

const (
	// ActionMoved records a task that landed in a different window.
	ActionMoved MoveAction = "moved"
	// ActionCleared records a task whose window was removed.
	ActionCleared MoveAction = "cleared"
)

// TaskMove is one task's window transition inside a schedule change.
type TaskMove struct {
	TaskID        uuid.UUID
	PreviousStart time.Time
	PreviousEnd   time.Time
	NewStart      time.Time
	NewEnd        time.Time
	Action        MoveAction
}

// ScheduleChange is the audit record of one rescheduling pass. It is
// persisted only when at least one task actually moved.
type ScheduleChange struct {
	sharedDomain.BaseAggregateRoot
	userID         uuid.UUID
	trigger        TriggerKind
	affectedTaskID uuid.UUID
	moves          []TaskMove
}

// NewScheduleChange opens an audit record for a rescheduling pass
// triggered by the given task.
func NewScheduleChange(userID uuid.UUID, trigger TriggerKind, affectedTaskID uuid.UUID) *ScheduleChange {
	return &ScheduleChange{
		BaseAggregateRoot: sharedDomain.NewBaseAggregateRoot(),
		userID:            userID,
		trigger:           trigger,
		affectedTaskID:    affectedTaskID,
	}
}

func (c *ScheduleChange) UserID() uuid.UUID         { return c.userID }
func (c *ScheduleChange) Trigger() TriggerKind      { return c.trigger }
func (c *ScheduleChange) AffectedTaskID() uuid.UUID { return c.affectedTaskID }

// Moves returns a copy of the recorded moves.
func (c *ScheduleChange) Moves() []TaskMove {
	moves := make([]TaskMove, len(c.moves))
	copy(moves, c.moves)
	return moves
}

// HasMoves reports whether any task changed window during the pass.
func (c *ScheduleChange) HasMoves() bool { return len(c.moves) > 0 }

// RecordMove appends a move to the audit record.
func (c *ScheduleChange) RecordMove(move TaskMove) {
	c.moves = append(c.moves, move)
	c.Touch()
}

// Finalize raises the domain event summarizing the pass. Call it once,
// after all moves are recorded and only when HasMoves is true.
func (c *ScheduleChange) Finalize() {
	c.AddDomainEvent(NewScheduleChanged(c.ID(), c.userID, string(c.trigger), len(c.moves)))
}

// RehydrateScheduleChange recreates a schedule change from persistence.
func RehydrateScheduleChange(id, userID uuid.UUID, trigger TriggerKind, affectedTaskID uuid.UUID, moves []TaskMove, createdAt, updatedAt time.Time) *ScheduleChange {
	return &ScheduleChange{
		BaseAggregateRoot: sharedDomain.RehydrateBaseAggregateRoot(
			sharedDomain.RehydrateBaseEntity(id, createdAt, updatedAt)),
		userID:         userID,
		trigger:        trigger,
		affectedTaskID: affectedTaskID,
		moves:          moves,
	}
}
