package domain

import (
	"github.com/felixgeelhaar/tempora/internal/shared/domain"
	"github.com/google/uuid"
)

const aggregateType = "schedule_change"

// RoutingKeyScheduleChanged identifies schedule change events on the bus.
const RoutingKeyScheduleChanged = "schedule.changed"

// ScheduleChanged is raised when a rescheduling pass moved at least one
// task.
type ScheduleChanged struct {
	domain.BaseEvent
	ChangeID  uuid.UUID `json:"change_id"`
	Trigger   string    `json:"trigger"`
	MoveCount int       `json:"move_count"`
}

// NewScheduleChanged creates a ScheduleChanged event.
func NewScheduleChanged(changeID, userID uuid.UUID, trigger string, moveCount int) *ScheduleChanged {
	return &ScheduleChanged{
		BaseEvent: domain.NewBaseEvent(changeID, aggregateType, RoutingKeyScheduleChanged, userID),
		ChangeID:  changeID,
		Trigger:   trigger,
		MoveCount: moveCount,
	}
}
