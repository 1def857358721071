// Package domain models user-visible notification records.
package domain

import (
	"time"

	sharedDomain "github.com/felixgeelhaar/tempora/internal/shared/domain"
	"github.com/google/uuid"
)

// Kind classifies a notification.
type Kind string

const (
	// KindSlotUnavailable is raised when no slot could be found for a task.
	KindSlotUnavailable Kind = "slot_unavailable"
	// KindScheduleChanged is raised when a cascade moved tasks.
	KindScheduleChanged Kind = "schedule_changed"
)

// Notification is one user-visible message.
type Notification struct {
	sharedDomain.BaseEntity
	userID  uuid.UUID
	kind    Kind
	message string
	read    bool
}

// NewNotification creates an unread notification.
func NewNotification(userID uuid.UUID, kind Kind, message string) *Notification {
	return &Notification{
		BaseEntity: sharedDomain.NewBaseEntity(),
		userID:     userID,
		kind:       kind,
		message:    message,
	}
}

func (n *Notification) UserID() uuid.UUID { return n.userID }
func (n *Notification) Kind() Kind        { return n.kind }
func (n *Notification) Message() string   { return n.message }
func (n *Notification) IsRead() bool      { return n.read }

// MarkRead marks the notification as read.
func (n *Notification) MarkRead() {
	if n.read {
		return
	}
	n.read = true
	n.Touch()
}

// RehydrateNotification recreates a notification from persistence.
func RehydrateNotification(id, userID uuid.UUID, kind Kind, message string, read bool, createdAt, updatedAt time.Time) *Notification {
	return &Notification{
		BaseEntity: sharedDomain.RehydrateBaseEntity(id, createdAt, updatedAt),
		userID:     userID,
		kind:       kind,
		message:    message,
		read:       read,
	}
}
