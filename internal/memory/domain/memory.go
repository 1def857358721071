// Package domain models the per-user memory the scheduler consults:
// working hours, the energy map, and scheduling preferences. Entries are
// stored as (user, memory_type, key) -> value rows and assembled into a
// UserMemory snapshot that is read-only to the scheduling core.
package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	sharedDomain "github.com/felixgeelhaar/tempora/internal/shared/domain"
	"github.com/felixgeelhaar/tempora/internal/tasks/domain/value_objects"
	"github.com/google/uuid"
)

var (
	ErrEmptyKey         = errors.New("memory key cannot be empty")
	ErrInvalidHourRange = errors.New("energy map key must be formatted as HH:MM-HH:MM")
)

// MemoryType groups related memory entries.
type MemoryType string

const (
	MemoryTypeWorkingHours MemoryType = "working_hours"
	MemoryTypeEnergyMap    MemoryType = "energy_map"
	MemoryTypePreference   MemoryType = "preference"
)

// Well-known entry keys.
const (
	KeyStartHour         = "start_hour"
	KeyEndHour           = "end_hour"
	KeyMaxExtensionHours = "max_extension_hours"
	KeyTimezone          = "timezone"
	KeyBufferMinutes     = "buffer_minutes"
	KeyMaxDaysAhead      = "max_days_ahead"
)

// Entry is one stored memory row, unique per (user, memory_type, key).
type Entry struct {
	sharedDomain.BaseEntity
	userID     uuid.UUID
	memoryType MemoryType
	key        string
	value      string
}

// NewEntry creates a memory entry.
func NewEntry(userID uuid.UUID, memoryType MemoryType, key, value string) (*Entry, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, ErrEmptyKey
	}
	return &Entry{
		BaseEntity: sharedDomain.NewBaseEntity(),
		userID:     userID,
		memoryType: memoryType,
		key:        key,
		value:      value,
	}, nil
}

func (e *Entry) UserID() uuid.UUID      { return e.userID }
func (e *Entry) Type() MemoryType       { return e.memoryType }
func (e *Entry) Key() string            { return e.key }
func (e *Entry) Value() string          { return e.value }

// SetValue updates the stored value.
func (e *Entry) SetValue(value string) {
	e.value = value
	e.Touch()
}

// RehydrateEntry recreates an entry from persisted state.
func RehydrateEntry(id, userID uuid.UUID, memoryType MemoryType, key, value string, createdAt, updatedAt time.Time) *Entry {
	return &Entry{
		BaseEntity: sharedDomain.RehydrateBaseEntity(id, createdAt, updatedAt),
		userID:     userID,
		memoryType: memoryType,
		key:        key,
		value:      value,
	}
}

// WorkingHours is the user's zone-local workday window plus the maximum
// number of hours the day may be extended when the primary window is full.
type WorkingHours struct {
	StartHour         int
	EndHour           int
	MaxExtensionHours int
}

// EnergyMap maps "HH:MM-HH:MM" hour ranges to energy levels.
type EnergyMap map[string]value_objects.Energy

// LevelAt returns the energy level configured for the given zone-local
// time. Ranges are evaluated in sorted key order for determinism.
func (m EnergyMap) LevelAt(local time.Time) (value_objects.Energy, bool) {
	if len(m) == 0 {
		return "", false
	}

	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	minuteOfDay := local.Hour()*60 + local.Minute()
	for _, key := range keys {
		start, end, err := ParseHourRange(key)
		if err != nil {
			continue
		}
		if minuteOfDay >= start && minuteOfDay < end {
			return m[key], true
		}
	}
	return "", false
}

// ParseHourRange parses a "HH:MM-HH:MM" key into start/end minutes of day.
func ParseHourRange(key string) (startMinute, endMinute int, err error) {
	parts := strings.Split(key, "-")
	if len(parts) != 2 {
		return 0, 0, ErrInvalidHourRange
	}
	startMinute, err = parseClock(parts[0])
	if err != nil {
		return 0, 0, err
	}
	endMinute, err = parseClock(parts[1])
	if err != nil {
		return 0, 0, err
	}
	if endMinute <= startMinute {
		return 0, 0, ErrInvalidHourRange
	}
	return startMinute, endMinute, nil
}

func parseClock(s string) (int, error) {
	var h, m int
	if _, err := fmt.Sscanf(strings.TrimSpace(s), "%d:%d", &h, &m); err != nil {
		return 0, ErrInvalidHourRange
	}
	if h < 0 || h > 24 || m < 0 || m > 59 {
		return 0, ErrInvalidHourRange
	}
	return h*60 + m, nil
}

// UserMemory is the assembled, read-only configuration snapshot the
// scheduling core consumes.
type UserMemory struct {
	Timezone      string
	WorkingHours  WorkingHours
	EnergyMap     EnergyMap
	BufferMinutes int
	MaxDaysAhead  int
}

// Buffer returns the configured spacing between tasks.
func (u UserMemory) Buffer() time.Duration {
	return time.Duration(u.BufferMinutes) * time.Minute
}
