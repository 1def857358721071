package services

import (
	"log/slog"
	"time"

	calendarApp "github.com/felixgeelhaar/tempora/internal/calendar/application"
	memoryDomain "github.com/felixgeelhaar/tempora/internal/memory/domain"
	"github.com/felixgeelhaar/tempora/internal/scheduling/domain"
	"github.com/felixgeelhaar/tempora/internal/tasks/domain/task"
	"github.com/felixgeelhaar/tempora/internal/tasks/domain/value_objects"
)

// maxExtensionCapHours bounds the workday extension regardless of what
// the user configured.
const maxExtensionCapHours = 3

// DefaultMaxDaysAhead is the search horizon when the user set none.
const DefaultMaxDaysAhead = 7

// WalkInput is one slot-search request.
type WalkInput struct {
	Duration time.Duration
	Priority value_objects.Priority
	Energy   value_objects.Energy
	Memory   memoryDomain.UserMemory
	// ExistingTasks are the user's scheduled tasks; the caller excludes
	// the task being placed.
	ExistingTasks []*task.Task
	// External busy events covering the whole search horizon.
	External       []calendarApp.BusyInterval
	IgnoreEventIDs map[string]struct{}
	// ExtraBusy holds windows chosen earlier in the same operation.
	ExtraBusy []domain.Interval
	Now       time.Time
}

// DayWalker searches a rolling horizon of days for the best slot.
type DayWalker struct {
	logger *slog.Logger
}

// NewDayWalker creates a day walker.
func NewDayWalker(logger *slog.Logger) *DayWalker {
	return &DayWalker{logger: logger}
}

// FindSlot walks days 0..maxDaysAhead and returns the best-scored slot
// from the first day that produces any candidate. A false result means
// no slot exists within the horizon; that is an outcome, not an error.
func (w *DayWalker) FindSlot(input WalkInput) (domain.Interval, bool) {
	zone, ok := domain.LoadZone(input.Memory.Timezone)
	if !ok {
		w.logger.Warn("unknown timezone, falling back to UTC",
			slog.String("timezone", input.Memory.Timezone))
	}

	buffer := input.Memory.Buffer()
	busy := BuildBusyIntervals(BusyInput{
		External:       input.External,
		IgnoreEventIDs: input.IgnoreEventIDs,
		Tasks:          input.ExistingTasks,
		Extra:          input.ExtraBusy,
		Buffer:         buffer,
	})

	maxDays := input.Memory.MaxDaysAhead
	if maxDays <= 0 {
		maxDays = DefaultMaxDaysAhead
	}
	extensionHours := input.Memory.WorkingHours.MaxExtensionHours
	if extensionHours > maxExtensionCapHours {
		extensionHours = maxExtensionCapHours
	}

	placed := placedWindows(input.ExistingTasks, input.ExtraBusy)

	for day := 0; day <= maxDays; day++ {
		start := domain.DayAt(input.Now, zone, day, input.Memory.WorkingHours.StartHour)
		end := domain.DayAt(input.Now, zone, day, input.Memory.WorkingHours.EndHour)

		if day == 0 && input.Now.After(start) {
			start = input.Now.Add(buffer)
		}
		if !start.Before(end) {
			continue
		}

		slots := domain.FindFreeSlots(domain.NewInterval(start, end), busy, input.Duration)
		if len(slots) == 0 && extensionHours > 0 {
			extended := domain.NewInterval(end, end.Add(time.Duration(extensionHours)*time.Hour))
			slots = domain.FindFreeSlots(extended, busy, input.Duration)
		}
		if len(slots) == 0 {
			continue
		}

		best, score, _ := PickBest(slots, ScoreContext{
			EnergyMap: input.Memory.EnergyMap,
			Zone:      zone,
			Priority:  input.Priority,
			Energy:    input.Energy,
			Placed:    placed,
			Buffer:    buffer,
			Now:       input.Now,
		})
		w.logger.Debug("slot chosen",
			slog.Int("day_offset", day),
			slog.Time("start", best.Start),
			slog.Float64("score", score))
		return best, true
	}

	return domain.Interval{}, false
}

func placedWindows(tasks []*task.Task, extra []domain.Interval) []domain.Interval {
	windows := make([]domain.Interval, 0, len(tasks)+len(extra))
	for _, t := range tasks {
		if t.HasWindow() {
			windows = append(windows, domain.NewInterval(*t.ScheduledStart(), *t.ScheduledEnd()))
		}
	}
	windows = append(windows, extra...)
	return windows
}
