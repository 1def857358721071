package domain

import (
	"sort"
	"time"
)

// Interval is a half-open [Start, End) span of time.
type Interval struct {
	Start time.Time
	End   time.Time
}

// NewInterval creates an interval.
func NewInterval(start, end time.Time) Interval {
	return Interval{Start: start, End: end}
}

// Duration returns the interval's length.
func (i Interval) Duration() time.Duration {
	return i.End.Sub(i.Start)
}

// Overlaps reports whether the two half-open intervals intersect.
func (i Interval) Overlaps(other Interval) bool {
	return i.Start.Before(other.End) && other.Start.Before(i.End)
}

// Contains reports whether other lies entirely within i.
func (i Interval) Contains(other Interval) bool {
	return !other.Start.Before(i.Start) && !other.End.After(i.End)
}

// Pad widens the interval by buffer on both sides.
func (i Interval) Pad(buffer time.Duration) Interval {
	return Interval{Start: i.Start.Add(-buffer), End: i.End.Add(buffer)}
}

// SortIntervals orders intervals by start, then end. The sort is stable
// so equal intervals keep their input order.
func SortIntervals(intervals []Interval) {
	sort.SliceStable(intervals, func(a, b int) bool {
		if intervals[a].Start.Equal(intervals[b].Start) {
			return intervals[a].End.Before(intervals[b].End)
		}
		return intervals[a].Start.Before(intervals[b].Start)
	})
}

// FindFreeSlots walks the window with a cursor over the sorted busy set
// and returns at most one slot per gap: the earliest duration-sized
// interval that fits. Busy intervals may overlap; the cursor only ever
// moves forward. Every returned slot lies entirely within the window.
func FindFreeSlots(window Interval, busy []Interval, duration time.Duration) []Interval {
	if duration <= 0 || !window.End.After(window.Start) {
		return nil
	}

	sorted := make([]Interval, len(busy))
	copy(sorted, busy)
	SortIntervals(sorted)

	var slots []Interval
	cursor := window.Start

	for _, b := range sorted {
		if !b.End.After(window.Start) || !b.Start.Before(window.End) {
			continue
		}
		if b.Start.After(cursor) {
			gapEnd := b.Start
			if gapEnd.After(window.End) {
				gapEnd = window.End
			}
			if gapEnd.Sub(cursor) >= duration {
				slots = append(slots, Interval{Start: cursor, End: cursor.Add(duration)})
			}
		}
		if b.End.After(cursor) {
			cursor = b.End
		}
	}

	if window.End.Sub(cursor) >= duration {
		slots = append(slots, Interval{Start: cursor, End: cursor.Add(duration)})
	}
	return slots
}
