// Package domain holds the scheduling core: interval arithmetic, the
// free-slot finder, time-zone normalization and the schedule-change
// audit aggregate. Everything here is pure; side effects live in the
// application layer.
package domain

import "time"

// LoadZone resolves an IANA zone name. Unknown or empty names fall back
// to UTC; ok reports whether the requested zone resolved.
func LoadZone(name string) (loc *time.Location, ok bool) {
	if name == "" {
		return time.UTC, false
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC, false
	}
	return loc, true
}

// NormalizeNaive converts a zone-naive wall-clock time (carried as a UTC
// timestamp) into the actual UTC instant by subtracting the zone's
// offset at that instant. The offset is sampled once, so a wall time
// landing exactly on a DST transition resolves to the pre-transition
// offset rather than iterating to a fixed point.
func NormalizeNaive(naive time.Time, loc *time.Location) time.Time {
	_, offset := naive.In(loc).Zone()
	return naive.Add(-time.Duration(offset) * time.Second).UTC()
}

// StartOfDay returns midnight of t's date in loc, as an instant.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
}

// EndOfDay returns the next midnight after t's date in loc, as an
// instant. It is the exclusive end of t's local day.
func EndOfDay(t time.Time, loc *time.Location) time.Time {
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day()+1, 0, 0, 0, 0, loc)
}

// DayAt returns the instant at the given local clock hour on the date
// obtained by adding days to t's date in loc. Date arithmetic is done on
// the local calendar so DST days keep their wall-clock hours.
func DayAt(t time.Time, loc *time.Location, days, hour int) time.Time {
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day()+days, hour, 0, 0, 0, loc)
}
