package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadZone(t *testing.T) {
	loc, ok := LoadZone("Europe/Berlin")
	require.True(t, ok)
	assert.Equal(t, "Europe/Berlin", loc.String())

	loc, ok = LoadZone("Mars/Olympus")
	assert.False(t, ok)
	assert.Equal(t, time.UTC, loc)

	loc, ok = LoadZone("")
	assert.False(t, ok)
	assert.Equal(t, time.UTC, loc)
}

func TestNormalizeNaive(t *testing.T) {
	berlin, ok := LoadZone("Europe/Berlin")
	require.True(t, ok)

	// 09:00 wall clock in winter (UTC+1) is 08:00 UTC.
	naive := time.Date(2026, 1, 15, 9, 0, 0, 0, time.UTC)
	got := NormalizeNaive(naive, berlin)
	assert.Equal(t, time.Date(2026, 1, 15, 8, 0, 0, 0, time.UTC), got)

	// 09:00 wall clock in summer (UTC+2) is 07:00 UTC.
	naive = time.Date(2026, 7, 15, 9, 0, 0, 0, time.UTC)
	got = NormalizeNaive(naive, berlin)
	assert.Equal(t, time.Date(2026, 7, 15, 7, 0, 0, 0, time.UTC), got)

	// UTC zone is a no-op.
	assert.Equal(t, naive, NormalizeNaive(naive, time.UTC))
}

func TestStartAndEndOfDay(t *testing.T) {
	berlin, ok := LoadZone("Europe/Berlin")
	require.True(t, ok)

	// Late evening local time still belongs to the same local day.
	evening := time.Date(2026, 1, 15, 22, 30, 0, 0, time.UTC) // 23:30 in Berlin
	start := StartOfDay(evening, berlin)
	end := EndOfDay(evening, berlin)
	assert.Equal(t, time.Date(2026, 1, 15, 0, 0, 0, 0, berlin), start)
	assert.Equal(t, time.Date(2026, 1, 16, 0, 0, 0, 0, berlin), end)
	assert.Equal(t, 24*time.Hour, end.Sub(start))

	// End of day is exclusive: midnight itself opens the next day.
	assert.Equal(t, EndOfDay(evening, berlin), StartOfDay(end, berlin))
}

func TestDayAt(t *testing.T) {
	berlin, ok := LoadZone("Europe/Berlin")
	require.True(t, ok)

	// Crossing the spring-forward weekend keeps the wall-clock hour.
	friday := time.Date(2026, 3, 27, 12, 0, 0, 0, berlin)
	monday := DayAt(friday, berlin, 3, 9)
	assert.Equal(t, 9, monday.In(berlin).Hour())
	assert.Equal(t, 30, monday.In(berlin).Day())
}
