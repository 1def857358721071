package application

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/felixgeelhaar/tempora/internal/memory/domain"
	"github.com/felixgeelhaar/tempora/internal/tasks/domain/value_objects"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMemoryRepo struct {
	entries []*domain.Entry
}

func (r *fakeMemoryRepo) Upsert(_ context.Context, entry *domain.Entry) error {
	r.entries = append(r.entries, entry)
	return nil
}

func (r *fakeMemoryRepo) FindByUser(context.Context, uuid.UUID) ([]*domain.Entry, error) {
	return r.entries, nil
}

func (r *fakeMemoryRepo) FindByUserAndType(_ context.Context, _ uuid.UUID, memoryType domain.MemoryType) ([]*domain.Entry, error) {
	var out []*domain.Entry
	for _, e := range r.entries {
		if e.Type() == memoryType {
			out = append(out, e)
		}
	}
	return out, nil
}

func testDefaults() Defaults {
	return Defaults{
		Timezone:          "UTC",
		StartHour:         9,
		EndHour:           17,
		MaxExtensionHours: 2,
		BufferMinutes:     5,
		MaxDaysAhead:      7,
	}
}

func entry(t *testing.T, memoryType domain.MemoryType, key, value string) *domain.Entry {
	t.Helper()
	e, err := domain.NewEntry(uuid.New(), memoryType, key, value)
	require.NoError(t, err)
	return e
}

func TestService_Load_Defaults(t *testing.T) {
	service := NewService(&fakeMemoryRepo{}, testDefaults(),
		slog.New(slog.NewTextHandler(io.Discard, nil)))

	memory, err := service.Load(context.Background(), uuid.New())
	require.NoError(t, err)

	assert.Equal(t, "UTC", memory.Timezone)
	assert.Equal(t, 9, memory.WorkingHours.StartHour)
	assert.Equal(t, 17, memory.WorkingHours.EndHour)
	assert.Equal(t, 5, memory.BufferMinutes)
	assert.Empty(t, memory.EnergyMap)
}

func TestService_Load_EntriesOverrideDefaults(t *testing.T) {
	repo := &fakeMemoryRepo{entries: []*domain.Entry{
		entry(t, domain.MemoryTypePreference, domain.KeyTimezone, "Europe/Berlin"),
		entry(t, domain.MemoryTypeWorkingHours, domain.KeyStartHour, "8"),
		entry(t, domain.MemoryTypeWorkingHours, domain.KeyEndHour, "16"),
		entry(t, domain.MemoryTypeEnergyMap, "09:00-12:00", "high"),
		entry(t, domain.MemoryTypePreference, domain.KeyBufferMinutes, "10"),
	}}
	service := NewService(repo, testDefaults(),
		slog.New(slog.NewTextHandler(io.Discard, nil)))

	memory, err := service.Load(context.Background(), uuid.New())
	require.NoError(t, err)

	assert.Equal(t, "Europe/Berlin", memory.Timezone)
	assert.Equal(t, 8, memory.WorkingHours.StartHour)
	assert.Equal(t, 16, memory.WorkingHours.EndHour)
	assert.Equal(t, 10, memory.BufferMinutes)
	assert.Equal(t, value_objects.EnergyHigh, memory.EnergyMap["09:00-12:00"])
}

func TestService_Load_SkipsMalformedEntries(t *testing.T) {
	repo := &fakeMemoryRepo{entries: []*domain.Entry{
		entry(t, domain.MemoryTypeWorkingHours, domain.KeyStartHour, "not-a-number"),
		entry(t, domain.MemoryTypeEnergyMap, "bogus-range", "high"),
	}}
	service := NewService(repo, testDefaults(),
		slog.New(slog.NewTextHandler(io.Discard, nil)))

	memory, err := service.Load(context.Background(), uuid.New())
	require.NoError(t, err)

	// Defaults survive malformed input.
	assert.Equal(t, 9, memory.WorkingHours.StartHour)
	assert.Empty(t, memory.EnergyMap)
}
