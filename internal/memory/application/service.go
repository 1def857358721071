// Package application assembles stored memory entries into the snapshot
// the scheduler consumes, falling back to configured defaults for
// anything the user never set.
package application

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/felixgeelhaar/tempora/internal/memory/domain"
	"github.com/felixgeelhaar/tempora/internal/tasks/domain/value_objects"
	"github.com/google/uuid"
)

// Defaults supplies values for memory entries the user has not set.
type Defaults struct {
	Timezone          string
	StartHour         int
	EndHour           int
	MaxExtensionHours int
	BufferMinutes     int
	MaxDaysAhead      int
}

// Service reads and writes per-user memory.
type Service struct {
	repo     domain.Repository
	defaults Defaults
	logger   *slog.Logger
}

// NewService creates a memory service.
func NewService(repo domain.Repository, defaults Defaults, logger *slog.Logger) *Service {
	return &Service{repo: repo, defaults: defaults, logger: logger}
}

// Load assembles the user's memory snapshot. Entries with malformed
// values are logged and skipped, leaving the default in place.
func (s *Service) Load(ctx context.Context, userID uuid.UUID) (domain.UserMemory, error) {
	memory := domain.UserMemory{
		Timezone: s.defaults.Timezone,
		WorkingHours: domain.WorkingHours{
			StartHour:         s.defaults.StartHour,
			EndHour:           s.defaults.EndHour,
			MaxExtensionHours: s.defaults.MaxExtensionHours,
		},
		EnergyMap:     domain.EnergyMap{},
		BufferMinutes: s.defaults.BufferMinutes,
		MaxDaysAhead:  s.defaults.MaxDaysAhead,
	}

	entries, err := s.repo.FindByUser(ctx, userID)
	if err != nil {
		return domain.UserMemory{}, fmt.Errorf("loading memory entries: %w", err)
	}

	for _, entry := range entries {
		s.apply(&memory, entry)
	}
	return memory, nil
}

func (s *Service) apply(memory *domain.UserMemory, entry *domain.Entry) {
	switch entry.Type() {
	case domain.MemoryTypeWorkingHours:
		value, err := strconv.Atoi(entry.Value())
		if err != nil {
			s.warnEntry(entry, err)
			return
		}
		switch entry.Key() {
		case domain.KeyStartHour:
			memory.WorkingHours.StartHour = value
		case domain.KeyEndHour:
			memory.WorkingHours.EndHour = value
		case domain.KeyMaxExtensionHours:
			memory.WorkingHours.MaxExtensionHours = value
		}
	case domain.MemoryTypeEnergyMap:
		if _, _, err := domain.ParseHourRange(entry.Key()); err != nil {
			s.warnEntry(entry, err)
			return
		}
		memory.EnergyMap[entry.Key()] = value_objects.ParseEnergy(entry.Value())
	case domain.MemoryTypePreference:
		switch entry.Key() {
		case domain.KeyTimezone:
			memory.Timezone = entry.Value()
		case domain.KeyBufferMinutes:
			value, err := strconv.Atoi(entry.Value())
			if err != nil {
				s.warnEntry(entry, err)
				return
			}
			memory.BufferMinutes = value
		case domain.KeyMaxDaysAhead:
			value, err := strconv.Atoi(entry.Value())
			if err != nil {
				s.warnEntry(entry, err)
				return
			}
			memory.MaxDaysAhead = value
		}
	}
}

func (s *Service) warnEntry(entry *domain.Entry, err error) {
	s.logger.Warn("skipping malformed memory entry",
		slog.String("memory_type", string(entry.Type())),
		slog.String("key", entry.Key()),
		slog.String("error", err.Error()))
}

// Set stores or replaces a memory entry.
func (s *Service) Set(ctx context.Context, userID uuid.UUID, memoryType domain.MemoryType, key, value string) error {
	entry, err := domain.NewEntry(userID, memoryType, key, value)
	if err != nil {
		return err
	}
	if err := s.repo.Upsert(ctx, entry); err != nil {
		return fmt.Errorf("storing memory entry: %w", err)
	}
	return nil
}

// List returns all entries for the user, for display.
func (s *Service) List(ctx context.Context, userID uuid.UUID) ([]*domain.Entry, error) {
	return s.repo.FindByUser(ctx, userID)
}
