package services

import (
	"testing"
	"time"

	memoryDomain "github.com/felixgeelhaar/tempora/internal/memory/domain"
	"github.com/felixgeelhaar/tempora/internal/scheduling/domain"
	"github.com/felixgeelhaar/tempora/internal/tasks/domain/value_objects"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func baseScoreContext() ScoreContext {
	return ScoreContext{
		EnergyMap: memoryDomain.EnergyMap{"09:00-12:00": value_objects.EnergyHigh},
		Zone:      time.UTC,
		Priority:  value_objects.PriorityMedium,
		Energy:    value_objects.EnergyHigh,
		Buffer:    5 * time.Minute,
		Now:       at(8, 0),
	}
}

func TestScoreSlot_EnergyMatch(t *testing.T) {
	sc := baseScoreContext()
	slot := domain.NewInterval(at(9, 0), at(9, 30))

	assert.Equal(t, energyMatchBonus, ScoreSlot(slot, sc))

	// Outside the mapped range no energy credit applies.
	afternoon := domain.NewInterval(at(14, 0), at(14, 30))
	assert.Equal(t, 0.0, ScoreSlot(afternoon, sc))
}

func TestScoreSlot_PartialEnergyCreditIsAsymmetric(t *testing.T) {
	sc := baseScoreContext()
	slot := domain.NewInterval(at(9, 0), at(9, 30))

	// High slot, medium requirement: partial credit.
	sc.Energy = value_objects.EnergyMedium
	assert.Equal(t, energyPartialBonus, ScoreSlot(slot, sc))

	// Medium slot, high requirement: nothing.
	sc.EnergyMap = memoryDomain.EnergyMap{"09:00-12:00": value_objects.EnergyMedium}
	sc.Energy = value_objects.EnergyHigh
	assert.Equal(t, 0.0, ScoreSlot(slot, sc))
}

func TestScoreSlot_UrgentMorningAndDecay(t *testing.T) {
	sc := baseScoreContext()
	sc.EnergyMap = memoryDomain.EnergyMap{}
	sc.Priority = value_objects.PriorityHigh

	// One hour from now, before noon: morning bonus plus 9h of decay.
	slot := domain.NewInterval(at(9, 0), at(9, 30))
	assert.InDelta(t, morningUrgentBonus+9.0, ScoreSlot(slot, sc), 0.001)

	// Past the decay horizon only the afternoon loses the morning bonus.
	far := domain.NewInterval(at(19, 0), at(19, 30))
	assert.Equal(t, 0.0, ScoreSlot(far, sc))

	// Non-urgent tasks get neither bonus.
	sc.Priority = value_objects.PriorityMedium
	assert.Equal(t, 0.0, ScoreSlot(slot, sc))
}

func TestScoreSlot_Adjacency(t *testing.T) {
	sc := baseScoreContext()
	sc.EnergyMap = memoryDomain.EnergyMap{}
	sc.Placed = []domain.Interval{domain.NewInterval(at(10, 0), at(11, 0))}

	// Slot starting within the buffer after an existing task.
	adjacent := domain.NewInterval(at(11, 5), at(11, 35))
	assert.Equal(t, adjacencyBonus, ScoreSlot(adjacent, sc))

	distant := domain.NewInterval(at(14, 0), at(14, 30))
	assert.Equal(t, 0.0, ScoreSlot(distant, sc))
}

func TestPickBest_StableOnTies(t *testing.T) {
	sc := baseScoreContext()
	sc.EnergyMap = memoryDomain.EnergyMap{}

	first := domain.NewInterval(at(13, 0), at(13, 30))
	second := domain.NewInterval(at(15, 0), at(15, 30))

	best, _, ok := PickBest([]domain.Interval{first, second}, sc)
	require.True(t, ok)
	assert.Equal(t, first, best)

	_, _, ok = PickBest(nil, sc)
	assert.False(t, ok)
}
