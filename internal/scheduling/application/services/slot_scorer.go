package services

import (
	"time"

	memoryDomain "github.com/felixgeelhaar/tempora/internal/memory/domain"
	"github.com/felixgeelhaar/tempora/internal/scheduling/domain"
	"github.com/felixgeelhaar/tempora/internal/tasks/domain/value_objects"
)

// Scoring constants. The values are empirical; keep them stable unless
// retuning the whole heuristic.
const (
	energyMatchBonus   = 10.0
	energyPartialBonus = 5.0
	morningUrgentBonus = 5.0
	adjacencyBonus     = 3.0
	urgencyDecayHours  = 10.0
)

// ScoreContext carries the per-operation inputs slot scoring needs.
type ScoreContext struct {
	EnergyMap memoryDomain.EnergyMap
	Zone      *time.Location
	Priority  value_objects.Priority
	Energy    value_objects.Energy
	// Placed holds unpadded windows of already-placed tasks, used for
	// the adjacency bonus.
	Placed []domain.Interval
	Buffer time.Duration
	Now    time.Time
}

// ScoreSlot computes the additive score of one candidate slot.
func ScoreSlot(slot domain.Interval, sc ScoreContext) float64 {
	score := 0.0

	if level, ok := sc.EnergyMap.LevelAt(slot.Start.In(sc.Zone)); ok {
		switch {
		case level == sc.Energy:
			score += energyMatchBonus
		case level == value_objects.EnergyHigh && sc.Energy == value_objects.EnergyMedium:
			score += energyPartialBonus
		}
	}

	urgent := sc.Priority.IsTimeCritical()
	if urgent && slot.Start.In(sc.Zone).Hour() < 12 {
		score += morningUrgentBonus
	}

	for _, placed := range sc.Placed {
		if absDuration(slot.Start.Sub(placed.End)) <= sc.Buffer ||
			absDuration(placed.Start.Sub(slot.End)) <= sc.Buffer {
			score += adjacencyBonus
			break
		}
	}

	if urgent {
		hoursFromNow := slot.Start.Sub(sc.Now).Hours()
		if bonus := urgencyDecayHours - hoursFromNow; bonus > 0 {
			score += bonus
		}
	}

	return score
}

// PickBest returns the highest-scoring slot. Ties keep the earliest
// candidate in input order.
func PickBest(slots []domain.Interval, sc ScoreContext) (domain.Interval, float64, bool) {
	if len(slots) == 0 {
		return domain.Interval{}, 0, false
	}

	best := slots[0]
	bestScore := ScoreSlot(best, sc)
	for _, slot := range slots[1:] {
		if score := ScoreSlot(slot, sc); score > bestScore {
			best = slot
			bestScore = score
		}
	}
	return best, bestScore, true
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
