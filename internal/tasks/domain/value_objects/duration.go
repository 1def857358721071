package value_objects

import (
	"fmt"
	"time"
)

// Estimate bounds. Submitted estimates are clamped, never rejected.
const (
	MinEstimateMinutes = 15
	MaxEstimateMinutes = 480
)

// Duration is a task's estimated duration in whole minutes.
type Duration struct {
	minutes int
}

// NewDuration clamps minutes into the valid estimate range.
func NewDuration(minutes int) Duration {
	if minutes < MinEstimateMinutes {
		minutes = MinEstimateMinutes
	}
	if minutes > MaxEstimateMinutes {
		minutes = MaxEstimateMinutes
	}
	return Duration{minutes: minutes}
}

// RehydrateDuration recreates a duration from persisted state without
// re-clamping.
func RehydrateDuration(minutes int) Duration {
	return Duration{minutes: minutes}
}

// Minutes returns the estimate in minutes.
func (d Duration) Minutes() int { return d.minutes }

// Std returns the estimate as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d.minutes) * time.Minute }

func (d Duration) String() string {
	if d.minutes%60 == 0 {
		return fmt.Sprintf("%dh", d.minutes/60)
	}
	if d.minutes > 60 {
		return fmt.Sprintf("%dh%dm", d.minutes/60, d.minutes%60)
	}
	return fmt.Sprintf("%dm", d.minutes)
}
