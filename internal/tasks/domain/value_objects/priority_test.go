package value_objects

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewPriority_Clamps(t *testing.T) {
	tests := []struct {
		name string
		in   int
		want Priority
	}{
		{"below range", 0, PriorityLowest},
		{"far below range", -10, PriorityLowest},
		{"in range", 3, PriorityMedium},
		{"above range", 6, PriorityUrgent},
		{"far above range", 100, PriorityUrgent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NewPriority(tt.in))
		})
	}
}

func TestPriority_IsTimeCritical(t *testing.T) {
	assert.False(t, PriorityMedium.IsTimeCritical())
	assert.True(t, PriorityHigh.IsTimeCritical())
	assert.True(t, PriorityUrgent.IsTimeCritical())
}

func TestNewDuration_Clamps(t *testing.T) {
	assert.Equal(t, MinEstimateMinutes, NewDuration(5).Minutes())
	assert.Equal(t, 90, NewDuration(90).Minutes())
	assert.Equal(t, MaxEstimateMinutes, NewDuration(1000).Minutes())
	assert.Equal(t, 30*time.Minute, NewDuration(30).Std())
}

func TestParseEnergy(t *testing.T) {
	assert.Equal(t, EnergyHigh, ParseEnergy("high"))
	assert.Equal(t, EnergyLow, ParseEnergy("low"))
	assert.Equal(t, EnergyMedium, ParseEnergy("anything else"))
}
