package value_objects

// Priority is a 1-5 urgency scale, 5 being the most urgent. Values are
// always clamped into range, never rejected.
type Priority int

const (
	PriorityLowest Priority = 1
	PriorityLow    Priority = 2
	PriorityMedium Priority = 3
	PriorityHigh   Priority = 4
	PriorityUrgent Priority = 5
)

// NewPriority clamps v into the valid 1-5 range.
func NewPriority(v int) Priority {
	if v < int(PriorityLowest) {
		return PriorityLowest
	}
	if v > int(PriorityUrgent) {
		return PriorityUrgent
	}
	return Priority(v)
}

// Int returns the numeric priority.
func (p Priority) Int() int { return int(p) }

// IsTimeCritical reports whether the task should be front-loaded by the
// slot scorer.
func (p Priority) IsTimeCritical() bool { return p >= PriorityHigh }

func (p Priority) String() string {
	switch p {
	case PriorityLowest:
		return "lowest"
	case PriorityLow:
		return "low"
	case PriorityMedium:
		return "medium"
	case PriorityHigh:
		return "high"
	case PriorityUrgent:
		return "urgent"
	default:
		return "unknown"
	}
}
