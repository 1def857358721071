package value_objects

// Energy is the focus level a task demands, matched against the user's
// energy map when scoring slots.
type Energy string

const (
	EnergyHigh   Energy = "high"
	EnergyMedium Energy = "medium"
	EnergyLow    Energy = "low"
)

// ParseEnergy maps a string to an energy level, defaulting to medium for
// unknown values.
func ParseEnergy(s string) Energy {
	switch Energy(s) {
	case EnergyHigh, EnergyMedium, EnergyLow:
		return Energy(s)
	default:
		return EnergyMedium
	}
}

func (e Energy) String() string { return string(e) }
