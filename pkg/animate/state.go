package animate

// State is the phase of the iteration in progress.
type State int

const (
	Idle State = iota
	Scanning
	Shuttling
	Delivering
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Scanning:
		return "scanning"
	case Shuttling:
		return "shuttling"
	case Delivering:
		return "delivering"
	default:
		return "unknown"
	}
}
