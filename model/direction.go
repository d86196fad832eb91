package model

// Direction selects the uplink or downlink half of a per-UE state pair.
// It doubles as an array index, so the zero value is a real direction.
type Direction int

const (
	Uplink Direction = iota
	Downlink

	// NumDirections sizes per-direction arrays on UE state.
	NumDirections = 2
)

// String returns the conventional short name ("UL" / "DL").
func (d Direction) String() string {
	switch d {
	case Uplink:
		return "UL"
	case Downlink:
		return "DL"
	default:
		return "UNKNOWN"
	}
}

// Valid reports whether d can index per-direction state.
func (d Direction) Valid() bool {
	return d == Uplink || d == Downlink
}
