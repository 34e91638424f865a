// Package door contains the pure door state model: the state enum, raw
// sensor readings, and the reduction from readings to a confirmed state.
// This package has NO external dependencies (no GPIO, serial, HTTP, or
// time.Sleep). Time is always injectable via time.Time parameters.
package door

// State represents the inferred physical position of the garage door.
type State string

const (
	StateClosed  State = "CLOSED"
	StateOpen    State = "OPEN"
	StatePartial State = "PARTIAL"
	StateUnknown State = "UNKNOWN"
)

// Reading is one raw sample of the two position sensors.
type Reading struct {
	// Open is true when the fully-open sensor is triggered.
	Open bool
	// Closed is true when the fully-closed sensor is triggered.
	Closed bool
}

// Resolve maps a pair of sensor signals to a door state.
//
// Both sensors triggered at once should be impossible with correct wiring,
// so it maps to StateUnknown. Neither triggered maps to StatePartial; this
// conflates a door mid-travel with a dual sensor dropout, but the wiring
// gives no way to tell them apart, so the mapping is kept as-is.
func Resolve(r Reading) State {
	switch {
	case r.Closed && !r.Open:
		return StateClosed
	case r.Open && !r.Closed:
		return StateOpen
	case !r.Open && !r.Closed:
		return StatePartial
	default:
		return StateUnknown
	}
}

// Majority resolves repeated boolean samples of one sensor channel to a
// single value by majority vote. Ties cannot occur with an odd sample
// count; with an even count a tie resolves to false (not triggered).
func Majority(samples []bool) bool {
	triggered := 0
	for _, s := range samples {
		if s {
			triggered++
		}
	}
	return triggered*2 > len(samples)
}

// Describe returns a human-readable label for logging.
func Describe(s State) string {
	switch s {
	case StateClosed:
		return "fully closed"
	case StateOpen:
		return "fully open"
	case StatePartial:
		return "partially open"
	default:
		return "unknown"
	}
}
