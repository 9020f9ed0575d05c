package storage

// ConnState is the lifecycle state of the facade's primary connection.
type ConnState int32

const (
	StateUninitialized ConnState = iota
	StateOpening
	StateReady
	StateFailed
)

func (s ConnState) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateOpening:
		return "opening"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// ValidTransitions defines allowed connection state changes.
// A Ready connection that fails an operation drops to Failed; the next call
// re-enters Opening. An open abandoned by its caller returns to the state it
// started from.
var ValidTransitions = map[ConnState][]ConnState{
	StateUninitialized: {StateOpening},
	StateOpening:       {StateReady, StateFailed, StateUninitialized},
	StateReady:         {StateFailed},
	StateFailed:        {StateOpening},
}

// CanTransition checks if a transition from one state to another is valid.
func CanTransition(from, to ConnState) bool {
	for _, target := range ValidTransitions[from] {
		if target == to {
			return true
		}
	}
	return false
}
