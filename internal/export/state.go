package export

// State is a step of the export state machine
type State string

const (
	StateIdle       State = "idle"
	StateGenerating State = "generating"
	StateDegrading  State = "degrading"
	StateSucceeded  State = "succeeded"
	StateFailed     State = "failed"
)

// transitions lists the legal moves. Generating may be entered twice, once
// for the primary and once for the fallback.
var transitions = map[State][]State{
	StateIdle:       {StateGenerating},
	StateGenerating: {StateSucceeded, StateDegrading, StateFailed},
	StateDegrading:  {StateGenerating, StateFailed},
}

// CanTransition reports whether the machine may move from one state to another
func CanTransition(from, to State) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Terminal reports whether s ends an export
func (s State) Terminal() bool {
	return s == StateSucceeded || s == StateFailed
}
