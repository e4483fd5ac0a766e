package blockgen

// State is one of the five lifecycle states a Generator moves through
// (spec.md §3). States advance monotonically; there is no restart.
type State int

const (
	// Initialized is the state immediately after construction.
	Initialized State = iota
	// Active accepts add* calls and runs both workers.
	Active
	// StoppedAddingData no longer accepts add*; the timer is being
	// stopped and any in-flight tick is finishing.
	StoppedAddingData
	// StoppedGeneratingBlocks no longer rolls; the drain worker is
	// draining whatever remains in the block queue.
	StoppedGeneratingBlocks
	// StoppedAll is terminal: both workers have exited and the queue
	// is empty.
	StoppedAll
)

// String renders the state for logging.
func (s State) String() string {
	switch s {
	case Initialized:
		return "Initialized"
	case Active:
		return "Active"
	case StoppedAddingData:
		return "StoppedAddingData"
	case StoppedGeneratingBlocks:
		return "StoppedGeneratingBlocks"
	case StoppedAll:
		return "StoppedAll"
	default:
		return "Unknown"
	}
}

// transitions enumerates the single legal successor for each state.
// Five states, four one-way transitions — spec.md §9 notes a general
// FSM engine is overkill for a chain this short, so this is just a
// lookup table plus a helper, not a generic state-machine type.
var transitions = map[State]State{
	Initialized:             Active,
	Active:                  StoppedAddingData,
	StoppedAddingData:       StoppedGeneratingBlocks,
	StoppedGeneratingBlocks: StoppedAll,
}

// canTransition reports whether moving from `from` to `to` is one of
// the four legal transitions in spec.md §3's table.
func canTransition(from, to State) bool {
	next, ok := transitions[from]
	return ok && next == to
}
