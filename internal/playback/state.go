package playback

// State is the playback state of the controller.
type State int

const (
	// Idle means no utterance is in flight.
	Idle State = iota
	// Speaking means the host is reading an utterance aloud.
	Speaking
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Speaking:
		return "speaking"
	default:
		return "unknown"
	}
}

// StateMachine guards playback state transitions.
type StateMachine struct {
	current     State
	transitions map[State][]State
	onEnter     map[State]func()
}

// NewStateMachine creates a state machine in Idle.
func NewStateMachine() *StateMachine {
	return &StateMachine{
		current: Idle,
		transitions: map[State][]State{
			Idle:     {Speaking},
			Speaking: {Idle},
		},
		onEnter: make(map[State]func()),
	}
}

// Transition moves to the given state if the move is allowed, running the
// state's enter callback.
func (sm *StateMachine) Transition(to State) bool {
	valid := false
	for _, s := range sm.transitions[sm.current] {
		if s == to {
			valid = true
			break
		}
	}
	if !valid {
		return false
	}

	sm.current = to
	if fn := sm.onEnter[to]; fn != nil {
		fn()
	}
	return true
}

// Current returns the current state.
func (sm *StateMachine) Current() State {
	return sm.current
}

// OnEnter registers a callback for entering a state.
func (sm *StateMachine) OnEnter(state State, fn func()) {
	sm.onEnter[state] = fn
}
