package delivery

// State is a position in the delivery state machine.
type State int

// Delivery states.
const (
	StatePending State = iota
	StateAttempting
	StateDelivered
	StateExhausted
)

// String returns the lower-case state name used in logs.
func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateAttempting:
		return "attempting"
	case StateDelivered:
		return "delivered"
	case StateExhausted:
		return "exhausted"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further transitions are possible.
func (s State) Terminal() bool {
	return s == StateDelivered || s == StateExhausted
}

// event is an input to the state machine.
type event int

const (
	eventStart event = iota
	eventSucceeded
	eventFailed
)

// transition returns the state that follows s on ev. attempts is the number
// of attempts made so far, including the one that produced ev.
// Unexpected inputs leave the state unchanged.
func transition(s State, ev event, attempts, maxAttempts int) State {
	switch s {
	case StatePending:
		if ev == eventStart {
			return StateAttempting
		}
	case StateAttempting:
		switch ev {
		case eventSucceeded:
			return StateDelivered
		case eventFailed:
			if attempts >= maxAttempts {
				return StateExhausted
			}
			return StateAttempting
		}
	}
	return s
}
