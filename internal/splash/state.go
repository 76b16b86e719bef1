package splash

import "fmt"

// State is the lifecycle state of a Screen.
type State int

const (
	StateCreated State = iota
	StateInitialized
	StateShowNormal
	StateFading
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateInitialized:
		return "initialized"
	case StateShowNormal:
		return "show-normal"
	case StateFading:
		return "fading"
	case StateClosed:
		return "closed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// event is an input to the lifecycle state machine.
type event int

const (
	eventInitialized event = iota
	eventShown
	eventDismiss
	eventTick
	eventLoopExited
)

func (e event) String() string {
	switch e {
	case eventInitialized:
		return "initialized"
	case eventShown:
		return "shown"
	case eventDismiss:
		return "dismiss"
	case eventTick:
		return "tick"
	case eventLoopExited:
		return "loop-exited"
	default:
		return fmt.Sprintf("event(%d)", int(e))
	}
}

type edge struct {
	from State
	on   event
}

// transitions is the complete lifecycle graph. A (state, event) pair missing
// here is a contract violation. Self-loops are accepted events without side
// effects.
var transitions = map[edge]State{
	{StateCreated, eventInitialized}: StateInitialized,
	{StateInitialized, eventShown}:   StateShowNormal,

	{StateCreated, eventDismiss}:     StateClosed,
	{StateInitialized, eventDismiss}: StateInitialized,
	{StateShowNormal, eventDismiss}:  StateFading,
	{StateFading, eventDismiss}:      StateFading,
	{StateClosed, eventDismiss}:      StateClosed,

	{StateFading, eventTick}: StateFading,

	{StateShowNormal, eventLoopExited}: StateClosed,
	{StateFading, eventLoopExited}:     StateClosed,
}

// next looks up the target of an event.
func next(from State, on event) (State, bool) {
	to, ok := transitions[edge{from, on}]
	return to, ok
}

// ContractViolationError reports a call the lifecycle does not allow. It is
// raised with panic; it indicates a bug in the caller or in this package.
type ContractViolationError struct {
	Op    string
	State State
}

func (e *ContractViolationError) Error() string {
	return fmt.Sprintf("splash: contract violation: %s in state %s", e.Op, e.State)
}

func violation(op string, st State) {
	panic(&ContractViolationError{Op: op, State: st})
}
