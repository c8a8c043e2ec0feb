package fsm

import "fmt"

type State string

type Event string

const (
	StateIdle      State = "idle"
	StateStarting  State = "starting"
	StateListening State = "listening"
)

const (
	EventEnable  Event = "enable"
	EventStarted Event = "started"
	EventEnd     Event = "end"
	EventFatal   Event = "fatal"
	EventDisable Event = "disable"
)

// Transition applies one lifecycle event to a state. Disable and fatal
// force idle from anywhere; a trailing end after settling to idle is a
// valid no-op because the engine may emit one final end after an abort.
func Transition(current State, event Event) (State, error) {
	switch event {
	case EventDisable, EventFatal:
		return StateIdle, nil
	case EventEnd:
		return StateIdle, nil
	}

	switch current {
	case StateIdle:
		switch event {
		case EventEnable:
			return StateStarting, nil
		default:
			return current, invalidTransition(current, event)
		}
	case StateStarting:
		switch event {
		case EventStarted:
			return StateListening, nil
		default:
			return current, invalidTransition(current, event)
		}
	case StateListening:
		return current, invalidTransition(current, event)
	default:
		return current, fmt.Errorf("unknown state %q", current)
	}
}

func invalidTransition(state State, event Event) error {
	return fmt.Errorf("invalid transition: %s --(%s)--> ?", state, event)
}
