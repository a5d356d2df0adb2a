package fsm

import "fmt"

type State string

type Event string

const (
	StateIdle         State = "idle"
	StateInitializing State = "initializing"
	StateActive       State = "active"
	StateProcessing   State = "processing"
	StateFinished     State = "finished"
)

const (
	EventBegin      Event = "begin"
	EventOpened     Event = "opened"
	EventOpenFailed Event = "open_failed"
	EventSubmit     Event = "submit"
	EventExpire     Event = "expire"
	EventFinish     Event = "finish"
	EventContinue   Event = "continue"
	EventRetry      Event = "retry"
	EventClose      Event = "close"
	EventQuit       Event = "quit"
	EventReset      Event = "reset"
)

func Transition(current State, event Event) (State, error) {
	switch current {
	case StateIdle:
		switch event {
		case EventBegin:
			return StateInitializing, nil
		default:
			return current, invalidTransition(current, event)
		}
	case StateInitializing:
		switch event {
		case EventOpened:
			return StateActive, nil
		case EventOpenFailed, EventQuit:
			return StateIdle, nil
		default:
			return current, invalidTransition(current, event)
		}
	case StateActive:
		switch event {
		case EventSubmit, EventExpire, EventFinish:
			return StateProcessing, nil
		case EventQuit:
			return StateIdle, nil
		default:
			return current, invalidTransition(current, event)
		}
	case StateProcessing:
		switch event {
		case EventContinue, EventRetry:
			return StateActive, nil
		case EventClose:
			return StateFinished, nil
		case EventQuit:
			return StateIdle, nil
		default:
			return current, invalidTransition(current, event)
		}
	case StateFinished:
		switch event {
		case EventReset:
			return StateIdle, nil
		default:
			return current, invalidTransition(current, event)
		}
	default:
		return current, fmt.Errorf("unknown state %q", current)
	}
}

func invalidTransition(state State, event Event) error {
	return fmt.Errorf("invalid transition: %s --(%s)--> ?", state, event)
}
