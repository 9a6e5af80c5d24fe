package events

import (
	"errors"
	"fmt"
)

const (
	// CallEventName is an event carrying a function to run on the
	// consumer's goroutine
	CallEventName = "Call"
)

// NewCallEvent creates CallEvent
func NewCallEvent(fn func()) *Event {
	return &Event{
		Name: CallEventName,
		Args: []interface{}{fn},
	}
}

// GetCallEventData returns the function of a CallEvent
func (event *Event) GetCallEventData() (func(), error) {
	if event.Name != CallEventName {
		return nil,
			fmt.Errorf("The event must be named %s", CallEventName)
	}

	if len(event.Args) != 1 {
		return nil,
			errors.New("Event does not data")
	}

	fn, ok := event.Args[0].(func())
	if !ok || fn == nil {
		return nil,
			errors.New("Event does not contain a function")
	}

	return fn, nil
}
