package events

import "sync"

// Inbox is an event source fed by Post.
type Inbox struct {
	name      string
	eventChan chan *Event
	quit      chan struct{}
	closeOnce sync.Once
}

// NewInbox creates an Inbox buffering up to size events.
func NewInbox(name string, size int) *Inbox {
	return &Inbox{
		name:      name,
		eventChan: make(chan *Event, size),
		quit:      make(chan struct{}),
	}
}

// Post delivers e. It blocks while the buffer is full and returns false
// once the inbox is closed.
func (in *Inbox) Post(e *Event) bool {
	select {
	case <-in.quit:
		return false
	default:
	}

	select {
	case in.eventChan <- e:
		return true
	case <-in.quit:
		return false
	}
}

// Name implements EventSource
func (in *Inbox) Name() string {
	return in.name
}

// Events implements EventSource
func (in *Inbox) Events() chan *Event {
	return in.eventChan
}

// Close implements EventSource
func (in *Inbox) Close() {
	in.closeOnce.Do(func() {
		close(in.quit)
	})
}
