package events

import (
	"context"
	"sync"

	log "github.com/sirupsen/logrus"
)

// Event is event Description
type Event struct {
	Name string
	Args []interface{}
}

// IDEventSource type to identify event sources
type IDEventSource = uint64

// EventSource is definition of the source of events.
type EventSource interface {
	Name() string
	Events() chan *Event
	Close()
}

// EventSources is set of event sources
type EventSources = []EventSource

// EventSourceMultiplexer merges event sources into a single stream
type EventSourceMultiplexer struct {
	mu    sync.Mutex
	idSeq IDEventSource

	multiplexer  chan event
	eventSources map[IDEventSource]*eventSourceCtrl
}

// NewEventSourceMultiplexer creates new EventSourceMultiplexer
func NewEventSourceMultiplexer() *EventSourceMultiplexer {
	return &EventSourceMultiplexer{
		multiplexer:  make(chan event, 64),
		eventSources: make(map[IDEventSource]*eventSourceCtrl),
	}
}

// NextEvent gets next event. It returns nil once ctx is done.
func (esm *EventSourceMultiplexer) NextEvent(ctx context.Context) *Event {
	for {
		var e event
		select {
		case e = <-esm.multiplexer:
		case <-ctx.Done():
			return nil
		}

		esm.mu.Lock()
		ctrl, ok := esm.eventSources[e.idEventSource]
		esm.mu.Unlock()
		if !ok { // The event is still relevant?
			continue
		}

		log.Debugf("NextEvent: Source=%s, Name=%s", ctrl.src.Name(), e.event.Name)
		return e.event
	}
}

// AddEventSource adds new event source
func (esm *EventSourceMultiplexer) AddEventSource(eventSource EventSource) IDEventSource {
	esm.mu.Lock()
	defer esm.mu.Unlock()

	id := esm.idSeq
	esm.idSeq++

	ctrl := &eventSourceCtrl{
		src:  eventSource,
		quit: make(chan struct{}),
	}
	esm.eventSources[id] = ctrl
	go esm.runEventSource(id, ctrl)

	return id
}

// RemoveEventSource closes and removes event source. Events it already
// produced are discarded.
func (esm *EventSourceMultiplexer) RemoveEventSource(id IDEventSource) {
	esm.mu.Lock()
	ctrl, ok := esm.eventSources[id]
	delete(esm.eventSources, id)
	esm.mu.Unlock()

	if ok {
		close(ctrl.quit)
		ctrl.src.Close()
	}
}

// Close removes all event sources
func (esm *EventSourceMultiplexer) Close() {
	esm.mu.Lock()
	ids := make([]IDEventSource, 0, len(esm.eventSources))
	for id := range esm.eventSources {
		ids = append(ids, id)
	}
	esm.mu.Unlock()

	for _, id := range ids {
		esm.RemoveEventSource(id)
	}
}

type eventSourceCtrl struct {
	src  EventSource
	quit chan struct{}
}

type event struct {
	idEventSource IDEventSource
	event         *Event
}

func (esm *EventSourceMultiplexer) runEventSource(id IDEventSource, ctrl *eventSourceCtrl) {
	log.Debugf("EventSource '%s' running", ctrl.src.Name())
	defer log.Debugf("EventSource '%s' stopped", ctrl.src.Name())

	events := ctrl.src.Events()
	for {
		select {
		case e, ok := <-events:
			if !ok {
				return
			}
			if e == nil {
				continue
			}
			select {
			case esm.multiplexer <- event{id, e}:
			case <-ctrl.quit:
				return
			}
		case <-ctrl.quit:
			return
		}
	}
}
