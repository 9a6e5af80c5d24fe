package events

import (
	"sync"
	"time"
)

// TickEventName is the default name of ticker events
const TickEventName = "Tick"

type tickerEventSource struct {
	name      string
	eventName string
	period    time.Duration
	eventChan chan *Event
	stop      chan struct{}
	stopOnce  sync.Once
}

// NewTickerEventSource emits an event named eventName every period until
// closed.
func NewTickerEventSource(name string, eventName string, period time.Duration) EventSource {
	es := &tickerEventSource{
		name:      name,
		eventName: eventName,
		period:    period,
		eventChan: make(chan *Event),
		stop:      make(chan struct{}),
	}

	go es.run()
	return es
}

func (es *tickerEventSource) Name() string {
	return es.name
}

func (es *tickerEventSource) Events() chan *Event {
	return es.eventChan
}

func (es *tickerEventSource) Close() {
	es.stopOnce.Do(func() {
		close(es.stop)
	})
}

func (es *tickerEventSource) run() {
	t := time.NewTicker(es.period)
	defer t.Stop()

	for {
		select {
		case <-t.C:
			select {
			case es.eventChan <- &Event{Name: es.eventName}:
			case <-es.stop:
				return
			}
		case <-es.stop:
			return
		}
	}
}
