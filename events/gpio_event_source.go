package events

import (
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"periph.io/x/periph/conn/gpio"
	"periph.io/x/periph/conn/gpio/gpioreg"
	"periph.io/x/periph/host"
)

const (
	// GpioEventName is emitted when all watched pins go high
	GpioEventName = "GpioEvent"
)

// DefaultGpioPollPeriod is how often pins are sampled
const DefaultGpioPollPeriod = 500 * time.Millisecond

type gpioEventSource struct {
	eventChan   chan *Event
	sensorsPins []gpio.PinIO
	period      time.Duration
	stop        chan struct{}
	stopOnce    sync.Once
}

// OpenPins initializes the host drivers and opens the named pins as
// inputs.
func OpenPins(names []string) ([]gpio.PinIO, error) {
	if _, err := host.Init(); err != nil {
		return nil, err
	}

	pins := make([]gpio.PinIO, 0, len(names))
	for _, name := range names {
		pin := gpioreg.ByName(name)
		if pin == nil {
			return nil, fmt.Errorf("Failed to open pin %s", name)
		}
		if err := pin.In(gpio.PullNoChange, gpio.NoEdge); err != nil {
			return nil, fmt.Errorf("pin %s: %w", name, err)
		}
		logrus.Debug("GPIO ", name, " is ready")
		pins = append(pins, pin)
	}
	return pins, nil
}

// CheckAllPins reports whether every pin reads high
func CheckAllPins(sensorsPins []gpio.PinIO) bool {
	for _, pin := range sensorsPins {
		if pin.Read() == gpio.Low {
			logrus.Trace("GPIO: ", pin.Name(), " is LOW")
			return false
		}
		logrus.Trace("GPIO: ", pin.Name(), " is HIGH")
	}
	logrus.Trace("GPIO: ALL HIGH")
	return len(sensorsPins) > 0
}

// NewGpioEventSource creates an event source emitting GpioEvent each time
// the pins go from "not all high" to "all high".
func NewGpioEventSource(sensorsPins []gpio.PinIO, period time.Duration) EventSource {
	if period <= 0 {
		period = DefaultGpioPollPeriod
	}

	es := &gpioEventSource{
		eventChan:   make(chan *Event),
		sensorsPins: sensorsPins,
		period:      period,
		stop:        make(chan struct{}),
	}

	if len(es.sensorsPins) > 0 {
		logrus.Trace("Starting Gpio watcher")
		go es.run()
	}
	return es
}

func (es *gpioEventSource) Name() string {
	return "GpioEventSource"
}

func (es *gpioEventSource) Events() chan *Event {
	return es.eventChan
}

func (es *gpioEventSource) Close() {
	es.stopOnce.Do(func() {
		close(es.stop)
	})
}

func (es *gpioEventSource) run() {
	t := time.NewTicker(es.period)
	defer t.Stop()

	armed := true
	for {
		high := CheckAllPins(es.sensorsPins)
		if high && armed {
			select {
			case es.eventChan <- &Event{Name: GpioEventName}:
			case <-es.stop:
				return
			}
		}
		armed = !high

		select {
		case <-t.C:
		case <-es.stop:
			return
		}
	}
}
