// Package headless provides a timer driven emote surface with no display.
// It is used by the console player and in tests.
package headless

import (
	"sync"
	"time"

	"github.com/rmcsoft/emote"
	"github.com/sirupsen/logrus"
)

// Surface plays clips against the wall clock.
type Surface struct {
	mu         sync.Mutex
	log        logrus.FieldLogger
	speed      float64
	active     *clip
	onComplete func(name string)
	onClipEnd  func(def emote.EmoteDefinition, frozen bool)
	history    []string
}

type clip struct {
	def     emote.EmoteDefinition
	started time.Time
	timer   *time.Timer
	frozen  bool
	ended   bool
}

// Option configures a Surface.
type Option func(*Surface)

// WithLogger sets the logger.
func WithLogger(log logrus.FieldLogger) Option {
	return func(s *Surface) {
		s.log = log
	}
}

// WithSpeed plays clips speed times faster than their nominal duration.
func WithSpeed(speed float64) Option {
	return func(s *Surface) {
		if speed > 0 {
			s.speed = speed
		}
	}
}

// WithClipEnd calls fn each time a clip reaches its end, whether or not
// anyone subscribed through OnComplete. frozen tells if the clip was
// frozen. fn runs before the completion callback.
func WithClipEnd(fn func(def emote.EmoteDefinition, frozen bool)) Option {
	return func(s *Surface) {
		s.onClipEnd = fn
	}
}

// New creates a Surface.
func New(opts ...Option) *Surface {
	s := &Surface{
		log:   logrus.StandardLogger(),
		speed: 1,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Activate implements emote.Surface.
func (s *Surface) Activate(def emote.EmoteDefinition) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active != nil {
		s.active.timer.Stop()
	}

	c := &clip{
		def:     def,
		started: time.Now(),
	}
	c.timer = time.AfterFunc(s.scaled(def.Duration), func() {
		s.finish(c)
	})
	s.active = c
	s.history = append(s.history, def.Name)

	s.log.WithFields(logrus.Fields{
		"emote":  def.Name,
		"row":    def.RowIndex,
		"frames": def.NumFrames,
	}).Debug("Headless: activate")
	return nil
}

// Deactivate implements emote.Surface.
func (s *Surface) Deactivate(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active == nil || s.active.def.Name != name {
		return
	}
	s.active.timer.Stop()
	s.active = nil
	s.log.WithField("emote", name).Debug("Headless: deactivate")
}

// Freeze implements emote.Surface.
func (s *Surface) Freeze(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active != nil && s.active.def.Name == name {
		s.active.frozen = true
		s.log.WithField("emote", name).Debug("Headless: freeze")
	}
}

// OnComplete implements emote.Surface.
func (s *Surface) OnComplete(fn func(name string)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onComplete = fn
}

// Frame returns the active clip and the frame currently on screen. ok is
// false when nothing is shown.
func (s *Surface) Frame() (name string, frame int, frozen bool, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.active
	if c == nil {
		return "", 0, false, false
	}

	if c.ended {
		if c.frozen || c.def.FillMode == emote.FillForwards || c.def.FillMode == emote.FillBoth {
			return c.def.Name, c.def.LastFrame(), c.frozen, true
		}
		return c.def.Name, 0, c.frozen, true
	}

	frame = int(time.Since(c.started) / s.scaled(c.def.FrameDuration()))
	if frame > c.def.LastFrame() {
		frame = c.def.LastFrame()
	}
	return c.def.Name, frame, c.frozen, true
}

// History returns the names of all activated clips in order.
func (s *Surface) History() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.history...)
}

func (s *Surface) scaled(d time.Duration) time.Duration {
	scaled := time.Duration(float64(d) / s.speed)
	if scaled <= 0 {
		scaled = time.Nanosecond
	}
	return scaled
}

func (s *Surface) finish(c *clip) {
	s.mu.Lock()
	if s.active != c {
		s.mu.Unlock()
		return
	}
	c.ended = true
	fn, onClipEnd, frozen := s.onComplete, s.onClipEnd, c.frozen
	s.mu.Unlock()

	s.log.WithField("emote", c.def.Name).Debug("Headless: clip ended")
	if onClipEnd != nil {
		onClipEnd(c.def, frozen)
	}
	if fn != nil {
		fn(c.def.Name)
	}
}
