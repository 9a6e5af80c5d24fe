package emote

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rmcsoft/emote/events"
	"github.com/sirupsen/logrus"
)

// IdleTickEventName is emitted by the idle fidget ticker
const IdleTickEventName = "IdleTick"

// Character errors
var (
	ErrStopped        = errors.New("character stopped")
	ErrAlreadyRunning = errors.New("character already running")
)

// CharacterOptions configures a Character.
type CharacterOptions struct {
	// StartEmote is played in a loop when the character starts. Defaults
	// to the first emote of the catalog.
	StartEmote string
	// IdleEmote is the return-to-blink target. Defaults to "blink".
	IdleEmote string
	// IdleEmotes are played in rotation every IdlePeriod while the
	// character rests on its idle emote.
	IdleEmotes []string
	IdlePeriod time.Duration
	// Reactions maps names of events coming from extra event sources to
	// the sequence they trigger.
	Reactions map[string]SequenceRequest
	Logger    logrus.FieldLogger
}

// Character owns a Sequencer and feeds it from a single goroutine. Every
// input, including surface completions, is turned into an event and
// applied by Run in arrival order.
type Character struct {
	catalog   *Catalog
	opts      CharacterOptions
	sequencer *Sequencer
	log       logrus.FieldLogger

	eventSourceMultiplexer *events.EventSourceMultiplexer
	inbox                  *events.Inbox
	eventSources           events.EventSources

	// deferred is only touched by the Run goroutine
	deferred  []func()
	idleIndex int

	mu       sync.Mutex
	cancel   context.CancelFunc
	stopped  bool
	done     chan struct{}
	doneOnce sync.Once
}

// NewCharacter creates a Character drawing on surface. eventSources are
// extra inputs whose events are looked up in opts.Reactions.
func NewCharacter(catalog *Catalog, surface Surface, opts CharacterOptions, eventSources events.EventSources) (*Character, error) {
	if catalog == nil {
		return nil, ErrNoCatalog
	}
	if surface == nil {
		return nil, ErrNoSurface
	}
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}
	if opts.IdleEmote == "" {
		opts.IdleEmote = DefaultIdleEmote
	}
	if opts.StartEmote == "" {
		opts.StartEmote = catalog.Names()[0]
	}
	if err := validateCharacterOptions(catalog, opts); err != nil {
		return nil, err
	}

	c := &Character{
		catalog:                catalog,
		opts:                   opts,
		log:                    opts.Logger,
		eventSourceMultiplexer: events.NewEventSourceMultiplexer(),
		inbox:                  events.NewInbox("CharacterInbox", 64),
		eventSources:           eventSources,
		done:                   make(chan struct{}),
	}

	var err error
	c.sequencer, err = NewSequencer(
		catalog,
		&loopSurface{Surface: surface, post: c.post},
		WithIdleEmote(opts.IdleEmote),
		WithScheduler(SchedulerFunc(c.deferTask)),
		WithLogger(opts.Logger),
	)
	if err != nil {
		return nil, err
	}

	return c, nil
}

func validateCharacterOptions(catalog *Catalog, opts CharacterOptions) error {
	if !catalog.Has(opts.StartEmote) {
		return fmt.Errorf("%w: start emote '%s'", ErrUnknownEmote, opts.StartEmote)
	}
	for _, name := range opts.IdleEmotes {
		if !catalog.Has(name) {
			return fmt.Errorf("%w: idle emote '%s'", ErrUnknownEmote, name)
		}
	}
	if len(opts.IdleEmotes) > 0 {
		if opts.IdlePeriod <= 0 {
			return errors.New("idle emotes need a positive idle period")
		}
		if !catalog.Has(opts.IdleEmote) {
			return fmt.Errorf("%w: idle emote '%s'", ErrUnknownEmote, opts.IdleEmote)
		}
	}
	for name, req := range opts.Reactions {
		if err := req.Validate(catalog, opts.IdleEmote); err != nil {
			return fmt.Errorf("reaction to '%s': %w", name, err)
		}
	}
	return nil
}

// Catalog returns the character's catalog.
func (c *Character) Catalog() *Catalog {
	return c.catalog
}

// IdleEmote returns the return-to-blink target.
func (c *Character) IdleEmote() string {
	return c.opts.IdleEmote
}

// Run starts the character and processes its events until ctx is done or
// Stop is called.
func (c *Character) Run(ctx context.Context) error {
	c.mu.Lock()
	if c.stopped {
		c.mu.Unlock()
		c.doneOnce.Do(func() { close(c.done) })
		return ErrStopped
	}
	if c.cancel != nil {
		c.mu.Unlock()
		return ErrAlreadyRunning
	}
	ctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.mu.Unlock()

	defer c.doneOnce.Do(func() { close(c.done) })
	defer c.shutdown()

	if err := c.sequencer.Start(c.opts.StartEmote); err != nil {
		return err
	}
	c.runDeferred()

	c.eventSourceMultiplexer.AddEventSource(c.inbox)
	if len(c.opts.IdleEmotes) > 0 {
		c.eventSourceMultiplexer.AddEventSource(
			events.NewTickerEventSource("IdleFidget", IdleTickEventName, c.opts.IdlePeriod))
	}
	for _, eventSource := range c.eventSources {
		c.eventSourceMultiplexer.AddEventSource(eventSource)
	}

	c.log.Infof("Character: started with '%s'", c.opts.StartEmote)
	for event := c.eventSourceMultiplexer.NextEvent(ctx); event != nil; event = c.eventSourceMultiplexer.NextEvent(ctx) {
		c.handleEvent(event)
		c.runDeferred()
	}
	c.log.Info("Character: stopped")

	return nil
}

// Stop ends Run. Calls made after Stop return ErrStopped.
func (c *Character) Stop() {
	c.mu.Lock()
	c.stopped = true
	cancel := c.cancel
	c.mu.Unlock()

	c.inbox.Close()
	if cancel != nil {
		cancel()
	}
}

// Done is closed when Run returns.
func (c *Character) Done() <-chan struct{} {
	return c.done
}

// QueueNext validates req and hands it to the sequencer. See
// Sequencer.QueueNext.
func (c *Character) QueueNext(req SequenceRequest) error {
	if err := req.Validate(c.catalog, c.opts.IdleEmote); err != nil {
		return err
	}
	return c.post(func() {
		if err := c.sequencer.QueueNext(req); err != nil {
			c.log.WithError(err).Error("Character: queue rejected")
		}
	})
}

// OnSequenceEnd registers the one-shot end of sequence callback. It runs
// on the Run goroutine. See Sequencer.OnSequenceEnd.
func (c *Character) OnSequenceEnd(fn func()) error {
	return c.post(func() {
		c.sequencer.OnSequenceEnd(fn)
	})
}

// Snapshot returns the sequencer state as seen by the Run goroutine.
func (c *Character) Snapshot(ctx context.Context) (SequencerState, error) {
	result := make(chan SequencerState, 1)
	if err := c.post(func() { result <- c.sequencer.State() }); err != nil {
		return SequencerState{}, err
	}

	select {
	case st := <-result:
		return st, nil
	case <-c.done:
		return SequencerState{}, ErrStopped
	case <-ctx.Done():
		return SequencerState{}, ctx.Err()
	}
}

func (c *Character) post(fn func()) error {
	if !c.inbox.Post(events.NewCallEvent(fn)) {
		return ErrStopped
	}
	return nil
}

func (c *Character) deferTask(fn func()) {
	c.deferred = append(c.deferred, fn)
}

func (c *Character) runDeferred() {
	for len(c.deferred) > 0 {
		fn := c.deferred[0]
		c.deferred = c.deferred[1:]
		fn()
	}
}

func (c *Character) handleEvent(event *events.Event) {
	switch event.Name {
	case events.CallEventName:
		fn, err := event.GetCallEventData()
		if err != nil {
			c.log.WithError(err).Warn("Character: bad call event")
			return
		}
		fn()

	case IdleTickEventName:
		c.fidget()

	default:
		req, ok := c.opts.Reactions[event.Name]
		if !ok {
			c.log.Debugf("Character: ignoring event '%s'", event.Name)
			return
		}
		if err := c.sequencer.QueueNext(req); err != nil {
			c.log.WithError(err).Errorf("Character: reaction to '%s'", event.Name)
		}
	}
}

// fidget plays the next idle emote, but only while the character rests
// on its idle loop.
func (c *Character) fidget() {
	st := c.sequencer.State()
	if st.Queued != nil || len(st.Emotes) != 1 || st.Emotes[0] != c.opts.IdleEmote {
		return
	}

	name := c.opts.IdleEmotes[c.idleIndex]
	c.idleIndex = (c.idleIndex + 1) % len(c.opts.IdleEmotes)
	if err := c.sequencer.QueueNext(Play(EndReturnToIdle, false, name)); err != nil {
		c.log.WithError(err).Error("Character: fidget")
	}
}

func (c *Character) shutdown() {
	c.mu.Lock()
	c.stopped = true
	c.mu.Unlock()

	c.inbox.Close()
	c.eventSourceMultiplexer.Close()
}

// loopSurface hands surface completions over to the Run goroutine.
type loopSurface struct {
	Surface
	post func(fn func()) error
}

func (s *loopSurface) OnComplete(fn func(name string)) {
	if fn == nil {
		s.Surface.OnComplete(nil)
		return
	}
	s.Surface.OnComplete(func(name string) {
		s.post(func() { fn(name) })
	})
}
