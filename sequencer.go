package emote

import (
	"errors"

	"github.com/looplab/fsm"
	"github.com/sirupsen/logrus"
)

// DefaultIdleEmote is the clip a return-to-blink sequence settles on.
const DefaultIdleEmote = "blink"

// Playback statuses
const (
	StatusIdle     = "idle"
	StatusPlaying  = "playing"
	StatusFreezing = "freezing"
	StatusFrozen   = "frozen"
)

const (
	eventPlay   = "play"
	eventFreeze = "freeze"
	eventSettle = "settle"
)

// Setup errors
var (
	ErrNoCatalog = errors.New("no emote catalog")
	ErrNoSurface = errors.New("no surface attached")
)

// Option configures a Sequencer.
type Option func(*Sequencer)

// WithIdleEmote overrides the emote used by return-to-blink sequences.
func WithIdleEmote(name string) Option {
	return func(s *Sequencer) {
		s.idle = name
	}
}

// WithScheduler sets the scheduler used to start a clip after an interrupt.
func WithScheduler(scheduler Scheduler) Option {
	return func(s *Sequencer) {
		s.scheduler = scheduler
	}
}

// WithLogger sets the logger.
func WithLogger(log logrus.FieldLogger) Option {
	return func(s *Sequencer) {
		s.log = log
	}
}

// SequencerState is a snapshot of the sequencer.
type SequencerState struct {
	Status     string
	Current    string
	Emotes     []string
	Index      int
	End        EndBehavior
	SequenceID string
	// Queued holds the emotes of the pending request, nil if none.
	Queued          []string
	CallbackPending bool
}

// Frozen reports whether the current clip holds its final frame.
func (st SequencerState) Frozen() bool {
	return st.Status == StatusFreezing || st.Status == StatusFrozen
}

type endCallback struct {
	seqID string
	fn    func()
}

// Sequencer steps through emote sequences on a Surface.
// It is not safe for concurrent use: all calls, including the completion
// notifications coming from the surface, must be serialized by the owner.
type Sequencer struct {
	catalog   *Catalog
	surface   Surface
	scheduler Scheduler
	idle      string
	log       logrus.FieldLogger
	status    *fsm.FSM

	current string
	visible bool
	// stalled is set when the surface refused the current clip; no
	// completion will arrive for it.
	stalled bool
	active  *sequence
	index   int
	end     EndBehavior
	queued  *sequence
	onEnd   *endCallback

	// gen identifies the clip start a completion belongs to.
	gen uint64
}

// NewSequencer creates a Sequencer. Nothing is shown until Start or the
// first QueueNext.
func NewSequencer(catalog *Catalog, surface Surface, opts ...Option) (*Sequencer, error) {
	if catalog == nil {
		return nil, ErrNoCatalog
	}
	if surface == nil {
		return nil, ErrNoSurface
	}

	s := &Sequencer{
		catalog:   catalog,
		surface:   surface,
		scheduler: Immediate,
		idle:      DefaultIdleEmote,
		log:       logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.status = fsm.NewFSM(
		StatusIdle,
		[]fsm.EventDesc{
			{Name: eventPlay, Src: []string{StatusIdle, StatusFreezing, StatusFrozen}, Dst: StatusPlaying},
			{Name: eventFreeze, Src: []string{StatusPlaying}, Dst: StatusFreezing},
			{Name: eventSettle, Src: []string{StatusFreezing}, Dst: StatusFrozen},
		},
		fsm.Callbacks{
			"enter_state": func(e *fsm.Event) {
				s.log.Debugf("Sequencer: %s -> %s", e.Src, e.Dst)
			},
		},
	)

	return s, nil
}

// Catalog returns the catalog the sequencer validates against.
func (s *Sequencer) Catalog() *Catalog {
	return s.catalog
}

// IdleEmote returns the return-to-blink target.
func (s *Sequencer) IdleEmote() string {
	return s.idle
}

// Start plays name as a looping single clip sequence.
func (s *Sequencer) Start(name string) error {
	return s.QueueNext(Play(EndLoop, true, name))
}

// QueueNext makes req the pending request, replacing any earlier one.
// It is applied right away when nothing has played yet, when
// req.Immediate is set or when the current clip is frozen or failed to
// show; otherwise it takes over when the current clip ends.
func (s *Sequencer) QueueNext(req SequenceRequest) error {
	if err := req.Validate(s.catalog, s.idle); err != nil {
		return err
	}

	seq := newSequence(req.Emotes, req.End)
	if s.onEnd != nil && s.onEnd.seqID == "" {
		s.onEnd.seqID = seq.id
	}
	s.queued = seq
	s.pruneCallback()

	s.log.WithFields(logrus.Fields{
		"emotes":    seq.emotes,
		"end":       seq.end,
		"immediate": req.Immediate,
	}).Debug("Sequencer: queued")

	if req.Immediate || s.stalled || s.status.Is(StatusIdle) || s.status.Is(StatusFrozen) {
		s.interrupt()
	}
	return nil
}

// OnSequenceEnd registers a one-shot callback fired when the most
// recently requested sequence plays its last emote to the end. A later
// registration replaces it; nil clears it. The callback is dropped if that
// sequence is replaced before it finishes.
func (s *Sequencer) OnSequenceEnd(fn func()) {
	if fn == nil {
		s.onEnd = nil
		return
	}

	cb := &endCallback{fn: fn}
	switch {
	case s.queued != nil:
		cb.seqID = s.queued.id
	case s.active != nil:
		cb.seqID = s.active.id
	}
	s.onEnd = cb
}

// State returns a snapshot of the sequencer.
func (s *Sequencer) State() SequencerState {
	st := SequencerState{
		Status:          s.status.Current(),
		Current:         s.current,
		Index:           s.index,
		End:             s.end,
		CallbackPending: s.onEnd != nil,
	}
	if s.active != nil {
		st.Emotes = append([]string(nil), s.active.emotes...)
		st.SequenceID = s.active.id
	}
	if s.queued != nil {
		st.Queued = append([]string(nil), s.queued.emotes...)
	}
	return st
}

// interrupt drops the current clip and starts the queued sequence on the
// next scheduler tick, so the surface sees a fresh activation.
func (s *Sequencer) interrupt() {
	s.surface.OnComplete(nil)
	s.hide()
	s.adoptQueued()

	s.gen++
	gen := s.gen
	s.scheduler.Defer(func() {
		if gen != s.gen {
			return
		}
		s.playCurrent()
	})
}

func (s *Sequencer) adoptQueued() {
	s.active = s.queued
	s.queued = nil
	s.index = 0
	s.end = s.active.end
	s.current = s.active.emotes[0]
	s.pruneCallback()
}

func (s *Sequencer) pruneCallback() {
	if s.onEnd == nil || s.onEnd.seqID == "" {
		return
	}
	if s.active != nil && s.onEnd.seqID == s.active.id {
		return
	}
	if s.queued != nil && s.onEnd.seqID == s.queued.id {
		return
	}
	s.log.Debug("Sequencer: end callback superseded")
	s.onEnd = nil
}

func (s *Sequencer) hide() {
	if s.visible {
		s.surface.Deactivate(s.current)
		s.visible = false
	}
}

func (s *Sequencer) playCurrent() {
	def, _ := s.catalog.Lookup(s.current)

	gen := s.gen
	s.surface.OnComplete(func(name string) {
		s.clipComplete(gen, name)
	})
	if err := s.surface.Activate(def); err != nil {
		s.log.WithError(err).Errorf("Sequencer: can't activate '%s'", def.Name)
		s.surface.OnComplete(nil)
		s.stalled = true
		return
	}
	s.visible = true
	s.stalled = false
	s.setStatus(eventPlay)
	s.stopAtEndCheck()
}

func (s *Sequencer) stopAtEndCheck() {
	if s.end != EndStopAtEnd || s.index != s.active.last() || s.queued != nil {
		return
	}
	s.surface.Freeze(s.current)
	s.end = ""
	s.setStatus(eventFreeze)
}

func (s *Sequencer) clipComplete(gen uint64, name string) {
	if gen != s.gen || name != s.current {
		s.log.Warnf("Sequencer: dropping stale completion of '%s'", name)
		return
	}

	s.surface.OnComplete(nil)
	finished := s.active
	wasLast := s.index == finished.last()

	if s.status.Is(StatusFreezing) && s.queued == nil {
		s.setStatus(eventSettle)
		if fire := s.takeCallback(finished); fire != nil {
			fire()
		}
		return
	}

	s.hide()

	idled := false
	if s.end == EndReturnToIdle && wasLast && s.queued == nil {
		s.active = newSequence([]string{s.idle}, EndLoop)
		s.end = EndLoop
		idled = true
	}

	var fire func()
	if wasLast {
		fire = s.takeCallback(finished)
	}

	switch {
	case s.queued != nil:
		s.adoptQueued()
	case idled:
		s.index = 0
	default:
		s.index = (s.index + 1) % len(s.active.emotes)
	}
	s.current = s.active.emotes[s.index]

	s.gen++
	s.playCurrent()

	if fire != nil {
		fire()
	}
}

func (s *Sequencer) takeCallback(finished *sequence) func() {
	if s.onEnd == nil || s.onEnd.seqID != finished.id {
		return nil
	}
	fn := s.onEnd.fn
	s.onEnd = nil
	return fn
}

func (s *Sequencer) setStatus(event string) {
	if !s.status.Can(event) {
		return
	}
	if err := s.status.Event(event); err != nil {
		s.log.WithError(err).Warnf("Sequencer: status event '%s'", event)
	}
}
