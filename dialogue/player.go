package dialogue

import (
	"errors"
	"fmt"
	"sync"

	"github.com/rmcsoft/emote"
	"github.com/sirupsen/logrus"
)

// Player errors
var (
	ErrAnswerOutOfRange = errors.New("answer out of range")
	ErrNotAQuestion     = errors.New("current slide is not a question")
	ErrAlreadyAnswered  = errors.New("question already answered")
	ErrFinished         = errors.New("dialogue finished")
	ErrNotStarted       = errors.New("dialogue not started")
)

// Driver plays emote sequences for the player. *emote.Character satisfies
// it; use SequencerDriver for a bare Sequencer.
type Driver interface {
	QueueNext(req emote.SequenceRequest) error
	OnSequenceEnd(fn func()) error
}

// Presenter shows the dialogue to the user.
type Presenter interface {
	ShowSlide(index int, slide Slide)
	ShowVerdict(slide Slide, answer int, correct bool)
	Finish()
}

// SequencerDriver adapts a Sequencer to Driver. Calls are not
// serialized, the caller owns the sequencer.
type SequencerDriver struct {
	*emote.Sequencer
}

// OnSequenceEnd implements Driver.
func (d SequencerDriver) OnSequenceEnd(fn func()) error {
	d.Sequencer.OnSequenceEnd(fn)
	return nil
}

// Player walks a deck: each slide plays its emotes and, unless it asks a
// question, moves on when they end. Questions wait for Answer.
type Player struct {
	deck      *Deck
	driver    Driver
	presenter Presenter
	log       logrus.FieldLogger

	mu       sync.Mutex
	index    int
	answered bool
	finished bool
}

// NewPlayer creates a Player. The deck must only use emotes of catalog.
// Return-to-blink slides are checked against the driver's idle emote when
// it has an IdleEmote method.
func NewPlayer(deck *Deck, catalog *emote.Catalog, driver Driver, presenter Presenter, log logrus.FieldLogger) (*Player, error) {
	if deck == nil {
		return nil, ErrNoSlides
	}
	idle := emote.DefaultIdleEmote
	if d, ok := driver.(interface{ IdleEmote() string }); ok {
		idle = d.IdleEmote()
	}
	if err := deck.Validate(catalog, idle); err != nil {
		return nil, err
	}
	if log == nil {
		log = logrus.StandardLogger()
	}

	return &Player{
		deck:      deck,
		driver:    driver,
		presenter: presenter,
		log:       log,
		index:     -1,
	}, nil
}

// Start shows the first slide.
func (p *Player) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.index >= 0 {
		return errors.New("dialogue already started")
	}
	return p.show(0)
}

// Next skips to the following slide.
func (p *Player) Next() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.checkRunning(); err != nil {
		return err
	}
	return p.advance()
}

// Answer answers the current question with the 1-based answer n. The
// character reacts and the dialogue moves on when the reaction ends.
func (p *Player) Answer(n int) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.checkRunning(); err != nil {
		return false, err
	}
	slide := p.deck.Slides[p.index]
	if !slide.IsQuestion() {
		return false, ErrNotAQuestion
	}
	if p.answered {
		return false, ErrAlreadyAnswered
	}
	if n < 1 || n > len(slide.Answers) {
		return false, fmt.Errorf("%w: %d not in 1..%d", ErrAnswerOutOfRange, n, len(slide.Answers))
	}

	correct := n == slide.AnswerIndex
	p.answered = true
	p.log.WithFields(logrus.Fields{
		"slide":   slide.Title,
		"answer":  n,
		"correct": correct,
	}).Info("Dialogue: answered")
	if p.presenter != nil {
		p.presenter.ShowVerdict(slide, n, correct)
	}

	reaction := p.deck.WrongEmotes
	if correct {
		reaction = p.deck.CorrectEmotes
	}
	if len(reaction) == 0 {
		return correct, p.advance()
	}

	if err := p.driver.QueueNext(emote.Play(emote.EndReturnToIdle, true, reaction...)); err != nil {
		return correct, err
	}
	return correct, p.driver.OnSequenceEnd(p.advanceFrom(p.index))
}

// Current returns the index and the slide on screen.
func (p *Player) Current() (int, Slide, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.index < 0 || p.finished {
		return p.index, Slide{}, false
	}
	return p.index, p.deck.Slides[p.index], true
}

// Finished reports whether the last slide is done.
func (p *Player) Finished() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.finished
}

func (p *Player) checkRunning() error {
	switch {
	case p.finished:
		return ErrFinished
	case p.index < 0:
		return ErrNotStarted
	}
	return nil
}

// advanceFrom returns an end of sequence callback that only moves on if
// the dialogue is still on slide index.
func (p *Player) advanceFrom(index int) func() {
	return func() {
		p.mu.Lock()
		defer p.mu.Unlock()

		if p.finished || p.index != index {
			return
		}
		if err := p.advance(); err != nil {
			p.log.WithError(err).Error("Dialogue: can't advance")
		}
	}
}

func (p *Player) advance() error {
	next := p.index + 1
	if next >= len(p.deck.Slides) {
		p.finished = true
		p.log.Info("Dialogue: finished")
		if p.presenter != nil {
			p.presenter.Finish()
		}
		return nil
	}
	return p.show(next)
}

func (p *Player) show(index int) error {
	slide := p.deck.Slides[index]
	p.index = index
	p.answered = false

	p.log.Debugf("Dialogue: slide %d '%s'", index, slide.Title)
	if p.presenter != nil {
		p.presenter.ShowSlide(index, slide)
	}

	if err := p.driver.QueueNext(slide.Request()); err != nil {
		return err
	}
	if slide.IsQuestion() {
		// Questions wait for Answer; drop any older registration.
		return p.driver.OnSequenceEnd(nil)
	}
	return p.driver.OnSequenceEnd(p.advanceFrom(index))
}
