// Package framebuffer shows emotes with a frame animator, such as the
// chanim one built by the animation subpackage.
package framebuffer

import (
	"fmt"
	"sync"

	"github.com/rmcsoft/emote"
	"github.com/rmcsoft/emote/headless"
	"github.com/sirupsen/logrus"
)

// Animator plays named animations. Start shows the first one;
// ChangeAnimation may block until the running animation reaches a
// transition frame. *chanim.Animator is one.
type Animator interface {
	Start(animation string) error
	ChangeAnimation(animation string) error
	GetAnimationNames() []string
}

// Surface is an emote.Surface backed by an Animator. Completions are
// timed from the catalog durations. Animator calls run on their own
// goroutine so a slow animation switch never holds up the caller.
type Surface struct {
	*headless.Surface
	animator   Animator
	animations map[string]bool
	log        logrus.FieldLogger

	mu        sync.Mutex
	pending   string
	wake      chan struct{}
	quit      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

// NewSurface creates a Surface and starts its animator worker. The
// animator must hold one animation per emote plus its hold animation.
func NewSurface(animator Animator, log logrus.FieldLogger, opts ...headless.Option) *Surface {
	if log == nil {
		log = logrus.StandardLogger()
	}

	s := &Surface{
		animator:   animator,
		animations: make(map[string]bool),
		log:        log,
		wake:       make(chan struct{}, 1),
		quit:       make(chan struct{}),
		done:       make(chan struct{}),
	}
	for _, name := range animator.GetAnimationNames() {
		s.animations[name] = true
	}

	opts = append([]headless.Option{headless.WithLogger(log), headless.WithClipEnd(s.clipEnd)}, opts...)
	s.Surface = headless.New(opts...)

	go s.run()
	return s
}

// Activate implements emote.Surface.
func (s *Surface) Activate(def emote.EmoteDefinition) error {
	for _, animation := range []string{def.Name, HoldAnimation(def.Name)} {
		if !s.animations[animation] {
			return fmt.Errorf("%w: no animation '%s'", ErrMissingFrames, animation)
		}
	}
	s.show(def.Name)
	return s.Surface.Activate(def)
}

// Close stops the animator worker.
func (s *Surface) Close() {
	s.closeOnce.Do(func() { close(s.quit) })
	<-s.done
}

// clipEnd switches a frozen clip to its hold animation once it has
// played to the end.
func (s *Surface) clipEnd(def emote.EmoteDefinition, frozen bool) {
	if frozen {
		s.show(HoldAnimation(def.Name))
	}
}

// show asks the worker for animation. Only the latest request is kept.
func (s *Surface) show(animation string) {
	s.mu.Lock()
	s.pending = animation
	s.mu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}
}

func (s *Surface) run() {
	defer close(s.done)

	started := false
	for {
		select {
		case <-s.wake:
		case <-s.quit:
			return
		}

		s.mu.Lock()
		animation := s.pending
		s.pending = ""
		s.mu.Unlock()
		if animation == "" {
			continue
		}

		var err error
		if started {
			err = s.animator.ChangeAnimation(animation)
		} else {
			err = s.animator.Start(animation)
			started = err == nil
		}
		if err != nil {
			s.log.WithError(err).Errorf("Framebuffer: can't show '%s'", animation)
		}
	}
}
