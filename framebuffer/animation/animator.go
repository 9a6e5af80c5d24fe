// Package animation builds chanim animators and paint engines for the
// framebuffer surface.
package animation

import (
	"fmt"
	"strings"

	"github.com/rmcsoft/chanim"
	"github.com/rmcsoft/emote"
	"github.com/rmcsoft/emote/framebuffer"
	"github.com/sirupsen/logrus"
)

// Paint engines
const (
	EngineSDL    = "sdl"
	EngineKMSDRM = "kmsdrm"

	pixFormat = chanim.RGB16
)

// NewPaintEngine creates the named paint engine.
func NewPaintEngine(engine string, width, height int) (chanim.PaintEngine, error) {
	switch engine {
	case EngineSDL:
		return chanim.NewSDLPaintEngine(width, height)
	case EngineKMSDRM:
		return chanim.NewKMSDRMPaintEngine(0, pixFormat)
	}
	return nil, fmt.Errorf("unknown paint engine '%s'", engine)
}

func isTransitFrameSeries(frameSeries chanim.FrameSeries) bool {
	return strings.HasSuffix(frameSeries.Name, framebuffer.EntrySuffix) ||
		strings.HasSuffix(frameSeries.Name, framebuffer.ExitSuffix)
}

func createAnimations(allFrameSeries []chanim.FrameSeries) chanim.Animations {
	animations := make(chanim.Animations, 0)
	for _, frameSeries := range allFrameSeries {
		if isTransitFrameSeries(frameSeries) {
			continue
		}
		// Animations are named after their frame series.
		animations = append(animations, chanim.Animation{
			Name:            frameSeries.Name,
			FrameSeriesName: frameSeries.Name,
		})
	}
	return animations
}

// transitionBetween plays the exit frames of from then the entry frames of
// to, when they exist.
func transitionBetween(from, to chanim.Animation, allFrameSeries *[]chanim.FrameSeries) chanim.Transition {
	transition := chanim.Transition{DestAnimationName: to.Name}

	var frames []chanim.Frame
	if exit := findFrameSeries(from.Name+framebuffer.ExitSuffix, *allFrameSeries); exit != nil {
		frames = append(frames, exit.Frames...)
	}
	if entry := findFrameSeries(to.Name+framebuffer.EntrySuffix, *allFrameSeries); entry != nil {
		frames = append(frames, entry.Frames...)
	}
	if len(frames) == 0 {
		return transition
	}

	transition.FrameSeriesName = fmt.Sprintf("%s -> %s", from.Name, to.Name)
	*allFrameSeries = append(*allFrameSeries, chanim.FrameSeries{
		Name:   transition.FrameSeriesName,
		Frames: frames,
	})
	return transition
}

// initTransitions lets every animation switch to any other one at its
// first and last frames.
func initTransitions(animations chanim.Animations, allFrameSeries []chanim.FrameSeries) []chanim.FrameSeries {
	for _, from := range animations {
		transitions := make([]chanim.Transition, 0, len(animations)-1)
		for _, to := range animations {
			if from.Name != to.Name {
				transitions = append(transitions, transitionBetween(from, to, &allFrameSeries))
			}
		}

		frames := findFrameSeries(from.FrameSeriesName, allFrameSeries).Frames
		frames[0].Transitions = transitions
		frames[len(frames)-1].Transitions = transitions
	}
	return allFrameSeries
}

// NewAnimator loads the frames of catalog under dir and builds an
// animator with one animation per emote plus its hold animation.
func NewAnimator(paintEngine chanim.PaintEngine, catalog *emote.Catalog, dir string) (*chanim.Animator, error) {
	logrus.Debug("Framebuffer: loading frames")
	allFrameSeries, err := LoadFrameSeries(catalog, dir)
	if err != nil {
		return nil, err
	}

	animations := createAnimations(allFrameSeries)
	logrus.Debugf("Framebuffer: %d animations", len(animations))
	allFrameSeries = initTransitions(animations, allFrameSeries)

	return chanim.NewAnimator(paintEngine, animations, allFrameSeries)
}
