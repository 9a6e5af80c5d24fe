// Package tui shows an emote character and its dialogue in a terminal.
package tui

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rmcsoft/emote"
	"github.com/rmcsoft/emote/dialogue"
	"github.com/rmcsoft/emote/headless"
	"github.com/sirupsen/logrus"
)

const (
	framePeriod = 33 * time.Millisecond
	bubbleWidth = 48
)

var (
	styleTitle   = tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
	styleFrame   = tcell.StyleDefault.Foreground(tcell.ColorGreen).Reverse(true)
	styleIdle    = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleFrozen  = tcell.StyleDefault.Foreground(tcell.ColorBlue).Reverse(true)
	styleBubble  = tcell.StyleDefault.Foreground(tcell.ColorWhite)
	styleCorrect = tcell.StyleDefault.Foreground(tcell.ColorGreen)
	styleWrong   = tcell.StyleDefault.Foreground(tcell.ColorRed)
	styleHelp    = tcell.StyleDefault.Foreground(tcell.ColorGray)
)

// Screen is an emote.Surface drawn on a tcell screen. Clip timing comes
// from an embedded headless surface. Screen also implements
// dialogue.Presenter.
type Screen struct {
	*headless.Surface
	screen  tcell.Screen
	catalog *emote.Catalog
	log     logrus.FieldLogger

	mu      sync.Mutex
	slide   *dialogue.Slide
	index   int
	verdict string
	correct bool
	done    bool
}

// NewScreen wraps an initialized tcell screen. opts tune the clip timing.
func NewScreen(screen tcell.Screen, catalog *emote.Catalog, log logrus.FieldLogger, opts ...headless.Option) *Screen {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Screen{
		Surface: headless.New(append([]headless.Option{headless.WithLogger(log)}, opts...)...),
		screen:  screen,
		catalog: catalog,
		log:     log,
	}
}

// ShowSlide implements dialogue.Presenter.
func (s *Screen) ShowSlide(index int, slide dialogue.Slide) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.slide = &slide
	s.index = index
	s.verdict = ""
}

// ShowVerdict implements dialogue.Presenter.
func (s *Screen) ShowVerdict(slide dialogue.Slide, answer int, correct bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.correct = correct
	if correct {
		s.verdict = "Correct!"
		return
	}
	s.verdict = fmt.Sprintf("Nope, it was %c) %s", 'a'+slide.AnswerIndex-1, slide.Answers[slide.AnswerIndex-1])
}

// Finish implements dialogue.Presenter.
func (s *Screen) Finish() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.slide = nil
	s.done = true
}

// Run draws the screen until ctx is done or keys returns false.
func (s *Screen) Run(ctx context.Context, keys func(ev *tcell.EventKey) bool) {
	ticker := time.NewTicker(framePeriod)
	defer ticker.Stop()

	eventChan := make(chan tcell.Event, 100)
	go func() {
		for {
			ev := s.screen.PollEvent()
			if ev == nil {
				close(eventChan)
				return
			}
			if ctx.Err() != nil {
				return
			}
			select {
			case eventChan <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()

	s.Draw()
	for {
		select {
		case <-ctx.Done():
			return

		case ev, ok := <-eventChan:
			if !ok {
				return
			}
			switch ev := ev.(type) {
			case *tcell.EventKey:
				if !keys(ev) {
					return
				}
			case *tcell.EventResize:
				s.screen.Sync()
			}

		case <-ticker.C:
			s.Draw()
		}
	}
}

// Draw paints the current frame.
func (s *Screen) Draw() {
	s.screen.Clear()
	width, _ := s.screen.Size()

	y := 1
	name, frame, frozen, ok := s.Frame()
	if ok {
		def, _ := s.catalog.Lookup(name)
		s.text(2, y, styleTitle, name)
		y++
		s.text(2, y, styleIdle, fmt.Sprintf("row %d  frame %d/%d", def.RowIndex, frame+1, def.NumFrames))
		y++
		s.strip(2, y, def, frame, frozen)
		y += 2
	}

	s.mu.Lock()
	slide, index, verdict, correct, done := s.slide, s.index, s.verdict, s.correct, s.done
	s.mu.Unlock()

	switch {
	case slide != nil:
		s.text(2, y, styleHelp, fmt.Sprintf("#%d %s", index+1, slide.Title))
		y++
		for _, line := range wrap(slide.Text, min(bubbleWidth, width-4)) {
			s.text(2, y, styleBubble, line)
			y++
		}
		for i, answer := range slide.Answers {
			s.text(4, y, styleBubble, fmt.Sprintf("%c) %s", 'a'+i, answer))
			y++
		}
		if verdict != "" {
			style := styleWrong
			if correct {
				style = styleCorrect
			}
			s.text(2, y+1, style, verdict)
		}
	case done:
		s.text(2, y, styleBubble, "The end.")
	}

	_, height := s.screen.Size()
	s.text(2, height-1, styleHelp, "1-9 emote  n next  a-d answer  q quit")
	s.screen.Show()
}

// strip draws one cell per sprite frame with the current one highlighted.
func (s *Screen) strip(x, y int, def emote.EmoteDefinition, frame int, frozen bool) {
	for i := 0; i < def.NumFrames; i++ {
		style := styleIdle
		if i == frame {
			style = styleFrame
			if frozen {
				style = styleFrozen
			}
		}
		s.text(x+i*3, y, style, fmt.Sprintf("%2d", i+1))
	}
}

func (s *Screen) text(x, y int, style tcell.Style, str string) {
	for _, r := range str {
		s.screen.SetContent(x, y, r, nil, style)
		x++
	}
}

func wrap(text string, width int) []string {
	if width <= 0 {
		return []string{text}
	}

	var lines []string
	var line strings.Builder
	for _, word := range strings.Fields(text) {
		if line.Len() > 0 && line.Len()+1+len(word) > width {
			lines = append(lines, line.String())
			line.Reset()
		}
		if line.Len() > 0 {
			line.WriteByte(' ')
		}
		line.WriteString(word)
	}
	if line.Len() > 0 {
		lines = append(lines, line.String())
	}
	return lines
}
