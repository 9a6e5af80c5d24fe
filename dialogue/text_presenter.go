package dialogue

import (
	"fmt"
	"io"
	"sync"
)

// TextPresenter prints slides as plain text.
type TextPresenter struct {
	mu sync.Mutex
	w  io.Writer
}

// NewTextPresenter creates a TextPresenter writing to w.
func NewTextPresenter(w io.Writer) *TextPresenter {
	return &TextPresenter{w: w}
}

// ShowSlide implements Presenter.
func (t *TextPresenter) ShowSlide(index int, slide Slide) {
	t.mu.Lock()
	defer t.mu.Unlock()

	fmt.Fprintf(t.w, "[%d] %s\n", index+1, slide.Text)
	for i, answer := range slide.Answers {
		fmt.Fprintf(t.w, "    %c) %s\n", 'a'+i, answer)
	}
}

// ShowVerdict implements Presenter.
func (t *TextPresenter) ShowVerdict(slide Slide, answer int, correct bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if correct {
		fmt.Fprintln(t.w, "Correct!")
		return
	}
	fmt.Fprintf(t.w, "Nope, it was %c) %s\n", 'a'+slide.AnswerIndex-1, slide.Answers[slide.AnswerIndex-1])
}

// Finish implements Presenter.
func (t *TextPresenter) Finish() {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintln(t.w, "The end.")
}
