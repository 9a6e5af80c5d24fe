package dialogue

import (
	_ "embed"
	"errors"
	"fmt"
	"io/ioutil"

	"github.com/rmcsoft/emote"
	"github.com/tidwall/gjson"
)

// Deck errors
var (
	ErrNoSlides     = errors.New("deck has no slides")
	ErrInvalidSlide = errors.New("invalid slide")
)

//go:embed decks/trivia.json
var triviaDeckData []byte

// Slide is one step of a dialogue. Slides with answers are questions and
// wait for Player.Answer before moving on.
type Slide struct {
	Title  string
	Text   string
	Emotes []string
	End    emote.EndBehavior
	// Answers and the 1-based index of the right one
	Answers     []string
	AnswerIndex int
}

// IsQuestion reports whether the slide expects an answer.
func (s Slide) IsQuestion() bool {
	return len(s.Answers) > 0
}

// Request is the emote sequence played when the slide shows up.
func (s Slide) Request() emote.SequenceRequest {
	end := s.End
	if end == "" {
		end = emote.EndReturnToIdle
	}
	return emote.Play(end, true, s.Emotes...)
}

// Deck is an ordered set of slides plus the reactions to answers.
type Deck struct {
	Slides        []Slide
	CorrectEmotes []string
	WrongEmotes   []string
}

// TriviaDeck returns the built-in trivia deck.
func TriviaDeck() *Deck {
	d, err := ParseDeck(triviaDeckData)
	if err != nil {
		panic(err)
	}
	return d
}

// LoadDeck reads a deck from a JSON file.
func LoadDeck(path string) (*Deck, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, err
	}

	d, err := ParseDeck(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return d, nil
}

// ParseDeck parses a deck of the form
//
//	{"correctEmotes": ["congratulate"], "wrongEmotes": ["sad"],
//	 "slides": [{"title": "q1", "text": "...", "emotes": ["think"],
//	   "end": "stop-at-end", "answers": ["a", "b"], "answerIndex": 2}]}
func ParseDeck(data []byte) (*Deck, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%w: malformed JSON", ErrInvalidSlide)
	}

	root := gjson.ParseBytes(data)
	d := &Deck{
		CorrectEmotes: stringArray(root.Get("correctEmotes")),
		WrongEmotes:   stringArray(root.Get("wrongEmotes")),
	}

	var parseErr error
	root.Get("slides").ForEach(func(_, v gjson.Result) bool {
		slide, err := parseSlide(v)
		if err != nil {
			parseErr = fmt.Errorf("slide %d: %w", len(d.Slides), err)
			return false
		}
		d.Slides = append(d.Slides, slide)
		return true
	})
	if parseErr != nil {
		return nil, parseErr
	}
	if len(d.Slides) == 0 {
		return nil, ErrNoSlides
	}

	return d, nil
}

func parseSlide(v gjson.Result) (Slide, error) {
	slide := Slide{
		Title:       v.Get("title").String(),
		Text:        v.Get("text").String(),
		Emotes:      stringArray(v.Get("emotes")),
		Answers:     stringArray(v.Get("answers")),
		AnswerIndex: int(v.Get("answerIndex").Int()),
	}

	end, err := emote.ParseEndBehavior(v.Get("end").String())
	if err != nil {
		return slide, err
	}
	if v.Get("end").Exists() {
		slide.End = end
	}

	if len(slide.Emotes) == 0 {
		return slide, fmt.Errorf("%w: no emotes", ErrInvalidSlide)
	}
	if slide.IsQuestion() && (slide.AnswerIndex < 1 || slide.AnswerIndex > len(slide.Answers)) {
		return slide, fmt.Errorf("%w: answerIndex %d out of 1..%d", ErrInvalidSlide, slide.AnswerIndex, len(slide.Answers))
	}
	return slide, nil
}

func stringArray(v gjson.Result) []string {
	if !v.IsArray() {
		return nil
	}
	var out []string
	for _, item := range v.Array() {
		out = append(out, item.String())
	}
	return out
}

// Validate checks every emote of the deck against catalog.
func (d *Deck) Validate(catalog *emote.Catalog, idle string) error {
	if len(d.Slides) == 0 {
		return ErrNoSlides
	}
	for i, slide := range d.Slides {
		if err := slide.Request().Validate(catalog, idle); err != nil {
			return fmt.Errorf("slide %d '%s': %w", i, slide.Title, err)
		}
	}
	for _, reaction := range [][]string{d.CorrectEmotes, d.WrongEmotes} {
		if len(reaction) == 0 {
			continue
		}
		if err := emote.Play(emote.EndReturnToIdle, true, reaction...).Validate(catalog, idle); err != nil {
			return fmt.Errorf("reaction: %w", err)
		}
	}
	return nil
}
