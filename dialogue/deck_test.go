package dialogue

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rmcsoft/emote"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testDeckJSON = `{
	"correctEmotes": ["congratulate"],
	"wrongEmotes": ["sad"],
	"slides": [
		{"title": "hello", "text": "Hello", "emotes": ["greet", "wave"]},
		{"title": "q", "text": "Pick b", "emotes": ["think"], "end": "stop",
		 "answers": ["a", "b"], "answerIndex": 2},
		{"title": "bye", "text": "Bye", "emotes": ["goodbye"], "end": "loop"}
	]
}`

func TestParseDeck(t *testing.T) {
	d, err := ParseDeck([]byte(testDeckJSON))
	require.NoError(t, err)

	require.Len(t, d.Slides, 3)
	assert.Equal(t, []string{"congratulate"}, d.CorrectEmotes)
	assert.Equal(t, []string{"sad"}, d.WrongEmotes)

	hello := d.Slides[0]
	assert.False(t, hello.IsQuestion())
	assert.Equal(t, emote.Play(emote.EndReturnToIdle, true, "greet", "wave"), hello.Request())

	q := d.Slides[1]
	assert.True(t, q.IsQuestion())
	assert.Equal(t, 2, q.AnswerIndex)
	assert.Equal(t, emote.EndStopAtEnd, q.Request().End)

	assert.Equal(t, emote.EndLoop, d.Slides[2].End)
}

func TestParseDeckErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
		err  error
	}{
		{"malformed", `{"slides": [`, ErrInvalidSlide},
		{"empty", `{"slides": []}`, ErrNoSlides},
		{"no slides", `{}`, ErrNoSlides},
		{"no emotes", `{"slides": [{"text": "x"}]}`, ErrInvalidSlide},
		{"answer index", `{"slides": [{"emotes": ["think"], "answers": ["a"], "answerIndex": 2}]}`, ErrInvalidSlide},
		{"bad end", `{"slides": [{"emotes": ["think"], "end": "bounce"}]}`, emote.ErrInvalidEndBehavior},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseDeck([]byte(tt.data))
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestLoadDeck(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deck.json")
	require.NoError(t, os.WriteFile(path, []byte(testDeckJSON), 0o644))

	d, err := LoadDeck(path)
	require.NoError(t, err)
	assert.Len(t, d.Slides, 3)

	_, err = LoadDeck(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestTriviaDeckFitsDefaultCatalog(t *testing.T) {
	d := TriviaDeck()
	require.NoError(t, d.Validate(emote.DefaultCatalog(), emote.DefaultIdleEmote))

	questions := 0
	for _, slide := range d.Slides {
		if slide.IsQuestion() {
			questions++
		}
	}
	assert.Equal(t, 5, questions)
}

func TestDeckValidate(t *testing.T) {
	d, err := ParseDeck([]byte(`{"wrongEmotes": ["dance"], "slides": [{"emotes": ["wave"]}]}`))
	require.NoError(t, err)
	assert.ErrorIs(t, d.Validate(emote.DefaultCatalog(), emote.DefaultIdleEmote), emote.ErrUnknownEmote)

	assert.ErrorIs(t, (&Deck{}).Validate(emote.DefaultCatalog(), emote.DefaultIdleEmote), ErrNoSlides)
}
