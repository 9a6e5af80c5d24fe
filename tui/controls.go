package tui

import (
	"github.com/gdamore/tcell/v2"
	"github.com/rmcsoft/emote"
	"github.com/sirupsen/logrus"
)

// Queuer accepts emote sequences. *emote.Character is one.
type Queuer interface {
	QueueNext(req emote.SequenceRequest) error
}

// Stepper is the part of a dialogue player driven from the keyboard.
type Stepper interface {
	Next() error
	Answer(n int) (bool, error)
}

// Controls maps keys to character and dialogue actions.
type Controls struct {
	Character Queuer
	// Emotes are bound to the digit keys 1 to 9.
	Emotes []string
	// Dialogue is optional.
	Dialogue Stepper
	Log      logrus.FieldLogger
}

// HandleKey applies ev and reports whether the UI should keep running.
func (c *Controls) HandleKey(ev *tcell.EventKey) bool {
	if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC {
		return false
	}
	if ev.Key() != tcell.KeyRune {
		return true
	}

	var err error
	switch r := ev.Rune(); {
	case r == 'q':
		return false

	case r >= '1' && r <= '9':
		i := int(r - '1')
		if i < len(c.Emotes) {
			err = c.Character.QueueNext(emote.Play(emote.EndReturnToIdle, true, c.Emotes[i]))
		}

	case r == 'n' && c.Dialogue != nil:
		err = c.Dialogue.Next()

	case r >= 'a' && r <= 'd' && c.Dialogue != nil:
		_, err = c.Dialogue.Answer(int(r-'a') + 1)
	}

	if err != nil && c.Log != nil {
		c.Log.WithError(err).Warnf("TUI: key '%c'", ev.Rune())
	}
	return true
}
