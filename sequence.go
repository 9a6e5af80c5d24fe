package emote

import (
	"errors"
	"fmt"
	"strings"

	"github.com/twinj/uuid"
)

// EndBehavior decides what happens once the last emote of a sequence ends.
type EndBehavior string

// End behaviors. The zero value loops.
const (
	EndLoop         EndBehavior = "loop"
	EndStopAtEnd    EndBehavior = "stop-at-end"
	EndReturnToIdle EndBehavior = "return-to-blink"
)

// Request errors
var (
	ErrEmptySequence      = errors.New("empty emote sequence")
	ErrUnknownEmote       = errors.New("unknown emote")
	ErrInvalidEndBehavior = errors.New("invalid end behavior")
)

// ParseEndBehavior accepts the canonical names plus the short forms
// "stop" and "blink". An empty string means loop.
func ParseEndBehavior(s string) (EndBehavior, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "loop":
		return EndLoop, nil
	case "stop", "stop-at-end":
		return EndStopAtEnd, nil
	case "blink", "return-to-blink", "idle":
		return EndReturnToIdle, nil
	}
	return "", fmt.Errorf("%w: '%s'", ErrInvalidEndBehavior, s)
}

func (b EndBehavior) valid() bool {
	switch b {
	case "", EndLoop, EndStopAtEnd, EndReturnToIdle:
		return true
	}
	return false
}

// SequenceRequest asks the sequencer to play Emotes back to back.
type SequenceRequest struct {
	Emotes    []string
	End       EndBehavior
	Immediate bool
}

// Play is a shorthand for a request built from emote names.
func Play(end EndBehavior, immediate bool, emotes ...string) SequenceRequest {
	return SequenceRequest{
		Emotes:    emotes,
		End:       end,
		Immediate: immediate,
	}
}

// Validate checks the request against a catalog. idle is the emote a
// return-to-blink sequence falls back to.
func (r SequenceRequest) Validate(catalog *Catalog, idle string) error {
	if len(r.Emotes) == 0 {
		return ErrEmptySequence
	}
	if !r.End.valid() {
		return fmt.Errorf("%w: '%s'", ErrInvalidEndBehavior, r.End)
	}
	for _, name := range r.Emotes {
		if !catalog.Has(name) {
			return fmt.Errorf("%w: '%s'", ErrUnknownEmote, name)
		}
	}
	if r.End == EndReturnToIdle && !catalog.Has(idle) {
		return fmt.Errorf("%w: idle emote '%s'", ErrUnknownEmote, idle)
	}
	return nil
}

// sequence is an accepted request with its own identity. Two requests with
// the same emotes are still different sequences.
type sequence struct {
	id     string
	emotes []string
	end    EndBehavior
}

func newSequence(emotes []string, end EndBehavior) *sequence {
	if end == "" {
		end = EndLoop
	}
	return &sequence{
		id:     uuid.NewV4().String(),
		emotes: append([]string(nil), emotes...),
		end:    end,
	}
}

func (s *sequence) last() int {
	return len(s.emotes) - 1
}
