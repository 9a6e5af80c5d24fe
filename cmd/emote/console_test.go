package main

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rmcsoft/emote"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCharacter struct {
	requests []emote.SequenceRequest
	state    emote.SequencerState
}

func (f *fakeCharacter) QueueNext(req emote.SequenceRequest) error {
	if err := req.Validate(emote.DefaultCatalog(), emote.DefaultIdleEmote); err != nil {
		return err
	}
	f.requests = append(f.requests, req)
	return nil
}

func (f *fakeCharacter) Snapshot(context.Context) (emote.SequencerState, error) {
	return f.state, nil
}

type fakeDialogue struct {
	nexts   int
	answers []int
}

func (d *fakeDialogue) Next() error {
	d.nexts++
	return nil
}

func (d *fakeDialogue) Answer(n int) (bool, error) {
	d.answers = append(d.answers, n)
	return n == 1, nil
}

func TestParseQueueArgs(t *testing.T) {
	tests := []struct {
		args []string
		want emote.SequenceRequest
		err  error
	}{
		{[]string{"wave"}, emote.SequenceRequest{Emotes: []string{"wave"}}, nil},
		{[]string{"greet,wave", "blink", "now"}, emote.Play(emote.EndReturnToIdle, true, "greet", "wave"), nil},
		{[]string{"think", "stop"}, emote.Play(emote.EndStopAtEnd, false, "think"), nil},
		{[]string{"think", "bounce"}, emote.SequenceRequest{}, emote.ErrInvalidEndBehavior},
	}

	for _, tt := range tests {
		t.Run(strings.Join(tt.args, " "), func(t *testing.T) {
			got, err := parseQueueArgs(tt.args)
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := parseQueueArgs(nil)
	assert.Error(t, err)
}

func TestConsoleExec(t *testing.T) {
	character := &fakeCharacter{
		state: emote.SequencerState{
			Status:  emote.StatusPlaying,
			Current: "wave",
			Emotes:  []string{"greet", "wave"},
			Index:   1,
			End:     emote.EndLoop,
			Queued:  []string{"think"},
		},
	}
	dialogue := &fakeDialogue{}
	var out bytes.Buffer
	c := &console{character: character, dialogue: dialogue, out: &out}
	ctx := context.Background()

	require.NoError(t, c.exec(ctx, "queue greet,wave blink now"))
	assert.Equal(t, []emote.SequenceRequest{emote.Play(emote.EndReturnToIdle, true, "greet", "wave")}, character.requests)
	assert.ErrorIs(t, c.exec(ctx, "queue dance"), emote.ErrUnknownEmote)

	require.NoError(t, c.exec(ctx, "next"))
	require.NoError(t, c.exec(ctx, "answer 2"))
	assert.Equal(t, 1, dialogue.nexts)
	assert.Equal(t, []int{2}, dialogue.answers)
	assert.Error(t, c.exec(ctx, "answer two"))
	assert.Error(t, c.exec(ctx, "answer"))

	require.NoError(t, c.exec(ctx, "state"))
	assert.Equal(t, "playing wave [greet,wave] #1 end=loop queued=[think]\n", out.String())

	assert.NoError(t, c.exec(ctx, "   "))
	assert.True(t, errors.Is(c.exec(ctx, "quit"), errQuit))
	assert.EqualError(t, c.exec(ctx, "dance"), "unknown command 'dance'")
}

func TestConsoleWithoutDialogue(t *testing.T) {
	c := &console{character: &fakeCharacter{}, out: &bytes.Buffer{}}
	assert.Error(t, c.exec(context.Background(), "next"))
	assert.Error(t, c.exec(context.Background(), "answer 1"))
}

func TestConsoleRun(t *testing.T) {
	character := &fakeCharacter{}
	var out bytes.Buffer
	c := &console{character: character, out: &out}

	in := strings.NewReader("queue wave now\nbogus\nquit\nqueue greet\n")
	require.NoError(t, c.run(context.Background(), in))

	assert.Equal(t, []emote.SequenceRequest{{Emotes: []string{"wave"}, Immediate: true}}, character.requests)
	assert.Contains(t, out.String(), "error: unknown command 'bogus'")
}
