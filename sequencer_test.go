package emote

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSequencer(t *testing.T, opts ...Option) (*Sequencer, *fakeSurface) {
	t.Helper()
	catalog, err := ParseCatalog([]byte(testCatalogJSON))
	require.NoError(t, err)

	logger, _ := test.NewNullLogger()
	surface := &fakeSurface{}
	s, err := NewSequencer(catalog, surface, append([]Option{WithLogger(logger)}, opts...)...)
	require.NoError(t, err)
	return s, surface
}

func TestNewSequencerSetupErrors(t *testing.T) {
	_, err := NewSequencer(nil, &fakeSurface{})
	assert.ErrorIs(t, err, ErrNoCatalog)

	_, err = NewSequencer(DefaultCatalog(), nil)
	assert.ErrorIs(t, err, ErrNoSurface)
}

func TestSequencerStart(t *testing.T) {
	s, surface := newTestSequencer(t)
	assert.Equal(t, StatusIdle, s.State().Status)

	require.NoError(t, s.Start("blink"))

	st := s.State()
	assert.Equal(t, StatusPlaying, st.Status)
	assert.Equal(t, "blink", st.Current)
	assert.Equal(t, []string{"blink"}, st.Emotes)
	assert.Equal(t, EndLoop, st.End)
	assert.Nil(t, st.Queued)
	assert.Equal(t, []string{"activate:blink"}, surface.ops)
}

func TestSequencerRejectsInvalidRequests(t *testing.T) {
	s, surface := newTestSequencer(t)
	require.NoError(t, s.Start("blink"))
	before := s.State()
	surface.reset()

	assert.ErrorIs(t, s.QueueNext(Play(EndLoop, true)), ErrEmptySequence)
	assert.ErrorIs(t, s.QueueNext(Play(EndLoop, true, "wave", "dance")), ErrUnknownEmote)
	assert.ErrorIs(t, s.QueueNext(Play("sideways", true, "wave")), ErrInvalidEndBehavior)

	assert.Equal(t, before, s.State())
	assert.Empty(t, surface.ops)
}

func TestSequencerRejectsReturnToMissingIdle(t *testing.T) {
	s, _ := newTestSequencer(t, WithIdleEmote("doze"))
	err := s.QueueNext(Play(EndReturnToIdle, false, "wave"))
	assert.ErrorIs(t, err, ErrUnknownEmote)

	assert.NoError(t, s.QueueNext(Play(EndLoop, false, "wave")))
}

func TestSequencerLoopsInOrder(t *testing.T) {
	s, surface := newTestSequencer(t)
	require.NoError(t, s.QueueNext(Play(EndLoop, true, "wave", "blink", "wave")))

	for i := 0; i < 6; i++ {
		surface.complete()
	}

	assert.Equal(t, []string{"wave", "blink", "wave", "wave", "blink", "wave", "wave"}, surface.activations())
	assert.Equal(t, 0, s.State().Index)
	assert.Equal(t, StatusPlaying, s.State().Status)
}

func TestSequencerWaitsForNaturalCompletion(t *testing.T) {
	s, surface := newTestSequencer(t)
	require.NoError(t, s.Start("blink"))
	surface.reset()

	require.NoError(t, s.QueueNext(Play(EndLoop, false, "wave")))
	assert.Empty(t, surface.ops)
	assert.Equal(t, "blink", s.State().Current)
	assert.Equal(t, []string{"wave"}, s.State().Queued)

	surface.complete()
	assert.Equal(t, []string{"deactivate:blink", "activate:wave"}, surface.ops)
	assert.Nil(t, s.State().Queued)
}

func TestSequencerQueuedRequestLastWriterWins(t *testing.T) {
	s, surface := newTestSequencer(t)
	require.NoError(t, s.Start("blink"))

	require.NoError(t, s.QueueNext(Play(EndLoop, false, "wave")))
	require.NoError(t, s.QueueNext(Play(EndStopAtEnd, false, "blink", "wave")))
	surface.reset()

	surface.complete()
	st := s.State()
	assert.Equal(t, []string{"blink", "wave"}, st.Emotes)
	assert.Equal(t, EndStopAtEnd, st.End)
	assert.Equal(t, []string{"deactivate:blink", "activate:blink"}, surface.ops)
}

func TestSequencerReturnToBlink(t *testing.T) {
	s, surface := newTestSequencer(t)
	require.NoError(t, s.Start("blink"))

	require.NoError(t, s.QueueNext(Play(EndReturnToIdle, false, "wave")))
	surface.complete() // blink ends, wave starts
	assert.Equal(t, "wave", s.State().Current)

	surface.complete() // wave ends
	st := s.State()
	assert.Equal(t, []string{"blink"}, st.Emotes)
	assert.Equal(t, EndLoop, st.End)
	assert.Equal(t, "blink", st.Current)

	surface.complete()
	surface.complete()
	assert.Equal(t, []string{"blink", "wave", "blink", "blink", "blink"}, surface.activations())
}

func TestSequencerReturnToBlinkCancelledByQueue(t *testing.T) {
	s, surface := newTestSequencer(t)
	require.NoError(t, s.QueueNext(Play(EndReturnToIdle, true, "wave", "wave")))
	surface.complete() // first wave ends

	require.NoError(t, s.QueueNext(Play(EndLoop, false, "wave")))
	surface.complete() // second wave ends with a request pending

	st := s.State()
	assert.Equal(t, []string{"wave"}, st.Emotes)
	assert.Equal(t, EndLoop, st.End)
	assert.NotContains(t, surface.activations(), "blink")
}

func TestSequencerStopAtEnd(t *testing.T) {
	s, surface := newTestSequencer(t)
	require.NoError(t, s.Start("blink"))
	surface.reset()

	require.NoError(t, s.QueueNext(Play(EndStopAtEnd, true, "wave", "wave")))
	assert.Equal(t, []string{"deactivate:blink", "activate:wave"}, surface.ops)
	assert.Equal(t, 0, s.State().Index)

	surface.complete()
	assert.Equal(t, []string{"deactivate:blink", "activate:wave", "deactivate:wave", "activate:wave", "freeze:wave"}, surface.ops)

	st := s.State()
	assert.Equal(t, 1, st.Index)
	assert.Equal(t, StatusFreezing, st.Status)
	assert.True(t, st.Frozen())
	assert.Equal(t, EndBehavior(""), st.End)

	surface.complete()
	assert.Equal(t, StatusFrozen, s.State().Status)
	assert.Equal(t, "wave", surface.active)
	assert.Nil(t, surface.onComplete)
	assert.Len(t, surface.activations(), 2)
}

func TestSequencerQueueWhileFrozenAppliesAtOnce(t *testing.T) {
	s, surface := newTestSequencer(t)
	require.NoError(t, s.QueueNext(Play(EndStopAtEnd, true, "wave")))
	surface.complete()
	require.Equal(t, StatusFrozen, s.State().Status)
	surface.reset()

	require.NoError(t, s.QueueNext(Play(EndLoop, false, "blink")))
	assert.Equal(t, []string{"deactivate:wave", "activate:blink"}, surface.ops)
	assert.Equal(t, StatusPlaying, s.State().Status)
}

func TestSequencerQueueWhileFreezingWaitsForEnd(t *testing.T) {
	s, surface := newTestSequencer(t)
	require.NoError(t, s.QueueNext(Play(EndStopAtEnd, true, "wave")))
	require.Equal(t, StatusFreezing, s.State().Status)
	surface.reset()

	require.NoError(t, s.QueueNext(Play(EndLoop, false, "blink")))
	assert.Empty(t, surface.ops)

	surface.complete()
	assert.Equal(t, []string{"deactivate:wave", "activate:blink"}, surface.ops)
	assert.Equal(t, StatusPlaying, s.State().Status)
}

func TestSequencerImmediateIsDeferred(t *testing.T) {
	sched := &manualScheduler{}
	s, surface := newTestSequencer(t, WithScheduler(sched))

	require.NoError(t, s.Start("blink"))
	assert.Empty(t, surface.ops)
	sched.flush()
	assert.Equal(t, []string{"activate:blink"}, surface.ops)
	surface.reset()

	require.NoError(t, s.QueueNext(Play(EndLoop, true, "wave")))
	assert.Equal(t, []string{"deactivate:blink"}, surface.ops)
	assert.Equal(t, "wave", s.State().Current)

	sched.flush()
	assert.Equal(t, []string{"deactivate:blink", "activate:wave"}, surface.ops)
}

func TestSequencerBackToBackInterruptsStartOnlyTheLast(t *testing.T) {
	sched := &manualScheduler{}
	s, surface := newTestSequencer(t, WithScheduler(sched))

	require.NoError(t, s.QueueNext(Play(EndLoop, true, "wave")))
	require.NoError(t, s.QueueNext(Play(EndLoop, true, "blink")))
	sched.flush()

	assert.Equal(t, []string{"activate:blink"}, surface.ops)
}

func TestSequencerDropsStaleCompletion(t *testing.T) {
	logger, hook := test.NewNullLogger()
	s, surface := newTestSequencer(t, WithLogger(logger))
	require.NoError(t, s.Start("blink"))

	stale := surface.onComplete
	require.NoError(t, s.QueueNext(Play(EndLoop, true, "wave")))
	surface.reset()

	stale("blink")
	assert.Empty(t, surface.ops)
	assert.Equal(t, "wave", s.State().Current)
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
}

func TestSequencerActivationFailureKeepsState(t *testing.T) {
	s, surface := newTestSequencer(t)
	surface.failOn = "wave"
	require.NoError(t, s.Start("blink"))

	require.NoError(t, s.QueueNext(Play(EndLoop, true, "wave")))
	st := s.State()
	assert.Equal(t, "wave", st.Current)
	assert.Equal(t, []string{"blink"}, surface.activations())

	surface.failOn = ""
	require.NoError(t, s.QueueNext(Play(EndLoop, false, "blink")))
	assert.Equal(t, "blink", surface.active)
}

func TestOnSequenceEndFiresOnce(t *testing.T) {
	s, surface := newTestSequencer(t)
	require.NoError(t, s.QueueNext(Play(EndLoop, true, "wave", "blink")))

	fired := 0
	s.OnSequenceEnd(func() { fired++ })
	assert.True(t, s.State().CallbackPending)

	surface.complete() // wave
	assert.Equal(t, 0, fired)
	surface.complete() // blink, last index
	assert.Equal(t, 1, fired)

	for i := 0; i < 4; i++ {
		surface.complete()
	}
	assert.Equal(t, 1, fired)
	assert.False(t, s.State().CallbackPending)
}

func TestOnSequenceEndSupersededByImmediateQueue(t *testing.T) {
	s, surface := newTestSequencer(t)
	require.NoError(t, s.Start("blink"))

	fired := false
	s.OnSequenceEnd(func() { fired = true })
	require.NoError(t, s.QueueNext(Play(EndLoop, true, "wave")))

	for i := 0; i < 5; i++ {
		surface.complete()
	}
	assert.False(t, fired)
	assert.False(t, s.State().CallbackPending)
}

func TestOnSequenceEndIdentityGuard(t *testing.T) {
	s, surface := newTestSequencer(t)
	require.NoError(t, s.Start("blink"))

	require.NoError(t, s.QueueNext(Play(EndLoop, false, "wave")))
	fired := 0
	s.OnSequenceEnd(func() { fired++ })

	// Same emotes, new request: the callback belonged to the replaced one.
	require.NoError(t, s.QueueNext(Play(EndLoop, false, "wave")))

	for i := 0; i < 4; i++ {
		surface.complete()
	}
	assert.Equal(t, 0, fired)
}

func TestOnSequenceEndTracksQueuedSequence(t *testing.T) {
	s, surface := newTestSequencer(t)
	require.NoError(t, s.Start("blink"))

	require.NoError(t, s.QueueNext(Play(EndReturnToIdle, false, "wave")))
	fired := 0
	s.OnSequenceEnd(func() { fired++ })

	surface.complete() // blink ends, wave takes over
	assert.Equal(t, 0, fired)
	surface.complete() // wave ends, back to blink
	assert.Equal(t, 1, fired)
	assert.Equal(t, []string{"blink"}, s.State().Emotes)
}

func TestOnSequenceEndFiresWhenFrozenClipEnds(t *testing.T) {
	s, surface := newTestSequencer(t)
	require.NoError(t, s.QueueNext(Play(EndStopAtEnd, true, "blink", "wave")))

	fired := 0
	s.OnSequenceEnd(func() { fired++ })

	surface.complete() // blink
	assert.Equal(t, 0, fired)
	surface.complete() // frozen wave reaches its end
	assert.Equal(t, 1, fired)
	assert.Equal(t, StatusFrozen, s.State().Status)
}

func TestOnSequenceEndBeforeAnythingPlays(t *testing.T) {
	s, surface := newTestSequencer(t)

	fired := 0
	s.OnSequenceEnd(func() { fired++ })
	require.NoError(t, s.QueueNext(Play(EndLoop, true, "wave")))

	surface.complete()
	assert.Equal(t, 1, fired)
}

func TestOnSequenceEndLastRegistrationWins(t *testing.T) {
	s, surface := newTestSequencer(t)
	require.NoError(t, s.Start("wave"))

	var calls []string
	s.OnSequenceEnd(func() { calls = append(calls, "first") })
	s.OnSequenceEnd(func() { calls = append(calls, "second") })

	surface.complete()
	assert.Equal(t, []string{"second"}, calls)

	s.OnSequenceEnd(func() { calls = append(calls, "third") })
	s.OnSequenceEnd(nil)
	surface.complete()
	assert.Equal(t, []string{"second"}, calls)
}

func TestOnSequenceEndCallbackMayQueue(t *testing.T) {
	s, surface := newTestSequencer(t)
	require.NoError(t, s.Start("wave"))

	s.OnSequenceEnd(func() {
		require.NoError(t, s.QueueNext(Play(EndLoop, true, "blink")))
	})
	surface.complete()

	assert.Equal(t, "blink", s.State().Current)
	assert.Equal(t, "blink", surface.active)
}
