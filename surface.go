package emote

// Surface is the visual collaborator of a Sequencer. Implementations draw
// the active clip however they like (style classes, terminal cells,
// framebuffer frames).
type Surface interface {
	// Activate starts playing the clip from its first frame.
	Activate(def EmoteDefinition) error
	// Deactivate removes the clip from view.
	Deactivate(name string)
	// Freeze makes the active clip hold its final frame once it reaches
	// the end.
	Freeze(name string)
	// OnComplete sets the single subscriber notified when the active clip
	// reaches its end. nil detaches the subscriber.
	OnComplete(fn func(name string))
}

// Scheduler runs deferred work on a later tick of the owner's loop.
type Scheduler interface {
	Defer(fn func())
}

// SchedulerFunc adapts a function to Scheduler.
type SchedulerFunc func(fn func())

// Defer implements Scheduler.
func (f SchedulerFunc) Defer(fn func()) {
	f(fn)
}

// Immediate runs deferred work inline. It suits single threaded callers
// whose surface restarts clips on its own.
var Immediate Scheduler = SchedulerFunc(func(fn func()) { fn() })
