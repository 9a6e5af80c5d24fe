package emote

import (
	"errors"
	"fmt"
)

type fakeSurface struct {
	ops        []string
	active     string
	frozen     string
	onComplete func(name string)
	failOn     string
}

func (f *fakeSurface) Activate(def EmoteDefinition) error {
	if def.Name == f.failOn {
		return errors.New("sprite missing")
	}
	f.ops = append(f.ops, "activate:"+def.Name)
	f.active = def.Name
	f.frozen = ""
	return nil
}

func (f *fakeSurface) Deactivate(name string) {
	f.ops = append(f.ops, "deactivate:"+name)
	if f.active == name {
		f.active = ""
	}
}

func (f *fakeSurface) Freeze(name string) {
	f.ops = append(f.ops, "freeze:"+name)
	f.frozen = name
}

func (f *fakeSurface) OnComplete(fn func(name string)) {
	f.onComplete = fn
}

// complete plays the active clip to its end.
func (f *fakeSurface) complete() {
	if f.onComplete == nil {
		panic(fmt.Sprintf("no completion subscriber for '%s'", f.active))
	}
	f.onComplete(f.active)
}

func (f *fakeSurface) reset() {
	f.ops = nil
}

func (f *fakeSurface) activations() []string {
	var out []string
	for _, op := range f.ops {
		if len(op) > 9 && op[:9] == "activate:" {
			out = append(out, op[9:])
		}
	}
	return out
}

type manualScheduler struct {
	pending []func()
}

func (m *manualScheduler) Defer(fn func()) {
	m.pending = append(m.pending, fn)
}

func (m *manualScheduler) flush() {
	pending := m.pending
	m.pending = nil
	for _, fn := range pending {
		fn()
	}
}
