// Package style keeps the style sheets registered by the emote widgets.
// Each sheet is registered once per process under a fixed id.
package style

import (
	"io"
	"sync"

	"github.com/sirupsen/logrus"
)

// Registry is a set of named style sheets with register-if-absent
// semantics.
type Registry struct {
	mu     sync.Mutex
	sheets map[string]string
	order  []string
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		sheets: make(map[string]string),
	}
}

var defaultRegistry = NewRegistry()

// Default returns the process wide registry.
func Default() *Registry {
	return defaultRegistry
}

// Register stores the sheet built by build under id unless id is already
// present. build is not called for a known id. It reports whether the
// sheet was added.
func (r *Registry) Register(id string, build func() string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sheets[id]; ok {
		return false
	}
	r.sheets[id] = build()
	r.order = append(r.order, id)
	logrus.WithField("id", id).Debug("Style registered")
	return true
}

// Has reports whether id is registered.
func (r *Registry) Has(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.sheets[id]
	return ok
}

// Get returns the sheet registered under id.
func (r *Registry) Get(id string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sheet, ok := r.sheets[id]
	return sheet, ok
}

// IDs returns registered ids in registration order.
func (r *Registry) IDs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.order...)
}

// WriteTo writes all sheets in registration order.
func (r *Registry) WriteTo(w io.Writer) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var total int64
	for _, id := range r.order {
		n, err := io.WriteString(w, r.sheets[id])
		total += int64(n)
		if err != nil {
			return total, err
		}
	}
	return total, nil
}
