package worker

import (
	"sync"

	"github.com/xraph/jobqueue/job"
)

// Registry holds workers by name in registration order. It is safe for
// concurrent use.
type Registry struct {
	mu      sync.RWMutex
	order   []string
	workers map[string]*Worker
}

// NewRegistry creates an empty worker registry.
func NewRegistry() *Registry {
	return &Registry{workers: make(map[string]*Worker)}
}

// Register adds w. A worker registered under an existing name replaces
// the previous one in its original position, and the previous worker is
// returned. Jobs the previous worker is running keep running on it.
func (r *Registry) Register(w *Worker) *Worker {
	r.mu.Lock()
	defer r.mu.Unlock()

	prev, ok := r.workers[w.Name()]
	if !ok {
		r.order = append(r.order, w.Name())
	}
	r.workers[w.Name()] = w
	return prev
}

// Get returns the worker registered under name.
func (r *Registry) Get(name string) (*Worker, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	w, ok := r.workers[name]
	return w, ok
}

// All returns the workers in registration order.
func (r *Registry) All() []*Worker {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Worker, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.workers[name])
	}
	return out
}

// Names returns worker names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.order...)
}

// Len returns the number of registered workers.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// Acquire offers j to each worker in registration order and returns the
// first one that reserved a slot for it.
func (r *Registry) Acquire(j *job.Job) (*Worker, bool) {
	for _, w := range r.All() {
		if w.TryAcquire(j) {
			return w, true
		}
	}
	return nil, false
}
