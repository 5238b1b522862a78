package components

import "github.com/fabricsim/fabricsim/engine"

// Resource is a permit-counted semaphore for serializing access to a
// shared facility (a load/store unit, a single-ported memory bank) that
// isn't itself a port-connected component. It is built the same way as
// the engine's event primitives: a FIFO of waiters, no OS-level locking.
type Resource struct {
	available int
	waiters   []*engine.Task
}

// NewResource creates a resource with the given number of permits, which
// must be at least 1.
func NewResource(permits int) (*Resource, error) {
	if permits < 1 {
		return nil, engine.NewError(engine.ClassConfiguration, "resource: permits must be >= 1, got %d", permits)
	}
	return &Resource{available: permits}, nil
}

// Acquire parks the calling task until a permit is available, then takes
// one.
func (r *Resource) Acquire(t *engine.Task) {
	for r.available == 0 {
		r.waiters = append(r.waiters, t)
		t.Yield()
	}
	r.available--
}

// Release returns a permit, waking the longest-waiting parked task if
// any.
func (r *Resource) Release() {
	r.available++
	if len(r.waiters) == 0 {
		return
	}
	w := r.waiters[0]
	r.waiters = r.waiters[1:]
	w.Wake()
}
