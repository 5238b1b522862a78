package engine

import "fmt"

// PortState is the single-slot rendezvous point shared by one producer and
// one consumer. A Put deposits a value and blocks the producer until the
// consumer has taken it; a Get blocks the consumer until a value has been
// deposited. There is no internal buffering beyond the one slot -- any
// queuing is the job of a component like Store sitting between two ports.
type PortState[T any] struct {
	name         string
	value        T
	hasValue     bool
	connected    bool
	putWaiter    *Task
	getWaiter    *Task
	tryPutWaiter *Task
}

// Put deposits value and parks the calling task until a consumer takes it.
func (p *PortState[T]) Put(t *Task, value T) {
	p.value = value
	p.hasValue = true
	if p.getWaiter != nil {
		w := p.getWaiter
		p.getWaiter = nil
		w.wake()
	}
	p.putWaiter = t
	t.Yield()
}

// TryPut parks the calling task until a consumer is actively waiting to
// receive, without depositing a value. It lets a producer hold a value in
// its own buffer until it knows the handoff will succeed immediately,
// instead of occupying the slot speculatively.
func (p *PortState[T]) TryPut(t *Task) {
	for p.getWaiter == nil {
		p.tryPutWaiter = t
		t.Yield()
	}
	p.tryPutWaiter = nil
}

// GetHandle is the second half of a split-phase get: the commitment to
// receive has been made (StartGet returned), but the value has not yet
// been taken out of the slot.
type GetHandle[T any] struct {
	port *PortState[T]
}

// StartGet parks the calling task until a value is available, then
// returns a handle that can be finished later without re-blocking. This
// lets a caller sample other state (a monitor, a level) at the instant a
// value becomes ready, before actually consuming it.
func (p *PortState[T]) StartGet(t *Task) *GetHandle[T] {
	for !p.hasValue {
		if p.tryPutWaiter != nil {
			w := p.tryPutWaiter
			p.tryPutWaiter = nil
			w.wake()
		}
		p.getWaiter = t
		t.Yield()
	}
	return &GetHandle[T]{port: p}
}

// Finish takes the value out of the slot and wakes the parked producer.
func (h *GetHandle[T]) Finish() T {
	p := h.port
	v := p.value
	var zero T
	p.value = zero
	p.hasValue = false
	if p.putWaiter != nil {
		w := p.putWaiter
		p.putWaiter = nil
		w.wake()
	}
	return v
}

// Get takes the next deposited value, parking the calling task until one
// is available.
func (p *PortState[T]) Get(t *Task) T {
	return p.StartGet(t).Finish()
}

// OutPort is the producer-facing handle on a connection. It must be
// connected to some consumer's PortState before Put/TryPut may be used.
type OutPort[T any] struct {
	entity *Entity
	name   string
	state  *PortState[T]
}

// NewOutPort creates an unconnected output port named name under parent.
func NewOutPort[T any](parent *Entity, name string) *OutPort[T] {
	return &OutPort[T]{entity: parent, name: name}
}

// Connect attaches state as this port's destination. Returns a
// Connection-class error if already connected.
func (p *OutPort[T]) Connect(state *PortState[T]) error {
	if p.state != nil {
		return NewError(ClassConnection, "%s already connected", p.qualifiedName())
	}
	if state.connected {
		return NewError(ClassConnection, "%s already connected", state.name)
	}
	state.connected = true
	p.state = state
	return nil
}

// Put deposits value on the connected port, parking the caller until a
// consumer takes it.
func (p *OutPort[T]) Put(t *Task, value T) error {
	if p.state == nil {
		return NewError(ClassConnection, "%s not connected", p.qualifiedName())
	}
	p.state.Put(t, value)
	return nil
}

// TryPut parks the caller until a consumer is actively waiting, without
// depositing a value yet.
func (p *OutPort[T]) TryPut(t *Task) error {
	if p.state == nil {
		return NewError(ClassConnection, "%s not connected", p.qualifiedName())
	}
	p.state.TryPut(t)
	return nil
}

// Connected reports whether this port has been wired to a destination.
func (p *OutPort[T]) Connected() bool { return p.state != nil }

func (p *OutPort[T]) qualifiedName() string {
	if p.entity == nil {
		return p.name
	}
	return fmt.Sprintf("%s.%s", p.entity.Path(), p.name)
}

// InPort is the consumer-facing handle on a connection. It owns the
// shared PortState; producers connect their OutPort to InPort.State().
type InPort[T any] struct {
	entity *Entity
	name   string
	state  *PortState[T]
}

// NewInPort creates an input port named name under parent, with its own
// backing PortState ready for a producer to connect to.
func NewInPort[T any](parent *Entity, name string) *InPort[T] {
	qualified := name
	if parent != nil {
		qualified = fmt.Sprintf("%s.%s", parent.Path(), name)
	}
	return &InPort[T]{entity: parent, name: name, state: &PortState[T]{name: qualified}}
}

// State returns the backing PortState a producer should Connect to.
func (p *InPort[T]) State() *PortState[T] { return p.state }

// Get takes the next deposited value, parking the caller until available.
func (p *InPort[T]) Get(t *Task) T { return p.state.Get(t) }

// StartGet begins a split-phase get.
func (p *InPort[T]) StartGet(t *Task) *GetHandle[T] { return p.state.StartGet(t) }

// Connect wires out's producer side to in's backing state. Equivalent to
// out.Connect(in.State()) but reads naturally at call sites wiring two
// named component ports together.
func Connect[T any](out *OutPort[T], in *InPort[T]) error {
	return out.Connect(in.State())
}
