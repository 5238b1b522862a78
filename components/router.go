package components

import (
	"fmt"

	"github.com/fabricsim/fabricsim/engine"
)

// RouteFunc decides, for a given value, which of a router's N output
// ports it should be sent to.
type RouteFunc[T any] func(value T) (destination int, err error)

// Router is a 1-to-N fan-out: a single rx port feeds a route function
// that picks one of N tx ports for each value. Unlike Arbiter, there is
// no contention to resolve -- the router simply blocks until the chosen
// output is ready to accept the value, same as any other Put.
type Router[T engine.SimObject] struct {
	entity *engine.Entity
	rx     *engine.InPort[T]
	tx     []*engine.OutPort[T]
	route  RouteFunc[T]
}

// NewRouter creates and registers a router named name under parent with
// numTx output ports, using route to pick a destination for each value.
func NewRouter[T engine.SimObject](eng *engine.Engine, parent *engine.Entity, name string, numTx int, route RouteFunc[T]) (*Router[T], error) {
	if numTx <= 0 {
		return nil, engine.NewError(engine.ClassConfiguration, "router %s: numTx must be > 0", name)
	}
	entity := engine.NewEntity(parent, name)
	tx := make([]*engine.OutPort[T], numTx)
	for i := range tx {
		tx[i] = engine.NewOutPort[T](entity, fmt.Sprintf("tx%d", i))
	}
	r := &Router[T]{
		entity: entity,
		rx:     engine.NewInPort[T](entity, "rx"),
		tx:     tx,
		route:  route,
	}
	eng.Register(r)
	return r, nil
}

// PortRx returns the router's backing rx state for an upstream OutPort to
// connect to.
func (r *Router[T]) PortRx() *engine.PortState[T] { return r.rx.State() }

// ConnectTxI wires tx output i to a downstream input state.
func (r *Router[T]) ConnectTxI(i int, state *engine.PortState[T]) error {
	return r.tx[i].Connect(state)
}

// Run is the router's single task: receive, decide, forward.
func (r *Router[T]) Run(t *engine.Task) error {
	t.SetBackground()
	for {
		value := r.rx.Get(t)
		dest, err := r.route(value)
		if err != nil {
			return err
		}
		if dest < 0 || dest >= len(r.tx) {
			return engine.NewError(engine.ClassProtocol, "%s: route returned out-of-range destination %d", r.entity.Path(), dest)
		}
		if err := r.tx[dest].Put(t, value); err != nil {
			return err
		}
	}
}
