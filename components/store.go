// Package components implements the reusable building blocks models are
// assembled from: a bounded FIFO (Store), a fixed-latency pipe (Delay), an
// N-to-1 merge (Arbiter) with pluggable policies, a 1-to-N fan-out
// (Router), a credit-based rate limiter (Limiter), and a permit semaphore
// (Resource).
package components

import (
	"fmt"

	"github.com/fabricsim/fabricsim/engine"
)

// Store is a bounded FIFO holding up to capacity values of type T. Its rx
// port accepts values while there is room; its tx port offers values as
// soon as something is waiting to receive. A LevelChange event fires on
// every push and pop, carrying the store's new length.
type Store[T engine.SimObject] struct {
	entity   *engine.Entity
	spawner  engine.Spawner
	capacity int

	data            []T
	panicOnOverflow bool
	levelChange     engine.Repeated[int]

	tx *engine.OutPort[T]
	rx *engine.InPort[T]
}

// NewStore creates and registers a store named name under parent with the
// given capacity, which must be greater than zero.
func NewStore[T engine.SimObject](eng *engine.Engine, parent *engine.Entity, name string, capacity int) (*Store[T], error) {
	if capacity <= 0 {
		return nil, engine.NewError(engine.ClassConfiguration, "store %s: capacity must be > 0", name)
	}
	entity := engine.NewEntity(parent, name)
	s := &Store[T]{
		entity:   entity,
		spawner:  eng.Spawner(),
		capacity: capacity,
		tx:       engine.NewOutPort[T](entity, "tx"),
		rx:       engine.NewInPort[T](entity, "rx"),
	}
	eng.Register(s)
	return s, nil
}

// ConnectTx wires this store's tx output to a downstream input state.
func (s *Store[T]) ConnectTx(state *engine.PortState[T]) error {
	return s.tx.Connect(state)
}

// PortRx returns this store's backing rx state for an upstream OutPort to
// connect to.
func (s *Store[T]) PortRx() *engine.PortState[T] { return s.rx.State() }

// FillLevel returns the number of values currently buffered.
func (s *Store[T]) FillLevel() int { return len(s.data) }

// SetPanicOnOverflow switches the store from back-pressuring producers to
// panicking when capacity would be exceeded -- for components whose
// upstream already guarantees room is always available.
func (s *Store[T]) SetPanicOnOverflow() { s.panicOnOverflow = true }

// LevelChangeEvent returns the event that fires with the new fill level
// on every push and pop.
func (s *Store[T]) LevelChangeEvent() *engine.Repeated[int] { return &s.levelChange }

func (s *Store[T]) pushValue(value T) {
	if s.panicOnOverflow {
		if len(s.data) >= s.capacity {
			panic(fmt.Sprintf("overflow in %s", s.entity.Path()))
		}
	} else if len(s.data) >= s.capacity {
		panic(fmt.Sprintf("pushValue called on full store %s without room", s.entity.Path()))
	}
	s.data = append(s.data, value)
	s.levelChange.Notify(len(s.data))
}

func (s *Store[T]) popValue() T {
	value := s.data[0]
	s.data = s.data[1:]
	s.levelChange.Notify(len(s.data))
	return value
}

// Run starts the store's independent rx and tx tasks.
func (s *Store[T]) Run(t *engine.Task) error {
	s.spawner.Spawn(s.entity.Path()+".rx", func(task *engine.Task) error {
		return s.runRx(task)
	})
	s.spawner.Spawn(s.entity.Path()+".tx", func(task *engine.Task) error {
		return s.runTx(task)
	})
	return nil
}

func (s *Store[T]) runRx(t *engine.Task) error {
	t.SetBackground()
	for {
		if len(s.data) < s.capacity || s.panicOnOverflow {
			value := s.rx.Get(t)
			s.pushValue(value)
		} else {
			s.levelChange.Listen(t)
		}
	}
}

func (s *Store[T]) runTx(t *engine.Task) error {
	t.SetBackground()
	for {
		if len(s.data) > 0 {
			if err := s.tx.TryPut(t); err != nil {
				return err
			}
			value := s.popValue()
			if err := s.tx.Put(t, value); err != nil {
				return err
			}
		} else {
			s.levelChange.Listen(t)
		}
	}
}
