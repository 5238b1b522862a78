package components

import (
	"math"

	"github.com/fabricsim/fabricsim/engine"
)

// LimiterRate is a shared token bucket: BitsPerTick replenish every tick,
// and the running credit balance is held here rather than on any one
// Limiter. Every Limiter constructed against the same *LimiterRate draws
// from and pays into this one pool, so several links can be capped to one
// aggregate rate by sharing a single LimiterRate between their Limiters --
// exactly the pattern the fabric node uses for its ingress/egress pair.
type LimiterRate struct {
	BitsPerTick float64

	credit   float64
	lastTick uint64
}

// NewLimiterRate creates a shared rate of bitsPerTick bits replenished
// every tick.
func NewLimiterRate(bitsPerTick float64) *LimiterRate {
	return &LimiterRate{BitsPerTick: bitsPerTick}
}

// charge accrues credit up to the clock's current tick, then deducts
// cost once the balance covers it, parking the caller a tick at a time
// otherwise. Re-checking the balance from scratch after every wait
// (rather than crediting a precomputed amount) is what keeps
// replenishment correct when several limiters share one rate: whatever
// another limiter consumed or contributed while this one was parked is
// already reflected in r.credit/r.lastTick by the time it wakes.
func (r *LimiterRate) charge(clock *engine.Clock, t *engine.Task, cost float64) {
	for {
		now := clock.TickNow().Tick
		if now > r.lastTick {
			r.credit += float64(now-r.lastTick) * r.BitsPerTick
			r.lastTick = now
		}
		if r.credit >= cost {
			r.credit -= cost
			return
		}
		deficit := cost - r.credit
		ticksNeeded := uint64(math.Ceil(deficit / r.BitsPerTick))
		clock.WaitTicks(t, ticksNeeded)
	}
}

// Limiter passes values from rx to tx no faster than its shared rate
// allows, charging each value's BitSize() against the rate's credit pool.
type Limiter[T engine.SimObject] struct {
	entity *engine.Entity
	clock  *engine.Clock
	rate   *LimiterRate

	rx *engine.InPort[T]
	tx *engine.OutPort[T]
}

// NewLimiter creates and registers a limiter named name under parent,
// drawing credit from the shared rate.
func NewLimiter[T engine.SimObject](eng *engine.Engine, clock *engine.Clock, parent *engine.Entity, name string, rate *LimiterRate) (*Limiter[T], error) {
	if rate.BitsPerTick <= 0 {
		return nil, engine.NewError(engine.ClassConfiguration, "limiter %s: bits per tick must be > 0", name)
	}
	entity := engine.NewEntity(parent, name)
	l := &Limiter[T]{
		entity: entity,
		clock:  clock,
		rate:   rate,
		rx:     engine.NewInPort[T](entity, "rx"),
		tx:     engine.NewOutPort[T](entity, "tx"),
	}
	eng.Register(l)
	return l, nil
}

// ConnectTx wires this limiter's tx output to a downstream input state.
func (l *Limiter[T]) ConnectTx(state *engine.PortState[T]) error {
	return l.tx.Connect(state)
}

// PortRx returns this limiter's backing rx state for an upstream OutPort
// to connect to.
func (l *Limiter[T]) PortRx() *engine.PortState[T] { return l.rx.State() }

// Run is the limiter's single task: receive, charge the shared rate
// (waiting whole ticks if its credit balance is short), forward.
func (l *Limiter[T]) Run(t *engine.Task) error {
	t.SetBackground()
	for {
		value := l.rx.Get(t)
		l.rate.charge(l.clock, t, float64(value.BitSize()))
		if err := l.tx.Put(t, value); err != nil {
			return err
		}
	}
}
