package components

import "github.com/fabricsim/fabricsim/engine"

type delayEntry[T any] struct {
	value T
	at    engine.ClockTick
}

// Delay adds a fixed number of ticks of latency between its rx and tx
// ports. Input and output are handled by independent tasks so a stalled
// output does not stop the input side from accepting a new value --
// instead back-pressure is asserted by blocking the rx loop once the
// pending queue has delayTicks entries in flight, unless
// SetErrorOnOutputStall has been set, in which case a stalled output
// surfaces as a Temporal-class error instead of silent back-pressure.
type Delay[T engine.SimObject] struct {
	entity  *engine.Entity
	spawner engine.Spawner
	clock   *engine.Clock

	delayTicks uint64

	rx              *engine.InPort[T]
	pending         []delayEntry[T]
	pendingChanged  engine.Repeated[struct{}]
	outputChanged   engine.Repeated[struct{}]
	tx              *engine.OutPort[T]
	errorOnOutputStall bool
}

// NewDelay creates and registers a delay named name under parent with the
// given fixed latency in ticks (which may be zero).
func NewDelay[T engine.SimObject](eng *engine.Engine, clock *engine.Clock, parent *engine.Entity, name string, delayTicks uint64) (*Delay[T], error) {
	entity := engine.NewEntity(parent, name)
	d := &Delay[T]{
		entity:     entity,
		spawner:    eng.Spawner(),
		clock:      clock,
		delayTicks: delayTicks,
		rx:         engine.NewInPort[T](entity, "rx"),
		tx:         engine.NewOutPort[T](entity, "tx"),
	}
	eng.Register(d)
	return d, nil
}

// ConnectTx wires this delay's tx output to a downstream input state.
func (d *Delay[T]) ConnectTx(state *engine.PortState[T]) error {
	return d.tx.Connect(state)
}

// PortRx returns this delay's backing rx state for an upstream OutPort to
// connect to.
func (d *Delay[T]) PortRx() *engine.PortState[T] { return d.rx.State() }

// SetErrorOnOutputStall makes the output side return a Temporal-class
// error instead of silently running behind schedule when its downstream
// cannot keep up with the configured latency.
func (d *Delay[T]) SetErrorOnOutputStall() { d.errorOnOutputStall = true }

// SetDelay changes the latency. Has no effect on entries already in
// flight.
func (d *Delay[T]) SetDelay(delayTicks uint64) { d.delayTicks = delayTicks }

// Run starts the delay's independent rx and tx tasks.
func (d *Delay[T]) Run(t *engine.Task) error {
	d.spawner.Spawn(d.entity.Path()+".tx", func(task *engine.Task) error {
		return d.runTx(task)
	})
	d.spawner.Spawn(d.entity.Path()+".rx", func(task *engine.Task) error {
		return d.runRx(task)
	})
	return nil
}

func (d *Delay[T]) runRx(t *engine.Task) error {
	t.SetBackground()
	for {
		value := d.rx.Get(t)

		tick := d.clock.TickNow()
		tick.Tick += d.delayTicks

		d.pending = append(d.pending, delayEntry[T]{value: value, at: tick})
		d.pendingChanged.Notify(struct{}{})

		if d.delayTicks > 0 && !d.errorOnOutputStall {
			for uint64(len(d.pending)) >= d.delayTicks {
				d.outputChanged.Listen(t)
			}
		}
	}
}

func (d *Delay[T]) runTx(t *engine.Task) error {
	t.SetBackground()
	for {
		if len(d.pending) == 0 {
			d.pendingChanged.Listen(t)
			continue
		}
		next := d.pending[0]
		d.pending = d.pending[1:]

		tickNow := d.clock.TickNow()
		switch {
		case tickNow.Less(next.at):
			d.clock.WaitTicks(t, next.at.Tick-tickNow.Tick)
		case next.at.Less(tickNow):
			if d.errorOnOutputStall {
				return engine.NewError(engine.ClassTemporal, "%s delay output stalled", d.entity.Path())
			}
		default:
			// exactly on time, nothing to do
		}

		if err := d.tx.Put(t, next.value); err != nil {
			return err
		}
		d.outputChanged.Notify(struct{}{})
	}
}
