package engine

// ClockTick identifies a point in simulated time as a (tick, phase) pair.
// Phase orders multiple events within the same tick, e.g. combinational
// settle before a synchronous register update.
type ClockTick struct {
	Tick  uint64
	Phase uint32
}

// Less reports whether t sorts strictly before other.
func (t ClockTick) Less(other ClockTick) bool {
	if t.Tick != other.Tick {
		return t.Tick < other.Tick
	}
	return t.Phase < other.Phase
}

// Resolver performs a per-tick two-phase commit: everything scheduled to
// become visible at a tick is computed before the clock actually advances
// `now`, so no task can observe a half-applied register write.
type Resolver interface {
	Resolve()
}

type waitEntry struct {
	at    ClockTick
	tasks []*Task
}

// Clock is the shared virtual time source every task, port, and component
// waits against. It never measures wall-clock time; advancing only ever
// happens by jumping straight to the next tick something is waiting for.
type Clock struct {
	freqMHz   float64
	now       ClockTick
	waiting   []*waitEntry
	resolvers []Resolver
}

// NewClock creates a clock running at freqMHz (used only to convert ticks
// to a nanosecond timestamp for reporting, never to pace the simulation).
func NewClock(freqMHz float64) *Clock {
	return &Clock{freqMHz: freqMHz}
}

// TickNow returns the current (tick, phase).
func (c *Clock) TickNow() ClockTick { return c.now }

// TimeNowNs converts the current tick to nanoseconds at the clock's
// frequency, for reporting only.
func (c *Clock) TimeNowNs() float64 {
	if c.freqMHz <= 0 {
		return 0
	}
	return float64(c.now.Tick) * 1000.0 / c.freqMHz
}

// RegisterResolver adds r to the set resolved before every tick advance.
func (c *Clock) RegisterResolver(r Resolver) {
	c.resolvers = append(c.resolvers, r)
}

// HasPendingWaits reports whether any task is waiting on a future tick.
func (c *Clock) HasPendingWaits() bool { return len(c.waiting) > 0 }

func (c *Clock) scheduleWake(at ClockTick, t *Task) {
	for i, e := range c.waiting {
		if e.at == at {
			e.tasks = append(e.tasks, t)
			return
		}
		if at.Less(e.at) {
			entry := &waitEntry{at: at, tasks: []*Task{t}}
			c.waiting = append(c.waiting, nil)
			copy(c.waiting[i+1:], c.waiting[i:])
			c.waiting[i] = entry
			return
		}
	}
	c.waiting = append(c.waiting, &waitEntry{at: at, tasks: []*Task{t}})
}

// WaitTicks parks the calling task until ticks ticks from now, phase 0. A
// request for 0 ticks is a no-op.
func (c *Clock) WaitTicks(t *Task, ticks uint64) {
	if ticks == 0 {
		return
	}
	c.scheduleWake(ClockTick{Tick: c.now.Tick + ticks, Phase: 0}, t)
	t.Yield()
}

// WaitTicksOrExit parks the calling task the same way WaitTicks does, but
// marks it background: a progress reporter or other task whose only
// pendency is this wait must not keep an otherwise-finished simulation
// alive. A request for 0 ticks is a no-op.
func (c *Clock) WaitTicksOrExit(t *Task, ticks uint64) {
	if ticks == 0 {
		return
	}
	c.scheduleWake(ClockTick{Tick: c.now.Tick + ticks, Phase: 0}, t)
	t.YieldCanExit()
}

// WaitPhase parks the calling task until the given phase within the
// current tick. phase must be strictly after the current phase.
func (c *Clock) WaitPhase(t *Task, phase uint32) error {
	if phase <= c.now.Phase {
		return NewError(ClassTemporal, "wait_phase: phase %d is not after current phase %d", phase, c.now.Phase)
	}
	c.scheduleWake(ClockTick{Tick: c.now.Tick, Phase: phase}, t)
	t.Yield()
	return nil
}

// WaitUntil parks the calling task until the clock reaches at exactly.
// at must not be before the current tick/phase.
func (c *Clock) WaitUntil(t *Task, at ClockTick) error {
	if at.Less(c.now) {
		return NewError(ClassTemporal, "wait_until: target %+v is before now %+v", at, c.now)
	}
	c.scheduleWake(at, t)
	t.Yield()
	return nil
}

// AdvanceNext resolves and jumps the clock to the earliest pending wait,
// waking every task parked on it. It reports false when nothing is
// waiting, which the engine's run loop uses to detect quiescence.
func (c *Clock) AdvanceNext() (bool, error) {
	if len(c.waiting) == 0 {
		return false, nil
	}
	entry := c.waiting[0]
	c.waiting = c.waiting[1:]
	if entry.at.Less(c.now) {
		return false, NewError(ClassTemporal, "clock cannot move backward: now=%+v target=%+v", c.now, entry.at)
	}
	for _, r := range c.resolvers {
		r.Resolve()
	}
	c.now = entry.at
	for _, t := range entry.tasks {
		t.wake()
	}
	return true, nil
}
