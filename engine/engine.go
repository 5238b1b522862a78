package engine

// Runnable is implemented by every component and model that needs its own
// background task(s) started when the engine boots, mirroring the
// original's `Runnable::run` contract.
type Runnable interface {
	Run(t *Task) error
}

// SimObject is the contract a value traveling through ports must satisfy
// so trackers and trace sinks can identify and size it without knowing
// its concrete payload type.
type SimObject interface {
	ID() uint64
	Tag() string
	BitSize() uint64
}

// Routable is satisfied by payloads that carry their own source and
// destination so a Router or FabricNode can make a forwarding decision
// without being specialized to one payload type.
type Routable interface {
	Destination() int
	Source() int
}

// Engine owns the clock and executor and drives both together: every
// cycle it resumes all currently-runnable tasks, then jumps the clock to
// the next tick anything is waiting for. It finishes cleanly once no
// non-background task is blocked, and reports a deadlock when a
// non-background task is blocked with nothing scheduled. A run in which
// only background tasks remain parked ends cleanly even if values are
// still in flight, so callers that need to know everything arrived (the
// traffic driver, for instance) check that themselves after Run returns.
type Engine struct {
	root      *Entity
	clock     *Clock
	executor  *Executor
	runnables []Runnable
	tracker   Tracker
}

// NewEngine creates an engine rooted at root, driven by clock. Tracking is
// a no-op until SetTracker installs a real one.
func NewEngine(root *Entity, clock *Clock) *Engine {
	return &Engine{root: root, clock: clock, executor: NewExecutor(), tracker: noopTracker{}}
}

// SetTracker installs the Tracker the engine emits entity/connection/
// shutdown events to for the remainder of the run. Passing nil restores
// the no-op default.
func (e *Engine) SetTracker(t Tracker) {
	if t == nil {
		t = noopTracker{}
	}
	e.tracker = t
}

// Tracker returns the engine's currently installed Tracker, for
// components that want to emit their own Enter/Exit/Value events against
// the same sink the engine itself uses.
func (e *Engine) Tracker() Tracker { return e.tracker }

// Root returns the engine's entity tree root.
func (e *Engine) Root() *Entity { return e.root }

// Clock returns the engine's shared clock.
func (e *Engine) Clock() *Clock { return e.clock }

// Spawner returns a handle for starting ad-hoc tasks outside of Register,
// e.g. a traffic generator's per-source tasks.
func (e *Engine) Spawner() Spawner { return e.executor.Spawner() }

// Register queues r's Run method to be started as a task when the engine
// boots via Run.
func (e *Engine) Register(r Runnable) {
	e.runnables = append(e.runnables, r)
}

// announceTree reports every entity in the tree rooted at e to the
// tracker before the run starts, so a tracker can resolve ids to names
// for the whole simulation up front instead of discovering them as
// events reference them.
func (e *Engine) announceTree(root *Entity) {
	e.tracker.AddEntity(root.ID(), root.Path(), root.Alias())
	for _, child := range root.Children() {
		e.announceTree(child)
	}
}

func (e *Engine) start() {
	for _, r := range e.runnables {
		rr := r
		e.executor.spawn("runnable", func(t *Task) error { return rr.Run(t) })
	}
	e.runnables = nil
}

// Run starts every registered Runnable and drives the clock/executor pair
// to quiescence. maxTicks, if non-zero, is a hard watchdog: Run returns a
// Watchdog-class error if the clock reaches it before the model goes
// quiet on its own.
//
// Once the ready queue is empty, a simulation with no non-background
// task still blocked ends successfully immediately -- it does not wait
// for any scheduled background wake (e.g. a progress reporter) to fire
// first. Otherwise the clock advances to its earliest pending wake; if
// nothing is scheduled at all while a non-background task remains
// blocked, that is a deadlock.
func (e *Engine) Run(maxTicks uint64) error {
	e.announceTree(e.root)
	defer e.tracker.Shutdown()
	e.start()
	for {
		if err := e.executor.RunReady(); err != nil {
			return err
		}
		if e.executor.BlockedNonExit() == 0 {
			return nil
		}
		if maxTicks != 0 && e.clock.TickNow().Tick >= maxTicks {
			return NewError(ClassWatchdog, "reached tick budget %d", maxTicks)
		}
		if !e.clock.HasPendingWaits() {
			return NewError(ClassDeadlock, "no runnable task and no scheduled wake, with a non-background task still blocked")
		}
		advanced, err := e.clock.AdvanceNext()
		if err != nil {
			return err
		}
		if !advanced {
			return nil
		}
	}
}
