package engine

import "sync/atomic"

var taskIDCounter uint64

// TaskWaker is anything that can be asked to become runnable again. Clock
// waits, port rendezvous, and Once/Repeated listeners all hand out wakers
// and the executor drives them one at a time.
type TaskWaker interface {
	wake()
}

// Task is one cooperatively scheduled unit of work. Unlike goroutines
// started with `go`, a Task never runs concurrently with another task's
// code: the executor resumes exactly one task and waits for it to either
// finish or park itself (via Yield) before doing anything else. This gives
// the same "atomic between await points" guarantee the original async
// model relied on, using a goroutine purely as call-stack storage.
type Task struct {
	id         uint64
	name       string
	resume     chan struct{}
	done       chan struct{}
	err        error
	executor   *Executor
	queued     bool
	background bool
}

func newTask(ex *Executor, name string) *Task {
	return &Task{
		id:       atomic.AddUint64(&taskIDCounter, 1),
		name:     name,
		resume:   make(chan struct{}),
		done:     make(chan struct{}),
		executor: ex,
	}
}

// ID returns the task's process-unique id.
func (t *Task) ID() uint64 { return t.id }

// Wake marks the task runnable again, for callers outside this package
// that maintain their own waiter lists (e.g. components.Resource) instead
// of using Once/Repeated.
func (t *Task) Wake() { t.wake() }

// wake marks the task runnable again by enqueuing it on the executor's
// ready queue. Safe to call multiple times; only queues once.
func (t *Task) wake() {
	if t.queued {
		return
	}
	t.queued = true
	delete(t.executor.blocked, t)
	t.executor.ready = append(t.executor.ready, t)
}

// Yield parks the running task until some waker calls wake() on it. It
// must only be called from within the task's own body goroutine. The
// park counts as one a live, non-background task must clear before the
// simulation is considered quiescent.
func (t *Task) Yield() {
	t.yield(false)
}

// YieldCanExit parks the running task the same way Yield does, but marks
// this particular pendency as background: its sole presence must not
// prevent the simulation from terminating successfully. Used by
// Clock.WaitTicksOrExit.
func (t *Task) YieldCanExit() {
	t.yield(true)
}

// SetBackground marks every future park of this task as can-exit,
// regardless of whether the individual wait is a plain Yield or a
// YieldCanExit. Components whose worker tasks only pump data between
// ports (a Store's rx/tx loop, a Router's forwarding loop, an Arbiter's
// per-input drain) call this once at startup: once upstream has nothing
// left to offer, such a task parks forever, and that idling must not by
// itself keep an otherwise-finished simulation alive. A traffic Sink
// calls it too, since an idle sink is quiescent rather than stuck. A
// traffic Source never calls it, so a source blocked on back-pressure with
// nothing scheduled still surfaces as a deadlock.
func (t *Task) SetBackground() { t.background = true }

func (t *Task) yield(canExit bool) {
	t.executor.blocked[t] = canExit || t.background
	t.executor.parked <- t
	<-t.resume
}

// Spawner lets components and fabric models start new tasks against the
// executor they were registered with, mirroring the original's
// engine.spawner() handle.
type Spawner struct {
	executor *Executor
}

// Spawn starts fn as a new task named name. fn must eventually return,
// and should call Task.Yield (indirectly, through clock/port/event
// operations) at every point it would block.
func (s Spawner) Spawn(name string, fn func(t *Task) error) {
	s.executor.spawn(name, fn)
}

// Executor runs a fixed set of cooperative tasks to a deadlock or
// exhaustion. Exactly one task's code executes at any instant.
type Executor struct {
	ready   []*Task
	parked  chan *Task
	tasks   []*Task
	blocked map[*Task]bool // task -> canExit, for every currently-parked task
}

// NewExecutor creates an empty executor.
func NewExecutor() *Executor {
	return &Executor{parked: make(chan *Task, 1), blocked: make(map[*Task]bool)}
}

// Spawner returns a handle other packages use to start tasks on this
// executor without reaching into its internals.
func (ex *Executor) Spawner() Spawner { return Spawner{executor: ex} }

func (ex *Executor) spawn(name string, fn func(t *Task) error) {
	t := newTask(ex, name)
	ex.tasks = append(ex.tasks, t)
	t.queued = true
	ex.ready = append(ex.ready, t)
	go func() {
		<-t.resume
		t.err = fn(t)
		close(t.done)
		ex.parked <- nil // nil marks task exit, not a park
	}()
}

// Idle reports whether the executor has no runnable task left to resume.
// Callers use this together with the clock's pending-wait state to detect
// a true deadlock (nothing runnable, nothing scheduled to become
// runnable).
func (ex *Executor) Idle() bool { return len(ex.ready) == 0 }

// BlockedNonExit reports how many currently-parked tasks are NOT marked
// background (YieldCanExit). The simulation may terminate successfully
// the instant this reaches zero, regardless of whether background tasks
// remain parked.
func (ex *Executor) BlockedNonExit() int {
	n := 0
	for _, canExit := range ex.blocked {
		if !canExit {
			n++
		}
	}
	return n
}

// RunReady resumes every currently-ready task exactly once each, draining
// newly-queued tasks as they arrive, until no task is ready. It returns
// the first task error encountered, if any.
func (ex *Executor) RunReady() error {
	for len(ex.ready) > 0 {
		t := ex.ready[0]
		ex.ready = ex.ready[1:]
		t.queued = false

		t.resume <- struct{}{}
		parked := <-ex.parked
		if parked == nil {
			if t.err != nil {
				return t.err
			}
			continue
		}
	}
	return nil
}
