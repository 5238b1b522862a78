package components

import (
	"cmp"
	"fmt"
	"sort"

	"github.com/fabricsim/fabricsim/engine"
)

// Arbitrator decides which of several pending inputs, if any, should be
// granted the shared output this cycle. active holds one slot per input;
// a granted slot is cleared (set to nil) by the implementation.
type Arbitrator[T any] interface {
	Arbitrate(active []*T) (index int, value T, ok bool)
}

// RoundRobinPolicy grants the first pending input found starting just
// after the last granted index, wrapping around.
type RoundRobinPolicy[T any] struct {
	candidate int
}

// NewRoundRobinPolicy creates a round robin policy starting at input 0.
func NewRoundRobinPolicy[T any]() *RoundRobinPolicy[T] { return &RoundRobinPolicy[T]{} }

func (p *RoundRobinPolicy[T]) Arbitrate(active []*T) (int, T, bool) {
	n := len(active)
	for i := 0; i < n; i++ {
		idx := (i + p.candidate) % n
		if active[idx] != nil {
			v := *active[idx]
			active[idx] = nil
			p.candidate = (idx + 1) % n
			return idx, v, true
		}
	}
	var zero T
	return 0, zero, false
}

// WeightedRoundRobinPolicy grants inputs proportionally to their weight:
// an input is preferred while it has received fewer than `weight` grants
// in its current round. Once it reaches `weight` it is granted only when
// no preferred input is pending, and that grant resets its counter and
// counts as the first grant of its next round.
type WeightedRoundRobinPolicy[T any] struct {
	candidate int
	grants    []int
	weights   []int
}

// NewWeightedRoundRobinPolicy creates a weighted round robin policy. The
// number of weights must equal numInputs.
func NewWeightedRoundRobinPolicy[T any](weights []int, numInputs int) (*WeightedRoundRobinPolicy[T], error) {
	if len(weights) != numInputs {
		return nil, engine.NewError(engine.ClassConfiguration, "weighted round robin: %d weights for %d inputs", len(weights), numInputs)
	}
	return &WeightedRoundRobinPolicy[T]{grants: make([]int, len(weights)), weights: weights}, nil
}

func (p *WeightedRoundRobinPolicy[T]) Arbitrate(active []*T) (int, T, bool) {
	n := len(active)
	selected := -1
	for i := 0; i < n; i++ {
		idx := (i + p.candidate) % n
		if active[idx] == nil {
			continue
		}
		if p.weights[idx] > p.grants[idx] {
			selected = idx
			break
		} else if selected == -1 {
			selected = idx
		}
	}
	if selected == -1 {
		var zero T
		return 0, zero, false
	}
	if p.weights[selected] == p.grants[selected] {
		p.grants[selected] = 0
	}
	p.grants[selected]++
	v := *active[selected]
	active[selected] = nil
	p.candidate = (selected + 1) % n
	return selected, v, true
}

// Priority is the ready-made priority type for PriorityRoundRobinPolicy;
// higher values win.
type Priority int

const (
	PriorityLow Priority = iota
	PriorityMedium
	PriorityHigh
)

type priorityLevel struct {
	current    int
	candidates []int
}

// PriorityRoundRobinPolicy groups inputs into priority levels and always
// grants from the highest non-empty level, round-robining within it.
type PriorityRoundRobinPolicy[T any, P cmp.Ordered] struct {
	priorities []P
	levels     map[P]*priorityLevel
	order      []P
}

// NewPriorityRoundRobinPolicy creates a policy with every input at the
// zero value of P (PriorityLow for the Priority type).
func NewPriorityRoundRobinPolicy[T any, P cmp.Ordered](numInputs int) *PriorityRoundRobinPolicy[T, P] {
	return &PriorityRoundRobinPolicy[T, P]{priorities: make([]P, numInputs)}
}

// NewPriorityRoundRobinPolicyFromPriorities creates a policy with an
// explicit priority per input. len(priorities) must equal numInputs.
func NewPriorityRoundRobinPolicyFromPriorities[T any, P cmp.Ordered](priorities []P, numInputs int) (*PriorityRoundRobinPolicy[T, P], error) {
	if len(priorities) != numInputs {
		return nil, engine.NewError(engine.ClassConfiguration, "priority round robin: %d priorities for %d inputs", len(priorities), numInputs)
	}
	cp := append([]P(nil), priorities...)
	return &PriorityRoundRobinPolicy[T, P]{priorities: cp}, nil
}

// SetPriority overrides the priority of a single input index.
func (p *PriorityRoundRobinPolicy[T, P]) SetPriority(index int, priority P) *PriorityRoundRobinPolicy[T, P] {
	p.priorities[index] = priority
	p.levels = nil
	return p
}

func (p *PriorityRoundRobinPolicy[T, P]) ensureLevels() {
	if p.levels != nil {
		return
	}
	p.levels = make(map[P]*priorityLevel)
	for i, pr := range p.priorities {
		lvl, ok := p.levels[pr]
		if !ok {
			lvl = &priorityLevel{}
			p.levels[pr] = lvl
		}
		lvl.candidates = append(lvl.candidates, i)
	}
	order := make([]P, 0, len(p.levels))
	for k := range p.levels {
		order = append(order, k)
	}
	sort.Slice(order, func(i, j int) bool { return order[i] > order[j] })
	p.order = order
}

func (p *PriorityRoundRobinPolicy[T, P]) Arbitrate(active []*T) (int, T, bool) {
	p.ensureLevels()
	for _, key := range p.order {
		lvl := p.levels[key]
		n := len(lvl.candidates)
		for i := 0; i < n; i++ {
			idx := (i + lvl.current) % n
			inputIdx := lvl.candidates[idx]
			if active[inputIdx] != nil {
				v := *active[inputIdx]
				active[inputIdx] = nil
				lvl.current = (idx + 1) % n
				return inputIdx, v, true
			}
		}
	}
	var zero T
	return 0, zero, false
}

// Arbiter merges N input ports onto a single output port under the
// control of an Arbitrator policy. Each input has its own task so a slow
// producer on one port never blocks another from being granted.
type Arbiter[T engine.SimObject] struct {
	entity  *engine.Entity
	rx      []*engine.InPort[T]
	tx      *engine.OutPort[T]
	policy  Arbitrator[T]
	spawner engine.Spawner

	active       []*T
	arbiterEvent *engine.Once[struct{}]
	waitingPut   []*engine.Once[struct{}]
}

// NewArbiter creates and registers an arbiter named name under parent
// with numRx input ports, merged under policy.
func NewArbiter[T engine.SimObject](eng *engine.Engine, parent *engine.Entity, name string, numRx int, policy Arbitrator[T]) (*Arbiter[T], error) {
	if numRx <= 0 {
		return nil, engine.NewError(engine.ClassConfiguration, "arbiter %s: numRx must be > 0", name)
	}
	entity := engine.NewEntity(parent, name)
	rx := make([]*engine.InPort[T], numRx)
	for i := range rx {
		rx[i] = engine.NewInPort[T](entity, fmt.Sprintf("rx%d", i))
	}
	a := &Arbiter[T]{
		entity:     entity,
		rx:         rx,
		tx:         engine.NewOutPort[T](entity, "tx"),
		policy:     policy,
		spawner:    eng.Spawner(),
		active:     make([]*T, numRx),
		waitingPut: make([]*engine.Once[struct{}], numRx),
	}
	eng.Register(a)
	return a, nil
}

// ConnectTx wires this arbiter's tx output to a downstream input state.
func (a *Arbiter[T]) ConnectTx(state *engine.PortState[T]) error {
	return a.tx.Connect(state)
}

// PortRxI returns the backing state of input i for an upstream OutPort to
// connect to.
func (a *Arbiter[T]) PortRxI(i int) *engine.PortState[T] { return a.rx[i].State() }

// Run starts one task per input and runs the arbitration loop on its own
// task.
func (a *Arbiter[T]) Run(t *engine.Task) error {
	for i, rx := range a.rx {
		idx := i
		rxPort := rx
		a.spawner.Spawn(fmt.Sprintf("%s.rx%d", a.entity.Path(), idx), func(task *engine.Task) error {
			return a.runInput(task, idx, rxPort)
		})
	}
	return a.runArbiter(t)
}

func (a *Arbiter[T]) runArbiter(t *engine.Task) error {
	t.SetBackground()
	for {
		var waitEvent *engine.Once[struct{}]
		for {
			idx, value, ok := a.policy.Arbitrate(a.active)
			if !ok {
				waitEvent = &engine.Once[struct{}]{}
				a.arbiterEvent = waitEvent
				break
			}
			wake := a.waitingPut[idx]
			a.waitingPut[idx] = nil
			if wake != nil {
				wake.Notify(struct{}{})
			}
			if err := a.tx.Put(t, value); err != nil {
				return err
			}
		}
		waitEvent.Listen(t)
	}
}

func (a *Arbiter[T]) runInput(t *engine.Task, idx int, rx *engine.InPort[T]) error {
	t.SetBackground()
	for {
		value := rx.Get(t)
		if a.active[idx] != nil {
			once := &engine.Once[struct{}]{}
			a.waitingPut[idx] = once
			once.Listen(t)
		}
		a.active[idx] = &value
		if a.arbiterEvent != nil {
			ev := a.arbiterEvent
			a.arbiterEvent = nil
			ev.Notify(struct{}{})
		}
	}
}
