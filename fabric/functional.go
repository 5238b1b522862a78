package fabric

import (
	"fmt"

	"github.com/fabricsim/fabricsim/components"
	"github.com/fabricsim/fabricsim/engine"
)

// manhattanRxToTxCycles estimates how long a value takes to cross from
// rxPortIndex to txPortIndex as pure Manhattan distance, so a
// FunctionalFabric can approximate routed-fabric latency without actually
// simulating per-hop contention.
func manhattanRxToTxCycles(config *Config, rxPortIndex, txPortIndex int) uint64 {
	rxCol, rxRow, _ := config.FabricPortIndexToColRowPort(rxPortIndex)
	txCol, txRow, _ := config.FabricPortIndexToColRowPort(txPortIndex)
	horizontal := absDiff(rxCol, txCol)
	vertical := absDiff(rxRow, txRow)
	return uint64(horizontal+vertical)*uint64(config.CyclesPerHop) + uint64(config.CyclesOverhead)
}

func absDiff(a, b int) int {
	if a > b {
		return a - b
	}
	return b - a
}

type functionalQueueEntry[T Payload] struct {
	value T
	at    engine.ClockTick
}

// functionalPortState is the internal, per-port rendezvous a
// FunctionalFabric's rx and tx tasks share: an rx task appends timestamped
// entries to the destination port's queue; that port's own tx task drains
// it once the clock reaches each entry's timestamp. waitingForRoom/
// inputsWaitingForRoom implement back-pressure once a destination queue
// exceeds its configured depth.
type functionalPortState[T Payload] struct {
	dataForTx            []functionalQueueEntry[T]
	waitingForData       engine.Repeated[struct{}]
	waitingForRoom       engine.Repeated[struct{}]
	inputsWaitingForRoom []int
}

// FunctionalFabric is an idealized fabric model: every ingress port is
// connected to every egress port by a pure Manhattan-distance delay, with
// no per-hop routing or arbitration contention modeled. It is cheap to
// simulate and useful for sanity-checking traffic generator shape before
// running the same traffic through a RoutedFabric.
type FunctionalFabric[T Payload] struct {
	entity  *engine.Entity
	config  *Config
	clock   *engine.Clock
	spawner engine.Spawner

	rxLimiters []*components.Limiter[T]
	internalRx []*engine.InPort[T]
	txBuffers  []*components.Store[T]
	internalTx []*engine.OutPort[T]
}

// NewFunctionalFabric builds and registers a functional fabric named name
// under parent. The fabric's ingress/egress port count is
// config.MaxNumPorts() -- unlike RoutedFabric, a FunctionalFabric does not
// reserve any of those ports for x/y routing, so PortsPerNodeLimit has no
// effect on it. Returns a Configuration-class error if that count is
// fewer than 2, since there would be no valid destination to route to.
func NewFunctionalFabric[T Payload](eng *engine.Engine, clock *engine.Clock, parent *engine.Entity, name string, config *Config) (*FunctionalFabric[T], error) {
	entity := engine.NewEntity(parent, name)
	numPorts := config.MaxNumPorts()
	if numPorts < 2 {
		return nil, engine.NewError(engine.ClassConfiguration, "functional fabric %s: cannot create fabric with fewer than 2 ports", name)
	}

	rate := components.NewLimiterRate(config.PortBitsPerTick)
	f := &FunctionalFabric[T]{
		entity:  entity,
		config:  config,
		clock:   clock,
		spawner: eng.Spawner(),
	}

	for i := 0; i < numPorts; i++ {
		rxLimiter, err := components.NewLimiter[T](eng, clock, entity, fmt.Sprintf("limit_rx_%d", i), rate)
		if err != nil {
			return nil, err
		}
		rxBuffer, err := components.NewStore[T](eng, entity, fmt.Sprintf("rx_buf_%d", i), config.RxBufferEntries)
		if err != nil {
			return nil, err
		}
		if err := rxLimiter.ConnectTx(rxBuffer.PortRx()); err != nil {
			return nil, err
		}
		internalRx := engine.NewInPort[T](entity, fmt.Sprintf("internal_rx_%d", i))
		if err := rxBuffer.ConnectTx(internalRx.State()); err != nil {
			return nil, err
		}
		f.rxLimiters = append(f.rxLimiters, rxLimiter)
		f.internalRx = append(f.internalRx, internalRx)

		txLimiter, err := components.NewLimiter[T](eng, clock, entity, fmt.Sprintf("limit_tx_%d", i), rate)
		if err != nil {
			return nil, err
		}
		txBuffer, err := components.NewStore[T](eng, entity, fmt.Sprintf("tx_buf_%d", i), config.TxBufferEntries)
		if err != nil {
			return nil, err
		}
		if err := txLimiter.ConnectTx(txBuffer.PortRx()); err != nil {
			return nil, err
		}
		internalTx := engine.NewOutPort[T](entity, fmt.Sprintf("internal_tx_%d", i))
		if err := internalTx.Connect(txLimiter.PortRx()); err != nil {
			return nil, err
		}
		f.txBuffers = append(f.txBuffers, txBuffer)
		f.internalTx = append(f.internalTx, internalTx)
	}

	eng.Register(f)
	return f, nil
}

// ConnectPortEgressI wires egress port i to a downstream input state.
func (f *FunctionalFabric[T]) ConnectPortEgressI(i int, state *engine.PortState[T]) error {
	return f.txBuffers[i].ConnectTx(state)
}

// PortIngressI returns the backing rx state of ingress port i for an
// upstream OutPort to connect to.
func (f *FunctionalFabric[T]) PortIngressI(i int) *engine.PortState[T] {
	return f.rxLimiters[i].PortRx()
}

// Run starts one internal rx task and one internal tx task per port, all
// sharing the port-indexed state table that models each destination's
// Manhattan-delayed internal queue.
func (f *FunctionalFabric[T]) Run(t *engine.Task) error {
	numPorts := len(f.internalRx)
	portStates := make([]*functionalPortState[T], numPorts)
	for i := range portStates {
		portStates[i] = &functionalPortState[T]{}
	}

	for i, rx := range f.internalRx {
		index := i
		port := rx
		f.spawner.Spawn(fmt.Sprintf("%s.internal_rx_%d", f.entity.Path(), index), func(task *engine.Task) error {
			return f.runRx(task, index, port, portStates)
		})
	}
	for i, tx := range f.internalTx {
		index := i
		port := tx
		f.spawner.Spawn(fmt.Sprintf("%s.internal_tx_%d", f.entity.Path(), index), func(task *engine.Task) error {
			return f.runTx(task, index, port, portStates)
		})
	}
	return nil
}

func (f *FunctionalFabric[T]) runRx(t *engine.Task, portIndex int, rx *engine.InPort[T], portStates []*functionalPortState[T]) error {
	t.SetBackground()
	maxInternalBufferEntries := f.config.TxBufferEntries
	for {
		value := rx.Get(t)

		destIndex := value.Destination()
		if destIndex < 0 || destIndex >= len(portStates) {
			return engine.NewError(engine.ClassProtocol, "%s: port %d routed to out-of-range destination %d", f.entity.Path(), portIndex, destIndex)
		}

		tick := f.clock.TickNow()
		tick.Tick += manhattanRxToTxCycles(f.config, portIndex, destIndex)

		for len(portStates[destIndex].dataForTx) > maxInternalBufferEntries {
			portStates[destIndex].inputsWaitingForRoom = append(portStates[destIndex].inputsWaitingForRoom, portIndex)
			portStates[portIndex].waitingForRoom.Listen(t)
		}
		portStates[destIndex].dataForTx = append(portStates[destIndex].dataForTx, functionalQueueEntry[T]{value: value, at: tick})
		portStates[destIndex].waitingForData.Notify(struct{}{})
	}
}

func (f *FunctionalFabric[T]) runTx(t *engine.Task, portIndex int, tx *engine.OutPort[T], portStates []*functionalPortState[T]) error {
	t.SetBackground()
	state := portStates[portIndex]
	for {
		var next *functionalQueueEntry[T]
		if len(state.dataForTx) > 0 {
			entry := state.dataForTx[0]
			state.dataForTx = state.dataForTx[1:]
			next = &entry
		}

		if len(state.inputsWaitingForRoom) > 0 {
			waitingInput := state.inputsWaitingForRoom[0]
			state.inputsWaitingForRoom = state.inputsWaitingForRoom[1:]
			portStates[waitingInput].waitingForRoom.Notify(struct{}{})
		}

		if next == nil {
			state.waitingForData.Listen(t)
			continue
		}

		tickNow := f.clock.TickNow()
		if tickNow.Tick < next.at.Tick {
			f.clock.WaitTicks(t, next.at.Tick-tickNow.Tick)
		}
		if err := tx.Put(t, next.value); err != nil {
			return err
		}
	}
}
