package fabric

import (
	"fmt"

	"github.com/fabricsim/fabricsim/components"
	"github.com/fabricsim/fabricsim/engine"
)

// Port indexes the four directional arbiters/routers every FabricNode
// carries regardless of how many ingress/egress ports it has. Ingress
// port i occupies arbiter/router index PortIngress+i.
const (
	PortColMinus = 0
	PortColPlus  = 1
	PortRowMinus = 2
	PortRowPlus  = 3
	PortIngress  = 4
)

var xyPortNames = [4]string{"col_minus", "col_plus", "row_minus", "row_plus"}

// nodeRoute builds the RouteFunc for the arbiter/router pair at index
// within a node at (nodeCol, nodeRow): it resolves a payload's
// destination fabric port to a local egress direction (or, once the
// node's own column and row are reached, straight to the addressed
// ingress/egress port), then remaps that direction to the router's N-1
// port space -- routers never carry a port back to themselves, so every
// index above the router's own is shifted down by one.
func nodeRoute[T Payload](index, nodeCol, nodeRow int, config *Config, algorithm RoutingAlgorithm) components.RouteFunc[T] {
	return func(value T) (int, error) {
		destCol, destRow, destPort := config.FabricPortIndexToColRowPort(value.Destination())

		var resolved int
		switch {
		case nodeCol == destCol && nodeRow == destRow:
			resolved = destPort + PortIngress
		case nodeCol == destCol:
			if nodeRow < destRow {
				resolved = PortRowPlus
			} else {
				resolved = PortRowMinus
			}
		case nodeRow == destRow:
			if nodeCol < destCol {
				resolved = PortColPlus
			} else {
				resolved = PortColMinus
			}
		default:
			switch algorithm {
			case RowFirst:
				if nodeRow < destRow {
					resolved = PortRowPlus
				} else {
					resolved = PortRowMinus
				}
			default:
				if nodeCol < destCol {
					resolved = PortColPlus
				} else {
					resolved = PortColMinus
				}
			}
		}

		if resolved == index {
			return 0, engine.NewError(engine.ClassProtocol, "node(%d,%d) port %d: cannot route to egress from same port as ingress", nodeCol, nodeRow, index)
		}
		if resolved > index {
			return resolved - 1, nil
		}
		return resolved, nil
	}
}

// FabricNode is a single tile of a RoutedFabric: four directional
// arbiter/router pairs (col_minus, col_plus, row_minus, row_plus) plus one
// arbiter/router pair per ingress/egress port, fully cross-connected so
// any router can reach any other arbiter except its own. Every
// ingress/egress port is fronted by a rate limiter and a store, and all
// of a node's limiters share one credit pool -- the node as a whole is
// capped at config.PortBitsPerTick, not each port individually.
type FabricNode[T Payload] struct {
	entity *engine.Entity

	arbiters []*components.Arbiter[T]
	routers  []*components.Router[T]

	ingressLimiters []*components.Limiter[T]
	egressBuffers   []*components.Store[T]
}

// NewFabricNode builds and registers a node named name under parent at
// grid position (nodeCol, nodeRow), sized per config.
func NewFabricNode[T Payload](eng *engine.Engine, clock *engine.Clock, parent *engine.Entity, name string, nodeCol, nodeRow int, config *Config, algorithm RoutingAlgorithm) (*FabricNode[T], error) {
	entity := engine.NewEntity(parent, name)
	numIngressEgress := config.NodeNumIngressEgressPorts(nodeCol, nodeRow)
	numArbitersRouters := PortIngress + numIngressEgress
	numArbiterRouterPorts := numArbitersRouters - 1

	arbiters := make([]*components.Arbiter[T], 0, numArbitersRouters)
	routers := make([]*components.Router[T], 0, numArbitersRouters)

	for i, portName := range xyPortNames {
		arbiter, err := components.NewArbiter[T](eng, entity, "arb_"+portName, numArbiterRouterPorts, components.NewRoundRobinPolicy[T]())
		if err != nil {
			return nil, err
		}
		router, err := components.NewRouter[T](eng, entity, "router_"+portName, numArbiterRouterPorts, nodeRoute[T](i, nodeCol, nodeRow, config, algorithm))
		if err != nil {
			return nil, err
		}
		arbiters = append(arbiters, arbiter)
		routers = append(routers, router)
	}

	for i := 0; i < numIngressEgress; i++ {
		index := PortIngress + i
		arbiter, err := components.NewArbiter[T](eng, entity, fmt.Sprintf("arb_%d", index), numArbiterRouterPorts, components.NewRoundRobinPolicy[T]())
		if err != nil {
			return nil, err
		}
		router, err := components.NewRouter[T](eng, entity, fmt.Sprintf("router_%d", index), numArbiterRouterPorts, nodeRoute[T](index, nodeCol, nodeRow, config, algorithm))
		if err != nil {
			return nil, err
		}
		arbiters = append(arbiters, arbiter)
		routers = append(routers, router)
	}

	for from, router := range routers {
		for to, arbiter := range arbiters {
			if from == to {
				continue
			}
			toIndex := to
			if to > from {
				toIndex = to - 1
			}
			fromIndex := from
			if from > to {
				fromIndex = from - 1
			}
			if err := router.ConnectTxI(toIndex, arbiter.PortRxI(fromIndex)); err != nil {
				return nil, err
			}
		}
	}

	rate := components.NewLimiterRate(config.PortBitsPerTick)
	ingressLimiters := make([]*components.Limiter[T], 0, numIngressEgress)
	egressBuffers := make([]*components.Store[T], 0, numIngressEgress)

	for i := 0; i < numIngressEgress; i++ {
		index := PortIngress + i

		ingressLimiter, err := components.NewLimiter[T](eng, clock, entity, fmt.Sprintf("limit_ingress_%d", i), rate)
		if err != nil {
			return nil, err
		}
		ingressBuffer, err := components.NewStore[T](eng, entity, fmt.Sprintf("ingress_buf_%d", i), config.RxBufferEntries)
		if err != nil {
			return nil, err
		}
		if err := ingressLimiter.ConnectTx(ingressBuffer.PortRx()); err != nil {
			return nil, err
		}
		if err := ingressBuffer.ConnectTx(routers[index].PortRx()); err != nil {
			return nil, err
		}
		ingressLimiters = append(ingressLimiters, ingressLimiter)

		egressLimiter, err := components.NewLimiter[T](eng, clock, entity, fmt.Sprintf("limit_egress_%d", i), rate)
		if err != nil {
			return nil, err
		}
		egressBuffer, err := components.NewStore[T](eng, entity, fmt.Sprintf("egress_buf_%d", i), config.TxBufferEntries)
		if err != nil {
			return nil, err
		}
		if err := egressLimiter.ConnectTx(egressBuffer.PortRx()); err != nil {
			return nil, err
		}
		if err := arbiters[index].ConnectTx(egressLimiter.PortRx()); err != nil {
			return nil, err
		}
		egressBuffers = append(egressBuffers, egressBuffer)
	}

	return &FabricNode[T]{
		entity:          entity,
		arbiters:        arbiters,
		routers:         routers,
		ingressLimiters: ingressLimiters,
		egressBuffers:   egressBuffers,
	}, nil
}

// Path returns the node's entity path.
func (n *FabricNode[T]) Path() string { return n.entity.Path() }

// ConnectPortEgressI wires egress port i to a downstream input state.
func (n *FabricNode[T]) ConnectPortEgressI(i int, state *engine.PortState[T]) error {
	return n.egressBuffers[i].ConnectTx(state)
}

// PortIngressI returns ingress port i's backing rx state for an upstream
// OutPort to connect to.
func (n *FabricNode[T]) PortIngressI(i int) *engine.PortState[T] {
	return n.ingressLimiters[i].PortRx()
}

// ConnectPortRowMinus wires the row_minus arbiter's output to state.
func (n *FabricNode[T]) ConnectPortRowMinus(state *engine.PortState[T]) error {
	return n.arbiters[PortRowMinus].ConnectTx(state)
}

// ConnectPortRowPlus wires the row_plus arbiter's output to state.
func (n *FabricNode[T]) ConnectPortRowPlus(state *engine.PortState[T]) error {
	return n.arbiters[PortRowPlus].ConnectTx(state)
}

// ConnectPortColMinus wires the col_minus arbiter's output to state.
func (n *FabricNode[T]) ConnectPortColMinus(state *engine.PortState[T]) error {
	return n.arbiters[PortColMinus].ConnectTx(state)
}

// ConnectPortColPlus wires the col_plus arbiter's output to state.
func (n *FabricNode[T]) ConnectPortColPlus(state *engine.PortState[T]) error {
	return n.arbiters[PortColPlus].ConnectTx(state)
}

// PortRowMinus returns the row_minus router's rx state for an upstream
// OutPort to connect to.
func (n *FabricNode[T]) PortRowMinus() *engine.PortState[T] { return n.routers[PortRowMinus].PortRx() }

// PortRowPlus returns the row_plus router's rx state for an upstream
// OutPort to connect to.
func (n *FabricNode[T]) PortRowPlus() *engine.PortState[T] { return n.routers[PortRowPlus].PortRx() }

// PortColMinus returns the col_minus router's rx state for an upstream
// OutPort to connect to.
func (n *FabricNode[T]) PortColMinus() *engine.PortState[T] { return n.routers[PortColMinus].PortRx() }

// PortColPlus returns the col_plus router's rx state for an upstream
// OutPort to connect to.
func (n *FabricNode[T]) PortColPlus() *engine.PortState[T] { return n.routers[PortColPlus].PortRx() }
