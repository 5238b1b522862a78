package fabric

import (
	"fmt"

	"github.com/fabricsim/fabricsim/components"
	"github.com/fabricsim/fabricsim/engine"
)

// RoutedFabric is a grid of real FabricNode tiles, each one's col_plus/
// col_minus/row_plus/row_minus ports stitched to its neighbours by a Delay
// element of config.CyclesPerHop ticks. Unlike FunctionalFabric it
// actually exercises per-hop routing, arbitration, and back-pressure, and
// can genuinely deadlock if traffic outpaces buffering.
type RoutedFabric[T Payload] struct {
	entity *engine.Entity
	nodes  [][]*FabricNode[T]
	config *Config
}

func createNodes[T Payload](eng *engine.Engine, clock *engine.Clock, entity *engine.Entity, config *Config, algorithm RoutingAlgorithm) ([][]*FabricNode[T], error) {
	nodes := make([][]*FabricNode[T], config.NumColumns)
	for col := 0; col < config.NumColumns; col++ {
		colNodes := make([]*FabricNode[T], config.NumRows)
		for row := 0; row < config.NumRows; row++ {
			node, err := NewFabricNode[T](eng, clock, entity, fmt.Sprintf("node_%d_%d", col, row), col, row, config, algorithm)
			if err != nil {
				return nil, err
			}
			colNodes[row] = node
		}
		nodes[col] = colNodes
	}
	return nodes, nil
}

// connectColumns links column-adjacent nodes: a node's col_plus egress
// feeds, via a Delay, the neighbouring column's col_minus ingress, and
// vice versa.
func connectColumns[T Payload](eng *engine.Engine, clock *engine.Clock, entity *engine.Entity, config *Config, nodes [][]*FabricNode[T], delayTicks uint64) error {
	for col := 1; col < config.NumColumns; col++ {
		colM1 := col - 1
		for row := 0; row < config.NumRows; row++ {
			forward, err := components.NewDelay[T](eng, clock, entity, fmt.Sprintf("%d_to_%d_%d", colM1, col, row), delayTicks)
			if err != nil {
				return err
			}
			if err := nodes[colM1][row].ConnectPortColPlus(forward.PortRx()); err != nil {
				return err
			}
			if err := forward.ConnectTx(nodes[col][row].PortColMinus()); err != nil {
				return err
			}

			backward, err := components.NewDelay[T](eng, clock, entity, fmt.Sprintf("%d_to_%d_%d", col, colM1, row), delayTicks)
			if err != nil {
				return err
			}
			if err := nodes[col][row].ConnectPortColMinus(backward.PortRx()); err != nil {
				return err
			}
			if err := backward.ConnectTx(nodes[colM1][row].PortColPlus()); err != nil {
				return err
			}
		}
	}
	return nil
}

// connectRows links row-adjacent nodes the same way connectColumns links
// columns.
func connectRows[T Payload](eng *engine.Engine, clock *engine.Clock, entity *engine.Entity, config *Config, nodes [][]*FabricNode[T], delayTicks uint64) error {
	for c, col := range nodes {
		for row := 1; row < config.NumRows; row++ {
			rowM1 := row - 1
			forward, err := components.NewDelay[T](eng, clock, entity, fmt.Sprintf("%d_%d_to_%d", c, rowM1, row), delayTicks)
			if err != nil {
				return err
			}
			if err := col[rowM1].ConnectPortRowPlus(forward.PortRx()); err != nil {
				return err
			}
			if err := forward.ConnectTx(col[row].PortRowMinus()); err != nil {
				return err
			}

			backward, err := components.NewDelay[T](eng, clock, entity, fmt.Sprintf("%d_%d_to_%d", c, row, rowM1), delayTicks)
			if err != nil {
				return err
			}
			if err := col[row].ConnectPortRowMinus(backward.PortRx()); err != nil {
				return err
			}
			if err := backward.ConnectTx(col[rowM1].PortRowPlus()); err != nil {
				return err
			}
		}
	}
	return nil
}

// createDummyPorts caps every edge node's outward-facing col/row port
// with an unconnected producer/consumer pair, so every arbiter/router in
// the grid has something to connect to even though XY routing never
// actually steers traffic off the grid's boundary.
func createDummyPorts[T Payload](entity *engine.Entity, config *Config, nodes [][]*FabricNode[T]) error {
	right := config.NumColumns - 1
	for row := 0; row < config.NumRows; row++ {
		outLeft := engine.NewOutPort[T](entity, fmt.Sprintf("out_col_dummy_0_%d", row))
		if err := outLeft.Connect(nodes[0][row].PortColMinus()); err != nil {
			return err
		}
		inLeft := engine.NewInPort[T](entity, fmt.Sprintf("in_col_dummy_0_%d", row))
		if err := nodes[0][row].ConnectPortColMinus(inLeft.State()); err != nil {
			return err
		}

		outRight := engine.NewOutPort[T](entity, fmt.Sprintf("out_col_dummy_%d_%d", right, row))
		if err := outRight.Connect(nodes[right][row].PortColPlus()); err != nil {
			return err
		}
		inRight := engine.NewInPort[T](entity, fmt.Sprintf("in_col_dummy_%d_%d", right, row))
		if err := nodes[right][row].ConnectPortColPlus(inRight.State()); err != nil {
			return err
		}
	}

	bottom := config.NumRows - 1
	for c, col := range nodes {
		outTop := engine.NewOutPort[T](entity, fmt.Sprintf("out_row_dummy_%d_0", c))
		if err := outTop.Connect(col[0].PortRowMinus()); err != nil {
			return err
		}
		inTop := engine.NewInPort[T](entity, fmt.Sprintf("in_row_dummy_%d_0", c))
		if err := col[0].ConnectPortRowMinus(inTop.State()); err != nil {
			return err
		}

		outBottom := engine.NewOutPort[T](entity, fmt.Sprintf("out_row_dummy_%d_%d", c, bottom))
		if err := outBottom.Connect(col[bottom].PortRowPlus()); err != nil {
			return err
		}
		inBottom := engine.NewInPort[T](entity, fmt.Sprintf("in_row_dummy_%d_%d", c, bottom))
		if err := col[bottom].ConnectPortRowPlus(inBottom.State()); err != nil {
			return err
		}
	}
	return nil
}

// NewRoutedFabric builds and registers a routed fabric named name under
// parent: a config.NumColumns x config.NumRows grid of FabricNode tiles,
// cross-connected with config.CyclesPerHop-tick Delay elements, with the
// grid's outer edges capped by dummy ports. Returns a Configuration-class
// error if the grid has fewer than 2 total ports.
func NewRoutedFabric[T Payload](eng *engine.Engine, clock *engine.Clock, parent *engine.Entity, name string, config *Config, algorithm RoutingAlgorithm) (*RoutedFabric[T], error) {
	entity := engine.NewEntity(parent, name)
	numPorts := config.NumColumns * config.NumRows * config.NumPortsPerNode
	if numPorts < 2 {
		return nil, engine.NewError(engine.ClassConfiguration, "routed fabric %s: cannot create fabric with fewer than 2 ports", name)
	}

	nodes, err := createNodes[T](eng, clock, entity, config, algorithm)
	if err != nil {
		return nil, err
	}
	if err := connectColumns[T](eng, clock, entity, config, nodes, uint64(config.CyclesPerHop)); err != nil {
		return nil, err
	}
	if err := connectRows[T](eng, clock, entity, config, nodes, uint64(config.CyclesPerHop)); err != nil {
		return nil, err
	}
	if err := createDummyPorts[T](entity, config, nodes); err != nil {
		return nil, err
	}

	return &RoutedFabric[T]{entity: entity, nodes: nodes, config: config}, nil
}

// ConnectPortEgressI wires egress port i to a downstream input state.
func (f *RoutedFabric[T]) ConnectPortEgressI(i int, state *engine.PortState[T]) error {
	col, row, port := f.config.FabricPortIndexToColRowPort(i)
	return f.nodes[col][row].ConnectPortEgressI(port, state)
}

// PortIngressI returns the backing rx state of ingress port i for an
// upstream OutPort to connect to.
func (f *RoutedFabric[T]) PortIngressI(i int) *engine.PortState[T] {
	col, row, port := f.config.FabricPortIndexToColRowPort(i)
	return f.nodes[col][row].PortIngressI(port)
}
