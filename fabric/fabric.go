package fabric

import "github.com/fabricsim/fabricsim/engine"

// Payload is what a FabricNode (and the routers/arbiters it is built from)
// requires of whatever travels through it: big enough for a tracker to
// size and identify (SimObject), and carrying its own source/destination
// so a node can make a forwarding decision without being specialized to
// one concrete payload type (Routable).
type Payload interface {
	engine.SimObject
	engine.Routable
}

// Fabric is the contract both fabric realizations (FunctionalFabric and
// RoutedFabric) satisfy: a caller wires traffic sources and sinks to the
// fabric's ingress/egress ports -- addressed by flat fabric-wide port
// index, per Config.ColRowPortToFabricPortIndex/Config.PortIndices --
// without caring which internal model is driving them.
type Fabric[T Payload] interface {
	// PortIngressI returns the backing rx state of ingress port i for an
	// upstream OutPort to connect to.
	PortIngressI(i int) *engine.PortState[T]
	// ConnectPortEgressI wires egress port i to a downstream input state.
	ConnectPortEgressI(i int, state *engine.PortState[T]) error
}
