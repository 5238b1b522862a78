package traffic

import "github.com/fabricsim/fabricsim/engine"

// FrameGen produces the sequence of frames a single Source emits: a
// destination for each frame (via a DestinationPicker) and the decision
// of when the source's configured data budget is spent and it should
// stop generating altogether.
type FrameGen struct {
	nextID       uint64
	sourcePort   int
	payloadBytes int
	picker       DestinationPicker

	budgetBytes int
	sentBytes   int
}

// NewFrameGen builds a generator for source port sourcePort: every frame
// carries payloadBytes of payload, addressed by picker, until sentBytes
// (including per-frame overhead) reaches budgetBytes. budgetBytes of 0
// means unbounded -- the source only ever stops because the simulation
// itself ends.
func NewFrameGen(sourcePort, payloadBytes, budgetBytes int, picker DestinationPicker) *FrameGen {
	return &FrameGen{sourcePort: sourcePort, payloadBytes: payloadBytes, budgetBytes: budgetBytes, picker: picker}
}

// Next returns the next frame to send and true, or a zero Frame and false
// once the generator's byte budget has been spent.
func (g *FrameGen) Next() (Frame, bool) {
	if g.budgetBytes > 0 && g.sentBytes >= g.budgetBytes {
		return Frame{}, false
	}
	dest := g.picker.Next()
	f := NewFrame(g.nextID, g.sourcePort, dest, g.payloadBytes)
	g.nextID++
	g.sentBytes += f.TotalBytes()
	return f, true
}

// BytesSent returns the running total of bytes (including overhead) this
// generator has produced so far.
func (g *FrameGen) BytesSent() int { return g.sentBytes }

// Source drives one fabric ingress port: it pulls frames from a FrameGen
// and pushes each onto its connected tx port, back-pressuring exactly
// like any other producer when the fabric has no room yet.
type Source struct {
	entity *engine.Entity
	tx     *engine.OutPort[Frame]
	gen    *FrameGen
}

// NewSource creates and names a source entity under parent, driven by
// gen. The caller still needs ConnectFabric to wire it to a fabric's
// ingress port before running the engine.
func NewSource(parent *engine.Entity, name string, gen *FrameGen) *Source {
	entity := engine.NewEntity(parent, name)
	return &Source{entity: entity, tx: engine.NewOutPort[Frame](entity, "tx"), gen: gen}
}

// ConnectFabric wires this source's output to a fabric ingress port's
// backing state.
func (s *Source) ConnectFabric(state *engine.PortState[Frame]) error {
	return s.tx.Connect(state)
}

// BytesSent returns the number of bytes (including overhead) this source
// has sent so far.
func (s *Source) BytesSent() int { return s.gen.BytesSent() }

// Run sends frames until gen's budget is spent, then returns cleanly. It
// is deliberately not marked background: a source stuck forever on a Put
// because the fabric cannot absorb any more traffic is a genuine stall,
// and once it is the last task left blocked, the engine must report it as
// a deadlock rather than silently declaring the run finished.
func (s *Source) Run(t *engine.Task) error {
	for {
		frame, ok := s.gen.Next()
		if !ok {
			return nil
		}
		if err := s.tx.Put(t, frame); err != nil {
			return err
		}
	}
}
