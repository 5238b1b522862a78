package traffic

import "github.com/fabricsim/fabricsim/engine"

// Sink drains one fabric egress port, counting delivered frames and bytes
// for the progress reporter and the final run summary to read.
type Sink struct {
	entity *engine.Entity
	rx     *engine.InPort[Frame]

	numReceived   uint64
	bytesReceived int
}

// NewSink creates and names a sink entity under parent.
func NewSink(parent *engine.Entity, name string) *Sink {
	entity := engine.NewEntity(parent, name)
	return &Sink{entity: entity, rx: engine.NewInPort[Frame](entity, "rx")}
}

// PortRx returns this sink's backing rx state for a fabric's egress port
// to connect to.
func (s *Sink) PortRx() *engine.PortState[Frame] { return s.rx.State() }

// NumReceived returns the count of frames delivered to this sink so far.
func (s *Sink) NumReceived() uint64 { return s.numReceived }

// BytesReceived returns the total bytes (including overhead) delivered to
// this sink so far.
func (s *Sink) BytesReceived() int { return s.bytesReceived }

// Run drains frames forever. Marked background like the other drain loops
// (Store, Router, Arbiter): an idle sink with nothing left to receive is
// quiescent, not deadlocked, and must not by itself keep a finished run
// from terminating.
func (s *Sink) Run(t *engine.Task) error {
	t.SetBackground()
	for {
		frame := s.rx.Get(t)
		s.numReceived++
		s.bytesReceived += frame.TotalBytes()
	}
}
