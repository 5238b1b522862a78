package fabric

import "fmt"

// frame is a minimal Payload used across fabric package tests.
type frame struct {
	id          uint64
	source      int
	destination int
}

func newFrame(id uint64, source, destination int) frame {
	return frame{id: id, source: source, destination: destination}
}

func (f frame) ID() uint64        { return f.id }
func (f frame) Tag() string       { return fmt.Sprintf("frame(%d)", f.id) }
func (f frame) BitSize() uint64   { return 128 }
func (f frame) Source() int      { return f.source }
func (f frame) Destination() int { return f.destination }
