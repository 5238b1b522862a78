package traffic

import (
	"fmt"
	"math/rand"
	"strings"

	"gonum.org/v1/gonum/stat/distuv"
)

// TrafficPattern selects how a Source picks each outgoing frame's
// destination port among the fabric's other ports.
type TrafficPattern int

const (
	// AllToAllFixed cycles a source through every other port in a fixed,
	// repeating order, so destinations are spread evenly and
	// deterministically regardless of seed.
	AllToAllFixed TrafficPattern = iota
	// Random picks a uniformly random destination (never the source
	// itself) for every frame, using the seeded RNG passed to
	// NewDestinationPicker.
	Random
	// Neighbour always targets the next port index, wrapping around,
	// modelling nearest-neighbour traffic.
	Neighbour
)

func (p TrafficPattern) String() string {
	switch p {
	case AllToAllFixed:
		return "all-to-all-fixed"
	case Random:
		return "random"
	case Neighbour:
		return "neighbour"
	default:
		return "unknown"
	}
}

// ParseTrafficPattern maps a CLI flag value to a TrafficPattern.
func ParseTrafficPattern(s string) (TrafficPattern, error) {
	switch strings.ToLower(s) {
	case "all-to-all-fixed", "":
		return AllToAllFixed, nil
	case "random":
		return Random, nil
	case "neighbour", "neighbor":
		return Neighbour, nil
	default:
		return 0, fmt.Errorf("unknown traffic pattern %q", s)
	}
}

// DestinationPicker yields the sequence of destination ports a single
// Source addresses its frames to. Implementations are only ever driven
// from the Source's own task, so they need no internal locking.
type DestinationPicker interface {
	Next() int
}

// fixedCyclePicker steps through every port except sourcePort in
// ascending order, wrapping around, giving AllToAllFixed's even spread.
type fixedCyclePicker struct {
	others []int
	next   int
}

func newFixedCyclePicker(numPorts, sourcePort int) *fixedCyclePicker {
	others := make([]int, 0, numPorts-1)
	for i := 0; i < numPorts; i++ {
		if i != sourcePort {
			others = append(others, i)
		}
	}
	return &fixedCyclePicker{others: others}
}

func (p *fixedCyclePicker) Next() int {
	d := p.others[p.next]
	p.next = (p.next + 1) % len(p.others)
	return d
}

// randomPicker draws a uniform destination in [0, numPorts), excluding
// sourcePort, from a distribution drawing on the RNG passed to
// NewDestinationPicker, so a run is reproducible given --seed.
type randomPicker struct {
	numPorts   int
	sourcePort int
	dist       distuv.Uniform
}

func newRandomPicker(numPorts, sourcePort int, rng *rand.Rand) *randomPicker {
	return &randomPicker{
		numPorts:   numPorts,
		sourcePort: sourcePort,
		dist:       distuv.Uniform{Min: 0, Max: float64(numPorts), Src: rng},
	}
}

func (p *randomPicker) Next() int {
	for {
		d := int(p.dist.Rand())
		if d >= p.numPorts {
			d = p.numPorts - 1
		}
		if d != p.sourcePort {
			return d
		}
	}
}

// neighbourPicker always targets the next port index, wrapping around.
type neighbourPicker struct {
	dest int
}

func newNeighbourPicker(numPorts, sourcePort int) *neighbourPicker {
	return &neighbourPicker{dest: (sourcePort + 1) % numPorts}
}

func (p *neighbourPicker) Next() int { return p.dest }

// NewDestinationPicker builds the picker pattern prescribes for a source
// at sourcePort among numPorts total ports, seeding any randomness off rng.
func NewDestinationPicker(pattern TrafficPattern, numPorts, sourcePort int, rng *rand.Rand) DestinationPicker {
	switch pattern {
	case Random:
		return newRandomPicker(numPorts, sourcePort, rng)
	case Neighbour:
		return newNeighbourPicker(numPorts, sourcePort)
	default:
		return newFixedCyclePicker(numPorts, sourcePort)
	}
}
