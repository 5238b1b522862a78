package traffic

import (
	"testing"

	"github.com/fabricsim/fabricsim/engine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrameGen_Next_StopsOnceBudgetSpent(t *testing.T) {
	picker := NewDestinationPicker(AllToAllFixed, 4, 0, nil)
	gen := NewFrameGen(0, 80, 200, picker)

	var sent []Frame
	for {
		f, ok := gen.Next()
		if !ok {
			break
		}
		sent = append(sent, f)
	}

	// each frame totals 80+20=100 bytes, so a 200 byte budget allows exactly 2
	assert.Len(t, sent, 2)
	assert.Equal(t, 200, gen.BytesSent())
}

func TestFrameGen_Next_UnboundedWhenBudgetIsZero(t *testing.T) {
	picker := NewDestinationPicker(AllToAllFixed, 4, 0, nil)
	gen := NewFrameGen(0, 80, 0, picker)

	for i := 0; i < 50; i++ {
		_, ok := gen.Next()
		require.True(t, ok)
	}
}

func TestSource_Run_SendsEveryGeneratedFrameThenExits(t *testing.T) {
	root := engine.NewRootEntity("root")
	clock := engine.NewClock(1000)
	eng := engine.NewEngine(root, clock)

	picker := NewDestinationPicker(AllToAllFixed, 2, 0, nil)
	gen := NewFrameGen(0, 80, 200, picker)
	source := NewSource(root, "source", gen)

	consumer := engine.NewInPort[Frame](root, "consumer_rx")
	require.NoError(t, source.ConnectFabric(consumer.State()))

	var received []Frame
	eng.Spawner().Spawn("consumer", func(task *engine.Task) error {
		for i := 0; i < 2; i++ {
			received = append(received, consumer.Get(task))
		}
		return nil
	})
	eng.Register(source)

	require.NoError(t, eng.Run(0))
	assert.Len(t, received, 2)
	assert.Equal(t, 200, source.BytesSent())
}
