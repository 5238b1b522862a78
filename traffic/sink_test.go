package traffic

import (
	"testing"

	"github.com/fabricsim/fabricsim/engine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSink_Run_CountsFramesAndBytes(t *testing.T) {
	root := engine.NewRootEntity("root")
	clock := engine.NewClock(1000)
	eng := engine.NewEngine(root, clock)

	sink := NewSink(root, "sink")
	eng.Register(sink)

	producer := engine.NewOutPort[Frame](root, "producer_tx")
	require.NoError(t, producer.Connect(sink.PortRx()))

	eng.Spawner().Spawn("producer", func(task *engine.Task) error {
		for i := 0; i < 3; i++ {
			if err := producer.Put(task, NewFrame(uint64(i), 0, 1, 100)); err != nil {
				return err
			}
		}
		return nil
	})

	require.NoError(t, eng.Run(0))
	assert.Equal(t, uint64(3), sink.NumReceived())
	assert.Equal(t, 3*(100+FrameOverheadBytes), sink.BytesReceived())
}
