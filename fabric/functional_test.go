package fabric

import (
	"testing"

	"github.com/fabricsim/fabricsim/engine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFunctionalFabric_RejectsTooFewPorts(t *testing.T) {
	root := engine.NewRootEntity("root")
	clock := engine.NewClock(1000)
	eng := engine.NewEngine(root, clock)

	config, err := NewConfig(1, 1, 1, 0, 1, 1, 4, 4, 128)
	require.NoError(t, err)

	_, err = NewFunctionalFabric[frame](eng, clock, root, "fabric", config)
	require.Error(t, err)
	assert.True(t, engine.IsClass(err, engine.ClassConfiguration))
}

func TestFunctionalFabric_DeliversAcrossManhattanDelay(t *testing.T) {
	root := engine.NewRootEntity("root")
	clock := engine.NewClock(1000)
	eng := engine.NewEngine(root, clock)

	// A 1x2 "fabric" (one row, two columns, one port per node): crossing
	// from port 0 to port 1 is one horizontal hop.
	config, err := NewConfig(2, 1, 1, 0, 3, 1, 4, 4, 1024)
	require.NoError(t, err)

	fab, err := NewFunctionalFabric[frame](eng, clock, root, "fabric", config)
	require.NoError(t, err)

	srcIndex := config.ColRowPortToFabricPortIndex(0, 0, 0)
	destIndex := config.ColRowPortToFabricPortIndex(1, 0, 0)

	producer := engine.NewOutPort[frame](root, "producer")
	require.NoError(t, producer.Connect(fab.PortIngressI(srcIndex)))
	consumer := engine.NewInPort[frame](root, "consumer")
	require.NoError(t, fab.ConnectPortEgressI(destIndex, consumer.State()))

	var arrivedAt engine.ClockTick
	eng.Spawner().Spawn("producer", func(task *engine.Task) error {
		return producer.Put(task, newFrame(1, 0, destIndex))
	})
	eng.Spawner().Spawn("consumer", func(task *engine.Task) error {
		consumer.Get(task)
		arrivedAt = clock.TickNow()
		return nil
	})

	require.NoError(t, eng.Run(1000))
	// One horizontal hop at 3 cycles/hop plus 1 cycle overhead = 4 cycles,
	// on top of whatever ticks the shared rate limiter charges.
	assert.GreaterOrEqual(t, arrivedAt.Tick, uint64(4))
}
