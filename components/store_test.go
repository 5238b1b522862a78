package components

import (
	"testing"

	"github.com/fabricsim/fabricsim/engine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_NewStore_RejectsZeroCapacity(t *testing.T) {
	root := engine.NewRootEntity("root")
	clock := engine.NewClock(1000)
	eng := engine.NewEngine(root, clock)

	_, err := NewStore[intValue](eng, root, "store", 0)
	require.Error(t, err)
	assert.True(t, engine.IsClass(err, engine.ClassConfiguration))
}

func TestStore_PushAndPop_PreservesFIFOOrder(t *testing.T) {
	root := engine.NewRootEntity("root")
	clock := engine.NewClock(1000)
	eng := engine.NewEngine(root, clock)

	store, err := NewStore[intValue](eng, root, "store", 2)
	require.NoError(t, err)

	producerOut := engine.NewOutPort[intValue](root, "producer_tx")
	require.NoError(t, producerOut.Connect(store.PortRx()))

	consumerIn := engine.NewInPort[intValue](root, "consumer_rx")
	require.NoError(t, store.ConnectTx(consumerIn.State()))

	var received []int
	eng.Spawner().Spawn("producer", func(task *engine.Task) error {
		for i := 0; i < 3; i++ {
			if err := producerOut.Put(task, newIntValue(uint64(i), i)); err != nil {
				return err
			}
		}
		return nil
	})
	eng.Spawner().Spawn("consumer", func(task *engine.Task) error {
		for i := 0; i < 3; i++ {
			v := consumerIn.Get(task)
			received = append(received, v.value)
		}
		return nil
	})

	require.NoError(t, eng.Run(0))
	assert.Equal(t, []int{0, 1, 2}, received)
	assert.Equal(t, 0, store.FillLevel())
}

func TestStore_LevelChangeEvent_FiresOnPushAndPop(t *testing.T) {
	root := engine.NewRootEntity("root")
	clock := engine.NewClock(1000)
	eng := engine.NewEngine(root, clock)

	store, err := NewStore[intValue](eng, root, "store", 4)
	require.NoError(t, err)

	producerOut := engine.NewOutPort[intValue](root, "producer_tx")
	require.NoError(t, producerOut.Connect(store.PortRx()))
	consumerIn := engine.NewInPort[intValue](root, "consumer_rx")
	require.NoError(t, store.ConnectTx(consumerIn.State()))

	var levels []int
	eng.Spawner().Spawn("observer", func(task *engine.Task) error {
		for i := 0; i < 3; i++ {
			levels = append(levels, store.LevelChangeEvent().Listen(task))
		}
		return nil
	})
	eng.Spawner().Spawn("producer", func(task *engine.Task) error {
		for i := 0; i < 2; i++ {
			if err := producerOut.Put(task, newIntValue(uint64(i), i)); err != nil {
				return err
			}
		}
		return nil
	})
	// The consumer waits a tick, by which time both pushes have been
	// observed, then pops one value.
	eng.Spawner().Spawn("consumer", func(task *engine.Task) error {
		clock.WaitTicks(task, 1)
		consumerIn.Get(task)
		return nil
	})

	require.NoError(t, eng.Run(0))
	assert.Equal(t, []int{1, 2, 1}, levels)
}
