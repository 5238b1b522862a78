package components

import (
	"testing"

	"github.com/fabricsim/fabricsim/engine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLimiter_RejectsNonPositiveRate(t *testing.T) {
	root := engine.NewRootEntity("root")
	clock := engine.NewClock(1000)
	eng := engine.NewEngine(root, clock)

	_, err := NewLimiter[intValue](eng, clock, root, "limiter", NewLimiterRate(0))
	require.Error(t, err)
	assert.True(t, engine.IsClass(err, engine.ClassConfiguration))
}

func TestLimiter_ChargesTicksProportionalToSize(t *testing.T) {
	root := engine.NewRootEntity("root")
	clock := engine.NewClock(1000)
	eng := engine.NewEngine(root, clock)

	// intValue.BitSize() is 32; at 16 bits/tick the first value should
	// take 2 ticks to clear before the limiter forwards it.
	limiter, err := NewLimiter[intValue](eng, clock, root, "limiter", NewLimiterRate(16))
	require.NoError(t, err)

	producerOut := engine.NewOutPort[intValue](root, "producer")
	require.NoError(t, producerOut.Connect(limiter.PortRx()))
	consumerIn := engine.NewInPort[intValue](root, "consumer")
	require.NoError(t, limiter.ConnectTx(consumerIn.State()))

	var arrivedAt engine.ClockTick
	eng.Spawner().Spawn("producer", func(task *engine.Task) error {
		return producerOut.Put(task, newIntValue(1, 1))
	})
	eng.Spawner().Spawn("consumer", func(task *engine.Task) error {
		consumerIn.Get(task)
		arrivedAt = clock.TickNow()
		return nil
	})

	require.NoError(t, eng.Run(0))
	assert.Equal(t, engine.ClockTick{Tick: 2, Phase: 0}, arrivedAt)
}

func TestLimiter_SharedRate_ThrottlesAggregateAcrossLimiters(t *testing.T) {
	root := engine.NewRootEntity("root")
	clock := engine.NewClock(1000)
	eng := engine.NewEngine(root, clock)

	rate := NewLimiterRate(32)
	limiterA, err := NewLimiter[intValue](eng, clock, root, "limiterA", rate)
	require.NoError(t, err)
	limiterB, err := NewLimiter[intValue](eng, clock, root, "limiterB", rate)
	require.NoError(t, err)

	producerA := engine.NewOutPort[intValue](root, "producerA")
	require.NoError(t, producerA.Connect(limiterA.PortRx()))
	producerB := engine.NewOutPort[intValue](root, "producerB")
	require.NoError(t, producerB.Connect(limiterB.PortRx()))
	consumerA := engine.NewInPort[intValue](root, "consumerA")
	require.NoError(t, limiterA.ConnectTx(consumerA.State()))
	consumerB := engine.NewInPort[intValue](root, "consumerB")
	require.NoError(t, limiterB.ConnectTx(consumerB.State()))

	var arrivedA, arrivedB engine.ClockTick
	eng.Spawner().Spawn("producerA", func(task *engine.Task) error {
		return producerA.Put(task, newIntValue(1, 1))
	})
	eng.Spawner().Spawn("producerB", func(task *engine.Task) error {
		return producerB.Put(task, newIntValue(2, 1))
	})
	eng.Spawner().Spawn("consumerA", func(task *engine.Task) error {
		consumerA.Get(task)
		arrivedA = clock.TickNow()
		return nil
	})
	eng.Spawner().Spawn("consumerB", func(task *engine.Task) error {
		consumerB.Get(task)
		arrivedB = clock.TickNow()
		return nil
	})

	require.NoError(t, eng.Run(0))
	// Both values cost 32 bits against one shared 32-bits/tick pool: the
	// first drains the pool to zero at tick 1, the second must wait a
	// further tick for the pool to refill.
	ticks := []uint64{arrivedA.Tick, arrivedB.Tick}
	assert.Contains(t, ticks, uint64(1))
	assert.Contains(t, ticks, uint64(2))
}
