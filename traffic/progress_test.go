package traffic

import (
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fabricsim/fabricsim/engine"
)

func newSilentLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func TestProgressReporter_Run_StopsOnceExpectedBytesDelivered(t *testing.T) {
	root := engine.NewRootEntity("root")
	clock := engine.NewClock(1000)
	eng := engine.NewEngine(root, clock)

	sink := NewSink(root, "sink")
	eng.Register(sink)

	producer := engine.NewOutPort[Frame](root, "producer_tx")
	require.NoError(t, producer.Connect(sink.PortRx()))

	eng.Spawner().Spawn("producer", func(task *engine.Task) error {
		for i := 0; i < 2; i++ {
			if err := producer.Put(task, NewFrame(uint64(i), 0, 1, 80)); err != nil {
				return err
			}
		}
		return nil
	})

	expected := 2 * (80 + FrameOverheadBytes)
	reporter := NewProgressReporter(clock, newSilentLogger(), []*Sink{sink}, 10, expected)
	eng.Register(reporter)

	require.NoError(t, eng.Run(0))
	assert.Equal(t, expected, TotalBytesReceived([]*Sink{sink}))
	assert.Equal(t, uint64(2), TotalFramesReceived([]*Sink{sink}))
}

func TestProgressReporter_Run_UnboundedBudgetDoesNotKeepRunAlive(t *testing.T) {
	root := engine.NewRootEntity("root")
	clock := engine.NewClock(1000)
	eng := engine.NewEngine(root, clock)

	sink := NewSink(root, "sink")
	eng.Register(sink)

	// totalExpectedBytes of 0 means no stop condition, but the reporter only
	// ever waits with WaitTicksOrExit: with the sink idle and no other task
	// blocked, the run ends cleanly at tick 0 instead of polling until the
	// engine's tick budget.
	reporter := NewProgressReporter(clock, newSilentLogger(), []*Sink{sink}, 10, 0)
	eng.Register(reporter)

	err := eng.Run(100)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), clock.TickNow().Tick)
}
