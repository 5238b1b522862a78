package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPort_ConnectTwice_ReturnsConnectionError(t *testing.T) {
	root := NewRootEntity("root")
	out := NewOutPort[int](root, "tx")
	in := NewInPort[int](root, "rx")

	require.NoError(t, Connect(out, in))
	err := Connect(out, in)
	require.Error(t, err)
	assert.True(t, IsClass(err, ClassConnection))
}

func TestPort_TwoProducersConnectSameConsumer_ReturnsConnectionError(t *testing.T) {
	root := NewRootEntity("root")
	first := NewOutPort[int](root, "tx1")
	second := NewOutPort[int](root, "tx2")
	in := NewInPort[int](root, "rx")

	require.NoError(t, Connect(first, in))
	err := Connect(second, in)
	require.Error(t, err)
	assert.True(t, IsClass(err, ClassConnection))
	assert.False(t, second.Connected())
}

func TestPort_PutBeforeConnect_ReturnsConnectionError(t *testing.T) {
	root := NewRootEntity("root")
	out := NewOutPort[int](root, "tx")
	ex := NewExecutor()

	var putErr error
	ex.spawn("producer", func(task *Task) error {
		putErr = out.Put(task, 1)
		return nil
	})
	require.NoError(t, ex.RunReady())
	require.Error(t, putErr)
	assert.True(t, IsClass(putErr, ClassConnection))
}

func TestPort_PutThenGet_DeliversValueAndUnblocksProducer(t *testing.T) {
	root := NewRootEntity("root")
	out := NewOutPort[string](root, "tx")
	in := NewInPort[string](root, "rx")
	require.NoError(t, Connect(out, in))

	ex := NewExecutor()
	var producerDone bool
	var received string

	ex.spawn("producer", func(task *Task) error {
		err := out.Put(task, "hello")
		producerDone = true
		return err
	})
	ex.spawn("consumer", func(task *Task) error {
		received = in.Get(task)
		return nil
	})

	require.NoError(t, ex.RunReady())
	assert.True(t, producerDone)
	assert.Equal(t, "hello", received)
}

func TestPort_GetBeforePut_BlocksUntilDeposited(t *testing.T) {
	root := NewRootEntity("root")
	out := NewOutPort[int](root, "tx")
	in := NewInPort[int](root, "rx")
	require.NoError(t, Connect(out, in))

	ex := NewExecutor()
	var received int
	var gotValue bool

	ex.spawn("consumer", func(task *Task) error {
		received = in.Get(task)
		gotValue = true
		return nil
	})
	require.NoError(t, ex.RunReady())
	assert.False(t, gotValue)

	ex.spawn("producer", func(task *Task) error {
		return out.Put(task, 7)
	})
	require.NoError(t, ex.RunReady())
	assert.True(t, gotValue)
	assert.Equal(t, 7, received)
}

func TestPort_TryPut_WaitsForConsumerWithoutDepositing(t *testing.T) {
	root := NewRootEntity("root")
	out := NewOutPort[int](root, "tx")
	in := NewInPort[int](root, "rx")
	require.NoError(t, Connect(out, in))

	ex := NewExecutor()
	var tryPutDone bool

	ex.spawn("producer", func(task *Task) error {
		err := out.TryPut(task)
		tryPutDone = true
		return err
	})
	require.NoError(t, ex.RunReady())
	assert.False(t, tryPutDone, "try_put should not resolve with no consumer waiting")

	ex.spawn("consumer", func(task *Task) error {
		in.Get(task)
		return nil
	})
	require.NoError(t, ex.RunReady())
	assert.True(t, tryPutDone)
}

func TestSplitPhaseGet_FinishDeliversValue(t *testing.T) {
	root := NewRootEntity("root")
	out := NewOutPort[int](root, "tx")
	in := NewInPort[int](root, "rx")
	require.NoError(t, Connect(out, in))

	ex := NewExecutor()
	var finished int

	ex.spawn("consumer", func(task *Task) error {
		handle := in.StartGet(task)
		finished = handle.Finish()
		return nil
	})
	ex.spawn("producer", func(task *Task) error {
		return out.Put(task, 99)
	})
	require.NoError(t, ex.RunReady())
	assert.Equal(t, 99, finished)
}
