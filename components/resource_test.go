package components

import (
	"testing"

	"github.com/fabricsim/fabricsim/engine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResource_RejectsZeroPermits(t *testing.T) {
	_, err := NewResource(0)
	require.Error(t, err)
	assert.True(t, engine.IsClass(err, engine.ClassConfiguration))
}

func TestResource_SecondAcquirer_WaitsForRelease(t *testing.T) {
	res, err := NewResource(1)
	require.NoError(t, err)

	ex := engine.NewExecutor()
	var order []string
	var proceed engine.Once[struct{}]

	ex.Spawner().Spawn("first", func(task *engine.Task) error {
		res.Acquire(task)
		order = append(order, "first-acquired")
		proceed.Listen(task)
		res.Release()
		order = append(order, "first-released")
		return nil
	})
	ex.Spawner().Spawn("second", func(task *engine.Task) error {
		res.Acquire(task)
		order = append(order, "second-acquired")
		res.Release()
		return nil
	})
	ex.Spawner().Spawn("releaser", func(task *engine.Task) error {
		proceed.Notify(struct{}{})
		return nil
	})

	require.NoError(t, ex.RunReady())
	assert.Equal(t, []string{"first-acquired", "first-released", "second-acquired"}, order)
}
