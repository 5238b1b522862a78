package fabric

import (
	"testing"

	"github.com/fabricsim/fabricsim/engine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNodeRoute_ResolvesLocalColumnRowAndDiagonalCases(t *testing.T) {
	config, err := NewConfig(4, 4, 1, 0, 1, 1, 1, 1, 64)
	require.NoError(t, err)

	// Node at (1,1), column-first algorithm.
	route := nodeRoute[frame](PortColMinus, 1, 1, config, ColumnFirst)

	// Local egress: destination at this node's own (col,row), port 0.
	dest := config.ColRowPortToFabricPortIndex(1, 1, 0)
	got, err := route(newFrame(1, 0, dest))
	require.NoError(t, err)
	// resolved = PortIngress(4)+0 = 4, router index is PortColMinus(0), so
	// 4 > 0 means remapped down by one: 3.
	assert.Equal(t, 3, got)

	// Column reached, route by row: destination is further down the same
	// column, so row_plus (3) remapped against a router whose own index is
	// PortColMinus(0): 3 > 0 => 2.
	dest = config.ColRowPortToFabricPortIndex(1, 3, 0)
	got, err = route(newFrame(2, 0, dest))
	require.NoError(t, err)
	assert.Equal(t, 2, got)

	// Neither column nor row reached: column-first picks col_plus/col_minus.
	dest = config.ColRowPortToFabricPortIndex(3, 3, 0)
	got, err = route(newFrame(3, 0, dest))
	require.NoError(t, err)
	// resolved = PortColPlus(1), router index PortColMinus(0): 1 > 0 => 0.
	assert.Equal(t, 0, got)
}

func TestNodeRoute_RejectsRouteToOwnPort(t *testing.T) {
	config, err := NewConfig(4, 4, 1, 0, 1, 1, 1, 1, 64)
	require.NoError(t, err)

	route := nodeRoute[frame](PortColMinus, 1, 1, config, ColumnFirst)
	dest := config.ColRowPortToFabricPortIndex(0, 1, 0)
	_, err = route(newFrame(1, 0, dest))
	assert.Error(t, err)
}

func TestFabricNode_RoutesIngressToLocalEgress(t *testing.T) {
	root := engine.NewRootEntity("root")
	clock := engine.NewClock(1000)
	eng := engine.NewEngine(root, clock)

	config, err := NewConfig(1, 1, 2, 0, 1, 1, 4, 4, 1024)
	require.NoError(t, err)

	node, err := NewFabricNode[frame](eng, clock, root, "node_0_0", 0, 0, config, ColumnFirst)
	require.NoError(t, err)

	producer := engine.NewOutPort[frame](root, "producer")
	require.NoError(t, producer.Connect(node.PortIngressI(0)))
	consumer := engine.NewInPort[frame](root, "consumer")
	require.NoError(t, node.ConnectPortEgressI(1, consumer.State()))

	destPort := config.ColRowPortToFabricPortIndex(0, 0, 1)
	var received frame
	eng.Spawner().Spawn("producer", func(task *engine.Task) error {
		return producer.Put(task, newFrame(1, 0, destPort))
	})
	eng.Spawner().Spawn("consumer", func(task *engine.Task) error {
		received = consumer.Get(task)
		return nil
	})

	require.NoError(t, eng.Run(1000))
	assert.Equal(t, uint64(1), received.ID())
}
