package fabric

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_ColRowPortToFabricPortIndex_MatchesLayout(t *testing.T) {
	config, err := NewConfig(3, 4, 2, 0, 1, 1, 1, 1, 1)
	require.NoError(t, err)

	cases := []struct {
		col, row, port, want int
	}{
		{0, 0, 0, 0},
		{0, 0, 1, 1},
		{0, 1, 0, 2},
		{0, 1, 1, 3},
		{1, 0, 0, 8},
		{1, 3, 0, 14},
		{2, 1, 1, 19},
	}
	for _, c := range cases {
		got := config.ColRowPortToFabricPortIndex(c.col, c.row, c.port)
		assert.Equal(t, c.want, got)
		col, row, port := config.FabricPortIndexToColRowPort(c.want)
		assert.Equal(t, [3]int{c.col, c.row, c.port}, [3]int{col, row, port})
	}
}

func TestConfig_NodeNumIngressEgressPorts_RespectsLimit(t *testing.T) {
	// 3x3 grid, 4 ports per node, but capped at 5 total ports per node.
	config, err := NewConfig(3, 3, 4, 5, 1, 1, 4, 4, 128)
	require.NoError(t, err)

	// Corner: 2 x/y ports used, leaves 3 for ingress/egress.
	assert.Equal(t, 3, config.NodeNumIngressEgressPorts(0, 0))
	// Edge (non-corner): 3 x/y ports used, leaves 2.
	assert.Equal(t, 2, config.NodeNumIngressEgressPorts(1, 0))
	// Interior: 4 x/y ports used, leaves 1.
	assert.Equal(t, 1, config.NodeNumIngressEgressPorts(1, 1))
}

func TestNewConfig_RejectsInvalidGeometry(t *testing.T) {
	_, err := NewConfig(0, 3, 2, 0, 1, 1, 1, 1, 1)
	assert.Error(t, err)

	_, err = NewConfig(3, 3, 0, 0, 1, 1, 1, 1, 1)
	assert.Error(t, err)
}
