// Package fabricconfig loads the YAML description of a fabric run: grid
// geometry, per-node performance figures, and the traffic pattern to
// drive it with. It exists so a run's parameters can live in a checked-in
// file instead of a long CLI invocation, the same role PolicyBundle plays
// for the teacher's scheduler/admission policies.
package fabricconfig

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// FabricConfig is the unified, YAML-loadable description of one fabric
// run. Zero-valued optional fields fall back to the CLI flag defaults
// documented on the corresponding cmd/run.go flag.
type FabricConfig struct {
	Columns           int     `yaml:"columns"`
	Rows              int     `yaml:"rows"`
	PortsPerNode      int     `yaml:"ports_per_node"`
	PortsPerNodeLimit int     `yaml:"ports_per_node_limit"`
	PortBitsPerTick   float64 `yaml:"port_bits_per_tick"`
	TicksPerHop       int     `yaml:"ticks_per_hop"`
	TicksOverhead     int     `yaml:"ticks_overhead"`
	RxBufferEntries   int     `yaml:"rx_buffer_entries"`
	TxBufferEntries   int     `yaml:"tx_buffer_entries"`
	Routing           string  `yaml:"routing"`

	Traffic TrafficConfig `yaml:"traffic"`
}

// TrafficConfig describes the reference traffic driver's parameters.
type TrafficConfig struct {
	Pattern           string `yaml:"pattern"`
	ActiveSources     int    `yaml:"active_sources"`
	FramePayloadBytes int    `yaml:"frame_payload_bytes"`
	KBToSend          int    `yaml:"kb_to_send"`
	Seed              int64  `yaml:"seed"`
	FinishTick        uint64 `yaml:"finish_tick"`
	ProgressTicks     uint64 `yaml:"progress_ticks"`
}

// Load reads and strictly parses a YAML fabric configuration file.
// Strict parsing (KnownFields) rejects typo'd keys instead of silently
// ignoring them.
func Load(path string) (*FabricConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading fabric config: %w", err)
	}
	var cfg FabricConfig
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("parsing fabric config: %w", err)
	}
	return &cfg, nil
}
