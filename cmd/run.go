// cmd/run.go
package cmd

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/fabricsim/fabricsim/engine"
	"github.com/fabricsim/fabricsim/fabric"
	"github.com/fabricsim/fabricsim/fabricconfig"
	"github.com/fabricsim/fabricsim/trace"
	"github.com/fabricsim/fabricsim/traffic"
)

var (
	fabricColumns      int
	fabricRows         int
	fabricPortsPerNode int
	portsPerNodeLimit  int
	portBitsPerTick    float64
	ticksPerHop        int
	ticksOverhead      int
	rxBufferEntries    int
	txBufferEntries    int
	framePayloadBytes  int
	kbToSend           int
	trafficPatternFlag string
	activeSources      int
	seed               int64
	finishTick         uint64
	progressEnabled    bool
	progressTicks      uint64
	functionalFabric   bool
	logLevel           string
	configPath         string
	routingFlag        string
	traceEnabled       bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a fabric simulation with the reference traffic driver",
	RunE:  runFabric,
}

func init() {
	runCmd.Flags().IntVar(&fabricColumns, "fabric-columns", 2, "Number of columns in the fabric grid")
	runCmd.Flags().IntVar(&fabricRows, "fabric-rows", 2, "Number of rows in the fabric grid")
	runCmd.Flags().IntVar(&fabricPortsPerNode, "fabric-ports-per-node", 1, "Ingress/egress port pairs per fabric node")
	runCmd.Flags().IntVar(&portsPerNodeLimit, "ports-per-node-limit", 0, "Cap on total ports (routing + ingress/egress) per node, 0 = unlimited")
	runCmd.Flags().Float64Var(&portBitsPerTick, "port-bits-per-tick", 64, "Bits a port can move per tick")
	runCmd.Flags().IntVar(&ticksPerHop, "ticks-per-hop", 1, "Latency in ticks of one inter-node hop")
	runCmd.Flags().IntVar(&ticksOverhead, "ticks-overhead", 0, "Fixed per-route latency overhead in ticks (functional fabric only)")
	runCmd.Flags().IntVar(&rxBufferEntries, "rx-buffer-entries", 4, "Depth of each node's ingress buffer")
	runCmd.Flags().IntVar(&txBufferEntries, "tx-buffer-entries", 4, "Depth of each node's egress buffer")
	runCmd.Flags().IntVar(&framePayloadBytes, "frame-payload-bytes", 256, "Payload bytes per generated frame")
	runCmd.Flags().IntVar(&kbToSend, "kb-to-send", 1024, "Kibibytes each active source sends before stopping, 0 = unbounded")
	runCmd.Flags().StringVar(&trafficPatternFlag, "traffic-pattern", "all-to-all-fixed", "Traffic pattern: all-to-all-fixed, random, neighbour")
	runCmd.Flags().IntVar(&activeSources, "active-sources", 0, "Number of fabric ports that generate traffic, 0 = all ports")
	runCmd.Flags().Int64Var(&seed, "seed", 1, "RNG seed for the random traffic pattern")
	runCmd.Flags().Uint64Var(&finishTick, "finish-tick", 0, "Hard tick budget; 0 = run until quiescence")
	runCmd.Flags().BoolVar(&progressEnabled, "progress", true, "Log periodic delivery progress")
	runCmd.Flags().Uint64Var(&progressTicks, "progress-ticks", 1000, "Ticks between progress log lines")
	runCmd.Flags().BoolVar(&functionalFabric, "functional", false, "Use the idealized functional fabric instead of a routed one")
	runCmd.Flags().StringVar(&routingFlag, "routing", "column-first", "Routing algorithm for the routed fabric: column-first, row-first")
	runCmd.Flags().StringVar(&logLevel, "log", "info", "Log level (trace, debug, info, warn, error)")
	runCmd.Flags().StringVar(&configPath, "config", "", "Optional YAML fabric config file; explicit flags still take precedence over its values")
	runCmd.Flags().BoolVar(&traceEnabled, "trace", false, "Emit entity/connection/shutdown tracker events through the log instead of discarding them")

	rootCmd.AddCommand(runCmd)
}

// applyFabricConfig overlays a loaded fabricconfig.FabricConfig onto the
// package flag vars, skipping any flag the user set explicitly on the
// command line -- the same Flags().Changed precedence the teacher's
// config-file flags use to avoid stomping a caller-supplied value.
func applyFabricConfig(cmd *cobra.Command, cfg *fabricconfig.FabricConfig) {
	changed := cmd.Flags().Changed
	if cfg.Columns != 0 && !changed("fabric-columns") {
		fabricColumns = cfg.Columns
	}
	if cfg.Rows != 0 && !changed("fabric-rows") {
		fabricRows = cfg.Rows
	}
	if cfg.PortsPerNode != 0 && !changed("fabric-ports-per-node") {
		fabricPortsPerNode = cfg.PortsPerNode
	}
	if cfg.PortsPerNodeLimit != 0 && !changed("ports-per-node-limit") {
		portsPerNodeLimit = cfg.PortsPerNodeLimit
	}
	if cfg.PortBitsPerTick != 0 && !changed("port-bits-per-tick") {
		portBitsPerTick = cfg.PortBitsPerTick
	}
	if cfg.TicksPerHop != 0 && !changed("ticks-per-hop") {
		ticksPerHop = cfg.TicksPerHop
	}
	if cfg.TicksOverhead != 0 && !changed("ticks-overhead") {
		ticksOverhead = cfg.TicksOverhead
	}
	if cfg.RxBufferEntries != 0 && !changed("rx-buffer-entries") {
		rxBufferEntries = cfg.RxBufferEntries
	}
	if cfg.TxBufferEntries != 0 && !changed("tx-buffer-entries") {
		txBufferEntries = cfg.TxBufferEntries
	}
	if cfg.Traffic.Pattern != "" && !changed("traffic-pattern") {
		trafficPatternFlag = cfg.Traffic.Pattern
	}
	if cfg.Traffic.ActiveSources != 0 && !changed("active-sources") {
		activeSources = cfg.Traffic.ActiveSources
	}
	if cfg.Traffic.FramePayloadBytes != 0 && !changed("frame-payload-bytes") {
		framePayloadBytes = cfg.Traffic.FramePayloadBytes
	}
	if cfg.Traffic.KBToSend != 0 && !changed("kb-to-send") {
		kbToSend = cfg.Traffic.KBToSend
	}
	if cfg.Traffic.Seed != 0 && !changed("seed") {
		seed = cfg.Traffic.Seed
	}
	if cfg.Traffic.FinishTick != 0 && !changed("finish-tick") {
		finishTick = cfg.Traffic.FinishTick
	}
	if cfg.Traffic.ProgressTicks != 0 && !changed("progress-ticks") {
		progressTicks = cfg.Traffic.ProgressTicks
	}
	if cfg.Routing != "" && !changed("routing") {
		routingFlag = cfg.Routing
	}
}

func runFabric(cmd *cobra.Command, args []string) error {
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", logLevel, err)
	}
	log := logrus.New()
	log.SetLevel(level)

	if configPath != "" {
		fileCfg, err := fabricconfig.Load(configPath)
		if err != nil {
			return err
		}
		applyFabricConfig(cmd, fileCfg)
	}

	pattern, err := traffic.ParseTrafficPattern(trafficPatternFlag)
	if err != nil {
		return err
	}

	cfg, err := fabric.NewConfig(fabricColumns, fabricRows, fabricPortsPerNode, portsPerNodeLimit, ticksPerHop, ticksOverhead, rxBufferEntries, txBufferEntries, portBitsPerTick)
	if err != nil {
		return err
	}

	algorithm, err := fabric.ParseRoutingAlgorithm(routingFlag)
	if err != nil {
		return err
	}

	root := engine.NewRootEntity("fabricsim")
	clock := engine.NewClock(1000) // 1000 MHz = 1 GHz, used only to report wall-clock-equivalent time
	eng := engine.NewEngine(root, clock)
	if traceEnabled {
		eng.SetTracker(trace.NewLogrusTracker(log))
	}

	var fab fabric.Fabric[traffic.Frame]
	if functionalFabric {
		fab, err = fabric.NewFunctionalFabric[traffic.Frame](eng, clock, root, "fabric", cfg)
	} else {
		fab, err = fabric.NewRoutedFabric[traffic.Frame](eng, clock, root, "fabric", cfg, algorithm)
	}
	if err != nil {
		return err
	}

	portIndices := cfg.PortIndices()
	numActive := activeSources
	if numActive <= 0 || numActive > len(portIndices) {
		numActive = len(portIndices)
	}

	log.WithFields(logrus.Fields{
		"columns": fabricColumns, "rows": fabricRows, "ports": len(portIndices),
		"active_sources": numActive, "pattern": pattern, "routing": algorithm,
	}).Info("starting fabric simulation")

	rng := rand.New(rand.NewSource(seed))
	budgetBytes := kbToSend * 1024

	sinks := make([]*traffic.Sink, 0, len(portIndices))
	var sources []*traffic.Source
	for i, portIndex := range portIndices {
		sink := traffic.NewSink(root, fmt.Sprintf("sink_%d", portIndex))
		if err := fab.ConnectPortEgressI(portIndex, sink.PortRx()); err != nil {
			return err
		}
		sinks = append(sinks, sink)
		eng.Register(sink)

		if i >= numActive {
			continue
		}
		picker := traffic.NewDestinationPicker(pattern, cfg.MaxNumPorts(), portIndex, rng)
		gen := traffic.NewFrameGen(portIndex, framePayloadBytes, budgetBytes, picker)
		source := traffic.NewSource(root, fmt.Sprintf("source_%d", portIndex), gen)
		if err := source.ConnectFabric(fab.PortIngressI(portIndex)); err != nil {
			return err
		}
		sources = append(sources, source)
		eng.Register(source)
	}

	totalExpectedBytes := 0
	if budgetBytes > 0 {
		totalExpectedBytes = budgetBytes * len(sources)
	}
	if progressEnabled {
		reporter := traffic.NewProgressReporter(clock, log, sinks, progressTicks, totalExpectedBytes)
		eng.Register(reporter)
	}

	start := time.Now()
	runErr := eng.Run(finishTick)
	elapsed := time.Since(start)

	deliveredBytes := traffic.TotalBytesReceived(sinks)
	deliveredFrames := traffic.TotalFramesReceived(sinks)

	if runErr != nil {
		log.WithFields(logrus.Fields{
			"delivered_bytes": deliveredBytes, "expected_bytes": totalExpectedBytes,
		}).Error("simulation ended with an error")
		return runErr
	}

	// The sinks run as background tasks so an idle one never blocks
	// termination on its own, which means the engine reports a clean Run
	// even when a source is still stuck somewhere in the fabric. Falling
	// short of what was sent is still a deadlock, just one the engine
	// can't see from inside -- only this driver knows how many bytes were
	// supposed to arrive.
	if totalExpectedBytes > 0 && deliveredBytes < totalExpectedBytes {
		log.WithFields(logrus.Fields{
			"delivered_bytes": deliveredBytes, "expected_bytes": totalExpectedBytes,
		}).Error("simulation drained with frames undelivered")
		return engine.NewError(engine.ClassDeadlock, "delivered %d of %d expected bytes", deliveredBytes, totalExpectedBytes)
	}

	printSummary(log, clock, elapsed, deliveredFrames, deliveredBytes)
	return nil
}

// printSummary reports end-of-run throughput: wall-clock elapsed,
// simulated ticks, and bytes delivered converted to an equivalent GiB/s
// using the clock's configured frequency.
func printSummary(log *logrus.Logger, clock *engine.Clock, elapsed time.Duration, frames uint64, bytes int) {
	ticks := clock.TickNow().Tick
	var gibPerSecond float64
	if ns := clock.TimeNowNs(); ns > 0 {
		seconds := ns / 1e9
		gibPerSecond = (float64(bytes) / (1024 * 1024 * 1024)) / seconds
	}
	log.WithFields(logrus.Fields{
		"ticks": ticks, "frames_delivered": frames, "bytes_delivered": bytes,
		"wall_clock": elapsed, "throughput_gib_s": gibPerSecond,
	}).Info("simulation complete")
}
