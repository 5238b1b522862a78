package traffic

import (
	"github.com/sirupsen/logrus"

	"github.com/fabricsim/fabricsim/engine"
)

// ProgressReporter periodically logs aggregate delivery progress across
// every Sink in a run, and stops once every expected byte has arrived --
// mirroring the reference application's frame-dump loop, which polls sink
// counts on a timer rather than being told directly when the last frame
// lands.
type ProgressReporter struct {
	clock *engine.Clock
	log   *logrus.Logger

	sinks              []*Sink
	progressTicks      uint64
	totalExpectedBytes int
}

// NewProgressReporter builds a reporter that logs through log every
// progressTicks ticks, summing bytesReceived across sinks, until the sum
// reaches totalExpectedBytes (0 disables the stop condition: it then logs
// forever, which is harmless since its only wait is WaitTicksOrExit).
func NewProgressReporter(clock *engine.Clock, log *logrus.Logger, sinks []*Sink, progressTicks uint64, totalExpectedBytes int) *ProgressReporter {
	return &ProgressReporter{clock: clock, log: log, sinks: sinks, progressTicks: progressTicks, totalExpectedBytes: totalExpectedBytes}
}

// Run logs a progress line every progressTicks ticks. It waits with
// Clock.WaitTicksOrExit, so it is always background: its own polling must
// never be what keeps an otherwise-finished simulation alive.
func (p *ProgressReporter) Run(t *engine.Task) error {
	for {
		p.clock.WaitTicksOrExit(t, p.progressTicks)

		delivered := 0
		for _, s := range p.sinks {
			delivered += s.BytesReceived()
		}

		p.log.WithFields(logrus.Fields{
			"tick":      p.clock.TickNow().Tick,
			"delivered": delivered,
			"expected":  p.totalExpectedBytes,
		}).Info("progress")

		if p.totalExpectedBytes > 0 && delivered >= p.totalExpectedBytes {
			return nil
		}
	}
}

// TotalBytesReceived sums BytesReceived across sinks, for the final
// summary once a run completes.
func TotalBytesReceived(sinks []*Sink) int {
	total := 0
	for _, s := range sinks {
		total += s.BytesReceived()
	}
	return total
}

// TotalFramesReceived sums NumReceived across sinks.
func TotalFramesReceived(sinks []*Sink) uint64 {
	var total uint64
	for _, s := range sinks {
		total += s.NumReceived()
	}
	return total
}
