// Package trace ships concrete implementations of engine.Tracker, the
// event sink the simulation core emits entity/connection/log events to:
// LogrusTracker, which funnels events through structured logrus fields,
// and NopTracker, which discards them. Neither the core nor any component
// ever depends on a concrete tracker -- Engine accepts the engine.Tracker
// interface and defaults to a no-op implementation of its own, so a
// caller can install one of these (or write a third one) without
// touching simulation code. The aliases below let this package's
// implementations spell the core's types without an "engine." prefix on
// every method signature.
package trace

import "github.com/fabricsim/fabricsim/engine"

// Level mirrors engine.Level, the severity a Log event carries.
type Level = engine.Level

const (
	LevelTrace = engine.LevelTrace
	LevelDebug = engine.LevelDebug
	LevelInfo  = engine.LevelInfo
	LevelWarn  = engine.LevelWarn
	LevelError = engine.LevelError
)

// Tracker mirrors engine.Tracker, the interface every implementation in
// this package satisfies.
type Tracker = engine.Tracker

// SimObject mirrors engine.SimObject, the identify-and-size subset of a
// port payload a tracker needs.
type SimObject = engine.SimObject
