package engine

// Level mirrors the severity levels a Tracker.Log call can carry,
// independent of whatever logging library a concrete Tracker is built on.
type Level int

const (
	LevelTrace Level = iota
	LevelDebug
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelTrace:
		return "trace"
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return "unknown"
	}
}

// Tracker is the opaque event sink the simulation core emits to. A
// tracker decides for itself which scopes/levels are enabled; every
// method here is a notification, not a question, and a Tracker that drops
// an event must do so silently -- the core never checks whether an
// emission was kept. Scope and obj/id arguments are always entity or
// SimObject identifiers (Entity.ID / SimObject.ID), never pointers, so a
// Tracker implementation never needs anything beyond this package's
// exported types.
type Tracker interface {
	// AddEntity registers an entity's id, slash-joined path name, and a short
	// alias (aka), for trackers that want a human label without walking
	// the entity tree themselves.
	AddEntity(id uint64, name, aka string)
	// Enter marks obj entering scope (a component starting to process a
	// value it has just taken off a port, for instance).
	Enter(scope uint64, obj SimObject)
	// Exit marks obj leaving scope, paired with a prior Enter.
	Exit(scope uint64, obj SimObject)
	// Value records a scalar sample against scope (a queue depth, a
	// credit balance), for trackers that chart time series.
	Value(scope uint64, v float64)
	// Create marks a SimObject coming into existence -- obj sized at
	// bytes, classified as kind, under the given name.
	Create(scope uint64, obj SimObject, bytes uint64, kind, name string)
	// Destroy marks a SimObject going out of existence. bytes/kind/name
	// describe it the same way Create's did.
	Destroy(scope uint64, obj SimObject, bytes uint64, kind, name string)
	// Connect records a static wiring edge between two entities, once,
	// at setup time -- not a per-value transfer.
	Connect(from, to uint64)
	// Log emits a leveled, structured log line attributed to scope.
	Log(scope uint64, level Level, msg string, args ...any)
	// Time records a scalar duration (in nanoseconds) against scope.
	Time(scope uint64, ns float64)
	// Shutdown flushes and closes the tracker. Called exactly once, at
	// the end of a run, win or lose.
	Shutdown()
}

// noopTracker discards every event. It is the Engine's default until a
// caller installs a real one with SetTracker.
type noopTracker struct{}

func (noopTracker) AddEntity(id uint64, name, aka string)                                {}
func (noopTracker) Enter(scope uint64, obj SimObject)                                    {}
func (noopTracker) Exit(scope uint64, obj SimObject)                                     {}
func (noopTracker) Value(scope uint64, v float64)                                        {}
func (noopTracker) Create(scope uint64, obj SimObject, bytes uint64, kind, name string)  {}
func (noopTracker) Destroy(scope uint64, obj SimObject, bytes uint64, kind, name string) {}
func (noopTracker) Connect(from, to uint64)                                              {}
func (noopTracker) Log(scope uint64, level Level, msg string, args ...any)               {}
func (noopTracker) Time(scope uint64, ns float64)                                        {}
func (noopTracker) Shutdown()                                                            {}
