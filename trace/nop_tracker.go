package trace

import "github.com/fabricsim/fabricsim/engine"

var _ engine.Tracker = (*NopTracker)(nil)

// NopTracker discards every event, for any run where the caller wants to
// install an explicit tracker without the overhead of formatting trace
// output. Engine's own default is an equivalent unexported no-op in
// package engine.
type NopTracker struct{}

// NewNopTracker returns a Tracker that does nothing.
func NewNopTracker() *NopTracker { return &NopTracker{} }

func (NopTracker) AddEntity(id uint64, name, aka string)                           {}
func (NopTracker) Enter(scope uint64, obj SimObject)                               {}
func (NopTracker) Exit(scope uint64, obj SimObject)                                {}
func (NopTracker) Value(scope uint64, v float64)                                   {}
func (NopTracker) Create(scope uint64, obj SimObject, bytes uint64, kind, name string)  {}
func (NopTracker) Destroy(scope uint64, obj SimObject, bytes uint64, kind, name string) {}
func (NopTracker) Connect(from, to uint64)                                         {}
func (NopTracker) Log(scope uint64, level Level, msg string, args ...any)          {}
func (NopTracker) Time(scope uint64, ns float64)                                   {}
func (NopTracker) Shutdown()                                                       {}
