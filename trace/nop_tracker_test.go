package trace

import "testing"

type testObj struct{ id uint64 }

func (o testObj) ID() uint64      { return o.id }
func (o testObj) Tag() string     { return "test" }
func (o testObj) BitSize() uint64 { return 8 }

func TestNopTracker_NeverPanics(t *testing.T) {
	var tr Tracker = NewNopTracker()
	obj := testObj{id: 1}

	tr.AddEntity(1, "root", "r")
	tr.Enter(1, obj)
	tr.Exit(1, obj)
	tr.Value(1, 3.5)
	tr.Create(1, obj, 8, "frame", "f")
	tr.Destroy(1, obj, 8, "frame", "f")
	tr.Connect(1, 2)
	tr.Log(1, LevelInfo, "hello %s", "world")
	tr.Time(1, 42)
	tr.Shutdown()
}
