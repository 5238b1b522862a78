package components

import (
	"fmt"

	"github.com/fabricsim/fabricsim/engine"
)

// intValue is a minimal engine.SimObject used across component tests.
type intValue struct {
	id    uint64
	value int
}

func newIntValue(id uint64, value int) intValue {
	return intValue{id: id, value: value}
}

func (v intValue) ID() uint64     { return v.id }
func (v intValue) Tag() string    { return fmt.Sprintf("int(%d)", v.value) }
func (v intValue) BitSize() uint64 { return 32 }

// drainReady runs the executor to quiescence given a clock, advancing the
// clock whenever no task is ready, until both are exhausted.
func drainReady(ex *engine.Executor, clock *engine.Clock) error {
	for {
		if err := ex.RunReady(); err != nil {
			return err
		}
		advanced, err := clock.AdvanceNext()
		if err != nil {
			return err
		}
		if !advanced {
			return nil
		}
	}
}
