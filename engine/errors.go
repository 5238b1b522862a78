package engine

import (
	"errors"
	"fmt"
)

// ErrorClass partitions failures the way the simulator's callers need to
// react to them: a bad configuration surfaces before a run starts, a
// deadlock or watchdog trip happens mid-run and means the model is wedged.
type ErrorClass int

const (
	// ClassConfiguration indicates a component was built with invalid
	// parameters (zero ports, mismatched weights, negative capacities).
	ClassConfiguration ErrorClass = iota
	// ClassConnection indicates a port was connected twice, or an
	// operation was attempted on a port that was never connected.
	ClassConnection
	// ClassTemporal indicates a clock operation violated monotonic time
	// (waiting for a tick/phase that has already passed).
	ClassTemporal
	// ClassDeadlock indicates the executor has no runnable task and no
	// scheduled wakeup, so the simulation can never make progress again.
	ClassDeadlock
	// ClassProtocol indicates a component received a value it cannot
	// route or process under its configured policy.
	ClassProtocol
	// ClassWatchdog indicates an external time or tick budget expired.
	ClassWatchdog
)

func (c ErrorClass) String() string {
	switch c {
	case ClassConfiguration:
		return "Configuration"
	case ClassConnection:
		return "Connection"
	case ClassTemporal:
		return "Temporal"
	case ClassDeadlock:
		return "Deadlock"
	case ClassProtocol:
		return "Protocol"
	case ClassWatchdog:
		return "Watchdog"
	default:
		return "Unknown"
	}
}

// SimError is the error value every engine and component operation returns.
// Callers that need to distinguish failure classes should use errors.As.
type SimError struct {
	Class ErrorClass
	Msg   string
	Err   error
}

func (e *SimError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Class, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Class, e.Msg)
}

func (e *SimError) Unwrap() error { return e.Err }

// NewError builds a SimError with no wrapped cause.
func NewError(class ErrorClass, format string, args ...any) *SimError {
	return &SimError{Class: class, Msg: fmt.Sprintf(format, args...)}
}

// WrapError builds a SimError wrapping an existing error.
func WrapError(class ErrorClass, err error, format string, args ...any) *SimError {
	return &SimError{Class: class, Msg: fmt.Sprintf(format, args...), Err: err}
}

// IsClass reports whether err is a *SimError of the given class.
func IsClass(err error, class ErrorClass) bool {
	var se *SimError
	if errors.As(err, &se) {
		return se.Class == class
	}
	return false
}
