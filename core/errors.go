package core

import (
	"errors"
	"fmt"
)

// ErrUnknownLevel is matched by every UnknownLevelError via errors.Is.
var ErrUnknownLevel = errors.New("unknown level")

// UnknownLevelError is returned when a level name or index cannot be
// resolved against a Levels registry.
type UnknownLevelError struct {
	Level any
}

func (e *UnknownLevelError) Error() string {
	return fmt.Sprintf("unknown level %#v", e.Level)
}

// Is reports whether target is ErrUnknownLevel.
func (e *UnknownLevelError) Is(target error) bool {
	return target == ErrUnknownLevel
}

// HandlerError wraps a failure raised by a handler while processing a
// Context. Handler is a human-readable identity of the failing handler.
type HandlerError struct {
	Logger  string
	Handler string
	Err     error
}

func (e *HandlerError) Error() string {
	return fmt.Sprintf("handler %s failed on logger %q: %v", e.Handler, e.Logger, e.Err)
}

func (e *HandlerError) Unwrap() error {
	return e.Err
}

// PanicError carries a value recovered from a panicking handler.
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

// Unwrap returns the recovered value when it is itself an error.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}
