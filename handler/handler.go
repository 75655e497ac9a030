package handler

import (
	"errors"
	"fmt"

	"github.com/philipp01105/treelog/core"
)

// ErrClosed is returned by Handle after Close.
var ErrClosed = errors.New("handler: closed")

// Handler defines the interface for log handlers
type Handler interface {
	// Enabled reports whether the handler accepts ctx, applying its own
	// level and silence flags
	Enabled(ctx *core.Context) bool

	// Handle processes a log context
	Handle(ctx *core.Context) error

	// Close closes the handler and releases resources
	Close() error
}

// Viewer is an optional interface for handlers that render through their
// own view of a Context, such as a handler-specific dump configuration.
type Viewer interface {
	View(ctx *core.Context) *core.Context
}

// Named is an optional interface giving a handler a readable identity in
// failure diagnostics.
type Named interface {
	Name() string
}

// Invoke passes ctx through the handler's view and calls Handle. A panic
// inside Handle is returned as a *core.PanicError.
func Invoke(h Handler, ctx *core.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &core.PanicError{Value: r}
		}
	}()
	if v, ok := h.(Viewer); ok {
		ctx = v.View(ctx)
	}
	return h.Handle(ctx)
}

// Deliver calls Invoke when h is Enabled for ctx. A panic inside Enabled
// is returned as a *core.PanicError as well.
func Deliver(h Handler, ctx *core.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &core.PanicError{Value: r}
		}
	}()
	if !h.Enabled(ctx) {
		return nil
	}
	return Invoke(h, ctx)
}

// Describe returns the identity used for h in diagnostics: its Name when
// it has a non-empty one, its dynamic type otherwise.
func Describe(h Handler) string {
	if n, ok := h.(Named); ok {
		if name := n.Name(); name != "" {
			return fmt.Sprintf("%q (%T)", name, h)
		}
	}
	return fmt.Sprintf("%T", h)
}

// FuncHandler adapts a function into a Handler
type FuncHandler struct {
	Base
	fn func(ctx *core.Context) error
}

// NewFuncHandler creates a handler calling fn for every accepted context
func NewFuncHandler(fn func(ctx *core.Context) error) *FuncHandler {
	return &FuncHandler{fn: fn}
}

// Handle calls the wrapped function
func (h *FuncHandler) Handle(ctx *core.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			h.Record(&core.PanicError{Value: r})
			panic(r)
		}
		h.Record(err)
	}()
	return h.fn(ctx)
}

// Close is a no-op
func (h *FuncHandler) Close() error {
	return nil
}
