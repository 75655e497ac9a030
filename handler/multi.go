package handler

import (
	"go.uber.org/multierr"

	"github.com/philipp01105/treelog/core"
)

// MultiHandler groups handlers behind one level and silence switch. Each
// child still applies its own filter, and one child's failure does not
// stop delivery to the others.
type MultiHandler struct {
	Base
	handlers []Handler
}

// NewMultiHandler creates a new multi-handler
func NewMultiHandler(handlers ...Handler) *MultiHandler {
	return &MultiHandler{handlers: handlers}
}

// Handlers returns the child handlers
func (h *MultiHandler) Handlers() []Handler {
	out := make([]Handler, len(h.handlers))
	copy(out, h.handlers)
	return out
}

// Handle sends ctx to every enabled child and combines their errors
func (h *MultiHandler) Handle(ctx *core.Context) error {
	var err error
	for _, child := range h.handlers {
		err = multierr.Append(err, Deliver(child, ctx))
	}
	h.Record(err)
	return err
}

// Close closes all handlers
func (h *MultiHandler) Close() error {
	var err error
	for _, child := range h.handlers {
		err = multierr.Append(err, child.Close())
	}
	return err
}
