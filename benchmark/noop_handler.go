package benchmark

import (
	"github.com/philipp01105/treelog/core"
	"github.com/philipp01105/treelog/handler"
)

// noopHandler accepts every context and renders nothing, isolating the
// cost of dispatch.
type noopHandler struct {
	handler.Base
}

func newNoopHandler() *noopHandler {
	return &noopHandler{}
}

func (h *noopHandler) Handle(ctx *core.Context) error {
	_ = len(ctx.Template)
	return nil
}

func (h *noopHandler) Close() error {
	return nil
}
