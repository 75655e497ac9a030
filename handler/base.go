package handler

import (
	"sync/atomic"

	"github.com/davecgh/go-spew/spew"

	"github.com/philipp01105/treelog/core"
)

// Base carries the state every handler shares: an optional level, the
// silenced flag, an optional dump configuration and statistics. Embed it
// to get Enabled, View and the silence toggles.
//
// The zero value accepts every level and is not silenced. Level and
// dumper setters are meant for setup time; only the silenced flag is
// safe to flip while logging.
type Base struct {
	level    int
	hasLevel bool
	console  bool
	silenced atomic.Bool
	dumper   *spew.ConfigState
	name     string
	stats    Stats
}

// SetLevel sets the minimum level index. core.Unset removes the filter.
func (b *Base) SetLevel(idx int) {
	if idx < 0 {
		b.level, b.hasLevel = 0, false
		return
	}
	b.level, b.hasLevel = idx, true
}

// Level returns the own level index, or core.Unset.
func (b *Base) Level() int {
	if !b.hasLevel {
		return core.Unset
	}
	return b.level
}

// MoreVerbose lowers the level by one step. Stepping below the lowest
// level removes the filter.
func (b *Base) MoreVerbose(levels *core.Levels) error {
	if !b.hasLevel {
		return nil
	}
	name, err := levels.StepDown(b.level)
	if err != nil {
		return err
	}
	if name == "" {
		b.SetLevel(core.Unset)
		return nil
	}
	idx, err := levels.IndexOf(name)
	if err != nil {
		return err
	}
	b.SetLevel(idx)
	return nil
}

// LessVerbose raises the level by one step, clamped at the highest.
func (b *Base) LessVerbose(levels *core.Levels) error {
	current := 0
	if b.hasLevel {
		current = b.level
	}
	name, err := levels.StepUp(current)
	if err != nil {
		return err
	}
	idx, err := levels.IndexOf(name)
	if err != nil {
		return err
	}
	b.SetLevel(idx)
	return nil
}

// SetConsole marks the handler as console output, subject to the
// process-wide "silence console" flag.
func (b *Base) SetConsole(console bool) {
	b.console = console
}

// Silence mutes this handler.
func (b *Base) Silence() {
	b.silenced.Store(true)
}

// Unsilence clears this handler's own silenced flag.
func (b *Base) Unsilence() {
	b.silenced.Store(false)
}

// Silenced reports whether the handler is muted by its own flag or by
// the process-wide switches.
func (b *Base) Silenced(sw *core.Switches) bool {
	if b.silenced.Load() || sw.All() {
		return true
	}
	return b.console && sw.Console()
}

// Enabled applies the silence flags and the level filter.
func (b *Base) Enabled(ctx *core.Context) bool {
	if b.Silenced(ctx.Switches) {
		return false
	}
	return !b.hasLevel || ctx.Level >= b.level
}

// SetDumper sets the configuration used to render %o and %O for this
// handler.
func (b *Base) SetDumper(cfg *spew.ConfigState) {
	b.dumper = cfg
}

// View returns the handler's view of ctx.
func (b *Base) View(ctx *core.Context) *core.Context {
	return ctx.View(b.dumper)
}

// SetName sets the identity reported in failure diagnostics.
func (b *Base) SetName(name string) {
	b.name = name
}

// Name returns the identity set with SetName.
func (b *Base) Name() string {
	return b.name
}

// Record counts the outcome of one Handle call.
func (b *Base) Record(err error) {
	if err != nil {
		b.stats.IncrementFailed()
		return
	}
	b.stats.IncrementProcessed()
}

// Stats returns a snapshot of the handler statistics.
func (b *Base) Stats() Snapshot {
	return b.stats.GetSnapshot()
}
