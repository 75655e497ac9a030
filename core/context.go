package core

import (
	"sort"
	"sync"
	"time"

	"github.com/davecgh/go-spew/spew"
)

// Context represents a single log event. It is built by a logger for one
// log call and handed to each handler; nothing retains it afterwards.
type Context struct {
	Logger    string
	Level     int
	LevelName string
	Template  string
	Args      []any
	Time      time.Time
	Extra     map[string]any
	Switches  *Switches

	args   *argList
	stack  *callStack
	dumper *spew.ConfigState

	once    sync.Once
	message string
}

// argList evaluates Lazy arguments once for a Context and its views.
type argList struct {
	once     sync.Once
	resolved []any
}

func (a *argList) get(raw []any) []any {
	a.once.Do(func() {
		a.resolved = resolveLazy(raw)
	})
	return a.resolved
}

// NewContext creates a Context stamped with the current time.
func NewContext(logger string, level int, levelName, template string, args []any) *Context {
	return &Context{
		Logger:    logger,
		Level:     level,
		LevelName: levelName,
		Template:  template,
		Args:      args,
		Time:      time.Now(),
		args:      &argList{},
	}
}

// CaptureCaller records the program counters of the stack skip frames
// above the caller of CaptureCaller. They are resolved on first read.
func (c *Context) CaptureCaller(skip int) {
	c.stack = newCallStack(capturePCs(skip + 1))
}

// SetCallerPC records a single, already known program counter.
func (c *Context) SetCallerPC(pc uintptr) {
	if pc == 0 {
		return
	}
	c.stack = newCallStack([]uintptr{pc})
}

// Render substitutes the positional arguments into the template. The
// result is computed once and reused.
func (c *Context) Render() string {
	c.once.Do(func() {
		var args []any
		if c.args != nil {
			args = c.args.get(c.Args)
		} else {
			args = c.Args
		}
		c.message = Sprintf(c.dumper, c.Template, args...)
	})
	return c.message
}

// Dumper returns the dump configuration used for %o and %O.
func (c *Context) Dumper() *spew.ConfigState {
	if c.dumper == nil {
		return DefaultDumper
	}
	return c.dumper
}

// View returns a Context sharing everything with c except the dump
// configuration and the rendered message. A nil dumper returns c.
func (c *Context) View(dumper *spew.ConfigState) *Context {
	if dumper == nil || dumper == c.dumper {
		return c
	}
	return &Context{
		Logger:    c.Logger,
		Level:     c.Level,
		LevelName: c.LevelName,
		Template:  c.Template,
		Args:      c.Args,
		Time:      c.Time,
		Extra:     c.Extra,
		Switches:  c.Switches,
		args:      c.args,
		stack:     c.stack,
		dumper:    dumper,
	}
}

// Caller resolves the call site. The zero CallSite is returned when no
// stack was captured.
func (c *Context) Caller() CallSite {
	return c.stack.get()
}

func (c *Context) Filename() string { return c.Caller().File }
func (c *Context) Line() int        { return c.Caller().Line }
func (c *Context) Column() int      { return c.Caller().Column }
func (c *Context) Func() string     { return c.Caller().Function }
func (c *Context) Type() string     { return c.Caller().Type }

// ExtraKeys returns the extra data keys in sorted order.
func (c *Context) ExtraKeys() []string {
	keys := make([]string, 0, len(c.Extra))
	for k := range c.Extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
