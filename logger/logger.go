package logger

import (
	"reflect"
	"strings"
	"sync/atomic"

	"github.com/philipp01105/treelog/core"
	"github.com/philipp01105/treelog/handler"
)

// Logger is a named node of a System's hierarchy. Names are dot
// separated; "a.b" descends from "a", which descends from root.
//
// Level, handlers, propagate and extra data are configuration: set them
// during setup. The setters are not synchronized against concurrent
// logging. Silence and Unsilence are safe at any time.
type Logger struct {
	sys       *System
	name      string
	level     int
	handlers  []handler.Handler
	propagate bool
	extra     map[string]any
	silenced  atomic.Bool
}

// LevelFunc logs at a fixed level
type LevelFunc func(msg string, args ...any) *Logger

func newLogger(s *System, name string) *Logger {
	return &Logger{
		sys:       s,
		name:      name,
		level:     core.Unset,
		propagate: true,
	}
}

// Name returns the logger name
func (l *Logger) Name() string {
	return l.name
}

// System returns the system the logger belongs to
func (l *Logger) System() *System {
	return l.sys
}

// Parent returns the nearest registered ancestor, root for top-level
// names, and nil for root.
func (l *Logger) Parent() *Logger {
	return l.sys.parentOf(l.name)
}

// SetLevel sets the own level by name or index. core.Unset clears it.
func (l *Logger) SetLevel(level any) error {
	if i, ok := level.(int); ok && i == core.Unset {
		l.level = core.Unset
		return nil
	}
	idx, err := l.sys.levels.IndexOf(level)
	if err != nil {
		return err
	}
	l.level = idx
	return nil
}

// ClearLevel removes the own level so it is inherited again.
func (l *Logger) ClearLevel() {
	l.level = core.Unset
}

// Level returns the own level index, or core.Unset.
func (l *Logger) Level() int {
	return l.level
}

// EffectiveLevel returns the nearest explicitly set level walking
// towards root, or 0 when none is set.
func (l *Logger) EffectiveLevel() int {
	idx, ok := resolveInherited(l, func(n *Logger) (int, bool) {
		return n.level, n.level != core.Unset
	})
	if !ok {
		return 0
	}
	return idx
}

// EffectiveLevelName returns the name of EffectiveLevel.
func (l *Logger) EffectiveLevelName() string {
	name, _ := l.sys.levels.NameOf(l.EffectiveLevel())
	return name
}

// IsEnabledFor reports whether a record at level would reach the
// handlers.
func (l *Logger) IsEnabledFor(level any) bool {
	if l.Silenced() {
		return false
	}
	idx, err := l.sys.levels.IndexOf(level)
	return err == nil && idx >= l.EffectiveLevel()
}

// AddHandler appends handlers to the own list
func (l *Logger) AddHandler(hs ...handler.Handler) *Logger {
	l.handlers = append(l.handlers, hs...)
	return l
}

// RemoveHandler removes the first occurrence of h from the own list.
// Handlers of a non-comparable type cannot be matched and are never
// removed; use SetHandlers for those.
func (l *Logger) RemoveHandler(h handler.Handler) bool {
	if h == nil || !reflect.TypeOf(h).Comparable() {
		return false
	}
	for i, cur := range l.handlers {
		if cur == h {
			l.handlers = append(l.handlers[:i:i], l.handlers[i+1:]...)
			return true
		}
	}
	return false
}

// SetHandlers replaces the own list
func (l *Logger) SetHandlers(hs ...handler.Handler) *Logger {
	l.handlers = append([]handler.Handler(nil), hs...)
	return l
}

// Handlers returns a copy of the own handler list
func (l *Logger) Handlers() []handler.Handler {
	return append([]handler.Handler(nil), l.handlers...)
}

// EffectiveHandlers returns the own handlers followed by each ancestor's,
// nearest first, stopping after the first logger that does not
// propagate.
func (l *Logger) EffectiveHandlers() []handler.Handler {
	var out []handler.Handler
	for n := range l.lineage() {
		out = append(out, n.handlers...)
		if !n.propagate {
			break
		}
	}
	return out
}

// SetPropagate controls whether ancestor handlers receive this logger's
// records. Level inheritance is unaffected.
func (l *Logger) SetPropagate(propagate bool) *Logger {
	l.propagate = propagate
	return l
}

// Propagate reports the propagate flag
func (l *Logger) Propagate() bool {
	return l.propagate
}

// SetExtra sets one extra data entry
func (l *Logger) SetExtra(key string, value any) *Logger {
	if l.extra == nil {
		l.extra = make(map[string]any)
	}
	l.extra[key] = value
	return l
}

// SetExtras merges extra into the own extra data
func (l *Logger) SetExtras(extra map[string]any) *Logger {
	for k, v := range extra {
		l.SetExtra(k, v)
	}
	return l
}

// DeleteExtra removes an own extra data entry
func (l *Logger) DeleteExtra(key string) *Logger {
	delete(l.extra, key)
	return l
}

// Extra returns a copy of the own extra data
func (l *Logger) Extra() map[string]any {
	out := make(map[string]any, len(l.extra))
	for k, v := range l.extra {
		out[k] = v
	}
	return out
}

// EffectiveExtra merges the extra data of the logger and its ancestors;
// nearer values win. It returns nil when there is none.
func (l *Logger) EffectiveExtra() map[string]any {
	var chain []*Logger
	for n := range l.lineage() {
		if len(n.extra) > 0 {
			chain = append(chain, n)
		}
	}
	if len(chain) == 0 {
		return nil
	}
	out := make(map[string]any)
	for i := len(chain) - 1; i >= 0; i-- {
		for k, v := range chain[i].extra {
			out[k] = v
		}
	}
	return out
}

// Silence mutes this logger
func (l *Logger) Silence() *Logger {
	l.silenced.Store(true)
	return l
}

// Unsilence clears this logger's own silenced flag
func (l *Logger) Unsilence() *Logger {
	l.silenced.Store(false)
	return l
}

// Silenced reports whether the logger is muted by its own flag or the
// process-wide "silence all" switch.
func (l *Logger) Silenced() bool {
	return l.silenced.Load() || l.sys.switches.All()
}

// Log renders msg with args and sends it to the effective handlers.
// It fails only when level is unknown; handler failures go to the
// system's error output.
func (l *Logger) Log(level any, msg string, args ...any) error {
	if l.Silenced() {
		return nil
	}
	idx, err := l.sys.levels.IndexOf(level)
	if err != nil {
		return err
	}
	l.log(idx, msg, args, 1)
	return nil
}

// At returns the logging function for a level name.
func (l *Logger) At(level string) (LevelFunc, error) {
	idx, ok := l.sys.levelIndex(level)
	if !ok {
		return nil, &core.UnknownLevelError{Level: level}
	}
	return func(msg string, args ...any) *Logger {
		if !l.Silenced() {
			l.log(idx, msg, args, 1)
		}
		return l
	}, nil
}

// Trace logs at TRACE
func (l *Logger) Trace(msg string, args ...any) *Logger {
	return l.logNamed("TRACE", msg, args, 1)
}

// Debug logs at DEBUG
func (l *Logger) Debug(msg string, args ...any) *Logger {
	return l.logNamed("DEBUG", msg, args, 1)
}

// Info logs at INFO
func (l *Logger) Info(msg string, args ...any) *Logger {
	return l.logNamed("INFO", msg, args, 1)
}

// Warn logs at WARN
func (l *Logger) Warn(msg string, args ...any) *Logger {
	return l.logNamed("WARN", msg, args, 1)
}

// Error logs at ERROR
func (l *Logger) Error(msg string, args ...any) *Logger {
	return l.logNamed("ERROR", msg, args, 1)
}

// Critical logs at CRITICAL
func (l *Logger) Critical(msg string, args ...any) *Logger {
	return l.logNamed("CRITICAL", msg, args, 1)
}

// logNamed logs at a level name from the dispatch map. skip counts the
// frames between logNamed's caller and the user's call site. A name the
// level list lacks is reported on the error output.
func (l *Logger) logNamed(level, msg string, args []any, skip int) *Logger {
	if l.Silenced() {
		return l
	}
	idx, ok := l.sys.dispatch[level]
	if !ok {
		l.sys.reportError(&core.UnknownLevelError{Level: level})
		return l
	}
	l.log(idx, msg, args, skip+1)
	return l
}

// log builds a Context and dispatches it. skip counts the frames between
// log's caller and the user's call site.
func (l *Logger) log(idx int, msg string, args []any, skip int) {
	if idx < l.EffectiveLevel() {
		return
	}
	name, _ := l.sys.levels.NameOf(idx)
	ctx := core.NewContext(l.name, idx, name, msg, args)
	if l.sys.coarseClock {
		ctx.Time = core.CoarseNow()
	}
	if l.sys.captureCaller {
		ctx.CaptureCaller(skip + 1)
	}
	l.dispatch(ctx)
}

// dispatch attaches the effective extra data and delivers ctx to every
// effective handler, each in isolation.
func (l *Logger) dispatch(ctx *core.Context) {
	extra := l.EffectiveExtra()
	if len(ctx.Extra) > 0 {
		if extra == nil {
			extra = make(map[string]any, len(ctx.Extra))
		}
		for k, v := range ctx.Extra {
			extra[k] = v
		}
	}
	ctx.Extra = extra
	ctx.Switches = &l.sys.switches

	for _, h := range l.EffectiveHandlers() {
		if err := handler.Deliver(h, ctx); err != nil {
			l.sys.reportError(&core.HandlerError{
				Logger:  l.name,
				Handler: handler.Describe(h),
				Err:     err,
			})
		}
	}
}

// levelIndex looks a level name up in the dispatch map, exactly first
// and then uppercased.
func (s *System) levelIndex(name string) (int, bool) {
	if idx, ok := s.dispatch[name]; ok {
		return idx, true
	}
	idx, ok := s.dispatch[strings.ToUpper(name)]
	return idx, ok
}
