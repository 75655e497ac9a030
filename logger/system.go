package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"runtime"
	"sort"
	"strings"
	"sync"

	"go.uber.org/multierr"

	"github.com/philipp01105/treelog/core"
	"github.com/philipp01105/treelog/handler"
)

// RootName is the name of the root logger.
const RootName = "root"

// System owns a logger registry, its root logger, the process-wide
// silence switches and the fallback channel handler failures are
// reported on.
type System struct {
	levels   *core.Levels
	dispatch map[string]int
	switches core.Switches

	mu      sync.RWMutex // guards loggers
	loggers map[string]*Logger
	root    *Logger

	errMu  sync.Mutex // serializes writes to errOut
	errOut io.Writer

	captureCaller bool
	coarseClock   bool
}

// Option configures a System
type Option func(*System)

// WithLevels replaces the default TRACE..CRITICAL sequence.
func WithLevels(levels *core.Levels) Option {
	return func(s *System) {
		if levels != nil {
			s.levels = levels
		}
	}
}

// WithErrorOutput sets where handler failures are reported
// (default: os.Stderr).
func WithErrorOutput(w io.Writer) Option {
	return func(s *System) {
		if w != nil {
			s.errOut = w
		}
	}
}

// WithCaller enables or disables call-site capture (default: enabled).
func WithCaller(enabled bool) Option {
	return func(s *System) {
		s.captureCaller = enabled
	}
}

// WithCoarseClock stamps contexts from core.CoarseNow instead of
// time.Now, trading sub-millisecond precision for speed.
func WithCoarseClock(enabled bool) Option {
	return func(s *System) {
		s.coarseClock = enabled
	}
}

// WithMainDir sets the directory call-site file names and LoggerFor
// names are relative to. The setting is process-wide.
func WithMainDir(dir string) Option {
	return func(*System) {
		core.SetMainDir(dir)
	}
}

// NewSystem creates a logging system with an empty root logger.
func NewSystem(opts ...Option) *System {
	s := &System{
		levels:        core.DefaultLevels(),
		loggers:       make(map[string]*Logger),
		errOut:        os.Stderr,
		captureCaller: true,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.coarseClock {
		core.StartCoarseClock()
	}

	s.dispatch = make(map[string]int, s.levels.Len())
	for i, name := range s.levels.Names() {
		s.dispatch[name] = i
	}

	s.root = newLogger(s, RootName)
	return s
}

// Levels returns the level registry
func (s *System) Levels() *core.Levels {
	return s.levels
}

// Root returns the root logger
func (s *System) Root() *Logger {
	return s.root
}

// GetLogger returns the logger registered under name, creating it when
// absent. "" and "root" return the root logger. Ancestors are not
// created.
func (s *System) GetLogger(name string) *Logger {
	if name == "" || name == RootName {
		return s.root
	}

	s.mu.RLock()
	l, ok := s.loggers[name]
	s.mu.RUnlock()
	if ok {
		return l
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if l, ok = s.loggers[name]; ok {
		return l
	}
	l = newLogger(s, name)
	s.loggers[name] = l
	return l
}

// lookup returns a registered logger without creating it.
func (s *System) lookup(name string) (*Logger, bool) {
	s.mu.RLock()
	l, ok := s.loggers[name]
	s.mu.RUnlock()
	return l, ok
}

// parentOf strips trailing segments of name until a registered logger is
// found. It returns root when none is, and nil for root itself.
func (s *System) parentOf(name string) *Logger {
	if name == RootName {
		return nil
	}
	for {
		i := strings.LastIndexByte(name, '.')
		if i < 0 {
			return s.root
		}
		name = name[:i]
		if l, ok := s.lookup(name); ok {
			return l
		}
	}
}

// Loggers returns the names of all registered loggers, root excluded,
// in sorted order.
func (s *System) Loggers() []string {
	s.mu.RLock()
	names := make([]string, 0, len(s.loggers))
	for name := range s.loggers {
		names = append(names, name)
	}
	s.mu.RUnlock()
	sort.Strings(names)
	return names
}

// LoggerFor returns the logger named after a source file: the path
// relative to the main package directory, without its .go suffix, with
// separators turned into dots.
func (s *System) LoggerFor(path string) *Logger {
	return s.GetLogger(NameFor(path))
}

// LoggerForCaller returns the logger named after the caller's source file.
func (s *System) LoggerForCaller() *Logger {
	if file := callerFile(2); file != "" {
		return s.LoggerFor(file)
	}
	return s.root
}

// callerFile returns the source file of the frame skip levels up; 1 is
// the caller of callerFile.
func callerFile(skip int) string {
	_, file, _, ok := runtime.Caller(skip)
	if !ok {
		return ""
	}
	return file
}

// NameFor derives a logger name from a source path. It returns "" when
// nothing remains, which GetLogger maps to root.
func NameFor(path string) string {
	if path == "" {
		return ""
	}
	var rel string
	if filepath.IsAbs(path) {
		rel = core.RelativeToMain(path)
	} else {
		rel = filepath.ToSlash(filepath.Clean(path))
	}
	rel = strings.TrimSuffix(rel, ".go")
	rel = strings.ReplaceAll(rel, "/", ".")
	return strings.Trim(rel, ".")
}

// Silence silences every logger and handler when all is true, and only
// console handlers otherwise.
func (s *System) Silence(all bool) {
	s.switches.Silence(all)
}

// Unsilence clears both process-wide silence flags.
func (s *System) Unsilence() {
	s.switches.Unsilence()
}

// Switches exposes the process-wide silence flags.
func (s *System) Switches() *core.Switches {
	return &s.switches
}

// reportError writes a handler failure to the fallback channel.
func (s *System) reportError(err error) {
	s.errMu.Lock()
	defer s.errMu.Unlock()
	fmt.Fprintf(s.errOut, "treelog: %v\n", err)
}

// Close closes every handler attached to a logger of s. A handler shared
// by several loggers is closed once.
func (s *System) Close() error {
	s.mu.RLock()
	loggers := make([]*Logger, 0, len(s.loggers)+1)
	loggers = append(loggers, s.root)
	for _, l := range s.loggers {
		loggers = append(loggers, l)
	}
	s.mu.RUnlock()

	seen := make(map[handler.Handler]struct{})
	var err error
	for _, l := range loggers {
		for _, h := range l.Handlers() {
			if reflect.TypeOf(h).Comparable() {
				if _, dup := seen[h]; dup {
					continue
				}
				seen[h] = struct{}{}
			}
			err = multierr.Append(err, h.Close())
		}
	}
	return err
}
