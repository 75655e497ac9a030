package core

import (
	"path/filepath"
	"runtime"
	"strings"
	"sync"
)

// Frame describes one stack frame.
type Frame struct {
	File     string
	Line     int
	Column   int // Go does not record columns; always 0
	Function string
	Type     string
}

// CaptureCallStack returns the frames of the calling goroutine, skipping
// skip frames above the caller of CaptureCallStack.
func CaptureCallStack(skip int) []Frame {
	return resolveFrames(capturePCs(skip + 1))
}

func capturePCs(skip int) []uintptr {
	var pcs [32]uintptr
	// +2 skips runtime.Callers and capturePCs itself
	n := runtime.Callers(skip+2, pcs[:])
	out := make([]uintptr, n)
	copy(out, pcs[:n])
	return out
}

func resolveFrames(pcs []uintptr) []Frame {
	if len(pcs) == 0 {
		return nil
	}
	frames := runtime.CallersFrames(pcs)
	out := make([]Frame, 0, len(pcs))
	for {
		f, more := frames.Next()
		fn, typ := splitFunction(f.Function)
		out = append(out, Frame{
			File:     f.File,
			Line:     f.Line,
			Function: fn,
			Type:     typ,
		})
		if !more {
			break
		}
	}
	return out
}

// splitFunction turns "github.com/x/pkg.(*T).Method" into ("Method", "T")
// and "github.com/x/pkg.fn.func1" into ("fn.func1", "").
func splitFunction(full string) (fn, typ string) {
	if full == "" {
		return "", ""
	}
	name := full
	if i := strings.LastIndexByte(name, '/'); i >= 0 {
		name = name[i+1:]
	}
	// drop the package name
	if i := strings.IndexByte(name, '.'); i >= 0 {
		name = name[i+1:]
	}
	if strings.HasPrefix(name, "(") {
		if end := strings.IndexByte(name, ')'); end > 0 {
			typ = strings.TrimPrefix(name[1:end], "*")
			fn = strings.TrimPrefix(name[end+1:], ".")
			return fn, typ
		}
	}
	return name, ""
}

// CallSite is the resolved location of a log call.
type CallSite struct {
	File     string // relative to the main package directory when possible
	Line     int
	Column   int
	Function string
	Type     string
	Defined  bool
}

// callStack resolves captured program counters on first use. It is shared
// by a Context and all of its per-handler views.
type callStack struct {
	once sync.Once
	pcs  []uintptr
	site CallSite
}

func newCallStack(pcs []uintptr) *callStack {
	return &callStack{pcs: pcs}
}

func (c *callStack) get() CallSite {
	if c == nil {
		return CallSite{}
	}
	c.once.Do(func() {
		frames := resolveFrames(c.pcs)
		if len(frames) == 0 {
			return
		}
		f := frames[0]
		c.site = CallSite{
			File:     RelativeToMain(f.File),
			Line:     f.Line,
			Column:   f.Column,
			Function: f.Function,
			Type:     f.Type,
			Defined:  true,
		}
	})
	return c.site
}

var (
	mainDirMu sync.RWMutex
	mainDir   string
)

// SetMainDir overrides the directory call-site file names are made
// relative to. An empty dir restores detection.
func SetMainDir(dir string) {
	if dir != "" {
		dir = filepath.Clean(dir)
	}
	mainDirMu.Lock()
	mainDir = dir
	mainDirMu.Unlock()
}

// MainDir returns the directory of the main package, detected from the
// first stack that passes through main.main. It returns "" until then.
func MainDir() string {
	mainDirMu.RLock()
	dir := mainDir
	mainDirMu.RUnlock()
	if dir != "" {
		return dir
	}
	var pcs [64]uintptr
	frames := runtime.CallersFrames(pcs[:runtime.Callers(1, pcs[:])])
	for {
		f, more := frames.Next()
		if f.Function == "main.main" {
			dir = filepath.Dir(f.File)
			SetMainDir(dir)
			return dir
		}
		if !more {
			return ""
		}
	}
}

// RelativeToMain returns file relative to MainDir. Files outside the main
// directory, or any file when it is unknown, keep their base name only.
func RelativeToMain(file string) string {
	if file == "" {
		return ""
	}
	dir := MainDir()
	if dir != "" {
		if rel, err := filepath.Rel(dir, file); err == nil && !strings.HasPrefix(rel, "..") {
			return filepath.ToSlash(rel)
		}
	}
	return filepath.Base(file)
}
