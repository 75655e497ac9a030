package consolehandler

import (
	"bytes"
	"io"
	"os"
	"sync"
	"sync/atomic"

	"github.com/mattn/go-isatty"

	"github.com/philipp01105/treelog/core"
	"github.com/philipp01105/treelog/formatter"
	"github.com/philipp01105/treelog/handler"
)

// ANSI color codes for terminal output
const (
	ColorReset   = "\033[0m"
	ColorGray    = "\033[90m"
	ColorGreen   = "\033[32m"
	ColorYellow  = "\033[33m"
	ColorRed     = "\033[31m"
	ColorBoldRed = "\033[1;31m"
	ColorCyan    = "\033[36m"
)

// DefaultDateTemplate is the line layout used when DateOnChange is set and
// no formatter is configured; the date moves into the header line.
const DefaultDateTemplate = "{time} [{level}] {name}: {message}"

// ColorMode selects when level colors are written
type ColorMode int

const (
	// ColorAuto colors output when the writer is a terminal and NO_COLOR
	// is not set
	ColorAuto ColorMode = iota
	// ColorAlways always writes color codes
	ColorAlways
	// ColorNever never writes color codes
	ColorNever
)

// ParseColorMode maps "auto", "always" and "never" to a ColorMode.
// Anything else is ColorAuto.
func ParseColorMode(s string) ColorMode {
	switch s {
	case "always", "true", "on":
		return ColorAlways
	case "never", "false", "off":
		return ColorNever
	}
	return ColorAuto
}

// LevelColor returns the color code for a level name. Names outside the
// default set are cyan.
func LevelColor(level string) string {
	switch level {
	case "CRITICAL":
		return ColorBoldRed
	case "ERROR":
		return ColorRed
	case "WARN":
		return ColorYellow
	case "INFO":
		return ColorGreen
	case "DEBUG", "TRACE":
		return ColorGray
	default:
		return ColorCyan
	}
}

// ConsoleConfig holds configuration for console handler
type ConsoleConfig struct {
	// Writer to write to (default: os.Stdout)
	Writer io.Writer
	// Formatter to use (default: TextFormatter)
	Formatter formatter.Formatter
	// Colors selects level coloring (default: ColorAuto)
	Colors ColorMode
	// DateOnChange writes a date header line before the first record and
	// whenever the date changes
	DateOnChange bool
	// DateFormat is the header date layout (default: 2006-01-02)
	DateFormat string
	// Level is the handler's own minimum level index (default: core.Unset)
	Level *int
}

// applyConsoleDefaults fills in zero-value fields with defaults.
func applyConsoleDefaults(cfg *ConsoleConfig) {
	if cfg.Writer == nil {
		cfg.Writer = os.Stdout
	}
	if cfg.Formatter == nil {
		fcfg := formatter.Config{}
		if cfg.DateOnChange {
			fcfg.Template = DefaultDateTemplate
		}
		cfg.Formatter = formatter.NewTextFormatter(fcfg)
	}
	if cfg.DateFormat == "" {
		cfg.DateFormat = "2006-01-02"
	}
}

// isTerminal reports whether w is a terminal that accepts color codes.
func isTerminal(w io.Writer) bool {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// ConsoleHandler writes formatted lines to a console writer. Writes are
// serialized so concurrent records never interleave.
type ConsoleHandler struct {
	handler.Base
	writer       io.Writer
	formatter    formatter.Formatter
	colors       bool
	dateOnChange bool
	dateFormat   string

	mu       sync.Mutex // protects buf, lastDate and writer
	buf      bytes.Buffer
	lastDate string
	closed   atomic.Bool
}

// NewConsoleHandler creates a new console handler.
func NewConsoleHandler(cfg ConsoleConfig) *ConsoleHandler {
	applyConsoleDefaults(&cfg)
	h := &ConsoleHandler{
		writer:       cfg.Writer,
		formatter:    cfg.Formatter,
		dateOnChange: cfg.DateOnChange,
		dateFormat:   cfg.DateFormat,
	}
	switch cfg.Colors {
	case ColorAlways:
		h.colors = true
	case ColorAuto:
		h.colors = isTerminal(cfg.Writer)
	}
	if cfg.Level != nil {
		h.SetLevel(*cfg.Level)
	}
	h.SetConsole(true)
	h.buf.Grow(256)
	return h
}

// Colors reports whether level colors are written.
func (h *ConsoleHandler) Colors() bool {
	return h.colors
}

// Handle formats ctx and writes it in a single Write call.
func (h *ConsoleHandler) Handle(ctx *core.Context) error {
	if h.closed.Load() {
		return handler.ErrClosed
	}
	data, err := h.formatter.Format(ctx)
	if err != nil {
		h.Record(err)
		return err
	}

	h.mu.Lock()
	h.buf.Reset()
	if h.dateOnChange {
		if date := ctx.Time.Format(h.dateFormat); date != h.lastDate {
			h.lastDate = date
			h.buf.WriteString("--- ")
			h.buf.WriteString(date)
			h.buf.WriteString(" ---\n")
		}
	}
	if h.colors {
		line := bytes.TrimSuffix(data, []byte{'\n'})
		h.buf.WriteString(LevelColor(ctx.LevelName))
		h.buf.Write(line)
		h.buf.WriteString(ColorReset)
		h.buf.WriteByte('\n')
	} else {
		h.buf.Write(data)
	}
	_, err = h.writer.Write(h.buf.Bytes())
	h.mu.Unlock()

	h.Record(err)
	return err
}

// Close stops the handler. The writer is not closed.
func (h *ConsoleHandler) Close() error {
	h.closed.Store(true)
	return nil
}
