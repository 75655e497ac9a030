package formatter

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"sync"
	"time"

	"github.com/philipp01105/treelog/core"
)

// Formatter defines the interface for log formatters
type Formatter interface {
	// Format renders a log context into bytes
	Format(ctx *core.Context) ([]byte, error)
}

// WriterFormatter is an optional interface that formatters can implement
// to write directly to a writer without intermediate byte slice allocation.
type WriterFormatter interface {
	// FormatTo renders a log context and writes it directly to the writer
	FormatTo(ctx *core.Context, w io.Writer) error
}

// Config holds common formatter configuration
type Config struct {
	// Template is the line layout for TextFormatter (empty for DefaultTemplate)
	Template string
	// IncludeCaller enables caller information in log output
	IncludeCaller bool
	// OmitExtra drops extra data that the template does not reference
	OmitExtra bool
	// TimestampFormat specifies the {timestamp} layout (empty for RFC3339)
	TimestampFormat string
	// DateFormat specifies the {date} layout (empty for 2006-01-02)
	DateFormat string
	// TimeFormat specifies the {time} layout (empty for 15:04:05.000)
	TimeFormat string
}

func applyDefaults(cfg *Config, timestamp string) {
	if cfg.TimestampFormat == "" {
		cfg.TimestampFormat = timestamp
	}
	if cfg.DateFormat == "" {
		cfg.DateFormat = time.DateOnly
	}
	if cfg.TimeFormat == "" {
		cfg.TimeFormat = "15:04:05.000"
	}
}

// Attribute returns the textual value of a named context attribute as
// used by {identifier} placeholders. Extra data keys resolve after the
// built-in names.
func (c Config) Attribute(ctx *core.Context, name string) (string, bool) {
	switch name {
	case "timestamp":
		return ctx.Time.Format(c.TimestampFormat), true
	case "date":
		return ctx.Time.Format(c.DateFormat), true
	case "time":
		return ctx.Time.Format(c.TimeFormat), true
	case "level":
		return ctx.LevelName, true
	case "levelIdx":
		return strconv.Itoa(ctx.Level), true
	case "name":
		return ctx.Logger, true
	case "message":
		return ctx.Render(), true
	case "filename":
		return ctx.Filename(), true
	case "line":
		return strconv.Itoa(ctx.Line()), true
	case "column":
		return strconv.Itoa(ctx.Column()), true
	case "func":
		return ctx.Func(), true
	case "type":
		return ctx.Type(), true
	}
	if v, ok := ctx.Extra[name]; ok {
		return stringValue(v), true
	}
	return "", false
}

// stringValue returns the display form of an extra data value
func stringValue(v any) string {
	switch x := v.(type) {
	case nil:
		return "<nil>"
	case string:
		return x
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	case time.Time:
		return x.Format(time.RFC3339)
	case time.Duration:
		return x.String()
	case error:
		return x.Error()
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}

// bufferPool is a pool of bytes.Buffer to reduce allocations
var bufferPool = &sync.Pool{
	New: func() interface{} {
		b := new(bytes.Buffer)
		b.Grow(256)
		return b
	},
}

func getBuffer() *bytes.Buffer {
	buf := bufferPool.Get().(*bytes.Buffer)
	buf.Reset()
	return buf
}

func putBuffer(buf *bytes.Buffer) {
	if buf.Cap() > 64*1024 { // Don't keep very large buffers
		return
	}
	bufferPool.Put(buf)
}
