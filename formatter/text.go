package formatter

import (
	"bytes"
	"io"
	"time"

	"github.com/philipp01105/treelog/core"
)

const (
	// DefaultTemplate is the TextFormatter layout when none is configured
	DefaultTemplate = "{timestamp} [{level}] {name}: {message}"
	// DefaultCallerTemplate is used instead when IncludeCaller is set
	DefaultCallerTemplate = "{timestamp} [{level}] {name} [{filename}:{line}]: {message}"
)

// TextFormatter formats log contexts as human-readable text lines
type TextFormatter struct {
	Config
	used map[string]struct{}
}

// NewTextFormatter creates a new text formatter
func NewTextFormatter(cfg Config) *TextFormatter {
	applyDefaults(&cfg, time.RFC3339)
	if cfg.Template == "" {
		cfg.Template = DefaultTemplate
		if cfg.IncludeCaller {
			cfg.Template = DefaultCallerTemplate
		}
	}
	return &TextFormatter{Config: cfg, used: placeholders(cfg.Template)}
}

// Format formats a context as text
func (f *TextFormatter) Format(ctx *core.Context) ([]byte, error) {
	buf := getBuffer()
	defer putBuffer(buf)

	f.formatToBuffer(ctx, buf)

	// Copy buffer content to return
	result := make([]byte, buf.Len())
	copy(result, buf.Bytes())
	return result, nil
}

// FormatTo formats a context and writes it directly to the writer
func (f *TextFormatter) FormatTo(ctx *core.Context, w io.Writer) error {
	buf := getBuffer()

	f.formatToBuffer(ctx, buf)

	_, err := w.Write(buf.Bytes())
	putBuffer(buf)
	return err
}

// formatToBuffer writes the rendered template, then any extra data the
// template did not reference, then a newline.
func (f *TextFormatter) formatToBuffer(ctx *core.Context, buf *bytes.Buffer) {
	buf.WriteString(Render(f.Template, func(name string) (string, bool) {
		return f.Attribute(ctx, name)
	}))

	if !f.OmitExtra {
		for _, key := range ctx.ExtraKeys() {
			if _, ok := f.used[key]; ok {
				continue
			}
			buf.WriteByte(' ')
			buf.WriteString(key)
			buf.WriteByte('=')
			buf.WriteString(stringValue(ctx.Extra[key]))
		}
	}

	buf.WriteByte('\n')
}
