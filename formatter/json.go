package formatter

import (
	"bytes"
	"encoding/json"
	"io"
	"math"
	"strconv"
	"time"

	"github.com/philipp01105/treelog/core"
)

// JSONFormatter formats log contexts as one JSON object per line
type JSONFormatter struct {
	Config
}

// NewJSONFormatter creates a new JSON formatter
func NewJSONFormatter(cfg Config) *JSONFormatter {
	applyDefaults(&cfg, time.RFC3339Nano)
	return &JSONFormatter{Config: cfg}
}

// Format formats a context as JSON
func (f *JSONFormatter) Format(ctx *core.Context) ([]byte, error) {
	buf := getBuffer()
	defer putBuffer(buf)

	f.formatJSONToBuffer(ctx, buf)

	result := make([]byte, buf.Len())
	copy(result, buf.Bytes())
	return result, nil
}

// FormatTo formats a context as JSON and writes it directly to the writer
func (f *JSONFormatter) FormatTo(ctx *core.Context, w io.Writer) error {
	buf := getBuffer()

	f.formatJSONToBuffer(ctx, buf)

	_, err := w.Write(buf.Bytes())
	putBuffer(buf)
	return err
}

// ExtraKeyPrefix is prepended to extra data keys that clash with the
// built-in object keys.
const ExtraKeyPrefix = "extra."

func (f *JSONFormatter) reserved(key string) bool {
	switch key {
	case "time", "level", "logger", "message":
		return true
	case "caller":
		return f.IncludeCaller
	}
	return false
}

// formatJSONToBuffer builds JSON manually into the buffer
func (f *JSONFormatter) formatJSONToBuffer(ctx *core.Context, buf *bytes.Buffer) {
	buf.WriteByte('{')

	buf.WriteString(`"time":"`)
	buf.Write(ctx.Time.AppendFormat(buf.AvailableBuffer(), f.TimestampFormat))
	buf.WriteByte('"')

	buf.WriteString(`,"level":"`)
	appendJSONString(buf, ctx.LevelName)
	buf.WriteByte('"')

	buf.WriteString(`,"logger":"`)
	appendJSONString(buf, ctx.Logger)
	buf.WriteByte('"')

	buf.WriteString(`,"message":"`)
	appendJSONString(buf, ctx.Render())
	buf.WriteByte('"')

	if f.IncludeCaller {
		if site := ctx.Caller(); site.Defined {
			buf.WriteString(`,"caller":{"file":"`)
			appendJSONString(buf, site.File)
			buf.WriteString(`","line":`)
			buf.WriteString(strconv.Itoa(site.Line))
			if site.Function != "" {
				buf.WriteString(`,"function":"`)
				appendJSONString(buf, site.Function)
				buf.WriteByte('"')
			}
			if site.Type != "" {
				buf.WriteString(`,"type":"`)
				appendJSONString(buf, site.Type)
				buf.WriteByte('"')
			}
			buf.WriteByte('}')
		}
	}

	if !f.OmitExtra {
		for _, key := range ctx.ExtraKeys() {
			buf.WriteString(`,"`)
			if f.reserved(key) {
				buf.WriteString(ExtraKeyPrefix)
			}
			appendJSONString(buf, key)
			buf.WriteString(`":`)
			appendJSONValue(buf, ctx.Extra[key])
		}
	}

	buf.WriteString("}\n")
}

// appendJSONString writes a JSON-escaped string (without surrounding quotes) to the buffer
func appendJSONString(buf *bytes.Buffer, s string) {
	start := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= 0x20 && c != '"' && c != '\\' {
			continue
		}
		if start < i {
			buf.WriteString(s[start:i])
		}
		switch c {
		case '"':
			buf.WriteString(`\"`)
		case '\\':
			buf.WriteString(`\\`)
		case '\n':
			buf.WriteString(`\n`)
		case '\r':
			buf.WriteString(`\r`)
		case '\t':
			buf.WriteString(`\t`)
		default:
			buf.WriteString(`\u00`)
			buf.WriteByte(hexChars[c>>4])
			buf.WriteByte(hexChars[c&0x0f])
		}
		start = i + 1
	}
	if start < len(s) {
		buf.WriteString(s[start:])
	}
}

var hexChars = [16]byte{'0', '1', '2', '3', '4', '5', '6', '7', '8', '9', 'a', 'b', 'c', 'd', 'e', 'f'}

// appendJSONValue writes a JSON-encoded extra data value to the buffer.
// Types without a direct encoding go through encoding/json and fall back
// to their quoted display form.
func appendJSONValue(buf *bytes.Buffer, v any) {
	switch x := v.(type) {
	case nil:
		buf.WriteString("null")
	case string:
		buf.WriteByte('"')
		appendJSONString(buf, x)
		buf.WriteByte('"')
	case int:
		buf.Write(strconv.AppendInt(buf.AvailableBuffer(), int64(x), 10))
	case int64:
		buf.Write(strconv.AppendInt(buf.AvailableBuffer(), x, 10))
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			// JSON has no literal for these
			buf.WriteByte('"')
			buf.WriteString(strconv.FormatFloat(x, 'f', -1, 64))
			buf.WriteByte('"')
			return
		}
		buf.Write(strconv.AppendFloat(buf.AvailableBuffer(), x, 'f', -1, 64))
	case bool:
		buf.Write(strconv.AppendBool(buf.AvailableBuffer(), x))
	case time.Time:
		buf.WriteByte('"')
		buf.Write(x.AppendFormat(buf.AvailableBuffer(), time.RFC3339Nano))
		buf.WriteByte('"')
	case time.Duration:
		buf.Write(strconv.AppendInt(buf.AvailableBuffer(), int64(x), 10))
	case error:
		buf.WriteByte('"')
		appendJSONString(buf, x.Error())
		buf.WriteByte('"')
	default:
		if b, err := json.Marshal(x); err == nil {
			buf.Write(b)
			return
		}
		buf.WriteByte('"')
		appendJSONString(buf, stringValue(x))
		buf.WriteByte('"')
	}
}
