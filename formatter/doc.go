// Package formatter defines how log contexts are serialized into bytes.
//
// It exposes two interfaces: Formatter, which returns a []byte, and
// WriterFormatter, which writes directly to an io.Writer. Handlers
// check for WriterFormatter at construction time and prefer it when
// available.
//
// TextFormatter lays out each line with a template of {identifier}
// placeholders (see Render and Config.Attribute): {timestamp}, {date},
// {time}, {level}, {levelIdx}, {name}, {message}, {filename}, {line},
// {column}, {func}, {type}, plus any extra data key. Extra data that the
// template does not mention is appended as key=value pairs.
//
// JSONFormatter writes one object per line and builds it by hand with
// Append-style functions; only extra values without a direct encoding go
// through encoding/json.
//
// Both formatters use a pooled bytes.Buffer. Buffers larger than 64 KiB
// are not returned to the pool.
package formatter
