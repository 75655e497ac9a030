package core

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/davecgh/go-spew/spew"
)

// Lazy is an argument evaluated only when the message is rendered.
type Lazy func() any

// DefaultDumper renders %o and %O directives when a handler does not
// bring its own configuration.
var DefaultDumper = &spew.ConfigState{
	Indent:                  "  ",
	MaxDepth:                4,
	DisablePointerAddresses: true,
	DisableCapacities:       true,
	SortKeys:                true,
}

// Sprintf substitutes positional args into template.
//
//	%s  string form          %d  number
//	%i  integer part         %f  floating point
//	%j  JSON                 %o  compact dump
//	%O  multi-line dump      %v  Go default format
//	%%  literal percent
//
// A template without args is returned unchanged. Directives without a
// matching argument stay verbatim, and surplus args are appended
// separated by spaces.
func Sprintf(dumper *spew.ConfigState, template string, args ...any) string {
	if len(args) == 0 {
		return template
	}
	if dumper == nil {
		dumper = DefaultDumper
	}
	args = resolveLazy(args)

	var b strings.Builder
	b.Grow(len(template) + 16*len(args))
	next := 0
	for i := 0; i < len(template); i++ {
		c := template[i]
		if c != '%' || i+1 >= len(template) {
			b.WriteByte(c)
			continue
		}
		verb := template[i+1]
		if verb == '%' {
			b.WriteByte('%')
			i++
			continue
		}
		if !strings.ContainsRune("sdifjoOv", rune(verb)) {
			b.WriteByte(c)
			continue
		}
		i++
		if next >= len(args) {
			b.WriteByte('%')
			b.WriteByte(verb)
			continue
		}
		b.WriteString(formatArg(dumper, verb, args[next]))
		next++
	}
	for ; next < len(args); next++ {
		b.WriteByte(' ')
		b.WriteString(formatArg(dumper, 's', args[next]))
	}
	return b.String()
}

// resolveLazy evaluates Lazy arguments into a copy of args; args itself is
// returned when it holds none.
func resolveLazy(args []any) []any {
	var out []any
	for i, a := range args {
		var v any
		switch fn := a.(type) {
		case Lazy:
			v = fn()
		case func() any:
			v = fn()
		default:
			if out != nil {
				out[i] = a
			}
			continue
		}
		if out == nil {
			out = make([]any, len(args))
			copy(out, args[:i])
		}
		out[i] = v
	}
	if out == nil {
		return args
	}
	return out
}

func formatArg(dumper *spew.ConfigState, verb byte, arg any) string {
	switch verb {
	case 's':
		if s, ok := arg.(string); ok {
			return s
		}
		return fmt.Sprint(arg)
	case 'd':
		if s, ok := formatInteger(arg); ok {
			return s
		}
		f, ok := toFloat(arg)
		if !ok {
			return "NaN"
		}
		return strconv.FormatFloat(f, 'f', -1, 64)
	case 'i':
		if s, ok := formatInteger(arg); ok {
			return s
		}
		f, ok := toFloat(arg)
		if !ok {
			return "NaN"
		}
		return strconv.FormatFloat(math.Trunc(f), 'f', -1, 64)
	case 'f':
		f, ok := toFloat(arg)
		if !ok {
			return "NaN"
		}
		return strconv.FormatFloat(f, 'f', -1, 64)
	case 'j':
		b, err := json.Marshal(arg)
		if err != nil {
			return "[unserializable: " + err.Error() + "]"
		}
		return string(b)
	case 'o':
		return dumper.Sprintf("%+v", arg)
	case 'O':
		return strings.TrimRight(dumper.Sdump(arg), "\n")
	}
	return fmt.Sprint(arg)
}

func formatInteger(arg any) (string, bool) {
	if arg == nil {
		return "", false
	}
	rv := reflect.ValueOf(arg)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return strconv.FormatUint(rv.Uint(), 10), true
	}
	return "", false
}

func toFloat(arg any) (float64, bool) {
	switch v := arg.(type) {
	case bool:
		if v {
			return 1, true
		}
		return 0, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil
	case nil:
		return 0, false
	}
	rv := reflect.ValueOf(arg)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	}
	return 0, false
}
