package formatter

import (
	"fmt"
	"strings"
)

// Render replaces {identifier} placeholders in template with the value
// returned by lookup. An empty {} takes the next value from positional.
// {{ and }} produce literal braces. Placeholders that lookup does not
// know, and {} with no positional value left, are kept verbatim.
func Render(template string, lookup func(name string) (string, bool), positional ...any) string {
	if strings.IndexByte(template, '{') < 0 && strings.IndexByte(template, '}') < 0 {
		return template
	}
	var b strings.Builder
	b.Grow(len(template) + 32)
	next := 0
	for i := 0; i < len(template); i++ {
		c := template[i]
		switch {
		case c == '{' && i+1 < len(template) && template[i+1] == '{':
			b.WriteByte('{')
			i++
		case c == '}' && i+1 < len(template) && template[i+1] == '}':
			b.WriteByte('}')
			i++
		case c == '{':
			end := strings.IndexByte(template[i+1:], '}')
			if end < 0 {
				b.WriteString(template[i:])
				return b.String()
			}
			name := template[i+1 : i+1+end]
			raw := template[i : i+2+end]
			i += end + 1
			if name == "" {
				if next < len(positional) {
					b.WriteString(fmt.Sprint(positional[next]))
					next++
				} else {
					b.WriteString(raw)
				}
				continue
			}
			if !isIdentifier(name) {
				b.WriteString(raw)
				continue
			}
			if v, ok := lookup(name); ok {
				b.WriteString(v)
			} else {
				b.WriteString(raw)
			}
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// placeholders lists the identifiers referenced by template.
func placeholders(template string) map[string]struct{} {
	names := make(map[string]struct{})
	for {
		start := strings.IndexByte(template, '{')
		if start < 0 {
			return names
		}
		if start+1 < len(template) && template[start+1] == '{' {
			template = template[start+2:]
			continue
		}
		end := strings.IndexByte(template[start:], '}')
		if end < 0 {
			return names
		}
		if name := template[start+1 : start+end]; isIdentifier(name) {
			names[name] = struct{}{}
		}
		template = template[start+end+1:]
	}
}

func isIdentifier(name string) bool {
	if name == "" {
		return false
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case c == '_', c == '.', c == '-':
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}
