package logger

import (
	"context"
	"log/slog"

	"github.com/philipp01105/treelog/core"
)

// SlogHandler is an adapter that implements slog.Handler on top of a
// Logger, so a *slog.Logger feeds the hierarchy. Attributes become extra
// data; groups prefix their keys with "group.".
type SlogHandler struct {
	logger *Logger
	attrs  map[string]any
	group  string
}

// NewSlogHandler creates a new slog.Handler adapter for l.
func NewSlogHandler(l *Logger) *SlogHandler {
	return &SlogHandler{logger: l}
}

// NewSlog returns a *slog.Logger writing through l.
func NewSlog(l *Logger) *slog.Logger {
	return slog.New(NewSlogHandler(l))
}

// Enabled reports whether the logger accepts records at the given level.
func (s *SlogHandler) Enabled(_ context.Context, level slog.Level) bool {
	if s.logger.Silenced() {
		return false
	}
	return s.levelIndex(level) >= s.logger.EffectiveLevel()
}

// Handle converts a slog.Record into a Context and dispatches it. The
// message is used verbatim.
func (s *SlogHandler) Handle(_ context.Context, record slog.Record) error {
	l := s.logger
	if l.Silenced() {
		return nil
	}
	idx := s.levelIndex(record.Level)
	if idx < l.EffectiveLevel() {
		return nil
	}

	name, _ := l.sys.levels.NameOf(idx)
	ctx := core.NewContext(l.name, idx, name, record.Message, nil)
	if !record.Time.IsZero() {
		ctx.Time = record.Time
	}
	if l.sys.captureCaller {
		ctx.SetCallerPC(record.PC)
	}

	if len(s.attrs) > 0 || record.NumAttrs() > 0 {
		ctx.Extra = make(map[string]any, len(s.attrs)+record.NumAttrs())
		for k, v := range s.attrs {
			ctx.Extra[k] = v
		}
		record.Attrs(func(a slog.Attr) bool {
			addAttr(ctx.Extra, s.group, a)
			return true
		})
	}

	l.dispatch(ctx)
	return nil
}

// WithAttrs returns a new SlogHandler with additional attributes.
func (s *SlogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return s
	}
	newAttrs := make(map[string]any, len(s.attrs)+len(attrs))
	for k, v := range s.attrs {
		newAttrs[k] = v
	}
	for _, a := range attrs {
		addAttr(newAttrs, s.group, a)
	}
	return &SlogHandler{logger: s.logger, attrs: newAttrs, group: s.group}
}

// WithGroup returns a new SlogHandler with the given group name.
func (s *SlogHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return s
	}
	return &SlogHandler{logger: s.logger, attrs: s.attrs, group: joinKey(s.group, name)}
}

// levelIndex maps a slog level onto the logger's level list by name.
// Levels the list lacks fall back to the nearest end of the list.
func (s *SlogHandler) levelIndex(level slog.Level) int {
	var name string
	switch {
	case level >= slog.LevelError:
		name = "ERROR"
	case level >= slog.LevelWarn:
		name = "WARN"
	case level >= slog.LevelInfo:
		name = "INFO"
	case level >= slog.LevelDebug:
		name = "DEBUG"
	default:
		name = "TRACE"
	}
	if idx, ok := s.logger.sys.dispatch[name]; ok {
		return idx
	}
	if level >= slog.LevelWarn {
		return s.logger.sys.levels.Len() - 1
	}
	return 0
}

// addAttr stores a resolved attribute under its group-prefixed key,
// flattening nested groups.
func addAttr(dst map[string]any, group string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}
	if a.Value.Kind() == slog.KindGroup {
		prefix := group
		if a.Key != "" {
			prefix = joinKey(group, a.Key)
		}
		for _, ga := range a.Value.Group() {
			addAttr(dst, prefix, ga)
		}
		return
	}
	dst[joinKey(group, a.Key)] = a.Value.Any()
}

func joinKey(group, key string) string {
	if group == "" {
		return key
	}
	return group + "." + key
}
