package core

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Unset marks a level that has not been configured.
const Unset = -1

// Indices of the default level sequence.
const (
	TraceLevel = iota
	DebugLevel
	InfoLevel
	WarnLevel
	ErrorLevel
	CriticalLevel
)

// DefaultLevelNames is the default severity order, lowest first.
var DefaultLevelNames = [...]string{"TRACE", "DEBUG", "INFO", "WARN", "ERROR", "CRITICAL"}

// Levels is an immutable, ordered sequence of severity names.
type Levels struct {
	names []string
	index map[string]int
}

// NewLevels builds a registry from names ordered lowest to highest
// severity. Names are normalized to uppercase.
func NewLevels(names ...string) (*Levels, error) {
	if len(names) == 0 {
		return nil, errors.New("levels: at least one level is required")
	}
	l := &Levels{
		names: make([]string, len(names)),
		index: make(map[string]int, len(names)),
	}
	for i, n := range names {
		n = strings.ToUpper(strings.TrimSpace(n))
		if n == "" {
			return nil, fmt.Errorf("levels: blank name at position %d", i)
		}
		if _, dup := l.index[n]; dup {
			return nil, fmt.Errorf("levels: duplicate name %q", n)
		}
		l.names[i] = n
		l.index[n] = i
	}
	return l, nil
}

var defaultLevels = func() *Levels {
	l, err := NewLevels(DefaultLevelNames[:]...)
	if err != nil {
		panic(err)
	}
	return l
}()

// DefaultLevels returns the shared TRACE..CRITICAL registry.
func DefaultLevels() *Levels {
	return defaultLevels
}

// Len returns the number of levels.
func (l *Levels) Len() int {
	return len(l.names)
}

// Names returns a copy of the level names, lowest first.
func (l *Levels) Names() []string {
	out := make([]string, len(l.names))
	copy(out, l.names)
	return out
}

// IndexOf resolves a level given by name or by index. Names are matched
// exactly first and then uppercased; integers must be valid indices.
func (l *Levels) IndexOf(level any) (int, error) {
	switch v := level.(type) {
	case string:
		return l.indexOfName(v)
	case int:
		return l.checkIndex(v, level)
	case int8:
		return l.checkIndex(int(v), level)
	case int16:
		return l.checkIndex(int(v), level)
	case int32:
		return l.checkIndex(int(v), level)
	case int64:
		return l.checkIndex(int(v), level)
	case uint8:
		return l.checkIndex(int(v), level)
	case fmt.Stringer:
		return l.indexOfName(v.String())
	}
	return Unset, &UnknownLevelError{Level: level}
}

func (l *Levels) indexOfName(name string) (int, error) {
	if i, ok := l.index[name]; ok {
		return i, nil
	}
	if i, ok := l.index[strings.ToUpper(name)]; ok {
		return i, nil
	}
	// Config files occasionally carry indices as strings.
	if n, err := strconv.Atoi(strings.TrimSpace(name)); err == nil && n >= 0 && n < len(l.names) {
		return n, nil
	}
	return Unset, &UnknownLevelError{Level: name}
}

func (l *Levels) checkIndex(i int, orig any) (int, error) {
	if i < 0 || i >= len(l.names) {
		return Unset, &UnknownLevelError{Level: orig}
	}
	return i, nil
}

// NameOf returns the name at idx, or false when idx is out of range.
func (l *Levels) NameOf(idx int) (string, bool) {
	if idx < 0 || idx >= len(l.names) {
		return "", false
	}
	return l.names[idx], true
}

// StepUp returns the next more severe level, clamped at the highest.
func (l *Levels) StepUp(level any) (string, error) {
	i, err := l.IndexOf(level)
	if err != nil {
		return "", err
	}
	if i+1 < len(l.names) {
		i++
	}
	return l.names[i], nil
}

// StepDown returns the next less severe level. Stepping below the lowest
// level yields "".
func (l *Levels) StepDown(level any) (string, error) {
	i, err := l.IndexOf(level)
	if err != nil {
		return "", err
	}
	name, _ := l.NameOf(i - 1)
	return name, nil
}
