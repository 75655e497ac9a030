package logger

import "github.com/philipp01105/treelog/core"

// Indices of the default levels, re-exported for convenience
const (
	TraceLevel    = core.TraceLevel
	DebugLevel    = core.DebugLevel
	InfoLevel     = core.InfoLevel
	WarnLevel     = core.WarnLevel
	ErrorLevel    = core.ErrorLevel
	CriticalLevel = core.CriticalLevel
)

// ParseLevel resolves a level name or index against the default System's
// levels.
func ParseLevel(level any) (int, error) {
	return Default().Levels().IndexOf(level)
}
