package zaphandler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/philipp01105/treelog/core"
)

func newObserved(level zapcore.Level) (*ZapHandler, *observer.ObservedLogs) {
	zc, logs := observer.New(level)
	return New(Config{Logger: zap.New(zc)}), logs
}

func newContext(level int, template string, args ...any) *core.Context {
	name, _ := core.DefaultLevels().NameOf(level)
	ctx := core.NewContext("app.db", level, name, template, args)
	ctx.Switches = &core.Switches{}
	return ctx
}

func TestZapHandler_Forwards(t *testing.T) {
	h, logs := newObserved(zapcore.DebugLevel)
	ctx := newContext(core.WarnLevel, "pool at %d%%", 95)
	ctx.Extra = map[string]any{"pool": "primary", "size": 10}

	require.NoError(t, h.Handle(ctx))

	entries := logs.All()
	require.Len(t, entries, 1)
	e := entries[0]
	assert.Equal(t, zapcore.WarnLevel, e.Level)
	assert.Equal(t, "pool at 95%", e.Message)
	assert.Equal(t, "app.db", e.LoggerName)
	assert.Equal(t, ctx.Time, e.Time)
	assert.Equal(t, map[string]any{"pool": "primary", "size": int64(10)}, e.ContextMap())
	assert.Equal(t, uint64(1), h.Stats().ProcessedTotal)
}

func TestZapHandler_LevelMapping(t *testing.T) {
	h := New(Config{})
	assert.Equal(t, zapcore.DebugLevel, h.ZapLevel("TRACE"))
	assert.Equal(t, zapcore.InfoLevel, h.ZapLevel("INFO"))
	assert.Equal(t, zapcore.ErrorLevel, h.ZapLevel("CRITICAL"))
	assert.Equal(t, zapcore.InfoLevel, h.ZapLevel("NOTICE"))

	custom := New(Config{Levels: map[string]zapcore.Level{
		"NOTICE": zapcore.WarnLevel,
		"FATAL":  zapcore.FatalLevel,
	}})
	assert.Equal(t, zapcore.WarnLevel, custom.ZapLevel("NOTICE"))
	assert.Equal(t, zapcore.ErrorLevel, custom.ZapLevel("FATAL"), "never beyond Error")
}

func TestZapHandler_SeverityField(t *testing.T) {
	h, logs := newObserved(zapcore.DebugLevel)

	require.NoError(t, h.Handle(newContext(core.CriticalLevel, "down")))
	require.NoError(t, h.Handle(newContext(core.ErrorLevel, "failed")))

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, zapcore.ErrorLevel, entries[0].Level)
	assert.Equal(t, map[string]any{"severity": "CRITICAL"}, entries[0].ContextMap())
	assert.Empty(t, entries[1].ContextMap())
}

func TestZapHandler_ZapFilter(t *testing.T) {
	h, logs := newObserved(zapcore.WarnLevel)

	require.NoError(t, h.Handle(newContext(core.DebugLevel, "skipped")))
	assert.Equal(t, 0, logs.Len())
	assert.Equal(t, uint64(0), h.Stats().ProcessedTotal)
}

func TestZapHandler_Caller(t *testing.T) {
	h, logs := newObserved(zapcore.DebugLevel)
	ctx := newContext(core.InfoLevel, "here")
	ctx.CaptureCaller(0)

	require.NoError(t, h.Handle(ctx))
	caller := logs.All()[0].Caller
	assert.True(t, caller.Defined)
	assert.Equal(t, "zap_test.go", caller.File)
	assert.Equal(t, "TestZapHandler_Caller", caller.Function)
	assert.Positive(t, caller.Line)
}

func TestZapHandler_Close(t *testing.T) {
	h, _ := newObserved(zapcore.DebugLevel)
	assert.NoError(t, h.Close())
}
