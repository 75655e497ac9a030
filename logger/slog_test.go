package logger

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/philipp01105/treelog/core"
	"github.com/philipp01105/treelog/formatter"
	"github.com/philipp01105/treelog/handler/consolehandler"
)

func TestSlogHandler_Enabled(t *testing.T) {
	sys, _ := newTestSystem()
	l := sys.GetLogger("slog")
	require.NoError(t, l.SetLevel("INFO"))
	sh := NewSlogHandler(l)

	assert.False(t, sh.Enabled(context.Background(), slog.LevelDebug))
	assert.True(t, sh.Enabled(context.Background(), slog.LevelInfo))
	assert.True(t, sh.Enabled(context.Background(), slog.LevelWarn))
	assert.True(t, sh.Enabled(context.Background(), slog.LevelError))

	l.Silence()
	assert.False(t, sh.Enabled(context.Background(), slog.LevelError))
}

func TestSlogHandler_Handle(t *testing.T) {
	sys, _ := newTestSystem()
	var buf bytes.Buffer
	sys.Root().AddHandler(consolehandler.NewConsoleHandler(consolehandler.ConsoleConfig{
		Writer:    &buf,
		Formatter: formatter.NewTextFormatter(formatter.Config{Template: "[{level}] {name}: {message}"}),
	}))

	NewSlog(sys.GetLogger("api")).Info("100% done", "key", "value", "count", 42)

	assert.Equal(t, "[INFO] api: 100% done count=42 key=value\n", buf.String())
}

func TestSlogHandler_LevelMapping(t *testing.T) {
	sys, _ := newTestSystem()
	rec := newRecorder("rec")
	sys.Root().AddHandler(rec)
	log := NewSlog(sys.Root())

	log.Debug("d")
	log.Warn("w")
	log.Error("e")
	log.Log(context.Background(), slog.LevelDebug-4, "t")

	var names []string
	for _, ctx := range rec.ctxs {
		names = append(names, ctx.LevelName)
	}
	assert.Equal(t, []string{"DEBUG", "WARN", "ERROR", "TRACE"}, names)
}

func TestSlogHandler_CustomLevels(t *testing.T) {
	levels, err := core.NewLevels("LOW", "HIGH")
	require.NoError(t, err)
	sys, _ := newTestSystem(WithLevels(levels))
	rec := newRecorder("rec")
	sys.Root().AddHandler(rec)

	log := NewSlog(sys.Root())
	log.Info("i")
	log.Error("e")

	require.Len(t, rec.ctxs, 2)
	assert.Equal(t, "LOW", rec.ctxs[0].LevelName)
	assert.Equal(t, "HIGH", rec.ctxs[1].LevelName)
}

func TestSlogHandler_WithAttrsAndGroups(t *testing.T) {
	sys, _ := newTestSystem()
	rec := newRecorder("rec")
	sys.GetLogger("svc").SetExtra("service", "billing").AddHandler(rec)

	log := NewSlog(sys.GetLogger("svc")).
		With("request_id", "req-123").
		WithGroup("http").
		With("method", "GET")
	log.Info("served", "status", 200, slog.Group("timing", "total", time.Second))

	assert.Equal(t, map[string]any{
		"service":           "billing",
		"request_id":        "req-123",
		"http.method":       "GET",
		"http.status":       int64(200),
		"http.timing.total": time.Second,
	}, rec.last().Extra)
}

func TestSlogHandler_Caller(t *testing.T) {
	sys, _ := newTestSystem()
	rec := newRecorder("rec")
	sys.Root().AddHandler(rec)

	NewSlog(sys.Root()).Info("where")
	assert.Equal(t, "TestSlogHandler_Caller", rec.last().Func())
}

func TestSlogHandler_RecordTime(t *testing.T) {
	sys, _ := newTestSystem()
	rec := newRecorder("rec")
	sys.Root().AddHandler(rec)

	at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	r := slog.NewRecord(at, slog.LevelInfo, "msg", 0)
	require.NoError(t, NewSlogHandler(sys.Root()).Handle(context.Background(), r))

	assert.Equal(t, at, rec.last().Time)
	assert.False(t, rec.last().Caller().Defined)
}
