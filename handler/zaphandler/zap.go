// Package zaphandler forwards log contexts to a *zap.Logger so that zap
// cores, encoders and sinks can sit behind a logger hierarchy.
//
// Levels map by name: TRACE and DEBUG go to zap's Debug, INFO, WARN and
// ERROR to their namesakes and CRITICAL to Error. Names zap does not know
// map to Info unless configured, and every record whose level name does
// not match the zap level carries a "severity" field with the original
// name. Mappings never reach DPanic, Panic or Fatal.
package zaphandler

import (
	"errors"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/philipp01105/treelog/core"
	"github.com/philipp01105/treelog/handler"
)

// DefaultLevels maps the default level names to zap levels
var DefaultLevels = map[string]zapcore.Level{
	"TRACE":    zapcore.DebugLevel,
	"DEBUG":    zapcore.DebugLevel,
	"INFO":     zapcore.InfoLevel,
	"WARN":     zapcore.WarnLevel,
	"ERROR":    zapcore.ErrorLevel,
	"CRITICAL": zapcore.ErrorLevel,
}

// Config holds configuration for the zap handler
type Config struct {
	// Logger receives the records (default: zap.NewNop())
	Logger *zap.Logger
	// Levels overrides entries of DefaultLevels
	Levels map[string]zapcore.Level
	// Level is the handler's own minimum level index (default: core.Unset)
	Level *int
}

// ZapHandler writes contexts through a zap logger
type ZapHandler struct {
	handler.Base
	logger *zap.Logger
	levels map[string]zapcore.Level
}

// New creates a zap handler
func New(cfg Config) *ZapHandler {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	levels := make(map[string]zapcore.Level, len(DefaultLevels)+len(cfg.Levels))
	for name, lvl := range DefaultLevels {
		levels[name] = lvl
	}
	for name, lvl := range cfg.Levels {
		levels[name] = clamp(lvl)
	}
	h := &ZapHandler{logger: cfg.Logger, levels: levels}
	if cfg.Level != nil {
		h.SetLevel(*cfg.Level)
	}
	return h
}

func clamp(lvl zapcore.Level) zapcore.Level {
	if lvl > zapcore.ErrorLevel {
		return zapcore.ErrorLevel
	}
	return lvl
}

// ZapLevel returns the zap level a level name maps to.
func (h *ZapHandler) ZapLevel(name string) zapcore.Level {
	if lvl, ok := h.levels[name]; ok {
		return lvl
	}
	return zapcore.InfoLevel
}

// Handle writes ctx as one zap entry. Records zap's own level filter
// rejects are dropped without error.
func (h *ZapHandler) Handle(ctx *core.Context) error {
	lvl := h.ZapLevel(ctx.LevelName)
	ce := h.logger.Check(lvl, ctx.Render())
	if ce == nil {
		return nil
	}
	ce.Time = ctx.Time
	ce.LoggerName = ctx.Logger
	if site := ctx.Caller(); site.Defined {
		function := site.Function
		if site.Type != "" {
			function = site.Type + "." + function
		}
		ce.Caller = zapcore.EntryCaller{
			Defined:  true,
			File:     site.File,
			Line:     site.Line,
			Function: function,
		}
	}

	fields := make([]zap.Field, 0, len(ctx.Extra)+1)
	if ctx.LevelName != lvl.CapitalString() {
		fields = append(fields, zap.String("severity", ctx.LevelName))
	}
	for _, key := range ctx.ExtraKeys() {
		fields = append(fields, zap.Any(key, ctx.Extra[key]))
	}
	ce.Write(fields...)
	h.Record(nil)
	return nil
}

// Close flushes the zap logger. Sync errors from terminals, which cannot
// be synced, are ignored.
func (h *ZapHandler) Close() error {
	err := h.logger.Sync()
	if errors.Is(err, syscall.EINVAL) || errors.Is(err, syscall.ENOTTY) {
		return nil
	}
	return err
}
