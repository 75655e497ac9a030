package logger

import (
	"sync/atomic"

	"github.com/philipp01105/treelog/handler/consolehandler"
)

var defaultSystem atomic.Pointer[System]

func init() {
	Init()
}

// Init replaces the process-wide System with a new one built from opts.
// Its root logger writes text to stdout through a console handler. The
// previous System is not closed.
func Init(opts ...Option) *System {
	s := NewSystem(opts...)
	s.Root().AddHandler(consolehandler.NewConsoleHandler(consolehandler.ConsoleConfig{}))
	defaultSystem.Store(s)
	return s
}

// SetDefault installs s as the process-wide System.
func SetDefault(s *System) {
	defaultSystem.Store(s)
}

// Default returns the process-wide System
func Default() *System {
	return defaultSystem.Load()
}

// Package-level convenience functions using the default System

// GetLogger returns a logger of the default System
func GetLogger(name string) *Logger {
	return Default().GetLogger(name)
}

// Root returns the root logger of the default System
func Root() *Logger {
	return Default().Root()
}

// LoggerForCaller returns the default System's logger named after the
// caller's source file.
func LoggerForCaller() *Logger {
	s := Default()
	if file := callerFile(2); file != "" {
		return s.LoggerFor(file)
	}
	return s.Root()
}

// Silence silences everything when all is true, console handlers
// otherwise.
func Silence(all bool) {
	Default().Silence(all)
}

// Unsilence clears the default System's silence flags
func Unsilence() {
	Default().Unsilence()
}

// Log logs through the default root logger
func Log(level any, msg string, args ...any) error {
	l := Root()
	if l.Silenced() {
		return nil
	}
	idx, err := l.sys.levels.IndexOf(level)
	if err != nil {
		return err
	}
	l.log(idx, msg, args, 1)
	return nil
}

// Trace logs at TRACE through the default root logger
func Trace(msg string, args ...any) *Logger {
	return Root().logNamed("TRACE", msg, args, 1)
}

// Debug logs at DEBUG through the default root logger
func Debug(msg string, args ...any) *Logger {
	return Root().logNamed("DEBUG", msg, args, 1)
}

// Info logs at INFO through the default root logger
func Info(msg string, args ...any) *Logger {
	return Root().logNamed("INFO", msg, args, 1)
}

// Warn logs at WARN through the default root logger
func Warn(msg string, args ...any) *Logger {
	return Root().logNamed("WARN", msg, args, 1)
}

// Error logs at ERROR through the default root logger
func Error(msg string, args ...any) *Logger {
	return Root().logNamed("ERROR", msg, args, 1)
}

// Critical logs at CRITICAL through the default root logger
func Critical(msg string, args ...any) *Logger {
	return Root().logNamed("CRITICAL", msg, args, 1)
}
