// Package logger is the public API of treelog: a hierarchy of named
// loggers that route records to handlers.
//
// A System owns the registry. Loggers are named with dots, and "a.b.c"
// inherits from the nearest registered ancestor ("a.b", then "a", then
// root) without those ancestors being created:
//
//	sys := logger.NewSystem()
//	sys.Root().AddHandler(consolehandler.NewConsoleHandler(consolehandler.ConsoleConfig{}))
//	sys.GetLogger("app").SetLevel("INFO")
//	sys.GetLogger("app.db.pool").Debug("dropped")     // below INFO
//	sys.GetLogger("app.db.pool").Warn("pool at %d%%", 95)
//
// The effective level is the nearest explicitly set one (lowest level when
// none is). The effective handlers are the logger's own followed by each
// ancestor's, stopping after the first logger with propagate set to
// false. Extra data merges along the chain, nearer values winning.
//
// Dispatch is synchronous. Each handler runs in isolation: an error or a
// panic is reported as a *core.HandlerError on the System's error output
// and the remaining handlers still run. Log returns an error only for an
// unknown level.
//
// Messages use %-directives (%s %d %i %f %j %o %O %v); rendering is
// deferred until a handler needs the text, and core.Lazy arguments are
// evaluated at that point.
//
// The package initializes a default System in init(); Init replaces it,
// and the package-level functions delegate to it:
//
//	logger.Info("ready on %s", addr)
//	log := logger.LoggerForCaller()
package logger
