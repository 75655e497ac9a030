// Package handler provides the Handler interface and the pieces shared by
// the built-in handlers.
//
// A logger asks each handler whether it is Enabled for a Context, then
// calls Handle through Invoke, which applies the handler's view and turns
// panics into errors. Handlers run synchronously on the logging
// goroutine; a slow handler slows the caller.
//
// Base implements the common contract: an optional level filter, a
// silenced flag layered with the process-wide switches (console handlers
// also obey "silence console"), a per-handler dump configuration used for
// %o/%O rendering, verbosity stepping, and Stats counters.
//
// Built-in handlers:
//
//   - consolehandler writes formatted lines to a terminal or any io.Writer,
//     with optional level colors and a date header when the day changes.
//   - filehandler appends to a file with rotation by size, age or interval.
//   - zaphandler forwards contexts to a *zap.Logger.
//   - MultiHandler groups several handlers behind one level and switch.
//   - FuncHandler adapts a function.
package handler
