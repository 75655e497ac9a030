// Package core defines the shared types used across treelog.
//
// It provides the Levels registry that maps severity names to their
// position in an ordered sequence, the Context type that represents a
// single log event, and the call-site capture used to describe where a
// log call came from.
//
// A Context is created once per log call and discarded when dispatch
// finishes. Two things about it are deliberately lazy:
//
//   - The message is rendered from its template and positional arguments
//     only when Render is called, and the result is memoized. Arguments of
//     type Lazy are evaluated at that point, so expensive values cost
//     nothing when no handler consumes the message.
//   - Program counters are captured eagerly (the stack is gone after the
//     call returns), but they are resolved into file, line and function
//     names only when a call-site attribute is first read.
//
// Levels are identified interchangeably by canonical uppercase name or by
// index. Unset denotes "no level configured".
package core
