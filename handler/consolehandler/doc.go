// Package consolehandler provides a console handler that writes formatted
// log lines to any io.Writer (default: os.Stdout).
//
// Lines can be colored by level. ColorAuto enables colors only when the
// writer is a terminal, detected with go-isatty, and NO_COLOR is unset.
// With DateOnChange the handler writes a "--- 2006-01-02 ---" header
// before the first line and whenever the date rolls over, so the line
// template only needs the time of day.
//
// Console handlers obey the process-wide "silence console" switch in
// addition to their own silenced flag.
package consolehandler
