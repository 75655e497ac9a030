// Package filehandler provides a file handler that appends formatted log
// lines to a file.
//
// The open flags and permissions are passed through to os.OpenFile. Files
// rotate when a write would exceed MaxSize or when RotateInterval has
// elapsed; the current file is renamed with a timestamp suffix and a new
// one is opened. MaxBackups and MaxAge bound the rotated files kept.
//
// Writes are buffered. Call Flush to make them visible before Close.
package filehandler
