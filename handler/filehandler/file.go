package filehandler

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/multierr"

	"github.com/philipp01105/treelog/core"
	"github.com/philipp01105/treelog/formatter"
	"github.com/philipp01105/treelog/handler"
)

// backupLayout is the timestamp suffix of rotated files
const backupLayout = "2006-01-02T15-04-05.000"

// FileConfig holds configuration for file handler
type FileConfig struct {
	// Filename is the path to the log file
	Filename string
	// Formatter to use (default: TextFormatter)
	Formatter formatter.Formatter
	// Flags are the os.OpenFile flags (default: O_CREATE|O_WRONLY|O_APPEND).
	// Write access is added when missing.
	Flags int
	// Perm is the permission of a newly created file (default: 0644)
	Perm os.FileMode
	// BufferSize is the write buffer size in bytes (default: 4096)
	BufferSize int
	// MaxSize is the maximum size in bytes before rotation (0 = no size rotation)
	MaxSize int64
	// RotateInterval is the interval for time-based rotation (0 = no interval rotation)
	RotateInterval time.Duration
	// MaxBackups is the maximum number of old log files to retain (0 = keep all)
	MaxBackups int
	// MaxAge removes rotated files older than this (0 = keep regardless of age)
	MaxAge time.Duration
	// Level is the handler's own minimum level index (default: core.Unset)
	Level *int
}

// applyFileDefaults fills in zero-value fields with defaults.
func applyFileDefaults(cfg *FileConfig) {
	if cfg.Formatter == nil {
		cfg.Formatter = formatter.NewTextFormatter(formatter.Config{})
	}
	if cfg.Flags == 0 {
		cfg.Flags = os.O_CREATE | os.O_WRONLY | os.O_APPEND
	}
	if cfg.Flags&(os.O_WRONLY|os.O_RDWR) == 0 {
		cfg.Flags |= os.O_WRONLY
	}
	if cfg.Perm == 0 {
		cfg.Perm = 0644
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 4096
	}
}

// FileHandler appends formatted records to a file, rotating it by size
// or interval. Output is buffered until Flush, rotation or Close.
type FileHandler struct {
	handler.Base
	filename       string
	flags          int
	perm           os.FileMode
	formatter      formatter.Formatter
	maxSize        int64
	maxAge         time.Duration
	maxBackups     int
	rotateInterval time.Duration

	mu             sync.Mutex // protects everything below
	file           *os.File
	bufWriter      *bufio.Writer
	currentSize    int64
	lastRotateTime time.Time
	closed         bool
}

// NewFileHandler opens cfg.Filename, creating its directory if needed.
func NewFileHandler(cfg FileConfig) (*FileHandler, error) {
	if cfg.Filename == "" {
		return nil, errors.New("filehandler: filename is required")
	}
	applyFileDefaults(&cfg)

	if err := os.MkdirAll(filepath.Dir(cfg.Filename), 0755); err != nil {
		return nil, err
	}

	h := &FileHandler{
		filename:       cfg.Filename,
		flags:          cfg.Flags,
		perm:           cfg.Perm,
		formatter:      cfg.Formatter,
		maxSize:        cfg.MaxSize,
		maxAge:         cfg.MaxAge,
		maxBackups:     cfg.MaxBackups,
		rotateInterval: cfg.RotateInterval,
	}
	if cfg.Level != nil {
		h.SetLevel(*cfg.Level)
	}
	if err := h.open(cfg.Flags); err != nil {
		return nil, err
	}
	h.bufWriter = bufio.NewWriterSize(h.file, cfg.BufferSize)
	return h, nil
}

// Filename returns the path of the active log file.
func (h *FileHandler) Filename() string {
	return h.filename
}

// open opens the log file with flags and records its current size.
func (h *FileHandler) open(flags int) error {
	file, err := os.OpenFile(h.filename, flags, h.perm)
	if err != nil {
		return err
	}
	info, err := file.Stat()
	if err != nil {
		return multierr.Combine(err, file.Close())
	}
	h.file = file
	h.currentSize = info.Size()
	h.lastRotateTime = time.Now()
	return nil
}

// Handle formats ctx and appends it to the file.
func (h *FileHandler) Handle(ctx *core.Context) error {
	data, err := h.formatter.Format(ctx)
	if err != nil {
		h.Record(err)
		return err
	}

	h.mu.Lock()
	err = h.write(data)
	h.mu.Unlock()

	h.Record(err)
	return err
}

func (h *FileHandler) write(data []byte) error {
	if h.closed {
		return handler.ErrClosed
	}
	if err := h.rotateIfNeeded(int64(len(data))); err != nil {
		return err
	}
	n, err := h.bufWriter.Write(data)
	h.currentSize += int64(n)
	return err
}

// rotateIfNeeded rotates before a write of next bytes would exceed
// MaxSize, or once RotateInterval has elapsed. An empty file is never
// rotated for size.
func (h *FileHandler) rotateIfNeeded(next int64) error {
	needRotate := false
	if h.maxSize > 0 && h.currentSize > 0 && h.currentSize+next > h.maxSize {
		needRotate = true
	}
	if h.rotateInterval > 0 && time.Since(h.lastRotateTime) >= h.rotateInterval {
		needRotate = true
	}
	if !needRotate {
		return nil
	}
	return h.rotate()
}

// rotate performs the actual file rotation
func (h *FileHandler) rotate() error {
	// Flush buffered writer, sync and close current file
	if err := h.bufWriter.Flush(); err != nil {
		return err
	}
	if err := h.file.Sync(); err != nil {
		return err
	}
	if err := h.file.Close(); err != nil {
		return err
	}

	// A rotated file is reopened for appending whatever the initial flags
	reopen := (h.flags | os.O_CREATE) &^ os.O_TRUNC &^ os.O_EXCL

	if err := os.Rename(h.filename, h.backupName(time.Now())); err != nil {
		// If rename fails, try to reopen the original file
		if openErr := h.open(reopen | os.O_APPEND); openErr != nil {
			return fmt.Errorf("rotation failed: %v, reopen failed: %v", err, openErr)
		}
		h.bufWriter.Reset(h.file)
		return err
	}

	h.cleanupOldBackups()

	if err := h.open(reopen); err != nil {
		return err
	}
	h.bufWriter.Reset(h.file)
	return nil
}

// backupName returns an unused name for a file rotated at t.
func (h *FileHandler) backupName(t time.Time) string {
	name := h.filename + "." + t.Format(backupLayout)
	candidate := name
	for i := 1; ; i++ {
		if _, err := os.Lstat(candidate); os.IsNotExist(err) {
			return candidate
		}
		candidate = fmt.Sprintf("%s.%d", name, i)
	}
}

// Backups returns the rotated files of this handler, oldest first.
func (h *FileHandler) Backups() ([]string, error) {
	dir := filepath.Dir(h.filename)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	type backup struct {
		path string
		mod  time.Time
	}
	base := filepath.Base(h.filename) + "."
	var backups []backup
	for _, entry := range entries {
		if entry.IsDir() || !isBackupSuffix(entry.Name(), base) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		backups = append(backups, backup{path: filepath.Join(dir, entry.Name()), mod: info.ModTime()})
	}

	// Sort by modification time, then name for files rotated together
	sort.Slice(backups, func(i, j int) bool {
		if !backups[i].mod.Equal(backups[j].mod) {
			return backups[i].mod.Before(backups[j].mod)
		}
		return backups[i].path < backups[j].path
	})

	out := make([]string, len(backups))
	for i, b := range backups {
		out[i] = b.path
	}
	return out, nil
}

// isBackupSuffix reports whether name is base followed by a backupLayout
// timestamp and an optional ".N" collision counter.
func isBackupSuffix(name, base string) bool {
	rest, ok := strings.CutPrefix(name, base)
	if !ok || len(rest) < len(backupLayout) {
		return false
	}
	if _, err := time.Parse(backupLayout, rest[:len(backupLayout)]); err != nil {
		return false
	}
	rest = rest[len(backupLayout):]
	if rest == "" {
		return true
	}
	n, err := strconv.Atoi(strings.TrimPrefix(rest, "."))
	return rest[0] == '.' && err == nil && n > 0
}

// cleanupOldBackups removes backups beyond MaxBackups and older than MaxAge
func (h *FileHandler) cleanupOldBackups() {
	if h.maxBackups <= 0 && h.maxAge <= 0 {
		return
	}
	backups, err := h.Backups()
	if err != nil {
		return
	}

	var remove []string
	if h.maxBackups > 0 && len(backups) > h.maxBackups {
		remove = append(remove, backups[:len(backups)-h.maxBackups]...)
		backups = backups[len(backups)-h.maxBackups:]
	}
	if h.maxAge > 0 {
		cutoff := time.Now().Add(-h.maxAge)
		for _, b := range backups {
			if info, err := os.Stat(b); err == nil && info.ModTime().Before(cutoff) {
				remove = append(remove, b)
			}
		}
	}
	for _, file := range remove {
		_ = os.Remove(file)
	}
}

// Flush writes buffered records to the file.
func (h *FileHandler) Flush() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil
	}
	return h.bufWriter.Flush()
}

// Close flushes, syncs and closes the file. Closing twice is a no-op.
func (h *FileHandler) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil
	}
	h.closed = true

	if err := h.bufWriter.Flush(); err != nil {
		return multierr.Combine(err, h.file.Close())
	}
	if err := h.file.Sync(); err != nil {
		return multierr.Combine(err, h.file.Close())
	}
	return h.file.Close()
}
