// Package logger provides leveled logging for the Grasp CLI.
// Warnings and errors are always written. Debug and info messages, which
// trace the comprehension pipeline, appear only in verbose mode.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"

	charmlog "github.com/charmbracelet/log"
)

var (
	mu      sync.RWMutex
	verbose bool
	base    = newLogger(os.Stderr)
)

func newLogger(w io.Writer) *charmlog.Logger {
	return charmlog.NewWithOptions(w, charmlog.Options{
		ReportTimestamp: false,
		Level:           charmlog.WarnLevel,
	})
}

// SetVerbose enables or disables verbose logging.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
	if v {
		base.SetLevel(charmlog.DebugLevel)
	} else {
		base.SetLevel(charmlog.WarnLevel)
	}
}

// IsVerbose returns true if verbose mode is enabled.
func IsVerbose() bool {
	mu.RLock()
	defer mu.RUnlock()
	return verbose
}

// SetOutput sets the output writer. Defaults to os.Stderr.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	base.SetOutput(w)
}

// SetFormat selects "text" (default), "json" or "logfmt" output.
func SetFormat(format string) error {
	mu.Lock()
	defer mu.Unlock()
	switch format {
	case "", "text":
		base.SetFormatter(charmlog.TextFormatter)
	case "json":
		base.SetFormatter(charmlog.JSONFormatter)
	case "logfmt":
		base.SetFormatter(charmlog.LogfmtFormatter)
	default:
		return fmt.Errorf("unknown log format %q", format)
	}
	return nil
}

// SetTimestamps toggles timestamps on every line.
func SetTimestamps(on bool) {
	mu.Lock()
	defer mu.Unlock()
	base.SetReportTimestamp(on)
	base.SetTimeFormat("15:04:05")
}

// Debug logs a pipeline detail in verbose mode.
func Debug(format string, args ...any) {
	base.Debugf(format, args...)
}

// Section logs a pipeline stage header in verbose mode.
func Section(name string) {
	base.Debugf("=== %s ===", name)
}

// Info logs an informational message in verbose mode.
func Info(format string, args ...any) {
	base.Infof(format, args...)
}

// Warn logs a warning.
func Warn(format string, args ...any) {
	base.Warnf(format, args...)
}

// Error logs an error.
func Error(format string, args ...any) {
	base.Errorf(format, args...)
}
