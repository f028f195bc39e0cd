// Package logger provides stderr logging for rulehub.
// Debug, Info and Section output is printed only in verbose mode (--verbose);
// warnings and errors are always printed. Stdout is left to command output
// and the MCP stdio transport.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
)

var (
	mu      sync.RWMutex
	verbose bool
	output  io.Writer = os.Stderr
)

// SetVerbose enables or disables verbose logging.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
}

// IsVerbose returns true if verbose mode is enabled.
func IsVerbose() bool {
	mu.RLock()
	defer mu.RUnlock()
	return verbose
}

// SetOutput sets the output writer for logs.
// Defaults to os.Stderr. Useful for testing.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
}

// emit holds the write lock so concurrent callers never interleave on output.
func emit(always bool, prefix, format string, args ...any) {
	mu.Lock()
	defer mu.Unlock()
	if always || verbose {
		fmt.Fprintf(output, prefix+format+"\n", args...)
	}
}

// Debug prints a message if verbose mode is enabled.
func Debug(format string, args ...any) {
	emit(false, "[DEBUG] ", format, args...)
}

// Section prints a section header if verbose mode is enabled.
func Section(name string) {
	emit(false, "\n=== ", "%s ===", name)
}

// Info prints an informational message if verbose mode is enabled.
func Info(format string, args ...any) {
	emit(false, "[INFO] ", format, args...)
}

// Warn prints a warning. Skipped documents and sources are reported here.
func Warn(format string, args ...any) {
	emit(true, "[WARN] ", format, args...)
}

// Error prints an error.
func Error(format string, args ...any) {
	emit(true, "[ERROR] ", format, args...)
}
