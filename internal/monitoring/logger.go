// Package monitoring holds the diagnostic logger shared by every component.
package monitoring

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"
)

// Logf is the package-level diagnostic logger. It defaults to log.Printf but may
// be replaced by SetLogger. Tests or production code can redirect or mute it.
var Logf func(format string, v ...interface{}) = log.Printf

// SetLogger replaces the package logger. Passing nil will set a no-op logger.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}

// Component returns a logger that prefixes every line with "[name] ". The
// returned func resolves Logf on each call so later SetLogger calls apply.
func Component(name string) func(format string, v ...interface{}) {
	prefix := "[" + name + "] "
	return func(format string, v ...interface{}) {
		Logf(prefix+format, v...)
	}
}

var (
	logFileMu sync.Mutex
	logFile   *os.File
)

// LogToFile points the standard logger (and therefore the default Logf) at
// path, appending to it. The terminal UI owns stdout/stderr while running, so
// diagnostics have to land somewhere else. An empty path discards output.
func LogToFile(path string) error {
	logFileMu.Lock()
	defer logFileMu.Unlock()

	var w io.Writer = io.Discard
	var f *os.File
	if path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return fmt.Errorf("failed to create log directory: %w", err)
		}
		var err error
		f, err = os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		w = f
	}
	log.SetOutput(w)
	if logFile != nil {
		logFile.Close()
	}
	logFile = f
	return nil
}

// CloseLogFile restores stderr as the log destination and closes any file
// opened by LogToFile.
func CloseLogFile() error {
	logFileMu.Lock()
	defer logFileMu.Unlock()

	log.SetOutput(os.Stderr)
	if logFile == nil {
		return nil
	}
	err := logFile.Close()
	logFile = nil
	return err
}
