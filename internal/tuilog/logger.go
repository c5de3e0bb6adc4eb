// Package tuilog is the file logger for the viewer. While the TUI owns
// the terminal, stdout and stderr are off limits; everything the app
// wants to say goes to a log file instead, enabled by the --log flag
// or the PARLEY_LOG environment variable.
package tuilog

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// Logger writes timestamped keyval lines to a file. The zero value is
// a disabled logger whose methods are no-ops.
type Logger struct {
	mu      sync.Mutex
	file    *os.File
	enabled bool
}

var (
	// Log is the process-wide logger.
	Log     = &Logger{}
	logOnce sync.Once
)

// Init points the global logger at path. An empty path leaves logging
// disabled. Init is a no-op after the first successful call.
func Init(path string) error {
	if path == "" {
		return nil
	}

	var initErr error
	logOnce.Do(func() {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			initErr = err
			return
		}
		Log.file = f
		Log.enabled = true
		Log.Info("Logger started", "path", path, "pid", os.Getpid())
	})
	return initErr
}

// InitFromEnv enables logging when PARLEY_LOG names a file.
func InitFromEnv() error {
	return Init(os.Getenv("PARLEY_LOG"))
}

// Close flushes and closes the log file.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	l.enabled = false
	return err
}

// Enabled reports whether lines are being written anywhere.
func (l *Logger) Enabled() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.enabled
}

// Writer exposes the log destination for libraries that want an
// io.Writer. Disabled loggers hand out io.Discard.
func (l *Logger) Writer() io.Writer {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.enabled || l.file == nil {
		return io.Discard
	}
	return l.file
}

func (l *Logger) log(level, msg string, keyvals ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.enabled || l.file == nil {
		return
	}

	line := fmt.Sprintf("%s [%s] %s", time.Now().Format("15:04:05.000"), level, msg)
	for i := 0; i+1 < len(keyvals); i += 2 {
		line += fmt.Sprintf(" %v=%v", keyvals[i], keyvals[i+1])
	}

	fmt.Fprintln(l.file, line)
	l.file.Sync()
}

// Debug logs at debug level with optional key-value pairs.
func (l *Logger) Debug(msg string, keyvals ...any) { l.log("DEBUG", msg, keyvals...) }

// Info logs at info level with optional key-value pairs.
func (l *Logger) Info(msg string, keyvals ...any) { l.log("INFO", msg, keyvals...) }

// Warn logs at warn level with optional key-value pairs.
func (l *Logger) Warn(msg string, keyvals ...any) { l.log("WARN", msg, keyvals...) }

// Error logs at error level with optional key-value pairs.
func (l *Logger) Error(msg string, keyvals ...any) { l.log("ERROR", msg, keyvals...) }

// Timed logs an operation's duration. Usage:
//
//	defer tuilog.Log.Timed("recompute window")()
func (l *Logger) Timed(operation string) func() {
	if !l.Enabled() {
		return func() {}
	}
	start := time.Now()
	return func() {
		l.Debug(operation, "duration", time.Since(start))
	}
}
