// Package logger writes mend's diagnostic log.
//
// The terminal belongs to the merge tool and to prompts, so nothing is logged
// to stdout or stderr. Everything goes to a text log file instead
// (DefaultLogPath unless Init is called with another path).
package logger

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

// LogLevel represents the severity of a log message
type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l LogLevel) slogLevel() slog.Level {
	switch l {
	case LevelDebug:
		return slog.LevelDebug
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// DefaultLogPath is used when Init has not been called before the first write.
const DefaultLogPath = "/tmp/mend-debug.log"

// logGlob matches every log file mend may have produced, including ones
// written with --log-file under /tmp.
const logGlob = "/tmp/mend-*.log"

var (
	mu       sync.Mutex
	once     sync.Once
	base     *slog.Logger
	levelVar = new(slog.LevelVar)
	level    = LevelInfo
	file     *os.File
	path     string
	ready    bool
)

// SetLevel sets the minimum level written to the log.
func SetLevel(l LogLevel) {
	mu.Lock()
	defer mu.Unlock()
	level = l
	levelVar.Set(l.slogLevel())
}

// SetDebug toggles between debug and info level.
func SetDebug(enabled bool) {
	if enabled {
		SetLevel(LevelDebug)
		return
	}
	SetLevel(LevelInfo)
}

// Init opens the log file at p. Calling it after the logger is already set
// up is a no-op.
func Init(p string) error {
	mu.Lock()
	defer mu.Unlock()

	if ready {
		return nil
	}
	if err := open(p); err != nil {
		return err
	}
	base.Info("Logger initialized", "path", p)
	return nil
}

// open must be called with mu held.
func open(p string) error {
	f, err := os.OpenFile(p, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file %s: %w", p, err)
	}
	file = f
	path = p
	levelVar.Set(level.slogLevel())
	base = slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: levelVar}))
	ready = true
	return nil
}

// ensureInit must be called with mu held.
func ensureInit() {
	if ready {
		return
	}
	once.Do(func() {
		if err := open(DefaultLogPath); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
			return
		}
		base.Info("Logger initialized", "path", DefaultLogPath)
	})
}

func logf(l slog.Level, format string, args ...any) {
	mu.Lock()
	defer mu.Unlock()

	ensureInit()
	if base == nil || !base.Enabled(context.Background(), l) {
		return
	}
	base.Log(context.Background(), l, fmt.Sprintf(format, args...))
}

// Debug writes a printf-style debug message.
func Debug(format string, args ...any) { logf(slog.LevelDebug, format, args...) }

// Info writes a printf-style info message.
func Info(format string, args ...any) { logf(slog.LevelInfo, format, args...) }

// Warn writes a printf-style warning.
func Warn(format string, args ...any) { logf(slog.LevelWarn, format, args...) }

// Error writes a printf-style error message.
func Error(format string, args ...any) { logf(slog.LevelError, format, args...) }

// Path returns the file currently being written, or "" before the first write.
func Path() string {
	mu.Lock()
	defer mu.Unlock()
	return path
}

// Close closes the log file. Later writes are dropped until Reset.
func Close() {
	mu.Lock()
	defer mu.Unlock()

	if file != nil {
		file.Close()
		file = nil
	}
	base = nil
}

// Reset returns the package to its initial state. Tests use it to point the
// logger at os.DevNull.
func Reset() {
	mu.Lock()
	defer mu.Unlock()

	if file != nil {
		file.Close()
		file = nil
	}
	ready = false
	once = sync.Once{}
	path = ""
	base = nil
	level = LevelInfo
	levelVar = new(slog.LevelVar)
}

// ClearLogs removes mend log files from /tmp and reports how many were removed.
func ClearLogs() (int, error) {
	matches, err := filepath.Glob(logGlob)
	if err != nil {
		return 0, err
	}
	count := 0
	for _, m := range matches {
		if err := os.Remove(m); err == nil {
			count++
		} else if !os.IsNotExist(err) {
			return count, err
		}
	}
	return count, nil
}

// ComponentLogger returns a structured logger tagged with component.
//
//	log := logger.ComponentLogger("Detector")
//	log.Debug("listing unmerged files", "root", root)
func ComponentLogger(component string) *slog.Logger {
	return with(slog.String("component", component))
}

// WithSession returns a structured logger tagged with a resolution session ID.
func WithSession(sessionID string) *slog.Logger {
	return with(slog.String("sessionID", sessionID))
}

func with(attr slog.Attr) *slog.Logger {
	mu.Lock()
	defer mu.Unlock()

	ensureInit()
	if base == nil {
		return slog.New(slog.DiscardHandler)
	}
	return base.With(attr)
}
