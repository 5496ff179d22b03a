// Package logger provides leveled, module-tagged logging on top of the
// standard log package.
//
// All output goes to stderr by default because stdout carries the MCP
// protocol stream. Each line is prefixed with the level and the pipeline
// module that emitted it:
//
//	2026/10/15 09:12:44 [DEBUG] [validate] candidate 2 rejected at shape: too_small
package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"
)

// Level is the minimum severity a Logger emits.
type Level int

const (
	DEBUG Level = iota
	INFO
	WARN
	ERROR
	SILENT
)

var levelNames = map[Level]string{
	DEBUG:  "DEBUG",
	INFO:   "INFO",
	WARN:   "WARN",
	ERROR:  "ERROR",
	SILENT: "SILENT",
}

// String returns the level's upper-case name.
func (l Level) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return "UNKNOWN"
}

// ParseLevel maps a case-insensitive level name to a Level. Unknown names
// return INFO together with an error.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return DEBUG, nil
	case "info", "":
		return INFO, nil
	case "warn", "warning":
		return WARN, nil
	case "error":
		return ERROR, nil
	case "silent", "none", "off":
		return SILENT, nil
	default:
		return INFO, fmt.Errorf("invalid log level: %q", s)
	}
}

// Logger writes leveled messages tagged with a module name.
type Logger struct {
	mu    sync.Mutex
	level Level
	out   *log.Logger
}

// New creates a Logger writing to output (stderr when nil).
func New(level Level, output io.Writer) *Logger {
	if output == nil {
		output = os.Stderr
	}
	return &Logger{
		level: level,
		out:   log.New(output, "", log.Ldate|log.Ltime|log.Lmicroseconds),
	}
}

// SetLevel changes the minimum level.
func (l *Logger) SetLevel(level Level) {
	l.mu.Lock()
	l.level = level
	l.mu.Unlock()
}

// Level returns the current minimum level.
func (l *Logger) Level() Level {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.level
}

// Enabled reports whether messages at level would be written.
func (l *Logger) Enabled(level Level) bool {
	return level >= l.Level() && level != SILENT
}

func (l *Logger) logf(level Level, module, format string, args ...interface{}) {
	if !l.Enabled(level) {
		return
	}
	prefix := "[" + level.String() + "]"
	if module != "" {
		prefix += " [" + module + "]"
	}
	l.out.Printf("%s %s", prefix, fmt.Sprintf(format, args...))
}

func (l *Logger) Debug(module, format string, args ...interface{}) {
	l.logf(DEBUG, module, format, args...)
}

func (l *Logger) Info(module, format string, args ...interface{}) {
	l.logf(INFO, module, format, args...)
}

func (l *Logger) Warn(module, format string, args ...interface{}) {
	l.logf(WARN, module, format, args...)
}

func (l *Logger) Error(module, format string, args ...interface{}) {
	l.logf(ERROR, module, format, args...)
}

var (
	defaultMu     sync.RWMutex
	defaultLogger = New(INFO, os.Stderr)
)

// Init replaces the process-wide logger used by the package-level functions.
func Init(level Level, output io.Writer) {
	defaultMu.Lock()
	defaultLogger = New(level, output)
	defaultMu.Unlock()
}

// Default returns the process-wide logger.
func Default() *Logger {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultLogger
}

func Debug(module, format string, args ...interface{}) { Default().Debug(module, format, args...) }
func Info(module, format string, args ...interface{})  { Default().Info(module, format, args...) }
func Warn(module, format string, args ...interface{})  { Default().Warn(module, format, args...) }
func Error(module, format string, args ...interface{}) { Default().Error(module, format, args...) }
