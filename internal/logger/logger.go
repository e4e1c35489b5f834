package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"runtime"
	"sync"
	"time"
)

// Level represents the severity level of a log entry
type Level string

const (
	LevelDebug Level = "DEBUG"
	LevelInfo  Level = "INFO"
	LevelWarn  Level = "WARN"
	LevelError Level = "ERROR"
)

// Package-level logger instances
var (
	appLogger   *Logger
	storeLogger *Logger
	appOnce     sync.Once
	storeOnce   sync.Once
	mu          sync.RWMutex
)

// Entry represents a single log entry
type Entry struct {
	Timestamp string                 `json:"timestamp"`
	Level     Level                  `json:"level"`
	Message   string                 `json:"message"`
	Context   map[string]interface{} `json:"context,omitempty"`
	Error     string                 `json:"error,omitempty"`
	Stack     []string               `json:"stack,omitempty"`
}

// Logger provides structured logging functionality
type Logger struct {
	output    io.Writer
	minLevel  Level
	withStack bool
}

// Config holds logger configuration
type Config struct {
	Output    io.Writer
	MinLevel  Level
	WithStack bool
}

// New creates a new logger with the given configuration
func New(cfg Config) *Logger {
	if cfg.Output == nil {
		cfg.Output = os.Stdout
	}
	if cfg.MinLevel == "" {
		cfg.MinLevel = LevelInfo
	}

	return &Logger{
		output:    cfg.Output,
		minLevel:  cfg.MinLevel,
		withStack: cfg.WithStack,
	}
}

// Default creates a logger with default configuration
func Default() *Logger {
	return New(Config{
		Output:    os.Stdout,
		MinLevel:  LevelInfo,
		WithStack: false,
	})
}

// NewWithLevel creates a new logger with a specific log level string
func NewWithLevel(level string) *Logger {
	logLevel := parseLevel(level)
	return New(Config{
		Output:    os.Stdout,
		MinLevel:  logLevel,
		WithStack: logLevel == LevelDebug,
	})
}

// AppLogger returns the singleton application logger instance
func AppLogger() *Logger {
	mu.RLock()
	if appLogger != nil {
		mu.RUnlock()
		return appLogger
	}
	mu.RUnlock()

	appOnce.Do(func() {
		mu.Lock()
		defer mu.Unlock()
		appLogger = Default()
	})

	mu.RLock()
	defer mu.RUnlock()
	return appLogger
}

// StoreLogger returns the singleton store logger instance
func StoreLogger() *Logger {
	mu.RLock()
	if storeLogger != nil {
		mu.RUnlock()
		return storeLogger
	}
	mu.RUnlock()

	storeOnce.Do(func() {
		mu.Lock()
		defer mu.Unlock()
		storeLogger = Default()
	})

	mu.RLock()
	defer mu.RUnlock()
	return storeLogger
}

// SetAppLogger sets the application logger (primarily for testing)
func SetAppLogger(logger *Logger) {
	mu.Lock()
	defer mu.Unlock()
	appLogger = logger
}

// SetStoreLogger sets the store logger (primarily for testing)
func SetStoreLogger(logger *Logger) {
	mu.Lock()
	defer mu.Unlock()
	storeLogger = logger
}

// InitializeLoggers initializes both app and store loggers with specified levels
func InitializeLoggers(appLevel, storeLevel string) {
	mu.Lock()
	defer mu.Unlock()

	appLogger = NewWithLevel(appLevel)
	storeLogger = NewWithLevel(storeLevel)
}

// parseLevel converts a string log level to a Level type
func parseLevel(level string) Level {
	switch level {
	case "debug":
		return LevelDebug
	case "info":
		return LevelInfo
	case "warn":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// Debug logs a debug message
func (l *Logger) Debug(msg string) {
	l.log(LevelDebug, msg, nil, nil)
}

// Info logs an info message
func (l *Logger) Info(msg string) {
	l.log(LevelInfo, msg, nil, nil)
}

// Warn logs a warning message
func (l *Logger) Warn(msg string) {
	l.log(LevelWarn, msg, nil, nil)
}

// Error logs an error message
func (l *Logger) Error(msg string, err error) {
	l.log(LevelError, msg, nil, err)
}

// WithFields returns a new logger with additional fields
func (l *Logger) WithFields(fields map[string]interface{}) *FieldLogger {
	return &FieldLogger{
		logger: l,
		fields: fields,
	}
}

// log performs the actual logging
func (l *Logger) log(level Level, msg string, context map[string]interface{}, err error) {
	if !l.shouldLog(level) {
		return
	}

	entry := Entry{
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
		Level:     level,
		Message:   msg,
		Context:   context,
	}

	if err != nil {
		entry.Error = err.Error()
		if l.withStack && level == LevelError {
			entry.Stack = getStackTrace()
		}
	}

	data, _ := json.Marshal(entry)
	fmt.Fprintln(l.output, string(data))
}

// shouldLog checks if the log level should be logged
func (l *Logger) shouldLog(level Level) bool {
	levels := map[Level]int{
		LevelDebug: 0,
		LevelInfo:  1,
		LevelWarn:  2,
		LevelError: 3,
	}

	return levels[level] >= levels[l.minLevel]
}

// getStackTrace captures the current stack trace
func getStackTrace() []string {
	const maxDepth = 32
	var pcs [maxDepth]uintptr
	n := runtime.Callers(3, pcs[:])

	frames := runtime.CallersFrames(pcs[:n])
	stack := make([]string, 0, n)

	for {
		frame, more := frames.Next()
		stack = append(stack, fmt.Sprintf("%s:%d %s", frame.File, frame.Line, frame.Function))
		if !more {
			break
		}
	}

	return stack
}

// FieldLogger is a logger with pre-set fields
type FieldLogger struct {
	logger *Logger
	fields map[string]interface{}
}

// Debug logs a debug message with fields
func (fl *FieldLogger) Debug(msg string) {
	fl.logger.log(LevelDebug, msg, fl.fields, nil)
}

// Info logs an info message with fields
func (fl *FieldLogger) Info(msg string) {
	fl.logger.log(LevelInfo, msg, fl.fields, nil)
}

// Warn logs a warning message with fields
func (fl *FieldLogger) Warn(msg string) {
	fl.logger.log(LevelWarn, msg, fl.fields, nil)
}

// Error logs an error message with fields
func (fl *FieldLogger) Error(msg string, err error) {
	fl.logger.log(LevelError, msg, fl.fields, err)
}
