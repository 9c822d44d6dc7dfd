// Package logger is the structured logging facade used across stride. Code logs
// through the Logger interface; the backend (slog or zap) is picked at startup
// from configuration, and request-scoped fields travel on the context.
package logger

import (
	"context"
	"io"
	"strings"
	"time"
)

// Level represents log severity levels
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

var levelNames = [...]string{
	LevelDebug: "debug",
	LevelInfo:  "info",
	LevelWarn:  "warn",
	LevelError: "error",
}

// String returns the lower-case level name. Unknown levels print as "info".
func (l Level) String() string {
	if l < LevelDebug || l > LevelError {
		return levelNames[LevelInfo]
	}
	return levelNames[l]
}

// ParseLevel maps a configured level name to a Level. Unknown names fall back
// to LevelInfo so a typo in config never silences errors.
func ParseLevel(s string) Level {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "warning" {
		return LevelWarn
	}
	for l, name := range levelNames {
		if name == s {
			return Level(l)
		}
	}
	return LevelInfo
}

// Field is one structured key/value attached to an entry
type Field struct {
	Key   string
	Value any
}

func String(key, value string) Field                 { return Field{Key: key, Value: value} }
func Int(key string, value int) Field                { return Field{Key: key, Value: value} }
func Duration(key string, value time.Duration) Field { return Field{Key: key, Value: value} }

// Err logs err under the "error" key as its message
func Err(err error) Field {
	if err == nil {
		return Field{Key: "error", Value: nil}
	}
	return Field{Key: "error", Value: err.Error()}
}

// Logger is implemented by each backend
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)

	// With returns a child logger that adds fields to every entry
	With(fields ...Field) Logger
	// WithContext returns a child logger carrying the context's correlation fields
	WithContext(ctx context.Context) Logger

	Level() Level
}

// Config holds logging configuration
type Config struct {
	Level Level
	// Format is "json" (default) or "text"/"console"
	Format string
	// AddSource adds the caller's file:line to entries
	AddSource bool
	// Backend is "slog" (default) or "zap"
	Backend string
	// Output is where entries are written; nil means stdout
	Output io.Writer
}

// New builds a Logger for the configured backend
func New(cfg Config) Logger {
	if strings.EqualFold(cfg.Backend, "zap") {
		return NewZapLogger(cfg)
	}
	return NewSlogLogger(cfg)
}

// DefaultConfig is JSON at info level on slog
func DefaultConfig() Config {
	return Config{Level: LevelInfo, Format: "json", Backend: "slog"}
}

var defaultLogger Logger

// SetDefault replaces the process-wide logger returned by Default and used by
// contexts without their own logger
func SetDefault(l Logger) {
	defaultLogger = l
}

// Default returns the process-wide logger, creating one from DefaultConfig on first use
func Default() Logger {
	if defaultLogger == nil {
		defaultLogger = NewSlogLogger(DefaultConfig())
	}
	return defaultLogger
}
