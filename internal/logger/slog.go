package logger

import (
	"context"
	"log/slog"
	"os"
	"time"
)

// slogLogger implements Logger on log/slog
type slogLogger struct {
	logger *slog.Logger
	level  Level
}

var slogLevels = map[Level]slog.Level{
	LevelDebug: slog.LevelDebug,
	LevelInfo:  slog.LevelInfo,
	LevelWarn:  slog.LevelWarn,
	LevelError: slog.LevelError,
}

// NewSlogLogger creates a Logger backed by slog. Format "text" (or "console")
// selects the key=value handler; anything else writes JSON.
func NewSlogLogger(cfg Config) Logger {
	out := cfg.Output
	if out == nil {
		out = os.Stdout
	}

	level, ok := slogLevels[cfg.Level]
	if !ok {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level, AddSource: cfg.AddSource}

	var handler slog.Handler
	switch cfg.Format {
	case "text", "console":
		handler = slog.NewTextHandler(out, opts)
	default:
		handler = slog.NewJSONHandler(out, opts)
	}

	return &slogLogger{logger: slog.New(handler), level: cfg.Level}
}

func toSlogAttr(f Field) slog.Attr {
	switch v := f.Value.(type) {
	case string:
		return slog.String(f.Key, v)
	case int:
		return slog.Int(f.Key, v)
	case int64:
		return slog.Int64(f.Key, v)
	case float64:
		return slog.Float64(f.Key, v)
	case bool:
		return slog.Bool(f.Key, v)
	case time.Duration:
		return slog.Duration(f.Key, v)
	case time.Time:
		return slog.Time(f.Key, v)
	default:
		return slog.Any(f.Key, v)
	}
}

func toSlogAttrs(fields []Field) []slog.Attr {
	attrs := make([]slog.Attr, len(fields))
	for i, f := range fields {
		attrs[i] = toSlogAttr(f)
	}
	return attrs
}

func (l *slogLogger) log(level slog.Level, msg string, fields []Field) {
	l.logger.LogAttrs(context.Background(), level, msg, toSlogAttrs(fields)...)
}

func (l *slogLogger) Debug(msg string, fields ...Field) { l.log(slog.LevelDebug, msg, fields) }
func (l *slogLogger) Info(msg string, fields ...Field)  { l.log(slog.LevelInfo, msg, fields) }
func (l *slogLogger) Warn(msg string, fields ...Field)  { l.log(slog.LevelWarn, msg, fields) }
func (l *slogLogger) Error(msg string, fields ...Field) { l.log(slog.LevelError, msg, fields) }

func (l *slogLogger) With(fields ...Field) Logger {
	if len(fields) == 0 {
		return l
	}
	args := make([]any, len(fields))
	for i, f := range fields {
		args[i] = toSlogAttr(f)
	}
	return &slogLogger{logger: l.logger.With(args...), level: l.level}
}

func (l *slogLogger) WithContext(ctx context.Context) Logger {
	return l.With(extractContextFields(ctx)...)
}

func (l *slogLogger) Level() Level {
	return l.level
}
