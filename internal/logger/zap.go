package logger

import (
	"context"
	"os"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// zapLogger implements Logger using zap
type zapLogger struct {
	logger *zap.Logger
	level  Level
}

// NewZapLogger creates a new Logger backed by zap
func NewZapLogger(cfg Config) Logger {
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "time"
	encCfg.MessageKey = "msg"
	encCfg.EncodeTime = zapcore.RFC3339NanoTimeEncoder

	var encoder zapcore.Encoder
	switch cfg.Format {
	case "text", "console":
		encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
		encoder = zapcore.NewConsoleEncoder(encCfg)
	default:
		encoder = zapcore.NewJSONEncoder(encCfg)
	}

	out := cfg.Output
	if out == nil {
		out = os.Stdout
	}

	core := zapcore.NewCore(encoder, zapcore.AddSync(out), toZapLevel(cfg.Level))

	var opts []zap.Option
	if cfg.AddSource {
		opts = append(opts, zap.AddCaller(), zap.AddCallerSkip(1))
	}

	return &zapLogger{
		logger: zap.New(core, opts...),
		level:  cfg.Level,
	}
}

func toZapLevel(l Level) zapcore.Level {
	switch l {
	case LevelDebug:
		return zapcore.DebugLevel
	case LevelWarn:
		return zapcore.WarnLevel
	case LevelError:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func toZapFields(fields []Field) []zap.Field {
	out := make([]zap.Field, 0, len(fields))
	for _, f := range fields {
		switch v := f.Value.(type) {
		case string:
			out = append(out, zap.String(f.Key, v))
		case int:
			out = append(out, zap.Int(f.Key, v))
		case int64:
			out = append(out, zap.Int64(f.Key, v))
		case float64:
			out = append(out, zap.Float64(f.Key, v))
		case bool:
			out = append(out, zap.Bool(f.Key, v))
		case time.Duration:
			out = append(out, zap.Duration(f.Key, v))
		case time.Time:
			out = append(out, zap.Time(f.Key, v))
		default:
			out = append(out, zap.Any(f.Key, v))
		}
	}
	return out
}

func (l *zapLogger) Debug(msg string, fields ...Field) {
	l.logger.Debug(msg, toZapFields(fields)...)
}

func (l *zapLogger) Info(msg string, fields ...Field) {
	l.logger.Info(msg, toZapFields(fields)...)
}

func (l *zapLogger) Warn(msg string, fields ...Field) {
	l.logger.Warn(msg, toZapFields(fields)...)
}

func (l *zapLogger) Error(msg string, fields ...Field) {
	l.logger.Error(msg, toZapFields(fields)...)
}

func (l *zapLogger) With(fields ...Field) Logger {
	return &zapLogger{
		logger: l.logger.With(toZapFields(fields)...),
		level:  l.level,
	}
}

func (l *zapLogger) WithContext(ctx context.Context) Logger {
	fields := extractContextFields(ctx)
	if len(fields) == 0 {
		return l
	}
	return l.With(fields...)
}

func (l *zapLogger) Level() Level {
	return l.level
}

// Sync flushes buffered entries
func (l *zapLogger) Sync() error {
	return l.logger.Sync()
}
