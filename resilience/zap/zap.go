package zap

import (
	"context"
	"os"

	"github.com/LerianStudio/lib-resilience/resilience/log"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ZapWithTraceLogger is a zap-backed implementation of log.Logger that
// appends OpenTelemetry trace correlation fields when built from a context
// carrying an active span.
type ZapWithTraceLogger struct {
	Logger *zap.SugaredLogger
}

// Compile-time assertion: *ZapWithTraceLogger implements log.Logger.
var _ log.Logger = (*ZapWithTraceLogger)(nil)

// InitializeLogger builds a production JSON logger writing to stdout.
// The level is read from LOG_LEVEL (defaults to info).
//
//nolint:ireturn
func InitializeLogger() log.Logger {
	level := zapcore.InfoLevel
	if v, ok := os.LookupEnv("LOG_LEVEL"); ok {
		if parsed, err := zapcore.ParseLevel(v); err == nil {
			level = parsed
		}
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.OutputPaths = []string{"stdout"}

	logger, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		panic(err)
	}

	return &ZapWithTraceLogger{Logger: logger.Sugar()}
}

func (l *ZapWithTraceLogger) sugar() *zap.SugaredLogger {
	if l == nil || l.Logger == nil {
		return zap.NewNop().Sugar()
	}

	return l.Logger
}

// WithContext returns a child logger carrying trace_id and span_id fields
// when ctx has a valid OpenTelemetry span, so log lines correlate with
// distributed traces.
//
//nolint:ireturn
func (l *ZapWithTraceLogger) WithContext(ctx context.Context) log.Logger {
	if ctx == nil {
		return l
	}

	sc := trace.SpanFromContext(ctx).SpanContext()
	if !sc.IsValid() {
		return l
	}

	return &ZapWithTraceLogger{
		Logger: l.sugar().With(
			"trace_id", sc.TraceID().String(),
			"span_id", sc.SpanID().String(),
		),
	}
}

// Info implements the log.Logger interface.
func (l *ZapWithTraceLogger) Info(args ...any) { l.sugar().Info(args...) }

// Infof implements the log.Logger interface.
func (l *ZapWithTraceLogger) Infof(format string, args ...any) { l.sugar().Infof(format, args...) }

// Error implements the log.Logger interface.
func (l *ZapWithTraceLogger) Error(args ...any) { l.sugar().Error(args...) }

// Errorf implements the log.Logger interface.
func (l *ZapWithTraceLogger) Errorf(format string, args ...any) { l.sugar().Errorf(format, args...) }

// Warn implements the log.Logger interface.
func (l *ZapWithTraceLogger) Warn(args ...any) { l.sugar().Warn(args...) }

// Warnf implements the log.Logger interface.
func (l *ZapWithTraceLogger) Warnf(format string, args ...any) { l.sugar().Warnf(format, args...) }

// Debug implements the log.Logger interface.
func (l *ZapWithTraceLogger) Debug(args ...any) { l.sugar().Debug(args...) }

// Debugf implements the log.Logger interface.
func (l *ZapWithTraceLogger) Debugf(format string, args ...any) { l.sugar().Debugf(format, args...) }

// Fatal implements the log.Logger interface.
func (l *ZapWithTraceLogger) Fatal(args ...any) { l.sugar().Fatal(args...) }

// Fatalf implements the log.Logger interface.
func (l *ZapWithTraceLogger) Fatalf(format string, args ...any) { l.sugar().Fatalf(format, args...) }

// WithFields implements the log.Logger interface. Fields are expected as
// alternating key/value pairs.
//
//nolint:ireturn
func (l *ZapWithTraceLogger) WithFields(fields ...any) log.Logger {
	return &ZapWithTraceLogger{Logger: l.sugar().With(fields...)}
}

// Sync flushes any buffered log entries.
func (l *ZapWithTraceLogger) Sync() error {
	return l.sugar().Sync()
}
