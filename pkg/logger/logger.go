// Package logger wraps zap with context-aware helpers. A request-scoped logger
// travels in the context; code without one falls back to the process-wide logger
// configured by Setup.
package logger

import (
	"context"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	// DevelopmentEnvironment selects the human-readable, debug-level logger. It is
	// also the only environment in which error responses disclose stack traces.
	DevelopmentEnvironment = "development"

	// ProductionEnvironment selects the JSON, info-level logger.
	ProductionEnvironment = "production"
)

// defaultLogger holds the process-wide *zap.Logger. It is read on every request,
// so it is stored atomically to keep Setup safe to call from tests.
var defaultLogger atomic.Pointer[zap.Logger] //nolint: gochecknoglobals

// IsDevelopment reports whether environment names the development environment.
func IsDevelopment(environment string) bool {
	return environment == DevelopmentEnvironment
}

// Setup initializes the default logger for the given environment. Any value other
// than "development" gets the production configuration.
func Setup(environment string) {
	var (
		l   *zap.Logger
		err error
	)
	if IsDevelopment(environment) {
		l, err = zap.NewDevelopment()
	} else {
		l, err = zap.NewProduction()
	}
	if err != nil {
		l = zap.NewNop()
	}

	defaultLogger.Store(l)
}

// SetDefault replaces the default logger. Mostly useful in tests with an observer core.
func SetDefault(l *zap.Logger) {
	defaultLogger.Store(l)
}

// key is the context key under which a request-scoped logger is stored.
type key struct{}

// Get returns the logger stored in ctx, the default logger otherwise. It never
// returns nil: before Setup is called a no-op logger is returned.
func Get(ctx context.Context) *zap.Logger {
	if ctx != nil {
		if l, _ := ctx.Value(key{}).(*zap.Logger); l != nil {
			return l
		}
	}
	if l := defaultLogger.Load(); l != nil {
		return l
	}

	return zap.NewNop()
}

// WithLogger returns a copy of ctx carrying l.
func WithLogger(ctx context.Context, l *zap.Logger) context.Context {
	return context.WithValue(ctx, key{}, l)
}

// WithFields returns a copy of ctx whose logger includes fields.
func WithFields(ctx context.Context, fields ...zapcore.Field) context.Context {
	return WithLogger(ctx, Get(ctx).With(fields...))
}

// IsDebug reports whether the logger in ctx emits debug entries.
func IsDebug(ctx context.Context) bool {
	return Get(ctx).Core().Enabled(zap.DebugLevel)
}

// Sync flushes the default logger.
func Sync() {
	_ = Get(context.Background()).Sync()
}

func Debug(ctx context.Context, msg string, fields ...zapcore.Field) {
	Get(ctx).Debug(msg, fields...)
}

func Info(ctx context.Context, msg string, fields ...zapcore.Field) {
	Get(ctx).Info(msg, fields...)
}

func Warn(ctx context.Context, msg string, fields ...zapcore.Field) {
	Get(ctx).Warn(msg, fields...)
}

func Error(ctx context.Context, msg string, fields ...zapcore.Field) {
	Get(ctx).Error(msg, fields...)
}

// Fatal logs at fatal level and exits the process.
func Fatal(ctx context.Context, msg string, fields ...zapcore.Field) {
	Get(ctx).Fatal(msg, fields...)
}
