package logger_test

import (
	"context"
	"shoptogether/pkg/logger"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestSetup(t *testing.T) {
	tests := []struct {
		name        string
		environment string
		debug       bool
	}{
		{name: "development", environment: logger.DevelopmentEnvironment, debug: true},
		{name: "production", environment: logger.ProductionEnvironment, debug: false},
		{name: "unset falls back to production", environment: "", debug: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NotPanics(t, func() {
				logger.Setup(tt.environment)
			})

			ctx := context.Background()
			require.NotNil(t, logger.Get(ctx))
			require.Equal(t, tt.debug, logger.IsDebug(ctx))
		})
	}
}

func TestIsDevelopment(t *testing.T) {
	require.True(t, logger.IsDevelopment("development"))
	require.False(t, logger.IsDevelopment("Development"))
	require.False(t, logger.IsDevelopment("production"))
	require.False(t, logger.IsDevelopment(""))
}

func TestGet_PrefersContextLogger(t *testing.T) {
	logger.Setup(logger.DevelopmentEnvironment)

	custom := zap.NewNop()
	ctx := logger.WithLogger(context.Background(), custom)
	require.Same(t, custom, logger.Get(ctx))
}

func TestGet_NilContext(t *testing.T) {
	//nolint: staticcheck
	require.NotNil(t, logger.Get(nil))
}

func TestWithFields(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	logger.SetDefault(zap.New(core))
	t.Cleanup(func() { logger.Setup(logger.DevelopmentEnvironment) })

	ctx := logger.WithFields(context.Background(), zap.String("RequestID", "abc"))
	logger.Info(ctx, "hello")
	logger.Debug(ctx, "dropped")

	entries := logs.All()
	require.Len(t, entries, 1)
	require.Equal(t, "hello", entries[0].Message)
	require.Equal(t, "abc", entries[0].ContextMap()["RequestID"])
}

func TestLoggingFunctions(t *testing.T) {
	logger.Setup(logger.DevelopmentEnvironment)
	ctx := context.Background()

	require.NotPanics(t, func() {
		logger.Debug(ctx, "debug message", zap.String("key", "value"))
		logger.Info(ctx, "info message", zap.String("key", "value"))
		logger.Warn(ctx, "warn message", zap.String("key", "value"))
		logger.Error(ctx, "error message", zap.String("key", "value"))
	})
}
