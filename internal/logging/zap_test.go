package logging

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestZapLogger_LevelsAndFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := NewZapLogger(zap.New(core))
	ctx := context.Background()

	log.Debug(ctx, "dbg", "a", 1)
	log.Info(ctx, "inf", "b", 2)
	log.Warn(ctx, "wrn", "c", 3)
	log.Error(ctx, "err", "d", 4)

	entries := logs.AllUntimed()
	require.Len(t, entries, 4)

	want := []zapcore.Level{zapcore.DebugLevel, zapcore.InfoLevel, zapcore.WarnLevel, zapcore.ErrorLevel}
	for i, e := range entries {
		require.Equal(t, want[i], e.Level)
	}
	require.Equal(t, "inf", entries[1].Message)
	require.Equal(t, int64(2), entries[1].ContextMap()["b"])
}

func TestZapLogger_With_AddsFields(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	log := NewZapLogger(zap.New(core)).With("component", "router")

	log.Info(context.Background(), "hello", "k", "v")

	entries := logs.AllUntimed()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	require.Equal(t, "router", fields["component"])
	require.Equal(t, "v", fields["k"])
}

func TestNew_SelectsBackend(t *testing.T) {
	l, err := New(BackendZap, "debug")
	require.NoError(t, err)
	require.IsType(t, &ZapLogger{}, l)

	l, err = New("", "nonsense")
	require.NoError(t, err)
	require.IsType(t, &SlogLogger{}, l)
}

func TestNop_DoesNotPanic(t *testing.T) {
	l := Nop().With("x", 1)
	l.Info(context.Background(), "quiet")
	l.Error(context.Background(), "quiet")
}
