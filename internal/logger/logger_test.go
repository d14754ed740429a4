package logger

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

// TestParseLogLevel verifies mapping from strings to zapcore.Level and handling of unknown values.
func TestParseLogLevel(t *testing.T) {
	t.Parallel()

	cases := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"info":    zapcore.InfoLevel,
		"warn":    zapcore.WarnLevel,
		"WARNING": zapcore.WarnLevel,
		" error ": zapcore.ErrorLevel,
	}
	for s, lvl := range cases {
		got, ok := ParseLogLevel(s)
		require.True(t, ok)
		require.Equal(t, lvl, got)
	}

	_, ok := ParseLogLevel("unknown")
	require.False(t, ok)
}

// TestContextLogger verifies that a logger stored in the context is used by the helpers.
func TestContextLogger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	ctx := ToContext(context.Background(), New(zapcore.DebugLevel, &buf))
	ctx = WithName(ctx, "engine")
	ctx = WithKV(ctx, "run_id", "42")

	InfoKV(ctx, "Packaging", "platform", "linux")

	out := buf.String()
	require.Contains(t, out, "engine")
	require.Contains(t, out, "Packaging")
	require.Contains(t, out, "run_id")
	require.Contains(t, out, "linux")
}

// TestFromContextFallsBackToGlobal ensures a bare context yields the global logger.
func TestFromContextFallsBackToGlobal(t *testing.T) {
	t.Parallel()

	require.Same(t, Logger(), FromContext(context.Background()))
}

// TestLineWriter checks that each written line becomes a log entry.
func TestLineWriter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	ctx := ToContext(context.Background(), New(zapcore.DebugLevel, &buf))

	w := LineWriter(ctx, zapcore.InfoLevel)
	_, err := w.Write([]byte("first line\nsecond"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	require.Contains(t, buf.String(), "first line")
	require.Contains(t, buf.String(), "second")
}
