package telemetry

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestInfoWritesFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	SetLogger(zap.New(core))
	t.Cleanup(func() { SetLogger(zap.NewNop()) })

	Info("results.load", map[string]any{
		"session_id": "abc",
		"source":     "cache",
	})

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "results.load", entries[0].Message)
	ctx := entries[0].ContextMap()
	assert.Equal(t, "abc", ctx["session_id"])
	assert.Equal(t, "cache", ctx["source"])
}

func TestErrorFlattensErrorValues(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	SetLogger(zap.New(core))
	t.Cleanup(func() { SetLogger(zap.NewNop()) })

	Error("analysis.submit.failed", map[string]any{"err": errors.New("boom")})

	entries := logs.FilterMessage("analysis.submit.failed").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.ErrorLevel, entries[0].Level)
	assert.Equal(t, "boom", entries[0].ContextMap()["err"])
}

func TestInitUnknownLevelDefaultsToInfo(t *testing.T) {
	require.NoError(t, Init("bogus", "json"))
	assert.True(t, Logger().Core().Enabled(zapcore.InfoLevel))
	assert.False(t, Logger().Core().Enabled(zapcore.DebugLevel))
	SetLogger(zap.NewNop())
}
