package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestLevelFor(t *testing.T) {
	assert.Equal(t, zapcore.WarnLevel, levelFor(0))
	assert.Equal(t, zapcore.InfoLevel, levelFor(1))
	assert.Equal(t, zapcore.DebugLevel, levelFor(2))
	assert.Equal(t, zapcore.DebugLevel, levelFor(5))
}

func TestInitialize(t *testing.T) {
	require.NoError(t, Initialize(false, 1))
	assert.True(t, Logger.Desugar().Core().Enabled(zapcore.InfoLevel))
	assert.False(t, Logger.Desugar().Core().Enabled(zapcore.DebugLevel))

	require.NoError(t, Initialize(true, 0))
	assert.False(t, Logger.Desugar().Core().Enabled(zapcore.InfoLevel))
	assert.True(t, Logger.Desugar().Core().Enabled(zapcore.WarnLevel))
}
