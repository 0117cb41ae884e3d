package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewLogger_Levels(t *testing.T) {
	logger, err := NewLogger("production", "warn")
	require.NoError(t, err)

	assert.False(t, logger.Core().Enabled(zap.InfoLevel))
	assert.True(t, logger.Core().Enabled(zap.WarnLevel))
}

func TestNewLogger_Development(t *testing.T) {
	logger, err := NewLogger("local", "debug")
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zap.DebugLevel))
}

func TestNewLogger_InvalidLevel(t *testing.T) {
	_, err := NewLogger("local", "loud")
	require.Error(t, err)
}
