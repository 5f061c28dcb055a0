package logger

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInitAcceptsKnownLevels(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error"} {
		require.NoError(t, Init(level, "json"))
		require.NotNil(t, Logger())
	}
}

func TestInitFallsBackToInfoOnUnknownLevel(t *testing.T) {
	require.NoError(t, Init("chatty", "json"))
	require.NotNil(t, Logger())
}

func TestWithModuleReturnsChildLogger(t *testing.T) {
	require.NoError(t, Init("info", "console"))
	child := WithModule("scheduler")
	require.NotNil(t, child)
}
