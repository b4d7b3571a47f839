package sim

import (
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thesyncim/edge"
)

func TestConsoleHandlerLevels(t *testing.T) {
	var warn, debug lineConsole
	h := newConsoleHandler("sim", []edge.LoggerConsole{
		{Level: edge.LogLevelWarn, Output: warn.output},
		{Level: edge.LogLevelDebug, Output: debug.output},
	})
	logger := slog.New(h)

	logger.Info("hello", "k", 1)
	logger.Error("boom")

	require.Len(t, debug.all(), 2)
	require.Len(t, warn.all(), 1)

	line := debug.all()[0]
	assert.Contains(t, line, "[Info]-[sim] hello k=1")
	assert.True(t, strings.HasSuffix(line, "\r\n"))
	assert.Contains(t, warn.all()[0], "[Error]-[sim] boom")
}

func TestConsoleHandlerEnabled(t *testing.T) {
	h := newConsoleHandler("sim", []edge.LoggerConsole{{Level: edge.LogLevelError}})
	assert.True(t, h.Enabled(context.Background(), slog.LevelError))
	assert.False(t, h.Enabled(context.Background(), slog.LevelWarn))
	assert.False(t, newConsoleHandler("sim", nil).Enabled(context.Background(), slog.LevelError))
}

func TestConsoleHandlerColor(t *testing.T) {
	var c lineConsole
	logger := slog.New(newConsoleHandler("sim", []edge.LoggerConsole{
		{Level: edge.LogLevelDebug, Output: c.output, SupportColor: true},
	}))
	logger.Warn("careful")

	line := c.all()[0]
	assert.True(t, strings.HasPrefix(line, ansiYellow))
	assert.True(t, strings.HasSuffix(line, ansiReset+"\r\n"))
}

func TestConsoleHandlerAttrsAndGroups(t *testing.T) {
	var c lineConsole
	logger := slog.New(newConsoleHandler("sim", []edge.LoggerConsole{
		{Level: edge.LogLevelDebug, Output: c.output},
	}))
	logger.With("a", 1).WithGroup("g").Debug("m", "b", 2, slog.Group("n", "c", 3))

	assert.Contains(t, c.all()[0], "[Debug]-[sim] m a=1 g.b=2 g.n.c=3")
}

func TestConsoleLevel(t *testing.T) {
	assert.Equal(t, edge.LogLevelError, consoleLevel(slog.LevelError+4))
	assert.Equal(t, edge.LogLevelWarn, consoleLevel(slog.LevelWarn))
	assert.Equal(t, edge.LogLevelInfo, consoleLevel(slog.LevelInfo))
	assert.Equal(t, edge.LogLevelDebug, consoleLevel(slog.LevelDebug-4))
}
