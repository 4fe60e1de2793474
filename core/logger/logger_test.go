package logger

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDebugGatedOnVerbose(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)

	SetVerbose(false)
	Debug("hidden %d", 1)
	assert.Empty(t, buf.String())

	SetVerbose(true)
	Debug("shown %d", 2)
	assert.Contains(t, buf.String(), "DEBUG")
	assert.Contains(t, buf.String(), "shown 2")

	SetVerbose(false)
}

func TestLevelsFormatted(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)

	Info("info line")
	Warn("warn line")
	Error("error line")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Len(t, lines, 3)
	assert.Contains(t, lines[0], "INFO")
	assert.Contains(t, lines[1], "WARN")
	assert.Contains(t, lines[2], "ERROR")
	assert.NotContains(t, buf.String(), "\033[")
}

func TestLevelString(t *testing.T) {
	assert.Equal(t, "DEBUG", DEBUG.String())
	assert.Equal(t, "FATAL", FATAL.String())
	assert.Equal(t, "UNKNOWN", LogLevel(42).String())
}
