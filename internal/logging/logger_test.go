package logging

import (
	"bytes"
	"errors"
	"testing"

	"github.com/fadedpez/tucoleague/internal/types"
	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, DEBUG, ParseLevel("debug"))
	assert.Equal(t, WARN, ParseLevel(" WARN "))
	assert.Equal(t, ERROR, ParseLevel("Error"))
	assert.Equal(t, INFO, ParseLevel("verbose"))
	assert.Equal(t, INFO, ParseLevel(""))
}

func TestLoggerFiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter(WARN, &buf)

	logger.Debug("debug %d", 1)
	logger.Info("info %d", 2)
	assert.Empty(t, buf.String())

	logger.Warn("warn %d", 3)
	assert.Contains(t, buf.String(), "WARN")
	assert.Contains(t, buf.String(), "warn 3")
	assert.Contains(t, buf.String(), "logger_test.go")
}

func TestLogErrorExternalDependencyIsWarning(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter(DEBUG, &buf)

	logger.LogError(types.WrapError(types.ErrExternalDependency, "notify failed", errors.New("timeout")))

	out := buf.String()
	assert.Contains(t, out, "WARN")
	assert.Contains(t, out, "Code: EXTERNAL_DEPENDENCY")
	assert.Contains(t, out, "Cause: timeout")
}

func TestLogErrorPlainError(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter(DEBUG, &buf)

	logger.LogError(errors.New("boom"))
	logger.LogError(nil)

	assert.Contains(t, buf.String(), "ERROR")
	assert.Contains(t, buf.String(), "Unexpected error: boom")
}
