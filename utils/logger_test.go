package utils

import (
	"bytes"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	out := logger.Out
	logger.SetOutput(&buf)
	t.Cleanup(func() { logger.SetOutput(out) })
	return &buf
}

func TestSetVerbose_And_IsVerbose(t *testing.T) {
	// save original state and restore after test
	original := IsVerbose()
	defer SetVerbose(original)

	SetVerbose(true)
	assert.True(t, IsVerbose())
	assert.Equal(t, logrus.DebugLevel, Logger().GetLevel())

	SetVerbose(false)
	assert.False(t, IsVerbose())
	assert.Equal(t, logrus.InfoLevel, Logger().GetLevel())
}

func TestVerbose_SilentWhenDisabled(t *testing.T) {
	original := IsVerbose()
	defer SetVerbose(original)
	buf := captureLogs(t)

	SetVerbose(false)
	Verbose("test message %s %d", "arg", 42)
	assert.Empty(t, buf.String())
}

func TestVerbose_WritesWhenEnabled(t *testing.T) {
	original := IsVerbose()
	defer SetVerbose(original)
	buf := captureLogs(t)

	SetVerbose(true)
	Verbose("test message %s %d", "arg", 42)
	assert.Contains(t, buf.String(), "test message arg 42")
}

func TestWithFields_IncludesFields(t *testing.T) {
	buf := captureLogs(t)

	WithFields(logrus.Fields{"bank": "static.3"}).Info("matched")
	assert.Contains(t, buf.String(), "bank=static.3")
	assert.Contains(t, buf.String(), "matched")
}

func TestInfo_DoesNotPanic(t *testing.T) {
	captureLogs(t)
	Info("test info %s", "message")
	Warn("test warn %s", "message")
	Error("test error %s", "message")
}
