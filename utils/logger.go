package utils

import (
	"os"
	"sync/atomic"

	"github.com/sirupsen/logrus"
)

var (
	isVerbose atomic.Bool
	logger    = newLogger()
)

func newLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05.000000",
	})
	l.SetLevel(logrus.InfoLevel)
	return l
}

// SetVerbose toggles debug output. It may be called at runtime, the
// sweep2sleep debug switch is wired straight to it.
func SetVerbose(verbose bool) {
	isVerbose.Store(verbose)
	if verbose {
		logger.SetLevel(logrus.DebugLevel)
	} else {
		logger.SetLevel(logrus.InfoLevel)
	}
}

func IsVerbose() bool {
	return isVerbose.Load()
}

// Logger returns the shared logger, for callers that want structured fields.
func Logger() *logrus.Logger {
	return logger
}

// WithFields starts a structured log entry.
func WithFields(fields logrus.Fields) *logrus.Entry {
	return logger.WithFields(fields)
}

func Verbose(format string, args ...interface{}) {
	if isVerbose.Load() {
		logger.Debugf(format, args...)
	}
}

func Info(format string, args ...interface{}) {
	logger.Infof(format, args...)
}

func Warn(format string, args ...interface{}) {
	logger.Warnf(format, args...)
}

func Error(format string, args ...interface{}) {
	logger.Errorf(format, args...)
}
