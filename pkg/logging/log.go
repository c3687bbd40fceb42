package logging

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

var defaultLog = newLogger(os.Stdout)

func newLogger(out io.Writer) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(out)
	log.SetLevel(logrus.InfoLevel)
	log.SetFormatter(&logrus.TextFormatter{
		TimestampFormat: "2006-01-02 15:04:05",
		FullTimestamp:   true,
	})
	return log
}

// SetDebug switches the shared logger to DEBUG, which also reports every skipped CSV row.
func SetDebug() {
	defaultLog.SetLevel(logrus.DebugLevel)
}

// SetError keeps stdout clean for machine-readable output: only errors, on stderr.
func SetError() {
	defaultLog.SetLevel(logrus.ErrorLevel)
	defaultLog.SetOutput(os.Stderr)
}

// SetOutput redirects the shared logger.
func SetOutput(w io.Writer) {
	defaultLog.SetOutput(w)
}

// WithFile tags log lines with the input or output file they concern.
func WithFile(path string) *logrus.Entry {
	return defaultLog.WithField("file", path)
}

// Debug - Debug message
func Debug(args ...interface{}) {
	defaultLog.Debug(args...)
}

// Debugf - Debug message
func Debugf(format string, args ...interface{}) {
	defaultLog.Debugf(format, args...)
}

// Error - Error message
func Error(args ...interface{}) {
	defaultLog.Error(args...)
}

// Errorf - Error message
func Errorf(format string, args ...interface{}) {
	defaultLog.Errorf(format, args...)
}

// Info - Info Message
func Info(args ...interface{}) {
	defaultLog.Info(args...)
}

// Infof - Info Message
func Infof(format string, args ...interface{}) {
	defaultLog.Infof(format, args...)
}

// Warn - Warn Message
func Warn(args ...interface{}) {
	defaultLog.Warn(args...)
}

// Warnf - Warn Message
func Warnf(format string, args ...interface{}) {
	defaultLog.Warnf(format, args...)
}
