// Package logger provides logging utilities for mailsend.
package logger

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// NewLogger creates a new logger
// logLevel is the level of logging
// Possible values of logLevel are: "debug", "info", "warn", "error"
// Default value is "info".
func NewLogger(logLevel string) *logrus.Logger {
	appLog := logrus.New()
	appLog.SetFormatter(&logrus.TextFormatter{
		DisableColors:    false,
		FullTimestamp:    false,
		DisableTimestamp: true,
	})
	appLog.SetOutput(os.Stdout)
	appLog.SetLevel(parseLevel(logLevel))
	return appLog
}

// NoLogger creates a logger that does not log anything.
func NoLogger() *logrus.Logger {
	noLogger := logrus.New()
	noLogger.SetOutput(io.Discard)
	noLogger.SetLevel(logrus.DebugLevel)
	return noLogger
}

func parseLevel(logLevel string) logrus.Level {
	switch logLevel {
	case "debug":
		return logrus.DebugLevel
	case "warn":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}
