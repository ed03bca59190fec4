// Package log configures the process-wide logger used across the admin
// server and its services.
package log

import (
	"os"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
)

// Logger wraps logrus with color helpers for the few places that print
// operator-facing status lines outside structured logging.
type Logger struct {
	*logrus.Logger
	Green  *color.Color
	Red    *color.Color
	Yellow *color.Color
	Bold   *color.Color
}

// New builds a logger. METABOX_DEBUG=true enables debug level.
func New() *Logger {
	logger := &Logger{
		Logger: logrus.New(),
		Green:  color.New(color.FgGreen),
		Red:    color.New(color.FgRed),
		Yellow: color.New(color.FgYellow),
		Bold:   color.New(color.Bold),
	}

	logger.SetFormatter(&logrus.TextFormatter{
		TimestampFormat: "2006/01/02 15:04:05",
		FullTimestamp:   true,
		DisableSorting:  true,
	})

	if os.Getenv("METABOX_DEBUG") == "true" {
		logger.SetLevel(logrus.DebugLevel)
	} else {
		logger.SetLevel(logrus.InfoLevel)
	}

	return logger
}
