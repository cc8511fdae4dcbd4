package logger

import (
	"io"

	"github.com/sirupsen/logrus"
)

func New(logLevel string) *logrus.Logger {
	log := logrus.New()
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		level = logrus.InfoLevel
		log.Warnf("unknown log level %q, use info", logLevel)
	}
	log.SetLevel(level)
	log.SetFormatter(&logrus.JSONFormatter{})

	return log
}

// Discard returns a logger that drops everything; used by tests.
func Discard() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}
