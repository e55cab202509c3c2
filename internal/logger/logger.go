package logger

import (
	"os"

	"github.com/sirupsen/logrus"
)

// New builds the process-wide structured logger. Output is JSON on stdout;
// the level string is forgiving and falls back to info.
func New(level string) *logrus.Logger {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetOutput(os.Stdout)

	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		parsed = logrus.InfoLevel
	}
	log.SetLevel(parsed)
	return log
}
