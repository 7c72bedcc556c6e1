// Package logging configures the process-wide logger.
package logging

import (
	"os"

	"github.com/sirupsen/logrus"
)

// New builds a logger writing to stderr so stdout stays clean for the MCP
// stdio transport.
func New(level string) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stderr)
	log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	log.SetLevel(lvl)
	return log
}
