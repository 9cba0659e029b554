package server

import (
	"os"

	"github.com/sirupsen/logrus"

	"salesdoc/internal/config"
)

// NewLogger configures the standard logrus logger from cfg and returns it.
// Request middleware logs through the standard logger, so both share the
// same level and formatter.
func NewLogger(cfg *config.Config) *logrus.Logger {
	logger := logrus.StandardLogger()
	logger.SetOutput(os.Stderr)

	if cfg.IsProduction() {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
		logger.WithField("log_level", cfg.LogLevel).Warn("Unknown log level, using info")
	}
	logger.SetLevel(level)

	return logger
}
