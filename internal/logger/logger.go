package logger

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"smartassembly/internal/config"
)

// New builds a logger from cfg. Unknown levels fall back to info; any format
// other than "json" selects the text formatter. Logs go to stderr so that
// command output on stdout stays machine-readable.
func New(cfg config.LogConfig) *logrus.Logger {
	return NewWithOutput(cfg, os.Stderr)
}

func NewWithOutput(cfg config.LogConfig, out io.Writer) *logrus.Logger {
	log := logrus.New()

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)

	if strings.ToLower(cfg.Format) == "json" {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	log.SetOutput(out)
	return log
}
