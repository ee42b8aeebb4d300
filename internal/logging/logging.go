// Package logging builds the process logger.
package logging

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/nhle/carereminder/internal/model"
)

// New returns a logrus logger configured from cfg. Output goes to w, or
// stderr when w is nil; an unknown level falls back to info.
func New(cfg model.LogConfig, w io.Writer) *logrus.Logger {
	log := logrus.New()

	if w == nil {
		w = os.Stderr
	}
	log.Out = w

	if cfg.Format == "json" {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)

	return log
}

// Discard returns a logger that drops everything. Used by tests.
func Discard() *logrus.Logger {
	log := logrus.New()
	log.Out = io.Discard
	return log
}
