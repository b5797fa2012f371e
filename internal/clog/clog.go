// Package clog configures the structured logger every pipeline
// component logs through, following the teacher's use of
// charmbracelet/log for operator-facing CLI output.
package clog

import (
	"os"

	"github.com/charmbracelet/log"
)

// New returns a logger writing to stderr with the given prefix (e.g.
// "pipeline", "isolation"), timestamps enabled and level controlled by
// the CONCOCT_LOG_LEVEL environment variable (debug/info/warn/error,
// defaulting to info).
func New(prefix string) *log.Logger {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          prefix,
	})
	logger.SetLevel(levelFromEnv())
	return logger
}

func levelFromEnv() log.Level {
	switch os.Getenv("CONCOCT_LOG_LEVEL") {
	case "debug":
		return log.DebugLevel
	case "warn":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}
