// SPDX-License-Identifier: MPL-2.0

// Package buildlog configures the process-wide structured logger.
// Human-readable output goes to stderr; an optional rotating file sink
// keeps a machine-parseable history of builds.
package buildlog

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
	"gopkg.in/natefinch/lumberjack.v2"

	"envforge/internal/config"
)

// Setup configures the default logger from the resolved configuration.
// It returns a closer for the file sink; the closer is a no-op when no
// log file is configured.
func Setup(cfg *config.Config, verbose bool) io.Closer {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
	})

	level := parseLevel(cfg.Log.Level)
	if verbose {
		level = log.DebugLevel
	}
	logger.SetLevel(level)

	var closer io.Closer = io.NopCloser(nil)
	if cfg.Log.File != "" {
		rotator := &lumberjack.Logger{
			Filename:   cfg.Log.File,
			MaxSize:    cfg.Log.MaxSizeMB,
			MaxBackups: cfg.Log.MaxBackups,
		}
		logger.SetOutput(io.MultiWriter(os.Stderr, rotator))
		closer = rotator
	}

	log.SetDefault(logger)
	return closer
}

func parseLevel(s string) log.Level {
	switch s {
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
