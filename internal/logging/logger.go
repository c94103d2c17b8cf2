//-------------------------------------------------------------------------
//
// pgEdge Cost Warehouse
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package logging holds the process-wide zerolog logger shared by the
// pipeline stages. Stage code logs through the level helpers below; the CLI
// calls Init once the configuration has been read.
package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Logger is the shared logger. It writes to stderr so that stage summaries
// printed on stdout stay machine-readable.
var Logger zerolog.Logger

// Config holds logging configuration.
type Config struct {
	// Level is debug, info, warn or error. Anything else means info.
	Level string

	// Pretty selects the human-readable console writer over JSON lines.
	Pretty bool

	TimeFormat string

	// Output overrides the destination; stderr when nil.
	Output io.Writer
}

// DefaultConfig returns the configuration used before the CLI has loaded
// its own.
func DefaultConfig() Config {
	return Config{
		Level:      "info",
		Pretty:     true,
		TimeFormat: time.RFC3339,
	}
}

// Init replaces the shared logger.
func Init(cfg Config) {
	var dest io.Writer = os.Stderr
	if cfg.Output != nil {
		dest = cfg.Output
	}
	output := dest

	timeFormat := cfg.TimeFormat
	if timeFormat == "" {
		timeFormat = time.RFC3339
	}

	if cfg.Pretty {
		output = zerolog.ConsoleWriter{
			Out:        dest,
			TimeFormat: timeFormat,
		}
	}

	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}

	Logger = zerolog.New(output).
		Level(level).
		With().
		Timestamp().
		Logger()
}

// Debug returns a debug level event.
func Debug() *zerolog.Event {
	return Logger.Debug()
}

// Info returns an info level event.
func Info() *zerolog.Event {
	return Logger.Info()
}

// Warn returns a warning level event.
func Warn() *zerolog.Event {
	return Logger.Warn()
}

// Error returns an error level event.
func Error() *zerolog.Event {
	return Logger.Error()
}

// Stage returns a child logger whose events carry stage=name, for example
// "relational" or "warehouse".
func Stage(name string) zerolog.Logger {
	return Logger.With().Str("stage", name).Logger()
}

func init() {
	Init(DefaultConfig())
}
