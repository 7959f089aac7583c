package telemetry

import (
	"io"
	"os"
	"time"

	"bookstore/internal/config"

	"github.com/rs/zerolog"
)

// NewLogger はdevなら見やすい形、prodならJSON
func NewLogger(cfg config.Config) zerolog.Logger {
	return newLogger(cfg, os.Stdout)
}

func newLogger(cfg config.Config, out io.Writer) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || cfg.LogLevel == "" {
		level = zerolog.InfoLevel
	}

	w := out
	if !cfg.IsProd() {
		w = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}
	return zerolog.New(w).Level(level).With().Timestamp().Str("service", cfg.OtelServiceName).Logger()
}
