// Package logger configures the global zerolog logger.
package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Init sets the global level and output. pretty switches from JSON lines to
// the human-readable console writer. Unknown levels fall back to info.
func Init(level string, pretty bool) zerolog.Logger {
	return initTo(os.Stderr, level, pretty)
}

func initTo(w io.Writer, level string, pretty bool) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)

	out := w
	if pretty {
		out = zerolog.ConsoleWriter{Out: w, TimeFormat: time.DateTime}
	}
	log.Logger = zerolog.New(out).With().Timestamp().Str("service", "stockranker").Logger()
	return log.Logger
}
