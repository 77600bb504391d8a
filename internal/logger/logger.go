package logger

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New builds the root logger. With pretty enabled the console writer is used,
// otherwise JSON lines go to stdout.
func New(level string, pretty bool) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}

	var log zerolog.Logger
	if pretty {
		log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})
	} else {
		log = zerolog.New(os.Stdout)
	}
	return log.Level(lvl).With().Timestamp().Logger()
}
