// Package logging configures the process-wide zerolog logger.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Setup configures the global logger at the given level. Pretty output
// goes through zerolog's console writer; otherwise JSON lines are written
// to stderr.
func Setup(level string, pretty bool) (zerolog.Logger, error) {
	return SetupWriter(os.Stderr, level, pretty)
}

// SetupWriter is Setup with an explicit destination.
func SetupWriter(w io.Writer, level string, pretty bool) (zerolog.Logger, error) {
	lvl := zerolog.InfoLevel
	if level != "" {
		var err error
		lvl, err = zerolog.ParseLevel(strings.ToLower(level))
		if err != nil {
			return zerolog.Logger{}, err
		}
	}

	out := w
	if pretty {
		out = zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
	}
	logger := zerolog.New(out).Level(lvl).With().Timestamp().Logger()
	zerolog.SetGlobalLevel(lvl)
	log.Logger = logger
	return logger, nil
}
