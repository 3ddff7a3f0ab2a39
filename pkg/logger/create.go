// Package logger builds the zerolog loggers used by the command line.
package logger

import (
	"io"
	"os"
	"time"

	"github.com/mattn/go-colorable"
	"github.com/rs/zerolog"
	"golang.org/x/term"
)

const (
	LogLevelFlag = "loglevel"

	consoleTimeFormat = time.RFC3339
)

func init() {
	zerolog.TimeFieldFormat = time.RFC3339
	zerolog.TimestampFunc = utcNow
}

func utcNow() time.Time {
	return time.Now().UTC()
}

// Create returns a console logger on stderr at the given level. Colour is
// used only when stderr is a terminal.
func Create(level string) *zerolog.Logger {
	return newZerolog(level, createConsoleLogger(os.Stderr))
}

func createConsoleLogger(out *os.File) io.Writer {
	return zerolog.ConsoleWriter{
		Out:        colorable.NewColorable(out),
		NoColor:    !term.IsTerminal(int(out.Fd())),
		TimeFormat: consoleTimeFormat,
	}
}

// newZerolog falls back to info when level does not parse and reports the
// fallback on the returned logger.
func newZerolog(level string, w io.Writer) *zerolog.Logger {
	lvl, levelErr := zerolog.ParseLevel(level)
	if levelErr != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	log := zerolog.New(w).Level(lvl).With().Timestamp().Logger()
	if levelErr != nil {
		log.Error().Msgf("Failed to parse log level %q, using %q instead", level, lvl)
	}
	return &log
}
