package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
)

// EnvLogLevel overrides the log level, e.g. DEV_LOG_LEVEL=debug.
const EnvLogLevel = "DEV_LOG_LEVEL"

// DefaultLevel keeps script output free of diagnostics unless something
// goes wrong.
const DefaultLevel = zerolog.WarnLevel

// New creates a console logger writing to w. verbose selects debug output;
// the DEV_LOG_LEVEL environment variable takes precedence over both.
func New(w io.Writer, verbose bool) zerolog.Logger {
	level := DefaultLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	if lvl, ok := ParseLevel(os.Getenv(EnvLogLevel)); ok {
		level = lvl
	}

	output := zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: time.RFC3339,
		NoColor:    !IsTerminal(w),
	}
	return zerolog.New(output).Level(level).With().Timestamp().Str("app", "dev").Logger()
}

// ParseLevel parses a level name. ok is false for empty or unknown names.
func ParseLevel(raw string) (zerolog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "trace":
		return zerolog.TraceLevel, true
	case "debug":
		return zerolog.DebugLevel, true
	case "info":
		return zerolog.InfoLevel, true
	case "warn", "warning":
		return zerolog.WarnLevel, true
	case "error":
		return zerolog.ErrorLevel, true
	case "disabled", "off", "none":
		return zerolog.Disabled, true
	default:
		return DefaultLevel, false
	}
}

// IsTerminal reports whether w is a terminal. Anything other than an
// *os.File is not.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
