// Package logging builds the structured loggers used by the mount table and
// the vfsh command.
package logging

import (
	"io"
	"log/slog"
	"strings"

	"golang.org/x/term"

	"github.com/martinribelotta/chibios-vfs/errors"
)

// New creates a logger writing to w at level. When w is a terminal the
// output is slog's text format for people; otherwise it is JSON for log
// collectors.
//
// Callers scope the logger with With():
//
//	logger := logging.New(os.Stderr, slog.LevelInfo).With("mount", "/SD1")
func New(w io.Writer, level slog.Level) *slog.Logger {
	options := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if isTerminal(w) {
		handler = slog.NewTextHandler(w, options)
	} else {
		handler = slog.NewJSONHandler(w, options)
	}
	return slog.New(handler)
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// ParseLevel converts a level name to a slog.Level. Names are case
// insensitive; "warning" is accepted for "warn".
func ParseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, errors.WithContext(
			errors.Newf(errors.CodeInvalidConfig, "invalid log level: %s", level),
			"level", level,
		)
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(interface{ Fd() uintptr })
	return ok && term.IsTerminal(int(f.Fd()))
}
