// Package logging builds the slog loggers used by decode sessions and the
// resilient CLI.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/google/uuid"
)

// Component is the "component" attribute carried by every library logger.
const Component = "resilient"

// Configure installs a slog default writing to w (os.Stderr when nil) in
// the given format, "text" or "json".
func Configure(level slog.Level, format string, w io.Writer) error {
	if w == nil {
		w = os.Stderr
	}
	opts := &slog.HandlerOptions{Level: level}
	var h slog.Handler
	switch format {
	case "", "text":
		h = slog.NewTextHandler(w, opts)
	case "json":
		h = slog.NewJSONHandler(w, opts)
	default:
		return fmt.Errorf("unknown log format %q", format)
	}
	slog.SetDefault(slog.New(h))
	return nil
}

// ForSession scopes base to one decode session. A nil base means the slog
// default tagged with the library component.
func ForSession(base *slog.Logger, id uuid.UUID) *slog.Logger {
	if base == nil {
		base = slog.Default().With(slog.String("component", Component))
	}
	return base.With(slog.String("session", id.String()))
}

// ParseLevel maps "debug", "info", "warn" and "error" to slog levels.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
}
