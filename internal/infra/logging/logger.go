// Package logging configures the application logger. Logs go to stderr and,
// when a state directory is configured, to an append-only file under
// <stateDir>/logs/fluxbot.log so long-running sessions can be inspected
// after the fact.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// ParseLevel parses a log level string into slog.Level.
func ParseLevel(levelStr string) slog.Level {
	switch levelStr {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// New creates a logger at the given level. If stateDir is empty, only
// stderr receives output. The returned closer is nil when no file was
// opened.
func New(stateDir string, level slog.Level) (*slog.Logger, io.Closer, error) {
	writers := []io.Writer{os.Stderr}

	var closer io.Closer
	if stateDir != "" {
		logsDir := filepath.Join(stateDir, "logs")
		if err := os.MkdirAll(logsDir, 0o750); err != nil {
			return nil, nil, fmt.Errorf("create logs directory: %w", err)
		}
		path := filepath.Join(logsDir, "fluxbot.log")
		// Log files are append-only and readable by owner and group.
		f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o640) //nolint:gosec
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		writers = append(writers, f)
		closer = f
	}

	handler := slog.NewTextHandler(io.MultiWriter(writers...), &slog.HandlerOptions{
		Level: level,
	})
	return slog.New(handler), closer, nil
}
