// Package log builds this server's two loggers, following mcpsvr/main.go's
// split: a JSON-handler logger for errors/diagnostics (machine-parseable,
// written to stderr so it never pollutes the stdio JSON-RPC transport on
// stdout) and a text-handler logger for human-readable call metrics.
package log

import (
	"log/slog"
	"os"
)

// New builds the error and metrics loggers at the given level. Both write
// to stderr: stdout is reserved entirely for JSON-RPC frames (spec §1's
// stdio transport), so even the human-readable metrics logger cannot use
// it without corrupting the protocol stream.
func New(level slog.Level) (errorLogger, metricsLogger *slog.Logger) {
	opts := &slog.HandlerOptions{Level: level}
	errorLogger = slog.New(slog.NewJSONHandler(os.Stderr, opts))
	metricsLogger = slog.New(slog.NewTextHandler(os.Stderr, opts))
	return errorLogger, metricsLogger
}

// ParseLevel maps the config's LOG_LEVEL string to a slog.Level, defaulting
// to Info for an unrecognized value rather than failing startup over it.
func ParseLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
