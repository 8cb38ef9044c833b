package logger

import (
	"log/slog"
	"os"
	"strings"
)

// New builds the process-wide logger. Prod environments log JSON for
// ingestion; everything else gets human-readable text. Every record is
// tagged with the owning service so the three binaries can share one
// log stream.
func New(lvl string, addSource bool, environment, service string) *slog.Logger {
	level := parseLevel(lvl)

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: addSource,
	}

	var handler slog.Handler
	if strings.ToLower(environment) == "prod" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler).With(
		slog.String("environment", environment),
		slog.String("service", service),
	)
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
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
