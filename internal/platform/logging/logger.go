package logging

import (
	"log/slog"
	"os"

	"github.com/quikeats/Vouchy/internal/platform/correlation"
)

// Init configures the process-wide slog default logger and returns it.
// level is one of "debug", "info", "warn", "error"; format is "json" or
// "text". Unrecognized values fall back to info and text.
func Init(level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(level)}

	var handler slog.Handler
	if format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(correlation.NewHandler(handler))
	slog.SetDefault(logger)
	return logger
}

func parseLevel(level string) slog.Level {
	switch level {
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
