// Package logging sets up structured logging for the example bot binary.
// Library code never touches slog.SetDefault itself; only cmd/ entry
// points call Init, consistent with every library package accepting an
// optional *slog.Logger rather than reaching for a global.
package logging

import (
	"log/slog"
	"os"
)

// Init installs a JSON slog handler at level as the process-wide default
// and also returns it, so callers can thread it explicitly into
// client.ServerConfig.Logger instead of relying on slog.Default().
func Init(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	logger := slog.New(handler)
	slog.SetDefault(logger)

	return logger
}
