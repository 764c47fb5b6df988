// Package logger installs the process-wide slog handler. Packages log
// through the slog default; nothing else imports this package.
package logger

import (
	"log/slog"
	"os"
)

// Init configures the default text handler. The DEBUG env var bumps the
// level so one-off runs can be inspected without a config change.
func Init() {
	level := slog.LevelInfo
	if os.Getenv("DEBUG") == "true" {
		level = slog.LevelDebug
	}

	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}
