package logger

import (
	"log/slog"
	"os"
)

// New returns the process-wide JSON logger. Local and dev deployments
// log at debug so per-event dispatch decisions are visible; deployed
// environments stay at info.
func New(appEnv string) *slog.Logger {
	level := slog.LevelInfo
	if appEnv == "local" || appEnv == "dev" {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
}
