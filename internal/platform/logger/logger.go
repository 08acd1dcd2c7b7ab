// Package logger constructs the application logger.
package logger

import (
	"log/slog"
	"os"
)

// New returns a JSON slog logger at the given level. Level strings follow
// slog conventions; unknown values fall back to info.
func New(level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}
