// Package slogx builds the structured logger of walletctl and carries it
// through request contexts to the HTTP transport.
package slogx

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Config selects the handler of the walletctl logger. Every record carries
// the service, version and env it was built with.
type Config struct {
	Service string
	Version string
	Env     string // "dev" adds source locations
	Level   string // debug, info, warn or error
	Format  string // "text", anything else is JSON

	// Output defaults to os.Stderr so command output on stdout stays clean.
	Output io.Writer
}

// New builds the logger described by cfg and installs it as slog's default,
// so library code logging through slog.Default ends up in the same stream.
func New(cfg Config) *slog.Logger {
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}

	opts := &slog.HandlerOptions{
		AddSource: cfg.Env == "dev",
		Level:     ParseLevel(cfg.Level),
	}

	var handler slog.Handler
	if strings.EqualFold(cfg.Format, "text") {
		handler = slog.NewTextHandler(out, opts)
	} else {
		handler = slog.NewJSONHandler(out, opts)
	}

	logger := slog.New(handler).With(
		"service", cfg.Service,
		"version", cfg.Version,
		"env", cfg.Env,
	)

	slog.SetDefault(logger)
	return logger
}

// ParseLevel maps a configured level name to a slog.Level. Unknown names,
// including the empty string, mean info.
func ParseLevel(lvl string) slog.Level {
	switch strings.ToLower(lvl) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
