// Package logging builds the structured loggers shared by the commands and
// the HTTP server.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Config selects the log encoding ("json" or "console") and minimum level.
type Config struct {
	Encoding string `yaml:"encoding" envconfig:"ENCODING"`
	Level    string `yaml:"level" envconfig:"LEVEL"`
}

// New returns a logger writing to stderr, tagged with the application name.
func New(app string, cfg Config) (*slog.Logger, error) {
	return NewWithWriter(os.Stderr, app, cfg)
}

// NewWithWriter is New with an explicit destination.
func NewWithWriter(w io.Writer, app string, cfg Config) (*slog.Logger, error) {
	if cfg.Level == "" {
		cfg.Level = "info"
	}
	if cfg.Encoding == "" {
		cfg.Encoding = "console"
	}

	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	switch strings.ToLower(cfg.Encoding) {
	case "json":
		handler = slog.NewJSONHandler(w, opts)
	case "console", "text":
		handler = slog.NewTextHandler(w, opts)
	default:
		return nil, fmt.Errorf("invalid logger config: encoding %s is not supported", cfg.Encoding)
	}

	return slog.New(handler).With("app", app), nil
}

// ParseLevel maps a level name to its slog.Level.
func ParseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("invalid logger config: level %s is not supported", level)
	}
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
