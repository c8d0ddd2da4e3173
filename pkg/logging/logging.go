package logging

import (
	"errors"
	"log/slog"
	"os"
)

// Name is the application name attached to every log line.
type Name string

// Config is the configuration for a logger.
type Config struct {
	// appName is the name of the application.
	appName string
}

// NewConfig creates a new logging config.
func NewConfig(name Name) *Config {
	return &Config{
		appName: string(name),
	}
}

// CommonLogger creates the logger used across the application. It is also
// installed as the slog default so that packages without an injected logger
// still log in the same format.
func CommonLogger(c *Config) (*slog.Logger, error) {
	if c.appName == "" {
		return nil, errors.New("no application name provided")
	}

	h := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	})

	l := slog.New(h).With(slog.String(KeyApp, c.appName))
	slog.SetDefault(l)
	return l, nil
}
