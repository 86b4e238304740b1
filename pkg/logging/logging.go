package logging

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"strings"
)

const (
	// KeyError is the key used for errors in log lines.
	KeyError = "err"

	// KeyDal is the key used to identify the data access layer.
	KeyDal = "dal"

	// KeyAppName is the key used for the application name.
	KeyAppName = "app"

	// KeyTicket is the key used for StaffMail ticket IDs.
	KeyTicket = "ticket_id"

	// KeyUser is the key used for user IDs.
	KeyUser = "user_id"

	// KeyChannel is the key used for channel IDs.
	KeyChannel = "channel_id"

	// KeyMessage is the key used for message IDs.
	KeyMessage = "message_id"
)

// EnvLogLevel is the environment variable for the log level.
const EnvLogLevel = `LOG_LEVEL`

// Name is the name of the application the logger is created for.
type Name string

// Config is the configuration for a logger.
type Config struct {
	// appName is the name of the application.
	appName Name

	// level is the minimum level that is logged.
	level slog.Level

	// w is where the logs are written to.
	w io.Writer
}

// NewConfig creates a new logging configuration. The level is taken from the environment and defaults to info.
func NewConfig(appName Name) *Config {
	level := slog.LevelInfo
	if lvl, err := ParseLevel(os.Getenv(EnvLogLevel)); err == nil {
		level = lvl
	}

	return &Config{
		appName: appName,
		level:   level,
		w:       os.Stdout,
	}
}

// WithWriter sets where the logs are written to.
func (c *Config) WithWriter(w io.Writer) *Config {
	c.w = w
	return c
}

// ParseLevel parses a textual log level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, errors.New("unknown log level")
}

// CommonLogger creates the JSON logger used across the application and sets it as the default logger.
func CommonLogger(c *Config) (*slog.Logger, error) {
	if c == nil {
		return nil, errors.New("logging config is nil")
	}
	if c.appName == "" {
		return nil, errors.New("application name is required")
	}

	w := c.w
	if w == nil {
		w = os.Stdout
	}

	l := slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		AddSource: c.level == slog.LevelDebug,
		Level:     c.level,
	})).With(slog.String(KeyAppName, string(c.appName)))

	slog.SetDefault(l)
	return l, nil
}
