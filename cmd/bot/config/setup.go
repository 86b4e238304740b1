package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/lfmcord/staffmail/pkg/logging"
)

// Load reads the configuration from the environment. Values from a .env file in the working directory are loaded
// first and never override variables that are already set.
func Load(l *slog.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		l.Warn("Error loading .env file", slog.String(logging.KeyError, err.Error()))
	}
	return parse(l, os.Getenv)
}

func parse(l *slog.Logger, getenv func(string) string) (*Config, error) {
	c := &Config{
		BotToken:            getenv(EnvBotToken),
		ApplicationId:       getenv(EnvApplicationId),
		MongoUri:            getenv(EnvMongoUri),
		GuildId:             getenv(EnvGuildId),
		MonitoringPort:      defaultMonitoringPort,
		CommandPrefix:       defaultCommandPrefix,
		UserDeliveryTimeout: defaultUserDeliveryTimeout,
	}

	var missing []string
	for _, key := range []string{EnvBotToken, EnvApplicationId, EnvMongoUri, EnvGuildId} {
		if getenv(key) == "" {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}

	if port := getenv(EnvMonitoringPort); port != "" {
		l.Debug("Found monitoring port in environment", slog.String("key", EnvMonitoringPort))
		c.MonitoringPort = port
	} else {
		l.Info("No monitoring port provided in environment, defaulting to "+defaultMonitoringPort,
			slog.String("key", EnvMonitoringPort))
	}

	if prefix := getenv(EnvCommandPrefix); prefix != "" {
		c.CommandPrefix = prefix
	}

	if timeout := getenv(EnvUserDeliveryTimeout); timeout != "" {
		d, err := time.ParseDuration(timeout)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", EnvUserDeliveryTimeout, err)
		} else if d <= 0 {
			return nil, fmt.Errorf("invalid %s: must be positive", EnvUserDeliveryTimeout)
		}
		c.UserDeliveryTimeout = d
	}

	l.Debug("All required environment variables have been provided")
	return c, nil
}
