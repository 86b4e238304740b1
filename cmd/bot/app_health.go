package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/alexliesenfeld/health"
	"github.com/lfmcord/staffmail/pkg/dataaccess/connection"
	"github.com/lfmcord/staffmail/pkg/logging"
)

var errGatewayDisconnected = errors.New("not connected to the discord gateway")

// checkListener logs the state changes of a single check.
func (a *App) checkListener(ctx context.Context, name string, state health.CheckState) {
	l := a.Log().With(
		slog.String("check", name),
		slog.String("state", string(state.Status)),
	)
	if state.Result != nil {
		l.Warn("Health check failing", slog.String(logging.KeyError, state.Result.Error()))
		return
	}
	l.Info("Health check status changed")
}

func (a *App) healthCheck() Controller {
	checker := health.NewChecker(
		health.WithCacheDuration(1*time.Second),
		health.WithTimeout(5*time.Second),

		// Tickets cannot be resolved without the store.
		health.WithCheck(health.Check{
			Name: "ticket_store",
			Check: func(ctx context.Context) error {
				if err := connection.Ping(ctx, a.mongo); err != nil {
					return fmt.Errorf("failed to ping MongoDB: %w", err)
				}
				return nil
			},
			Timeout:        2 * time.Second,
			StatusListener: a.checkListener,
		}),

		// Inbound messages only arrive over the gateway.
		health.WithCheck(health.Check{
			Name: "discord_gateway",
			Check: func(ctx context.Context) error {
				if !a.s.DataReady {
					return errGatewayDisconnected
				}
				return nil
			},
			StatusListener: a.checkListener,
		}),

		health.WithPeriodicCheck(15*time.Second, 5*time.Second, health.Check{
			Name: "discord_api",
			Check: func(ctx context.Context) error {
				if _, err := a.s.GatewayBot(); err != nil {
					return fmt.Errorf("failed to reach Discord API: %w", err)
				}
				return nil
			},
			Timeout:        3 * time.Second,
			StatusListener: a.checkListener,
		}),

		// New StaffMails are rejected until the guild has been set up.
		health.WithPeriodicCheck(time.Minute, 0, health.Check{
			Name: "staffmail_config",
			Check: func(ctx context.Context) error {
				cfg, err := a.guilds.StaffMailConfig(ctx, a.cfg.GuildId)
				if err != nil {
					return fmt.Errorf("failed to get staffmail config: %w", err)
				} else if cfg == nil || !cfg.Enabled || cfg.CategoryID == "" {
					return fmt.Errorf("staffmail is not enabled for guild %s", a.cfg.GuildId)
				}
				return nil
			},
			Timeout:        2 * time.Second,
			StatusListener: a.checkListener,
		}),
	)

	return health.NewHandler(checker).ServeHTTP
}
