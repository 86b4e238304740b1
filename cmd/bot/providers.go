package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Jacobbrewer1/discordgo"
	"github.com/lfmcord/staffmail/cmd/bot/config"
	"github.com/lfmcord/staffmail/pkg/dataaccess/connection"
	"github.com/lfmcord/staffmail/pkg/embeds"
	"github.com/lfmcord/staffmail/pkg/staffmail"
	"github.com/lfmcord/staffmail/pkg/surface"
	"go.mongodb.org/mongo-driver/mongo"
)

func connectMongo(ctx context.Context, cfg *config.Config) (*mongo.Client, error) {
	conn := &connection.MongoDB{
		ConnectionString: cfg.MongoUri,
	}

	client, err := conn.Connect(ctx)
	if err != nil {
		return nil, fmt.Errorf("error connecting to mongo: %w", err)
	}
	return client, nil
}

func provideDMs(l *slog.Logger, s *discordgo.Session, cfg *config.Config) *surface.DMs {
	return surface.NewDMs(l, s, cfg.UserDeliveryTimeout)
}

func provideRenderer(cfg *config.Config) *embeds.Renderer {
	return embeds.NewRenderer(cfg.CommandPrefix)
}

// provideLocker uses the default number of lock stripes.
func provideLocker() *staffmail.Locker {
	return staffmail.NewLocker(0)
}
