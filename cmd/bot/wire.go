//go:build wireinject
// +build wireinject

package main

import (
	"context"

	"github.com/google/wire"
	"github.com/gorilla/mux"
	"github.com/lfmcord/staffmail/cmd/bot/config"
	"github.com/lfmcord/staffmail/pkg/audit"
	"github.com/lfmcord/staffmail/pkg/dataaccess"
	"github.com/lfmcord/staffmail/pkg/embeds"
	"github.com/lfmcord/staffmail/pkg/logging"
	"github.com/lfmcord/staffmail/pkg/staffmail"
	"github.com/lfmcord/staffmail/pkg/surface"
)

func InitializeApp(ctx context.Context) (*App, error) {
	wire.Build(
		wire.Value(logging.Name(config.AppName)),
		logging.NewConfig,
		logging.CommonLogger,
		config.Load,
		mux.NewRouter,
		newSession,
		connectMongo,
		dataaccess.Database,
		dataaccess.NewGuildDal,
		dataaccess.NewTicketDal,
		provideDMs,
		surface.NewStaffChannels,
		provideRenderer,
		audit.NewLogger,
		provideLocker,
		staffmail.NewManager,
		staffmail.NewEngine,
		wire.Bind(new(staffmail.TicketStore), new(*dataaccess.TicketDal)),
		wire.Bind(new(staffmail.Destinations), new(dataaccess.GuildDal)),
		wire.Bind(new(staffmail.UserSurface), new(*surface.DMs)),
		wire.Bind(new(staffmail.StaffSurface), new(*surface.StaffChannels)),
		wire.Bind(new(staffmail.Renderer), new(*embeds.Renderer)),
		wire.Bind(new(staffmail.Auditor), new(*audit.Logger)),
		NewApp,
	)
	return new(App), nil
}
